package core

import (
	"fmt"
	"math"

	"github.com/huangsam/aieval/schema"
)

// noFilesReason is reported when a scan finds nothing to evaluate.
const noFilesReason = "No code files found to evaluate"

// majorityShare is the fraction of files a bucket must exceed to dominate the verdict.
const majorityShare = 0.6

// AggregateEvaluations reduces per-file evaluations into the overall verdict.
// The score is the mean rounded half to even and clamped; the reason
// describes how the files split into likely-AI, uncertain and likely-human.
func AggregateEvaluations(evals []schema.FileEvaluation) schema.OverallEvaluation {
	if len(evals) == 0 {
		return schema.OverallEvaluation{
			Score:           schema.MinScore,
			Reason:          noFilesReason,
			TotalFiles:      0,
			FileEvaluations: []schema.FileEvaluation{},
		}
	}

	var total, high, medium, low int
	for _, e := range evals {
		total += e.Score
		switch {
		case e.Score >= 7:
			high++
		case e.Score >= 4:
			medium++
		default:
			low++
		}
	}

	n := len(evals)
	mean := float64(total) / float64(n)
	overall := clampScore(math.RoundToEven(mean))

	var reason string
	switch {
	case float64(high) > float64(n)*majorityShare:
		reason = fmt.Sprintf("Most files (%d/%d) show strong indicators of AI generation", high, n)
	case float64(low) > float64(n)*majorityShare:
		reason = fmt.Sprintf("Most files (%d/%d) appear to be human-written", low, n)
	default:
		reason = fmt.Sprintf("Mixed results: %d likely AI-generated, %d uncertain, %d likely human-written", high, medium, low)
	}

	return schema.OverallEvaluation{
		Score:           overall,
		Reason:          reason,
		TotalFiles:      n,
		FileEvaluations: evals,
	}
}
