package schema

import "sort"

// Label values for a likelihood score.
const (
	LikelyAILabel    = "Likely AI"
	UncertainLabel   = "Uncertain"
	LikelyHumanLabel = "Likely Human"
)

// EnrichedFileEvaluation adds presentation data to a FileEvaluation.
type EnrichedFileEvaluation struct {
	Rank           int    `json:"rank" yaml:"rank"`
	Label          string `json:"label" yaml:"label"`
	FileEvaluation `yaml:",inline"`
}

// GetPlainLabel returns a plain text label for a likelihood score.
// The bands match the high/medium/low buckets used by aggregation.
func GetPlainLabel(score int) string {
	switch {
	case score >= 7:
		return LikelyAILabel
	case score >= 4:
		return UncertainLabel
	default:
		return LikelyHumanLabel
	}
}

// SortByScore returns a copy of evals ordered by descending score.
// Ties keep their original (completion) order.
func SortByScore(evals []FileEvaluation) []FileEvaluation {
	sorted := make([]FileEvaluation, len(evals))
	copy(sorted, evals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// EnrichEvaluations sorts evaluations by score and adds rank and label.
func EnrichEvaluations(evals []FileEvaluation) []EnrichedFileEvaluation {
	sorted := SortByScore(evals)
	output := make([]EnrichedFileEvaluation, len(sorted))
	for i, e := range sorted {
		output[i] = EnrichedFileEvaluation{
			Rank:           i + 1,
			Label:          GetPlainLabel(e.Score),
			FileEvaluation: e,
		}
	}
	return output
}
