package core

import (
	"testing"

	"github.com/huangsam/aieval/schema"
	"github.com/stretchr/testify/assert"
)

func evalsWithScores(scores ...int) []schema.FileEvaluation {
	evals := make([]schema.FileEvaluation, len(scores))
	for i, s := range scores {
		evals[i] = schema.FileEvaluation{RelativePath: string(rune('a'+i)) + ".go", Score: s, Reason: "r", FileType: ".go"}
	}
	return evals
}

func TestAggregateEvaluations(t *testing.T) {
	tests := []struct {
		name       string
		scores     []int
		wantScore  int
		wantReason string
	}{
		{"mostly AI", []int{9, 9, 9, 9, 2}, 8, "Most files (4/5) show strong indicators of AI generation"},
		{"mostly human", []int{1, 2, 2, 3, 1}, 2, "Most files (5/5) appear to be human-written"},
		{"mixed", []int{9, 5, 1}, 5, "Mixed results: 1 likely AI-generated, 1 uncertain, 1 likely human-written"},
		{"exactly sixty percent is not a majority", []int{8, 8, 8, 2, 2}, 6, "Mixed results: 3 likely AI-generated, 0 uncertain, 2 likely human-written"},
		{"round half to even down", []int{4, 5}, 4, "Mixed results: 0 likely AI-generated, 2 uncertain, 0 likely human-written"},
		{"round half to even up", []int{5, 6}, 6, "Mixed results: 0 likely AI-generated, 2 uncertain, 0 likely human-written"},
		{"bucket edges", []int{7, 4, 3}, 5, "Mixed results: 1 likely AI-generated, 1 uncertain, 1 likely human-written"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evals := evalsWithScores(tt.scores...)
			got := AggregateEvaluations(evals)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, len(tt.scores), got.TotalFiles)
			assert.Equal(t, evals, got.FileEvaluations)
		})
	}
}

func TestAggregateEvaluations_Empty(t *testing.T) {
	got := AggregateEvaluations(nil)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, "No code files found to evaluate", got.Reason)
	assert.Equal(t, 0, got.TotalFiles)
	assert.NotNil(t, got.FileEvaluations)
	assert.Empty(t, got.FileEvaluations)
}
