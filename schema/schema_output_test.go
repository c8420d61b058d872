package schema_test

import (
	"testing"

	"github.com/huangsam/aieval/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		expected string
	}{
		{"Max Score", 10, schema.LikelyAILabel},
		{"AI Lower Bound", 7, schema.LikelyAILabel},
		{"Uncertain Upper", 6, schema.UncertainLabel},
		{"Uncertain Lower", 4, schema.UncertainLabel},
		{"Human Upper", 3, schema.LikelyHumanLabel},
		{"Min Score", 1, schema.LikelyHumanLabel},
		{"Zero Score", 0, schema.LikelyHumanLabel}, // Edge case
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.score))
		})
	}
}

func TestSortByScoreIsStable(t *testing.T) {
	evals := []schema.FileEvaluation{
		{RelativePath: "a.go", Score: 5},
		{RelativePath: "b.go", Score: 9},
		{RelativePath: "c.go", Score: 5},
		{RelativePath: "d.go", Score: 9},
		{RelativePath: "e.go", Score: 1},
	}

	sorted := schema.SortByScore(evals)

	var paths []string
	for _, e := range sorted {
		paths = append(paths, e.RelativePath)
	}
	assert.Equal(t, []string{"b.go", "d.go", "a.go", "c.go", "e.go"}, paths)

	// The input slice is left untouched
	assert.Equal(t, "a.go", evals[0].RelativePath)
}

func TestEnrichEvaluations(t *testing.T) {
	evals := []schema.FileEvaluation{
		{RelativePath: "low.py", Score: 2},
		{RelativePath: "high.py", Score: 8},
		{RelativePath: "mid.py", Score: 5},
	}

	enriched := schema.EnrichEvaluations(evals)

	assert.Len(t, enriched, 3)
	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "high.py", enriched[0].RelativePath)
	assert.Equal(t, schema.LikelyAILabel, enriched[0].Label)
	assert.Equal(t, 2, enriched[1].Rank)
	assert.Equal(t, schema.UncertainLabel, enriched[1].Label)
	assert.Equal(t, 3, enriched[2].Rank)
	assert.Equal(t, schema.LikelyHumanLabel, enriched[2].Label)
}

func TestEnrichEvaluationsEmpty(t *testing.T) {
	assert.Empty(t, schema.EnrichEvaluations(nil))
}
