//go:build basic

// Package integration contains integration tests for aieval.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanReport mirrors the JSON report of the scan command.
type scanReport struct {
	Score           int    `json:"score"`
	Label           string `json:"label"`
	Reason          string `json:"reason"`
	TotalFiles      int    `json:"total_files"`
	FileEvaluations []struct {
		RelativePath string `json:"relative_path"`
		Score        int    `json:"score"`
		FileType     string `json:"file_type"`
	} `json:"file_evaluations"`
}

// TestScanVerification runs a JSON scan against a fake model and checks the aggregation.
func TestScanVerification(t *testing.T) {
	fm := newFakeModel(t)
	folder := writeFixture(t)

	args := append([]string{"scan", folder, "--output", "json", "--cache-backend", "none"}, fm.modelArgs()...)
	stdout, err := runCommand(t, nil, args...)
	require.NoError(t, err)

	var report scanReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.Equal(t, 3, report.TotalFiles)
	assert.Equal(t, 7, report.Score) // round((9+9+2)/3)
	assert.Equal(t, "Most files (2/3) show strong indicators of AI generation", report.Reason)

	scores := make(map[string]int, len(report.FileEvaluations))
	for _, fe := range report.FileEvaluations {
		scores[filepath.ToSlash(fe.RelativePath)] = fe.Score
	}
	assert.Equal(t, map[string]int{
		"app/service.py": 9,
		"app/helpers.ts": 9,
		"cmd/main.go":    2,
	}, scores)
}

// TestScanExclusions checks that excluded extensions and folders are never sent.
func TestScanExclusions(t *testing.T) {
	fm := newFakeModel(t)
	folder := writeFixture(t)

	args := append([]string{
		"scan", folder, "--output", "json", "--cache-backend", "none",
		"--exclude-ext", "ts", "--exclude-folder", "cmd",
	}, fm.modelArgs()...)
	stdout, err := runCommand(t, nil, args...)
	require.NoError(t, err)

	var report scanReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 1, report.TotalFiles)
	assert.Equal(t, int32(1), fm.calls.Load())
}

// TestScanUsesCache checks that a second scan of unchanged files skips the model.
func TestScanUsesCache(t *testing.T) {
	fm := newFakeModel(t)
	folder := writeFixture(t)
	cacheDB := filepath.Join(t.TempDir(), "scores.db")

	args := append([]string{"scan", folder, "--output", "csv", "--cache-db-connect", cacheDB}, fm.modelArgs()...)
	_, err := runCommand(t, nil, args...)
	require.NoError(t, err)
	require.Equal(t, int32(3), fm.calls.Load())

	_, err = runCommand(t, nil, args...)
	require.NoError(t, err)
	assert.Equal(t, int32(3), fm.calls.Load())
}

// TestScanEmptyFolder checks the verdict for a folder without code.
func TestScanEmptyFolder(t *testing.T) {
	fm := newFakeModel(t)
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "notes.txt"), []byte("hello"), 0o644))

	args := append([]string{"scan", folder, "--output", "json", "--cache-backend", "none"}, fm.modelArgs()...)
	stdout, err := runCommand(t, nil, args...)
	require.NoError(t, err)

	var report scanReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 0, report.TotalFiles)
	assert.Equal(t, int32(0), fm.calls.Load())
}
