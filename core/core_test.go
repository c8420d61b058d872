package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/iocache"
	"github.com/huangsam/aieval/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeDownloader writes a fixed set of files into the destination folder.
type fakeDownloader struct {
	files map[string]string
	err   error
	dest  string
}

var _ contract.ChangeDownloader = &fakeDownloader{}

func (d *fakeDownloader) Download(_ context.Context, _ string, destDir string) ([]string, error) {
	d.dest = destDir
	if d.err != nil {
		return nil, d.err
	}
	var paths []string
	for rel, content := range d.files {
		path := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

func scoringOracle(t *testing.T, reply string) *contract.MockOracle {
	t.Helper()
	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.Anything).Return(reply, nil)
	return o
}

func TestGetScanResults_TracksHistory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "print('a')")
	writeFile(t, root, "pkg/b.go", "package pkg")
	writeFile(t, root, "notes.txt", "not code")

	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", root, mock.Anything, mock.Anything).Return(int64(42), nil)
	history.On("RecordFileEvaluation", int64(42), mock.Anything, mock.Anything).Return(nil).Times(2)
	history.On("EndRun", int64(42), mock.Anything, mock.MatchedBy(func(o schema.OverallEvaluation) bool {
		return o.TotalFiles == 2 && o.Score == 8
	})).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetScoreStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	o := scoringOracle(t, `{"score": 8, "reason": "Template structure"}`)
	ctx := WithSuppressHeader(context.Background())

	result, err := GetScanResults(ctx, testConfig(root), o, mgr)
	require.NoError(t, err)

	assert.Equal(t, 8, result.Score)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Len(t, result.FileEvaluations, 2)
	o.AssertNumberOfCalls(t, "Complete", 2)
	history.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestGetScanResults_HistoryFailureDoesNotStopScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rb", "puts 1")

	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetScoreStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	result, err := GetScanResults(WithSuppressHeader(context.Background()), testConfig(root),
		scoringOracle(t, `{"score": 3, "reason": "Quirky"}`), mgr)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Score)
	history.AssertNotCalled(t, "RecordFileEvaluation", mock.Anything, mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetScanResults_OracleFailureIsolated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "print('a')")
	writeFile(t, root, "b.go", "package b")
	writeFile(t, root, "c.ts", "let c = 1")

	failing := func(req schema.CompletionRequest) bool { return strings.Contains(req.Prompt, "File: b.go") }
	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.MatchedBy(failing)).Return("", errors.New("service unavailable"))
	o.On("Complete", mock.Anything, mock.MatchedBy(func(req schema.CompletionRequest) bool { return !failing(req) })).
		Return(`{"score": 8, "reason": "Tidy"}`, nil)

	result, err := GetScanResults(WithSuppressHeader(context.Background()), testConfig(root), o, nil)
	require.NoError(t, err)
	require.Equal(t, 3, result.TotalFiles)
	require.Len(t, result.FileEvaluations, 3)

	byPath := make(map[string]schema.FileEvaluation, 3)
	for _, eval := range result.FileEvaluations {
		byPath[eval.RelativePath] = eval
	}
	assert.Equal(t, schema.FallbackScore, byPath["b.go"].Score)
	assert.Equal(t, "Error during evaluation: service unavailable", byPath["b.go"].Reason)
	for _, rel := range []string{"a.py", "c.ts"} {
		assert.Equal(t, 8, byPath[rel].Score, rel)
		assert.Equal(t, "Tidy", byPath[rel].Reason, rel)
	}
	assert.Equal(t, 7, result.Score)
	o.AssertNumberOfCalls(t, "Complete", 3)
}

func TestGetScanResults_EmptyFolder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# docs")

	o := &contract.MockOracle{}
	result, err := GetScanResults(WithSuppressHeader(context.Background()), testConfig(root), o, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Score)
	assert.Equal(t, noFilesReason, result.Reason)
	assert.Zero(t, result.TotalFiles)
	o.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestGetScanResults_MissingRoot(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing"))
	_, err := GetScanResults(WithSuppressHeader(context.Background()), cfg, &contract.MockOracle{}, nil)
	assert.Error(t, err)
}

func TestEvaluateSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "export const x = 1")

	o := scoringOracle(t, `{"score": 6, "reason": "Mixed signals"}`)
	eval, err := EvaluateSingleFile(context.Background(), testConfig(root), o, nil, "src/app.ts")
	require.NoError(t, err)

	assert.Equal(t, schema.FileEvaluation{RelativePath: "src/app.ts", Score: 6, Reason: "Mixed signals", FileType: ".ts"}, eval)
}

func TestEvaluateSingleFile_Errors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))
	o := &contract.MockOracle{}

	_, err := EvaluateSingleFile(context.Background(), testConfig(root), o, nil, "missing.go")
	assert.Error(t, err)

	_, err = EvaluateSingleFile(context.Background(), testConfig(root), o, nil, "dir")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
}

func TestExecutePullRequest_Evaluate(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.json")
	cfg := testConfig(t.TempDir())
	cfg.Output = schema.JSONOut
	cfg.OutputFile = outFile

	dl := &fakeDownloader{files: map[string]string{"src/main.go": "package main", "web/app.js": "let a = 1"}}
	o := scoringOracle(t, `{"score": 9, "reason": "Generated"}`)

	err := ExecutePullRequest(WithSuppressHeader(context.Background()), cfg, o, nil, dl, "https://dev.azure.com/org/proj/_git/repo/pullrequest/1", PullRequestOptions{Evaluate: true})
	require.NoError(t, err)

	content, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(content, &report))
	assert.Equal(t, float64(9), report["score"])
	assert.Equal(t, float64(2), report["total_files"])

	_, err = os.Stat(dl.dest)
	assert.True(t, os.IsNotExist(err), "download folder should be removed after evaluation")
}

func TestExecutePullRequest_DownloadOnly(t *testing.T) {
	dl := &fakeDownloader{files: map[string]string{"a.py": "x = 1"}}
	o := &contract.MockOracle{}

	err := ExecutePullRequest(context.Background(), testConfig(t.TempDir()), o, nil, dl, "pr", PullRequestOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dl.dest) })

	assert.FileExists(t, filepath.Join(dl.dest, "a.py"))
	o.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestExecutePullRequest_DownloadError(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("unauthorized")}

	err := ExecutePullRequest(context.Background(), testConfig(t.TempDir()), &contract.MockOracle{}, nil, dl, "pr", PullRequestOptions{Evaluate: true})
	require.EqualError(t, err, "unauthorized")

	_, statErr := os.Stat(dl.dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecutePullRequest_NoDownloader(t *testing.T) {
	err := ExecutePullRequest(context.Background(), testConfig(t.TempDir()), &contract.MockOracle{}, nil, nil, "pr", PullRequestOptions{})
	assert.Error(t, err)
}
