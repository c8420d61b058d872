package core

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/iocache"
	"github.com/huangsam/aieval/internal/oracle"
	"github.com/huangsam/aieval/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseScoreResponse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantScore  int
		wantReason string
		wantOK     bool
	}{
		{"plain object", `{"score": 8, "reason": "Uniform docstrings"}`, 8, "Uniform docstrings", true},
		{"clamped high", `{"score": 15, "reason": "x"}`, 10, "x", true},
		{"clamped low without reason", `{"score": -3}`, 1, defaultReason, true},
		{"fraction truncated", `{"score": 7.9, "reason": "y"}`, 7, "y", true},
		{"numeric string", `{"score": "6", "reason": "z"}`, 6, "z", true},
		{"huge number clamped", `{"score": 1e300, "reason": "big"}`, 10, "big", true},
		{"missing score", `{"reason": "only reason"}`, schema.FallbackScore, "only reason", true},
		{"non-string reason", `{"score": 3, "reason": 42}`, 3, "42", true},
		{"null reason", `{"score": 3, "reason": null}`, 3, defaultReason, true},
		{"fenced json", "Here you go:\n```json\n{\"score\": 9, \"reason\": \"fenced\"}\n```", 9, "fenced", true},
		{"surrounding whitespace", "  \n{\"score\": 2, \"reason\": \"w\"}\n ", 2, "w", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reason, ok := ParseScoreResponse(tt.text)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseScoreResponse_Failures(t *testing.T) {
	for _, text := range []string{
		"not json",
		`[1, 2]`,
		`{"score": "high"}`,
		`{"score": true}`,
		`{"score": null}`,
		`{"score": "7.5"}`,
		`{"score": "99999999999999999999"}`,
	} {
		t.Run(text, func(t *testing.T) {
			score, reason, ok := ParseScoreResponse(text)
			assert.False(t, ok)
			assert.Equal(t, schema.FallbackScore, score)
			assert.True(t, strings.HasPrefix(reason, "Unable to parse AI response: "))
			assert.Contains(t, reason, strings.TrimSpace(text))
		})
	}
}

func TestParseScoreResponse_PrefixLimit(t *testing.T) {
	long := strings.Repeat("é", 500)
	_, reason, ok := ParseScoreResponse(long)
	assert.False(t, ok)
	assert.Equal(t, "Unable to parse AI response: "+strings.Repeat("é", rawPrefixLimit), reason)
}

func TestBuildScorePrompt(t *testing.T) {
	prompt := BuildScorePrompt("main.go", ".go", "package main")
	assert.Contains(t, prompt, "File: main.go")
	assert.Contains(t, prompt, "File type: .go")
	assert.Contains(t, prompt, "```\npackage main\n```")
	assert.Contains(t, prompt, `{"score": <number>, "reason": "<detailed explanation of your reasoning>"}`)
}

// writeFile creates a file below dir and returns its absolute path.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(root string) *contract.Config {
	return &contract.Config{
		ScanRoot:    root,
		Provider:    schema.AzureProvider,
		Model:       "gpt-4",
		Concurrency: contract.DefaultConcurrency,
		Timeout:     time.Minute,
		Output:      schema.TextOut,
	}
}

func TestScoreClient_Success(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "pkg/app.py", "print('hi')\n")

	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.MatchedBy(func(req schema.CompletionRequest) bool {
		return req.JSON && req.Model == "gpt-4" && req.Schema == nil &&
			req.System == scoreSystemMessage && strings.Contains(req.Prompt, "File: app.py")
	})).Return(`{"score": 8, "reason": "Tidy"}`, nil).Once()

	eval := NewScoreClient(o, testConfig(root), nil).Score(context.Background(), path)

	assert.Equal(t, schema.FileEvaluation{RelativePath: "pkg/app.py", Score: 8, Reason: "Tidy", FileType: ".py"}, eval)
	o.AssertExpectations(t)
}

func TestScoreClient_StrictSchema(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.go", "package a\n")

	cfg := testConfig(root)
	cfg.StrictSchema = true

	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.MatchedBy(func(req schema.CompletionRequest) bool {
		return req.Schema != nil && req.SchemaName == scoreSchemaName
	})).Return(`{"score": 2, "reason": "r"}`, nil).Once()

	eval := NewScoreClient(o, cfg, nil).Score(context.Background(), path)
	assert.Equal(t, 2, eval.Score)
	o.AssertExpectations(t)
}

func TestScoreClient_OracleError(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "A.JS", "x()\n")

	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection refused")).Once()

	eval := NewScoreClient(o, testConfig(root), nil).Score(context.Background(), path)
	assert.Equal(t, schema.FallbackScore, eval.Score)
	assert.Equal(t, "Error during evaluation: connection refused", eval.Reason)
	assert.Equal(t, ".JS", eval.FileType)
}

func TestScoreClient_ParseFailureNotCached(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "b.rb", "puts 1\n")

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)

	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.Anything).Return("I think it's human", nil)

	eval := NewScoreClient(o, testConfig(root), store).Score(context.Background(), path)
	assert.Equal(t, schema.FallbackScore, eval.Score)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScoreClient_EmptyCompletionIsParseFailure(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "d.py", "pass\n")

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows)

	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.Anything).Return("", oracle.ErrEmptyCompletion).Once()

	eval := NewScoreClient(o, testConfig(root), store).Score(context.Background(), path)
	assert.Equal(t, schema.FallbackScore, eval.Score)
	assert.Equal(t, "Unable to parse AI response: ", eval.Reason)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScoreClient_CacheHitSkipsOracle(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "c.ts", "let a = 1\n")

	cached, _ := json.Marshal(schema.ScoreResponse{Score: 9, Reason: "from cache"})
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(cached, currentCacheVersion, time.Now().Unix(), nil)

	o := &contract.MockOracle{}

	eval := NewScoreClient(o, testConfig(root), store).Score(context.Background(), path)
	assert.Equal(t, 9, eval.Score)
	assert.Equal(t, "from cache", eval.Reason)
	o.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestScoreClient_StaleCacheMisses(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "d.ts", "let b = 2\n")

	cached, _ := json.Marshal(schema.ScoreResponse{Score: 9, Reason: "old"})
	stale := time.Now().Add(-cacheMaxAge - time.Hour).Unix()
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(cached, currentCacheVersion, stale, nil)
	store.On("Set", mock.Anything, mock.Anything, currentCacheVersion, mock.Anything).Return(nil).Once()

	o := &contract.MockOracle{}
	o.On("Complete", mock.Anything, mock.Anything).Return(`{"score": 3, "reason": "fresh"}`, nil).Once()

	eval := NewScoreClient(o, testConfig(root), store).Score(context.Background(), path)
	assert.Equal(t, 3, eval.Score)
	assert.Equal(t, "fresh", eval.Reason)
	store.AssertExpectations(t)
	o.AssertExpectations(t)
}

func TestGenerateCacheKey(t *testing.T) {
	base := generateCacheKey(schema.AzureProvider, "gpt-4", "a.py", ".py", "x")
	assert.Len(t, base, 64)
	assert.Equal(t, base, generateCacheKey(schema.AzureProvider, "gpt-4", "a.py", ".py", "x"))
	assert.NotEqual(t, base, generateCacheKey(schema.AzureProvider, "gpt-4", "a.py", ".py", "y"))
	assert.NotEqual(t, base, generateCacheKey(schema.OpenAIProvider, "gpt-4", "a.py", ".py", "x"))
	assert.NotEqual(t, base, generateCacheKey(schema.AzureProvider, "gpt-4o", "a.py", ".py", "x"))
}
