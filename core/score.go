package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/oracle"
	"github.com/huangsam/aieval/schema"
)

// Oracle request parameters for file scoring.
const (
	scoreSystemMessage = "You are an expert code analyst specializing in identifying AI-generated code. Always respond with valid JSON only."
	scoreTemperature   = 0.1
	scoreSchemaName    = "ai_code_score"
	rawPrefixLimit     = 200
	defaultReason      = "No reason provided"
)

// scorePromptTemplate asks for a 1-10 likelihood rating of a single file.
const scorePromptTemplate = `
Analyze the following code and determine how likely it is that this code was generated by an AI code generation tool (like GitHub Copilot, ChatGPT, Claude, etc.).

Consider these factors:
1. Code style and patterns (AI often generates very consistent, sometimes overly structured code)
2. Comments (AI tends to generate comprehensive comments, sometimes overly detailed)
3. Variable and function naming (AI often uses very descriptive, sometimes verbose names)
4. Code structure (AI tends to follow best practices rigidly)
5. Error handling (AI often includes comprehensive error handling)
6. Documentation strings and type hints (AI frequently includes these)
7. Coding patterns that are typical of AI generation
8. Lack of personal coding quirks or shortcuts that human developers often use

File: %s
File type: %s

Code:
` + "```" + `
%s
` + "```" + `

Provide a score from 1 to 10 where:
- 1-2: Very unlikely to be AI-generated (clearly human-written)
- 3-4: Probably human-written with some AI assistance possible
- 5-6: Could be either human or AI-written
- 7-8: Likely AI-generated with possible human modifications
- 9-10: Very likely AI-generated

Respond with only a JSON object in this format:
{"score": <number>, "reason": "<detailed explanation of your reasoning>"}
`

// scoreResponseSchema is sent to providers that enforce structured output.
var scoreResponseSchema = oracle.GenerateSchema[schema.ScoreResponse]()

// BuildScorePrompt renders the scoring instructions for one file.
func BuildScorePrompt(name, ext, content string) string {
	return fmt.Sprintf(scorePromptTemplate, name, ext, content)
}

// ScoreClient turns one file into a FileEvaluation with a single oracle call.
// It recovers locally from every failure so a file never aborts a run.
type ScoreClient struct {
	oracle   contract.Oracle
	store    contract.CacheStore
	provider schema.Provider
	model    string
	root     string
	strict   bool
}

// NewScoreClient creates a ScoreClient for files below cfg.ScanRoot.
// The store may be nil, in which case nothing is cached.
func NewScoreClient(o contract.Oracle, cfg *contract.Config, store contract.CacheStore) *ScoreClient {
	return &ScoreClient{
		oracle:   o,
		store:    store,
		provider: cfg.Provider,
		model:    cfg.Model,
		root:     cfg.ScanRoot,
		strict:   cfg.StrictSchema,
	}
}

// Score evaluates a single file.
func (s *ScoreClient) Score(ctx context.Context, path string) schema.FileEvaluation {
	name := filepath.Base(path)
	ext := filepath.Ext(path)
	content := LoadContent(path)

	key := generateCacheKey(s.provider, s.model, name, ext, content)
	if hit := checkCacheHit(s.store, key); hit != nil {
		return s.evaluation(path, hit.Score, hit.Reason)
	}

	req := schema.CompletionRequest{
		Model:       s.model,
		System:      scoreSystemMessage,
		Prompt:      BuildScorePrompt(name, ext, content),
		JSON:        true,
		Temperature: scoreTemperature,
	}
	if s.strict {
		req.Schema = scoreResponseSchema
		req.SchemaName = scoreSchemaName
	}

	text, err := s.oracle.Complete(ctx, req)
	if errors.Is(err, oracle.ErrEmptyCompletion) {
		// An empty reply is unparseable output, not a failed call.
		text, err = "", nil
	}
	if err != nil {
		return s.Fail(path, err)
	}

	score, reason, ok := ParseScoreResponse(text)
	if ok {
		storeResult(s.store, key, schema.ScoreResponse{Score: score, Reason: reason})
	}
	return s.evaluation(path, score, reason)
}

// Fail returns the neutral evaluation used when the oracle could not be reached.
func (s *ScoreClient) Fail(path string, err error) schema.FileEvaluation {
	return s.evaluation(path, schema.FallbackScore, fmt.Sprintf("Error during evaluation: %v", err))
}

// evaluation builds a FileEvaluation with a path relative to the scan root.
func (s *ScoreClient) evaluation(path string, score int, reason string) schema.FileEvaluation {
	rel := path
	if s.root != "" {
		if r, err := filepath.Rel(s.root, path); err == nil {
			rel = r
		}
	}
	return schema.FileEvaluation{
		RelativePath: filepath.ToSlash(rel),
		Score:        score,
		Reason:       reason,
		FileType:     filepath.Ext(path),
	}
}

// ParseScoreResponse extracts a clamped score and reason from raw oracle output.
// It reports ok=false when the output is not a usable JSON object; the returned
// score and reason then describe the parse failure.
func ParseScoreResponse(text string) (int, string, bool) {
	raw := strings.TrimSpace(text)

	var obj map[string]any
	if err := json.Unmarshal([]byte(oracle.ExtractJSON(raw)), &obj); err != nil || obj == nil {
		return parseFailure(raw)
	}

	score := schema.FallbackScore
	if v, present := obj["score"]; present {
		n, ok := toScore(v)
		if !ok {
			return parseFailure(raw)
		}
		score = n
	}

	reason := defaultReason
	if v, present := obj["reason"]; present && v != nil {
		if s, isString := v.(string); isString {
			reason = s
		} else {
			reason = fmt.Sprint(v)
		}
	}

	return score, reason, true
}

// toScore converts a JSON number or numeric string into a clamped integer score.
// Fractions are truncated toward zero.
func toScore(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		f = float64(n)
	default:
		return 0, false
	}
	return clampScore(math.Trunc(f)), true
}

// clampScore pulls a score into [MinScore, MaxScore].
func clampScore(f float64) int {
	if f < schema.MinScore {
		return schema.MinScore
	}
	if f > schema.MaxScore {
		return schema.MaxScore
	}
	return int(f)
}

// parseFailure builds the neutral result for unparseable oracle output.
func parseFailure(raw string) (int, string, bool) {
	prefix := raw
	if runes := []rune(raw); len(runes) > rawPrefixLimit {
		prefix = string(runes[:rawPrefixLimit])
	}
	return schema.FallbackScore, "Unable to parse AI response: " + prefix, false
}
