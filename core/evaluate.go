package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
	"golang.org/x/sync/semaphore"
)

// Scorer produces exactly one evaluation per file.
// Fail builds the fallback evaluation when Score cannot run.
type Scorer interface {
	Score(ctx context.Context, path string) schema.FileEvaluation
	Fail(path string, err error) schema.FileEvaluation
}

// ProgressFunc is called once per completed file, from a single goroutine.
type ProgressFunc func(eval schema.FileEvaluation, done, total int)

// EvaluateFiles scores every file with at most limit Score calls in flight.
// One goroutine is started per file up front and waits at a weighted semaphore.
// Results are collected in completion order by the calling goroutine.
// If ctx is cancelled while a file waits at the gate, that file gets a fallback evaluation.
func EvaluateFiles(ctx context.Context, files []string, limit int, scorer Scorer, onProgress ProgressFunc) []schema.FileEvaluation {
	if len(files) == 0 {
		return []schema.FileEvaluation{}
	}
	if limit <= 0 {
		limit = contract.DefaultConcurrency
	}

	gate := semaphore.NewWeighted(int64(limit))
	resultCh := make(chan schema.FileEvaluation, len(files))
	var wg sync.WaitGroup

	for _, f := range files {
		wg.Go(func() {
			resultCh <- evaluateGated(ctx, gate, scorer, f)
		})
	}

	// Close the channel once every task has reported
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]schema.FileEvaluation, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
		if onProgress != nil {
			onProgress(r, len(results), len(files))
		}
	}

	return results
}

// evaluateGated runs one Score call inside the admission gate.
// The gate is released on every exit path, including a panicking scorer.
func evaluateGated(ctx context.Context, gate *semaphore.Weighted, scorer Scorer, path string) (eval schema.FileEvaluation) {
	if err := gate.Acquire(ctx, 1); err != nil {
		return scorer.Fail(path, err)
	}
	defer gate.Release(1)

	defer func() {
		if r := recover(); r != nil {
			eval = scorer.Fail(path, fmt.Errorf("panic: %v", r))
		}
	}()

	return scorer.Score(ctx, path)
}
