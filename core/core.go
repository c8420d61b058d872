// Package core has core logic for file selection, scoring and aggregation.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/outwriter"
	"github.com/huangsam/aieval/schema"
)

// ExecuteScan evaluates every code file below cfg.ScanRoot and prints the report.
// It serves as the main entry point for the 'scan' command.
func ExecuteScan(ctx context.Context, cfg *contract.Config, o contract.Oracle, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := GetScanResults(ctx, cfg, o, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteEvaluation(result, cfg, duration)
}

// GetScanResults runs selection, bounded evaluation and aggregation for cfg.ScanRoot.
// Headers and progress go to stderr unless the context suppresses them.
func GetScanResults(ctx context.Context, cfg *contract.Config, o contract.Oracle, mgr contract.CacheManager) (schema.OverallEvaluation, error) {
	quiet := shouldSuppressHeader(ctx)
	if !quiet {
		outwriter.LogScanHeader(cfg)
	}

	// --- 1. File Selection ---
	files, err := SelectFiles(cfg.ScanRoot, cfg.ExcludeExtensions, cfg.ExcludeFolders)
	if err != nil {
		return schema.OverallEvaluation{}, err
	}
	if len(files) == 0 {
		if !quiet {
			outwriter.LogNoFiles()
		}
		return AggregateEvaluations(nil), nil
	}
	if !quiet {
		outwriter.LogFileCount(len(files))
	}

	// --- 2. Begin Run Tracking (if configured) ---
	history := historyStore(mgr)
	ctx = beginRunTracking(ctx, cfg, history)

	// --- 3. Bounded Evaluation ---
	scorer := NewScoreClient(o, cfg, scoreStore(mgr))
	var progress *outwriter.Progress
	if !quiet {
		progress = outwriter.NewProgress(len(files))
	}
	evals := EvaluateFiles(ctx, files, cfg.Concurrency, scorer, func(eval schema.FileEvaluation, done, _ int) {
		recordFileEvaluation(ctx, history, eval)
		if progress != nil {
			progress.Update(done)
		}
	})
	if progress != nil {
		progress.Done()
	}

	// --- 4. Aggregation ---
	overall := AggregateEvaluations(evals)

	// --- 5. End Run Tracking ---
	endRunTracking(ctx, history, overall)

	return overall, nil
}

// EvaluateSingleFile scores one file below cfg.ScanRoot without a bounded run.
func EvaluateSingleFile(ctx context.Context, cfg *contract.Config, o contract.Oracle, mgr contract.CacheManager, path string) (schema.FileEvaluation, error) {
	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(cfg.ScanRoot, path)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return schema.FileEvaluation{}, err
	}
	if !info.Mode().IsRegular() {
		return schema.FileEvaluation{}, fmt.Errorf("%s is not a regular file", path)
	}
	return NewScoreClient(o, cfg, scoreStore(mgr)).Score(ctx, absPath), nil
}

// ExecuteChat sends one prompt to the configured chat agent and prints the reply.
func ExecuteChat(ctx context.Context, cfg *contract.Config, o contract.Oracle, prompt string) error {
	agent := schema.Agent{Name: cfg.ChatName, Instructions: cfg.ChatInstructions}
	reply, err := RunChat(ctx, o, cfg.Model, agent, prompt)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteChat(reply, cfg)
}

// ExecutePanel runs a panel discussion with the configured agents and prints the conversation.
func ExecutePanel(ctx context.Context, cfg *contract.Config, o contract.Oracle, prompt string) error {
	result, err := RunPanel(ctx, o, cfg.Model, cfg.PanelAgents, prompt)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WritePanel(result, cfg)
}

// PullRequestOptions controls what happens after a pull request is downloaded.
type PullRequestOptions struct {
	Evaluate bool // Scan the downloaded files
	Keep     bool // Keep the download folder after an evaluation
}

// ExecutePullRequest downloads the added and edited files of a pull request into
// a temporary folder, and optionally evaluates that folder like a scan.
func ExecutePullRequest(ctx context.Context, cfg *contract.Config, o contract.Oracle, mgr contract.CacheManager, dl contract.ChangeDownloader, prURL string, opts PullRequestOptions) error {
	if dl == nil {
		return errors.New("no pull request downloader configured")
	}

	dir, err := os.MkdirTemp("", "aieval-pr-")
	if err != nil {
		return fmt.Errorf("cannot create download folder: %w", err)
	}

	files, err := dl.Download(ctx, prURL, dir)
	if err != nil {
		_ = os.RemoveAll(dir)
		return err
	}
	outwriter.LogDownload(dir, files)

	if !opts.Evaluate {
		return nil
	}
	if !opts.Keep {
		defer func() { _ = os.RemoveAll(dir) }()
	}
	return ExecuteScan(ctx, cfg.CloneWithScanRoot(dir), o, mgr)
}

// scoreStore returns the score cache, or nil when caching is off.
func scoreStore(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetScoreStore()
}

// historyStore returns the history store, or nil when tracking is off.
func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// beginRunTracking records the start of a scan and stores the run ID in the context.
func beginRunTracking(ctx context.Context, cfg *contract.Config, history contract.HistoryStore) context.Context {
	if history == nil {
		return ctx
	}
	configParams := map[string]any{
		"provider":    string(cfg.Provider),
		"model":       cfg.Model,
		"concurrency": cfg.Concurrency,
		"exclude_ext": cfg.ExcludeExtensions,
		"exclude_dir": cfg.ExcludeFolders,
	}
	runID, err := history.BeginRun(cfg.ScanRoot, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// recordFileEvaluation stores one file's evaluation for the current run.
func recordFileEvaluation(ctx context.Context, history contract.HistoryStore, eval schema.FileEvaluation) {
	runID, ok := getRunID(ctx)
	if history == nil || !ok {
		return
	}
	if err := history.RecordFileEvaluation(runID, time.Now(), eval); err != nil {
		logTrackingError("RecordFileEvaluation", eval.RelativePath, err)
	}
}

// endRunTracking finalizes the current run with the overall verdict.
func endRunTracking(ctx context.Context, history contract.HistoryStore, overall schema.OverallEvaluation) {
	runID, ok := getRunID(ctx)
	if history == nil || !ok {
		return
	}
	if err := history.EndRun(runID, time.Now(), overall); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

// logTrackingError logs database tracking errors to stderr without disrupting the scan.
func logTrackingError(operation, path string, err error) {
	contract.LogWarn(fmt.Sprintf("History tracking failed for %s on %s", operation, path), err)
}
