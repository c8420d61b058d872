// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/aieval/schema"
)

// Oracle is a hosted text-completion capability.
// Implementations return the raw text of the first completion.
type Oracle interface {
	Complete(ctx context.Context, req schema.CompletionRequest) (string, error)
}

// ChangeDownloader fetches the files changed by a pull request into a local folder.
type ChangeDownloader interface {
	// Download writes added and edited files below destDir and returns their relative paths.
	Download(ctx context.Context, prURL string, destDir string) ([]string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetScoreStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking scan runs and their file evaluations.
type HistoryStore interface {
	// BeginRun creates a new scan run and returns its unique ID
	BeginRun(scanRoot string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the scan run with completion data
	EndRun(runID int64, endTime time.Time, overall schema.OverallEvaluation) error

	// RecordFileEvaluation stores one file's evaluation for a run
	RecordFileEvaluation(runID int64, evaluatedAt time.Time, eval schema.FileEvaluation) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllScanRuns retrieves all scan runs for export
	GetAllScanRuns() ([]schema.ScanRunRecord, error)

	// GetAllFileEvaluations retrieves all file evaluations for export
	GetAllFileEvaluations() ([]schema.FileEvaluationRecord, error)

	// Close closes the underlying connection
	Close() error
}
