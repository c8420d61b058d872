// Package parquet provides data structures and functions for exporting aieval
// scan data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/aieval/schema"
	"github.com/parquet-go/parquet-go"
)

// ScanRun represents a single folder scan with its overall verdict.
// This struct maps to the aieval_scan_runs database table.
type ScanRun struct {
	// RunID is the unique identifier for this scan run
	RunID int64 `parquet:"run_id,snappy"`

	// ScanRoot is the absolute folder that was scanned
	ScanRoot string `parquet:"scan_root,snappy"`

	// StartTime is when the scan began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the scan completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the scan in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalFiles int32 `parquet:"total_files,snappy"`

	// OverallScore is the aggregated 1-10 score (nullable until the run ends)
	OverallScore *int32 `parquet:"overall_score,optional,snappy"`

	OverallReason *string `parquet:"overall_reason,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileEvaluation represents the verdict for a single file.
// The same row shape is used for history exports and the parquet report.
type FileEvaluation struct {
	// RunID references the parent scan run, zero for a standalone report
	RunID int64 `parquet:"run_id,snappy"`

	// FilePath is the path relative to the scan root
	FilePath string `parquet:"file_path,snappy"`

	EvaluationTime time.Time `parquet:"evaluation_time,snappy"`

	// FileType is the extension including the leading dot
	FileType string `parquet:"file_type,snappy"`

	// Score is the 1-10 likelihood of AI generation
	Score int32 `parquet:"score,snappy"`

	Reason string `parquet:"reason,snappy"`

	// Label is the bucket derived from the score
	Label string `parquet:"label,snappy"`
}

// WriteScanRunsParquet writes a slice of ScanRun structs to a Parquet file.
func WriteScanRunsParquet(data []ScanRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileEvaluationsParquet writes a slice of FileEvaluation structs to a Parquet file.
func WriteFileEvaluationsParquet(data []FileEvaluation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertScanRunRecords converts schema.ScanRunRecord to ScanRun for Parquet export.
func ConvertScanRunRecords(records []schema.ScanRunRecord) []ScanRun {
	result := make([]ScanRun, len(records))
	for i, record := range records {
		result[i] = ScanRun{
			RunID:         record.RunID,
			ScanRoot:      record.ScanRoot,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalFiles:    record.TotalFiles,
			OverallScore:  record.OverallScore,
			OverallReason: record.OverallReason,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFileEvaluationRecords converts schema.FileEvaluationRecord to FileEvaluation for Parquet export.
func ConvertFileEvaluationRecords(records []schema.FileEvaluationRecord) []FileEvaluation {
	result := make([]FileEvaluation, len(records))
	for i, record := range records {
		result[i] = FileEvaluation{
			RunID:          record.RunID,
			FilePath:       record.FilePath,
			EvaluationTime: record.EvaluationTime,
			FileType:       record.FileType,
			Score:          record.Score,
			Reason:         record.Reason,
			Label:          record.Label,
		}
	}
	return result
}

// ConvertEvaluations turns the per-file results of one scan into report rows.
func ConvertEvaluations(evals []schema.FileEvaluation, evaluatedAt time.Time) []FileEvaluation {
	result := make([]FileEvaluation, len(evals))
	for i, e := range evals {
		result[i] = FileEvaluation{
			FilePath:       e.RelativePath,
			EvaluationTime: evaluatedAt,
			FileType:       e.FileType,
			Score:          int32(e.Score),
			Reason:         e.Reason,
			Label:          schema.GetPlainLabel(e.Score),
		}
	}
	return result
}
