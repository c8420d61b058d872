package schema

import "time"

// ScanRunRecord represents a row from the aieval_scan_runs table.
type ScanRunRecord struct {
	RunID         int64
	ScanRoot      string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalFiles    int32
	OverallScore  *int32
	OverallReason *string
	ConfigParams  *string
}

// FileEvaluationRecord represents a row from the aieval_file_evaluations table.
type FileEvaluationRecord struct {
	RunID          int64
	FilePath       string
	EvaluationTime time.Time
	FileType       string
	Score          int32
	Reason         string
	Label          string
}
