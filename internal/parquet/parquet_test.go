package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/aieval/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file written with schema T.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestScanRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(ScanRun))
	require.NotNil(t, s)

	for _, colName := range []string{
		"run_id", "scan_root", "start_time", "end_time", "run_duration_ms",
		"total_files", "overall_score", "overall_reason", "config_params",
	} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestFileEvaluationStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(FileEvaluation))
	require.NotNil(t, s)

	for _, colName := range []string{
		"run_id", "file_path", "evaluation_time", "file_type", "score", "reason", "label",
	} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteScanRunsParquet_NullableFields(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "scan_runs.parquet")

	now := time.Now()
	endTime := now.Add(90 * time.Second)
	duration := int32(90000)
	score := int32(7)
	reason := "Most files (4/5) show strong indicators of AI generation"
	config := `{"model":"gpt-4"}`

	data := []ScanRun{
		{
			RunID:         1,
			ScanRoot:      "/work/project",
			StartTime:     now,
			EndTime:       &endTime,
			RunDurationMs: &duration,
			TotalFiles:    5,
			OverallScore:  &score,
			OverallReason: &reason,
			ConfigParams:  &config,
		},
		{RunID: 2, ScanRoot: "/work/other", StartTime: now},
	}

	require.NoError(t, WriteScanRunsParquet(data, outputPath))

	rows := readAll[ScanRun](t, outputPath)
	require.Len(t, rows, 2)

	assert.Equal(t, "/work/project", rows[0].ScanRoot)
	require.NotNil(t, rows[0].OverallScore)
	assert.Equal(t, int32(7), *rows[0].OverallScore)
	require.NotNil(t, rows[0].OverallReason)
	assert.Equal(t, reason, *rows[0].OverallReason)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, endTime, *rows[0].EndTime, time.Microsecond)

	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].OverallScore)
	assert.Nil(t, rows[1].OverallReason)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteFileEvaluationsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "evaluations.parquet")
	now := time.Now()

	evals := []schema.FileEvaluation{
		{RelativePath: "src/app.py", Score: 9, Reason: "Uniform docstrings", FileType: ".py"},
		{RelativePath: "main.go", Score: 2, Reason: "Idiosyncratic naming", FileType: ".go"},
	}
	require.NoError(t, WriteFileEvaluationsParquet(ConvertEvaluations(evals, now), outputPath))

	rows := readAll[FileEvaluation](t, outputPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "src/app.py", rows[0].FilePath)
	assert.Equal(t, int32(9), rows[0].Score)
	assert.Equal(t, schema.LikelyAILabel, rows[0].Label)
	assert.Equal(t, ".go", rows[1].FileType)
	assert.Equal(t, schema.LikelyHumanLabel, rows[1].Label)
	assert.Equal(t, int64(0), rows[1].RunID)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, WriteFileEvaluationsParquet([]FileEvaluation{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteScanRunsParquet([]ScanRun{{RunID: 1}}, "/nonexistent/directory/output.parquet")
	assert.Error(t, err)
}

func TestConvertRecords(t *testing.T) {
	now := time.Now()
	score := int32(4)

	runs := ConvertScanRunRecords([]schema.ScanRunRecord{
		{RunID: 3, ScanRoot: "/repo", StartTime: now, TotalFiles: 12, OverallScore: &score},
	})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(3), runs[0].RunID)
	assert.Equal(t, int32(12), runs[0].TotalFiles)
	assert.Equal(t, &score, runs[0].OverallScore)

	files := ConvertFileEvaluationRecords([]schema.FileEvaluationRecord{
		{RunID: 3, FilePath: "a.ts", EvaluationTime: now, FileType: ".ts", Score: 5, Reason: "Mixed", Label: schema.UncertainLabel},
	})
	require.Len(t, files, 1)
	assert.Equal(t, "a.ts", files[0].FilePath)
	assert.Equal(t, schema.UncertainLabel, files[0].Label)
}
