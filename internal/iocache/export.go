package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/parquet"
)

// ExecuteHistoryExport writes all scan runs and file evaluations to Parquet files
// named after outputFile.
func ExecuteHistoryExport(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is disabled. Set --history-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no scan history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total scan runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[fileEvaluationsTable])

	runs, err := store.GetAllScanRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve scan runs: %w", err)
	}
	evals, err := store.GetAllFileEvaluations()
	if err != nil {
		return fmt.Errorf("failed to retrieve file evaluations: %w", err)
	}

	parquetRuns := parquet.ConvertScanRunRecords(runs)
	runsFile := outputFile + ".scan_runs.parquet"
	if err := parquet.WriteScanRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write scan runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d scan runs to: %s\n", len(parquetRuns), runsFile)

	parquetEvals := parquet.ConvertFileEvaluationRecords(evals)
	evalsFile := outputFile + ".file_evaluations.parquet"
	if err := parquet.WriteFileEvaluationsParquet(parquetEvals, evalsFile); err != nil {
		return fmt.Errorf("failed to write file evaluations: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file evaluation records to: %s\n", len(parquetEvals), evalsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	return nil
}
