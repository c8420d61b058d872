package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/schema"
)

// Table names for scan history.
const (
	scanRunsTable        = "aieval_scan_runs"
	fileEvaluationsTable = "aieval_file_evaluations"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// The schema is brought to the latest migration before the store is returned.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	if _, err := migrateHistory(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to prepare history tables: %w", err)
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// BeginRun creates a new scan run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(scanRoot string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(scanRunsTable, hs.backend)
	args := []any{scanRoot, formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (scan_root, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (scan_root, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan run: %w", err)
	}
	return runID, nil
}

// EndRun updates the scan run with the overall verdict and duration.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, overall schema.OverallEvaluation) error {
	if hs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(scanRunsTable, hs.backend)

	start := timeScanner{backend: hs.backend}
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(selectQuery, runID).Scan(start.target()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}
	durationMs := endTime.Sub(*startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_files = %s, overall_score = %s, overall_reason = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3),
		placeholder(hs.backend, 4), placeholder(hs.backend, 5), placeholder(hs.backend, 6))
	_, err = hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, overall.TotalFiles, overall.Score, overall.Reason, runID)
	if err != nil {
		return fmt.Errorf("failed to update scan run: %w", err)
	}
	return nil
}

// RecordFileEvaluation stores one file's evaluation for a run.
func (hs *HistoryStoreImpl) RecordFileEvaluation(runID int64, evaluatedAt time.Time, eval schema.FileEvaluation) error {
	if hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, file_path, evaluation_time, file_type, score, reason, label) VALUES (%s)`,
		quoteTableName(fileEvaluationsTable, hs.backend), placeholders(hs.backend, 7))
	_, err := hs.db.Exec(query,
		runID, eval.RelativePath, formatTime(evaluatedAt, hs.backend), eval.FileType,
		eval.Score, eval.Reason, schema.GetPlainLabel(eval.Score))
	if err != nil {
		return fmt.Errorf("failed to insert file evaluation: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(scanRunsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.target()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		if lastTime != nil {
			status.LastRunTime = *lastTime
		}

		oldest := timeScanner{backend: hs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := hs.db.QueryRow(oldestQuery).Scan(oldest.target()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}

		filesQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_files), 0) FROM %s", runsTable)
		if err := hs.db.QueryRow(filesQuery).Scan(&status.TotalFilesEvaluated); err != nil {
			return status, fmt.Errorf("failed to get total files evaluated: %w", err)
		}
	}

	for _, table := range []string{scanRunsTable, fileEvaluationsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllScanRuns retrieves all scan runs from the store.
func (hs *HistoryStoreImpl) GetAllScanRuns() ([]schema.ScanRunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, scan_root, start_time, end_time, run_duration_ms, total_files,
		overall_score, overall_reason, config_params FROM %s ORDER BY run_id`, quoteTableName(scanRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScanRunRecord
	for rows.Next() {
		var record schema.ScanRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.ScanRoot, start.target(), end.target(), &record.RunDurationMs,
			&record.TotalFiles, &record.OverallScore, &record.OverallReason, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}
	return results, nil
}

// GetAllFileEvaluations retrieves all file evaluations from the store.
func (hs *HistoryStoreImpl) GetAllFileEvaluations() ([]schema.FileEvaluationRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, evaluation_time, file_type, score, reason, label
		FROM %s ORDER BY run_id, file_path`, quoteTableName(fileEvaluationsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query file evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FileEvaluationRecord
	for rows.Next() {
		var record schema.FileEvaluationRecord
		evaluated := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.FilePath, evaluated.target(), &record.FileType,
			&record.Score, &record.Reason, &record.Label); err != nil {
			return nil, fmt.Errorf("failed to scan file evaluation: %w", err)
		}
		evaluatedAt, err := evaluated.value()
		if err != nil {
			return nil, err
		}
		if evaluatedAt != nil {
			record.EvaluationTime = *evaluatedAt
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file evaluations: %w", err)
	}
	return results, nil
}
