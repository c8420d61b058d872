package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/aieval/internal/contract"
	"github.com/huangsam/aieval/internal/iocache"
	"github.com/huangsam/aieval/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackend reads and validates the history backend settings.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend, err := contract.ParseBackend(viper.GetString("history-backend"))
	if err != nil {
		return "", "", fmt.Errorf("invalid --history-backend: %w", err)
	}
	connStr := viper.GetString("history-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
func historySetup() error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// No score caching for history commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetupWrapper loads history settings but does NOT open the store, so migrations can run on a fresh database.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend {
		connStr = sqliteFile(connStr, contract.GetHistoryDBFilePath())
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// requireHistoryStore returns the open history store or exits.
func requireHistoryStore() contract.HistoryStore {
	store := iocache.Manager.GetHistoryStore()
	if store == nil {
		contract.LogFatal("History tracking unavailable", errors.New("set --history-backend to enable it"))
	}
	return store
}

// historyCmd focused on scan history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the scan history and its exports",
	Long: `Manage the record of past scans.

When --history-backend is set, every scan stores:
- Run metadata (folder, model, timestamps, duration)
- The overall score and reason
- The score, label and reason of every file

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show history statistics
  export  - Export history to Parquet
  clear   - Remove all history
  migrate - Manage the history schema version`,
}

// historyClearCmd removes all scan history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded scan history",
	Long: `Delete all scan runs and file evaluations from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

Examples:
  aieval history clear --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseCaching()
		if err := iocache.ClearHistory(cfg.HistoryBackend, sqliteFile(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath()), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows history statistics.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display scan history statistics",
	Long: `Show the backend, the number of recorded runs and the table sizes.

Examples:
  aieval history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := requireHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyExportCmd writes the history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scan history to Parquet",
	Long: `Export all recorded scans to Parquet for use with analytics tools.

Writes two files next to --output-file:
- <output-file>.scan_runs.parquet
- <output-file>.file_evaluations.parquet

Examples:
  aieval history export --history-backend sqlite --output-file aieval-history
  duckdb -c "SELECT * FROM read_parquet('aieval-history.scan_runs.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(os.Stdout, requireHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the scan history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  aieval history migrate --history-backend postgresql --history-db-connect "host=... dbname=..."

  # Rollback to initial state
  aieval history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
