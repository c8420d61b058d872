package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/aieval/schema"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// migrationResult describes what a migration run changed.
type migrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// MigrateHistory runs database migrations for the history store.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	res, err := migrateHistory(backend, connStr, targetVersion)
	if err != nil {
		return err
	}
	switch {
	case !res.Changed && targetVersion < 0:
		fmt.Println("No migration needed. Database is already at the latest version.")
	case !res.Changed:
		fmt.Printf("No migration needed. Database is already at version %d\n", targetVersion)
	default:
		fmt.Printf("Successfully migrated from version %d to version %d\n", res.From, res.To)
	}
	return nil
}

// migrateHistory applies embedded migrations on a dedicated connection and closes it.
func migrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int) (migrationResult, error) {
	var res migrationResult
	if backend == schema.NoneBackend {
		return res, fmt.Errorf("migrations are not supported for NoneBackend")
	}

	db, err := openDatabase(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return res, err
	}

	driver, err := migrationDriver(db, backend)
	if err != nil {
		_ = db.Close()
		return res, err
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		_ = db.Close()
		return res, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		_ = db.Close()
		return res, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "aieval", driver)
	if err != nil {
		_ = db.Close()
		return res, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		_, _ = m.Close()
		_ = db.Close()
	}()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return res, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return res, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}
	res.From = currentVersion

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		res.To = currentVersion
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
	}

	res.Changed = true
	newVersion, _, verr := m.Version()
	if verr == nil {
		res.To = newVersion
	}
	return res, nil
}

// migrationDriver wraps an open connection in the golang-migrate driver for the backend.
func migrationDriver(db *sql.DB, backend schema.DatabaseBackend) (database.Driver, error) {
	var driver database.Driver
	var err error
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}
	return driver, nil
}
