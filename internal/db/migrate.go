package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	newIOFSSource           = iofs.New
	newSQLiteWithInstance   = sqlite.WithInstance
	newMigratorWithInstance = migrate.NewWithInstance
	migrateUp               = func(m *migrate.Migrate) error { return m.Up() }
)

// RunMigrations applies pending migrations over conn and leaves conn open.
func RunMigrations(conn *sql.DB) error {
	src, err := newIOFSSource(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations fs: %w", err)
	}
	defer src.Close()

	driver, err := newSQLiteWithInstance(conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	migrator, err := newMigratorWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// Closing the migrator closes conn.

	if err := migrateUp(migrator); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version, or 0 before init.
func SchemaVersion(conn *sql.DB) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := conn.QueryRow(`SELECT version, dirty FROM schema_migrations LIMIT 1;`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}
