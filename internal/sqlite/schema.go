package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable records the applied schema version.
const migrationsTable = "schema_migrations"

// repairLegacySales brings a sales table written by earlier releases up to
// the current column set before the versioned migrations run. Those
// releases created sales without payment_method; the column is added in
// place so historical sales are kept.
func repairLegacySales(db *sql.DB, logger *slog.Logger) error {
	var exists int
	err := db.QueryRow(`SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'sales'`).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking sales table: %w", err)
	}

	// SQLite has no ADD COLUMN IF NOT EXISTS, so check first.
	err = db.QueryRow(`SELECT 1 FROM pragma_table_info('sales') WHERE name = 'payment_method'`).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking payment_method column: %w", err)
	}

	if _, err := db.Exec(`ALTER TABLE sales ADD COLUMN payment_method TEXT`); err != nil {
		return fmt.Errorf("adding payment_method column to sales: %w", err)
	}
	logger.Warn("repaired legacy schema", "table", "sales", "column", "payment_method")
	return nil
}

// migrateSchema applies every pending embedded migration and returns the
// resulting schema version.
//
// The migrate instance is left open: closing it would close the database
// handle the store keeps using.
func migrateSchema(db *sql.DB, logger *slog.Logger) (uint, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("opening migrations: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("creating migrator: %w", err)
	}

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	if version != before {
		logger.Info("applied migrations", "from", before, "to", version)
	}
	return version, nil
}
