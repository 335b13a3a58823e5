package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable keeps the alumni schema version apart from other apps sharing the database
const migrationsTable = "alumni_schema_migrations"

// ErrDirtySchema a previous migration stopped half way; the schema needs a manual fix
var ErrDirtySchema = errors.New("alumni schema is dirty")

func schemaSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	return src, nil
}

// RunMigrations brings the alumni schema up to the latest embedded version.
// A dirty schema is refused rather than migrated over.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	src, err := schemaSource()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}

	before, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, before)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	after, _, _ := m.Version()
	if after == before {
		logger.Info("alumni schema up to date", zap.Uint("version", after))
	} else {
		logger.Info("alumni schema migrated", zap.Uint("from", before), zap.Uint("to", after))
	}
	return nil
}
