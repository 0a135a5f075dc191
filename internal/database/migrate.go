package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func setupGoose() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	goose.SetBaseFS(dir)
	goose.SetLogger(goose.NopLogger())
	return nil
}

// EnsureMigrated applies pending schema migrations for the documents table.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	if err := setupGoose(); err != nil {
		log.Error("db_migration_failed", zap.Error(err))
		return err
	}

	before, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("read schema version: %w", err)
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int64("version", before))

	if err := goose.UpContext(ctx, db, "."); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("run migrations: %w", err)
	}

	after, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	event := "db_migration_success"
	if after == before {
		event = "db_migration_skip"
	}
	log.Info(event,
		zap.String("status", "success"),
		zap.Int64("version", after),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
