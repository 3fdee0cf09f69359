package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func pgLogger() *slog.Logger {
	return slog.Default().With(
		"module", "postgres",
		"layer", "adapter",
	)
}

// Connect opens the brand catalog database through GORM and verifies the
// connection before the service starts serving. The pool is sized for a
// read-mostly workload: the only traffic here is bulk brand lookups.
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open brand database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("brand database pool: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(int(maxConns))
		sqlDB.SetMaxIdleConns(int(maxConns) / 2)
	}
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping brand database: %w", err)
	}

	pgLogger().InfoContext(ctx, "brand database connected",
		"operation", "connect",
		"outcome", "success",
		"max_conns", maxConns,
	)
	return db, nil
}

// RunMigrations applies the embedded schema files. Glob order is lexical, so
// numbered filenames run in sequence. The catalog schema is small enough that
// no version table is kept; every statement must be re-runnable.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	paths, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("enumerate migrations: %w", err)
	}

	for _, path := range paths {
		raw, readErr := migrationFS.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", path, readErr)
		}
		if execErr := db.WithContext(ctx).Exec(string(raw)).Error; execErr != nil {
			return fmt.Errorf("apply migration %s: %w", path, execErr)
		}
	}

	pgLogger().InfoContext(ctx, "brand schema up to date",
		"operation", "run_migrations",
		"outcome", "success",
		"migration_count", len(paths),
	)
	return nil
}
