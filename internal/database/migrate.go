package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_sessions.up.sql
var sessionsMigrationSQL string

// EnsureSchema creates the sessions table when it is missing. Safe to call on every start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasTable(ctx, "sessions")
	if err != nil {
		return fmt.Errorf("check sessions table: %w", err)
	}

	if exists {
		return nil
	}

	slog.Info("sessions table missing; applying migration")
	if _, err := db.Pool.Exec(ctx, sessionsMigrationSQL); err != nil {
		return fmt.Errorf("apply sessions migration: %w", err)
	}

	return nil
}

func (db *DB) hasTable(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			  AND table_name = $1
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
