package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/database"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

type PostgresStore struct {
	db  *database.DB
	ttl time.Duration
}

func NewPostgresStore(db *database.DB, ttl time.Duration) *PostgresStore {
	return &PostgresStore{db: db, ttl: ttl}
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		rec   Record
		flash string
	)

	err := p.db.Pool.QueryRow(ctx, `
		SELECT id::text, access_token, refresh_token, role, username, flash, created_at, updated_at
		FROM sessions
		WHERE id = $1 AND expires_at > NOW()
	`, id).Scan(&rec.ID, &rec.AccessToken, &rec.RefreshToken, &rec.Role, &rec.Username, &flash, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	if flash != "" {
		var f Flash
		if err := json.Unmarshal([]byte(flash), &f); err == nil {
			rec.Flash = &f
		}
	}

	return FromRecord(rec), nil
}

func (p *PostgresStore) Save(ctx context.Context, s *Session) error {
	rec := s.Record()

	flash := ""
	if rec.Flash != nil {
		data, err := json.Marshal(rec.Flash)
		if err != nil {
			return fmt.Errorf("encode flash: %w", err)
		}
		flash = string(data)
	}

	_, err := p.db.Pool.Exec(ctx, `
		INSERT INTO sessions (id, access_token, refresh_token, role, username, flash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			role = EXCLUDED.role,
			username = EXCLUDED.username,
			flash = EXCLUDED.flash,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
	`, rec.ID, rec.AccessToken, rec.RefreshToken, rec.Role, rec.Username, flash, rec.CreatedAt, rec.UpdatedAt, time.Now().Add(p.ttl))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry and returns how many were dropped.
func (p *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := p.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
