package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStateStore keeps one row per session in user_state.
type PostgresStateStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStateStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStateStore, error) {
	if err := initStateSchema(ctx, pool); err != nil {
		return nil, err
	}
	return &PostgresStateStore{pool: pool, now: time.Now}, nil
}

func initStateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_state (
			user_id TEXT PRIMARY KEY,
			last_updated TIMESTAMPTZ NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			cuisine TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init state schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStateStore) GetLatest(ctx context.Context, sessionID string) (*model.UserStateRecord, error) {
	if sessionID == "" {
		return nil, nil
	}
	var rec model.UserStateRecord
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, last_updated, location, cuisine, email
		 FROM user_state WHERE user_id=$1 ORDER BY last_updated DESC LIMIT 1`,
		sessionID,
	).Scan(&rec.UserID, &rec.LastUpdated, &rec.Location, &rec.Cuisine, &rec.Email)
	if err = errx.WrapPostgres(err); err != nil {
		if errx.IsNotFound(err) {
			return nil, nil
		}
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load user state from postgres")
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStateStore) Put(ctx context.Context, sessionID, location, cuisine, email string) error {
	if sessionID == "" {
		return errx.ErrEmptySession
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_state (user_id, last_updated, location, cuisine, email)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
			last_updated=EXCLUDED.last_updated,
			location=EXCLUDED.location,
			cuisine=EXCLUDED.cuisine,
			email=EXCLUDED.email`,
		sessionID, s.now().UTC(), location, cuisine, email,
	)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to save user state to postgres")
		return errx.WrapPostgres(err)
	}
	return nil
}

var _ model.StateStore = (*PostgresStateStore)(nil)
