package repo

import (
	"context"
	"fmt"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDetailStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDetailStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresDetailStore, error) {
	if err := initRestaurantSchema(ctx, pool); err != nil {
		return nil, err
	}
	return &PostgresDetailStore{pool: pool}, nil
}

func initRestaurantSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS restaurants (
			restaurant_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			cuisine_type TEXT NOT NULL DEFAULT '',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			zip_code TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NULL,
			longitude DOUBLE PRECISION NULL,
			inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_restaurants_cuisine ON restaurants (cuisine_type);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init restaurant schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresDetailStore) Get(ctx context.Context, restaurantID string) (*model.RestaurantDetail, error) {
	if restaurantID == "" {
		return nil, nil
	}
	var d model.RestaurantDetail
	err := s.pool.QueryRow(ctx,
		`SELECT restaurant_id, name, address, cuisine_type, rating, review_count, zip_code,
		        latitude, longitude, inserted_at
		 FROM restaurants WHERE restaurant_id=$1`,
		restaurantID,
	).Scan(&d.ID, &d.Name, &d.Address, &d.CuisineType, &d.Rating, &d.ReviewCount, &d.ZipCode,
		&d.Latitude, &d.Longitude, &d.InsertedAt)
	if err = errx.WrapPostgres(err); err != nil {
		if errx.IsNotFound(err) {
			return nil, nil
		}
		logx.Error().Err(err).Str("restaurant_id", restaurantID).Msg("failed to load restaurant detail")
		return nil, err
	}
	return &d, nil
}

var _ model.RestaurantDetailStore = (*PostgresDetailStore)(nil)
