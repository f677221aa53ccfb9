package repo

import (
	"context"
	"fmt"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/supabase-community/supabase-go"
)

// SupabaseDetailStore reads restaurant details through PostgREST.
type SupabaseDetailStore struct {
	client *supabase.Client
	table  string
}

func NewSupabaseDetailStore(url, apiKey, table string) (*SupabaseDetailStore, error) {
	if url == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	if table == "" {
		table = "restaurants"
	}
	client, err := supabase.NewClient(url, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseDetailStore{client: client, table: table}, nil
}

func (s *SupabaseDetailStore) Get(_ context.Context, restaurantID string) (*model.RestaurantDetail, error) {
	if restaurantID == "" {
		return nil, nil
	}
	var rows []model.RestaurantDetail
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("restaurant_id", restaurantID).
		ExecuteTo(&rows)
	if err != nil {
		logx.Error().Err(err).Str("restaurant_id", restaurantID).Msg("failed to load restaurant detail from supabase")
		return nil, errx.WrapSupabase(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

var _ model.RestaurantDetailStore = (*SupabaseDetailStore)(nil)
