package repo

import (
	"context"
	"fmt"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadRestaurantID = "restaurant_id"
	payloadCuisineType  = "cuisine_type"
)

// QdrantIndex selects restaurants by an exact keyword match on the
// cuisine_type payload field. No vector scoring is involved.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantIndex(client *qdrant.Client, collection string) *QdrantIndex {
	return &QdrantIndex{client: client, collection: collection}
}

func (i *QdrantIndex) Search(ctx context.Context, cuisine string, limit int) ([]model.RestaurantSummary, error) {
	cuisine = model.NormalizeCuisine(cuisine)
	if cuisine == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 1
	}

	points, err := i.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: i.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadCuisineType, cuisine),
			},
		},
		Limit:       qdrant.PtrOf(uint32(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		logx.Error().Err(err).Str("collection", i.collection).Str("cuisine", cuisine).Msg("restaurant index query failed")
		return nil, errx.WrapQdrant(err)
	}

	out := make([]model.RestaurantSummary, 0, len(points))
	for _, p := range points {
		s := model.RestaurantSummary{CuisineType: cuisine}
		if v, ok := p.GetPayload()[payloadRestaurantID]; ok {
			s.ID = v.GetStringValue()
		}
		if s.ID == "" && p.GetId() != nil {
			// fall back to the point id when the payload lacks restaurant_id
			if u := p.GetId().GetUuid(); u != "" {
				s.ID = u
			} else {
				s.ID = fmt.Sprintf("%d", p.GetId().GetNum())
			}
		}
		if v, ok := p.GetPayload()[payloadCuisineType]; ok && v.GetStringValue() != "" {
			s.CuisineType = v.GetStringValue()
		}
		out = append(out, s)
	}
	return out, nil
}

func (i *QdrantIndex) Close() error {
	return i.client.Close()
}

var _ model.RestaurantIndex = (*QdrantIndex)(nil)
