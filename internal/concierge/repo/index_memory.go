package repo

import (
	"context"
	"sync"

	"github.com/dining-concierge/server/internal/concierge/model"
)

// MemoryIndex keeps summaries grouped by normalized cuisine, in insertion order.
type MemoryIndex struct {
	mu        sync.RWMutex
	byCuisine map[string][]model.RestaurantSummary
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{byCuisine: make(map[string][]model.RestaurantSummary)}
}

func (i *MemoryIndex) Add(s model.RestaurantSummary) {
	s.CuisineType = model.NormalizeCuisine(s.CuisineType)
	i.mu.Lock()
	defer i.mu.Unlock()
	i.byCuisine[s.CuisineType] = append(i.byCuisine[s.CuisineType], s)
}

func (i *MemoryIndex) Search(_ context.Context, cuisine string, limit int) ([]model.RestaurantSummary, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	matches := i.byCuisine[model.NormalizeCuisine(cuisine)]
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	out := make([]model.RestaurantSummary, limit)
	copy(out, matches[:limit])
	return out, nil
}

var _ model.RestaurantIndex = (*MemoryIndex)(nil)
