package repo

import (
	"context"
	"sync"

	"github.com/dining-concierge/server/internal/concierge/model"
)

type MemoryDetailStore struct {
	mu      sync.RWMutex
	details map[string]model.RestaurantDetail
}

func NewMemoryDetailStore() *MemoryDetailStore {
	return &MemoryDetailStore{details: make(map[string]model.RestaurantDetail)}
}

func (s *MemoryDetailStore) Put(d model.RestaurantDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[d.ID] = d
}

func (s *MemoryDetailStore) Get(_ context.Context, restaurantID string) (*model.RestaurantDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.details[restaurantID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

var _ model.RestaurantDetailStore = (*MemoryDetailStore)(nil)
