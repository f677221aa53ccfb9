package repo

import (
	"context"
	"sync"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
)

// MemoryStateStore is an in-process StateStore for local runs and tests.
type MemoryStateStore struct {
	mu      sync.RWMutex
	records map[string]model.UserStateRecord
	now     func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{records: make(map[string]model.UserStateRecord), now: time.Now}
}

func (s *MemoryStateStore) GetLatest(_ context.Context, sessionID string) (*model.UserStateRecord, error) {
	if sessionID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStateStore) Put(_ context.Context, sessionID, location, cuisine, email string) error {
	if sessionID == "" {
		return errx.ErrEmptySession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = model.UserStateRecord{
		UserID:      sessionID,
		LastUpdated: s.now().UTC(),
		Location:    location,
		Cuisine:     cuisine,
		Email:       email,
	}
	return nil
}

// Len returns the number of sessions with a stored record.
func (s *MemoryStateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ model.StateStore = (*MemoryStateStore)(nil)
