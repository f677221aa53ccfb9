package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type RedisStateStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisStateStore(rdb redis.Cmdable, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (r *RedisStateStore) stateKey(sessionID string) string {
	return fmt.Sprintf("concierge:user_state:%s", sessionID)
}

func (r *RedisStateStore) GetLatest(ctx context.Context, sessionID string) (*model.UserStateRecord, error) {
	if sessionID == "" {
		return nil, nil
	}
	key := r.stateKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err = errx.WrapRedis(err); err != nil {
		if errx.IsNotFound(err) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load user state from redis")
		return nil, err
	}

	var rec model.UserStateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal user state")
		return nil, fmt.Errorf("unmarshal user state: %w", err)
	}
	return &rec, nil
}

func (r *RedisStateStore) Put(ctx context.Context, sessionID, location, cuisine, email string) error {
	if sessionID == "" {
		return errx.ErrEmptySession
	}
	rec := model.UserStateRecord{
		UserID:      sessionID,
		LastUpdated: r.now().UTC(),
		Location:    location,
		Cuisine:     cuisine,
		Email:       email,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal user state")
		return fmt.Errorf("marshal user state: %w", err)
	}

	key := r.stateKey(sessionID)
	// ttl 0 keeps the record without expiry
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save user state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.StateStore = (*RedisStateStore)(nil)
