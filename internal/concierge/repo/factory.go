package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverQdrant   = "qdrant"
	DriverSupabase = "supabase"
)

// Backends carries the shared client handles. Only the ones a selected
// driver needs have to be set.
type Backends struct {
	Redis            redis.Cmdable
	Postgres         *pgxpool.Pool
	Qdrant           *qdrant.Client
	QdrantCollection string
	SupabaseURL      string
	SupabaseAPIKey   string
	SupabaseTable    string
}

// NormalizeDriver folds case and surrounding space of a driver name.
func NormalizeDriver(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

func NewStateStore(ctx context.Context, driver string, b Backends, ttl time.Duration) (model.StateStore, error) {
	switch NormalizeDriver(driver) {
	case DriverMemory:
		return NewMemoryStateStore(), nil
	case DriverRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("state store %q: redis client not configured", driver)
		}
		return NewRedisStateStore(b.Redis, ttl), nil
	case DriverPostgres:
		if b.Postgres == nil {
			return nil, fmt.Errorf("state store %q: postgres pool not configured", driver)
		}
		return NewPostgresStateStore(ctx, b.Postgres)
	default:
		return nil, fmt.Errorf("unknown state store driver %q", driver)
	}
}

func NewRequestQueue(driver string, b Backends, name string, visibility time.Duration) (model.RequestQueue, error) {
	switch NormalizeDriver(driver) {
	case DriverMemory:
		return NewMemoryQueue(visibility), nil
	case DriverRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("queue %q: redis client not configured", driver)
		}
		return NewRedisQueue(b.Redis, name, visibility), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", driver)
	}
}

// NewCatalog builds the index and detail store. Memory drivers are seeded
// with the development catalog and share it.
func NewCatalog(ctx context.Context, indexDriver, detailDriver string, b Backends) (model.RestaurantIndex, model.RestaurantDetailStore, error) {
	var (
		memIndex   *MemoryIndex
		memDetails *MemoryDetailStore
		index      model.RestaurantIndex
		details    model.RestaurantDetailStore
	)

	switch NormalizeDriver(indexDriver) {
	case DriverMemory:
		memIndex = NewMemoryIndex()
		index = memIndex
	case DriverQdrant:
		if b.Qdrant == nil {
			return nil, nil, fmt.Errorf("index %q: qdrant client not configured", indexDriver)
		}
		index = NewQdrantIndex(b.Qdrant, b.QdrantCollection)
	default:
		return nil, nil, fmt.Errorf("unknown index driver %q", indexDriver)
	}

	switch NormalizeDriver(detailDriver) {
	case DriverMemory:
		memDetails = NewMemoryDetailStore()
		details = memDetails
	case DriverPostgres:
		if b.Postgres == nil {
			return nil, nil, fmt.Errorf("detail store %q: postgres pool not configured", detailDriver)
		}
		pg, err := NewPostgresDetailStore(ctx, b.Postgres)
		if err != nil {
			return nil, nil, err
		}
		details = pg
	case DriverSupabase:
		sb, err := NewSupabaseDetailStore(b.SupabaseURL, b.SupabaseAPIKey, b.SupabaseTable)
		if err != nil {
			return nil, nil, err
		}
		details = sb
	default:
		return nil, nil, fmt.Errorf("unknown detail store driver %q", detailDriver)
	}

	if memIndex != nil || memDetails != nil {
		SeedCatalog(memIndex, memDetails)
	}
	return index, details, nil
}
