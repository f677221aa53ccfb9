package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
)

// Pending messages live in a list. Receiving moves a message to a processing
// list and records its visibility deadline in a sorted set; Acknowledge
// removes it from both. Messages whose deadline passed are pushed back to the
// head of the pending list on the next Receive.
var (
	receiveScript = redis.NewScript(`
local p = redis.call('RPOP', KEYS[1])
if not p then return false end
redis.call('LPUSH', KEYS[2], p)
redis.call('ZADD', KEYS[3], ARGV[1], p)
return p
`)

	reclaimScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[3], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, p in ipairs(due) do
	redis.call('ZREM', KEYS[3], p)
	redis.call('LREM', KEYS[2], 1, p)
	redis.call('RPUSH', KEYS[1], p)
end
return #due
`)

	ackScript = redis.NewScript(`
local n = redis.call('LREM', KEYS[2], 1, ARGV[1])
redis.call('ZREM', KEYS[3], ARGV[1])
if n == 0 then
	n = redis.call('LREM', KEYS[1], 1, ARGV[1])
end
return n
`)
)

const reclaimBatch = 100

type queueEnvelope struct {
	ID         string          `json:"id"`
	Body       json.RawMessage `json:"body"`
	Source     string          `json:"source"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

type RedisQueue struct {
	rdb        redis.Cmdable
	name       string
	visibility time.Duration
	now        func() time.Time
}

func NewRedisQueue(rdb redis.Cmdable, name string, visibility time.Duration) *RedisQueue {
	if visibility <= 0 {
		visibility = 30 * time.Second
	}
	return &RedisQueue{rdb: rdb, name: name, visibility: visibility, now: time.Now}
}

func (q *RedisQueue) pendingKey() string { return fmt.Sprintf("concierge:queue:%s", q.name) }
func (q *RedisQueue) processingKey() string {
	return fmt.Sprintf("concierge:queue:%s:processing", q.name)
}
func (q *RedisQueue) inflightKey() string { return fmt.Sprintf("concierge:queue:%s:inflight", q.name) }
func (q *RedisQueue) receivesKey() string { return fmt.Sprintf("concierge:queue:%s:receives", q.name) }

func (q *RedisQueue) keys() []string {
	return []string{q.pendingKey(), q.processingKey(), q.inflightKey()}
}

func (q *RedisQueue) Enqueue(ctx context.Context, req model.RecommendationRequest) (string, error) {
	body, err := req.Marshal()
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	env := queueEnvelope{
		ID:         xid.New().String(),
		Body:       body,
		Source:     string(req.Source),
		EnqueuedAt: q.now().UTC(),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	key := q.pendingKey()
	if err := q.rdb.LPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push request to redis queue")
		return "", errx.WrapRedis(err)
	}
	return env.ID, nil
}

func (q *RedisQueue) Receive(ctx context.Context) (*model.Delivery, error) {
	now := q.now()
	if n, err := reclaimScript.Run(ctx, q.rdb, q.keys(), now.UnixMilli(), reclaimBatch).Int(); err != nil {
		logx.Error().Err(err).Str("queue", q.name).Msg("failed to reclaim expired messages")
		return nil, errx.WrapRedis(err)
	} else if n > 0 {
		logx.Info().Str("queue", q.name).Int("count", n).Msg("made expired messages visible again")
	}

	deadline := now.Add(q.visibility).UnixMilli()
	payload, err := receiveScript.Run(ctx, q.rdb, q.keys(), deadline).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("queue", q.name).Msg("failed to receive from redis queue")
		return nil, errx.WrapRedis(err)
	}

	var env queueEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		// the raw payload is still the ack token, so the worker can decide
		logx.Warn().Err(err).Str("queue", q.name).Msg("queue envelope is not json")
		return &model.Delivery{Body: []byte(payload), AckToken: payload, ReceiveCount: 1}, nil
	}

	count, err := q.rdb.HIncrBy(ctx, q.receivesKey(), env.ID, 1).Result()
	if err != nil {
		logx.Warn().Err(err).Str("message_id", env.ID).Msg("failed to count receive")
		count = 1
	}

	return &model.Delivery{
		ID:           env.ID,
		Body:         env.Body,
		AckToken:     payload,
		ReceiveCount: int(count),
		EnqueuedAt:   env.EnqueuedAt,
	}, nil
}

func (q *RedisQueue) Acknowledge(ctx context.Context, ackToken string) error {
	n, err := ackScript.Run(ctx, q.rdb, q.keys(), ackToken).Int()
	if err != nil {
		logx.Error().Err(err).Str("queue", q.name).Msg("failed to acknowledge message")
		return errx.WrapRedis(err)
	}
	if n == 0 {
		logx.Warn().Str("queue", q.name).Msg("acknowledged message was already gone")
	}

	var env queueEnvelope
	if json.Unmarshal([]byte(ackToken), &env) == nil && env.ID != "" {
		if err := q.rdb.HDel(ctx, q.receivesKey(), env.ID).Err(); err != nil {
			logx.Warn().Err(err).Str("message_id", env.ID).Msg("failed to clear receive count")
		}
	}
	return nil
}

// Depth reports pending and in-flight message counts.
func (q *RedisQueue) Depth(ctx context.Context) (pending, inflight int64, err error) {
	pending, err = q.rdb.LLen(ctx, q.pendingKey()).Result()
	if err != nil {
		return 0, 0, errx.WrapRedis(err)
	}
	inflight, err = q.rdb.LLen(ctx, q.processingKey()).Result()
	if err != nil {
		return 0, 0, errx.WrapRedis(err)
	}
	return pending, inflight, nil
}

var _ model.RequestQueue = (*RedisQueue)(nil)
