package repo

import (
	"context"
	"sync"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	"github.com/rs/xid"
)

type memMessage struct {
	id             string
	body           []byte
	enqueuedAt     time.Time
	invisibleUntil time.Time
	receives       int
}

// MemoryQueue is an in-process RequestQueue with the same visibility
// semantics as RedisQueue. The ack token is the message id.
type MemoryQueue struct {
	mu         sync.Mutex
	visibility time.Duration
	now        func() time.Time
	msgs       []*memMessage
	enqueued   int
}

func NewMemoryQueue(visibility time.Duration) *MemoryQueue {
	if visibility <= 0 {
		visibility = 30 * time.Second
	}
	return &MemoryQueue{visibility: visibility, now: time.Now}
}

// WithClock replaces the time source; used by tests to expire visibility.
func (q *MemoryQueue) WithClock(now func() time.Time) *MemoryQueue {
	q.now = now
	return q
}

func (q *MemoryQueue) Enqueue(_ context.Context, req model.RecommendationRequest) (string, error) {
	body, err := req.Marshal()
	if err != nil {
		return "", err
	}
	return q.EnqueueRaw(body), nil
}

// EnqueueRaw appends an arbitrary body, bypassing request validation.
func (q *MemoryQueue) EnqueueRaw(body []byte) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := xid.New().String()
	q.msgs = append(q.msgs, &memMessage{id: id, body: body, enqueuedAt: q.now().UTC()})
	q.enqueued++
	return id
}

func (q *MemoryQueue) Receive(_ context.Context) (*model.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	for _, m := range q.msgs {
		if now.Before(m.invisibleUntil) {
			continue
		}
		m.invisibleUntil = now.Add(q.visibility)
		m.receives++
		return &model.Delivery{
			ID:           m.id,
			Body:         append([]byte(nil), m.body...),
			AckToken:     m.id,
			ReceiveCount: m.receives,
			EnqueuedAt:   m.enqueuedAt,
		}, nil
	}
	return nil, nil
}

func (q *MemoryQueue) Acknowledge(_ context.Context, ackToken string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, m := range q.msgs {
		if m.id == ackToken {
			q.msgs = append(q.msgs[:i], q.msgs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len returns the number of unacknowledged messages, visible or not.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// Enqueued returns how many messages were ever enqueued.
func (q *MemoryQueue) Enqueued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueued
}

var _ model.RequestQueue = (*MemoryQueue)(nil)
