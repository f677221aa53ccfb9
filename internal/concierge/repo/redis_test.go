package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewRedisStateStore(rdb, time.Hour)

	if rec, err := s.GetLatest(ctx, "user-1"); err != nil || rec != nil {
		t.Fatalf("GetLatest on empty = %+v, %v", rec, err)
	}
	if err := s.Put(ctx, "user-1", "Manhattan", "italian", "a@b.com"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rec, err := s.GetLatest(ctx, "user-1")
	if err != nil || rec == nil {
		t.Fatalf("GetLatest = %+v, %v", rec, err)
	}
	if rec.UserID != "user-1" || rec.Cuisine != "italian" || rec.Location != "Manhattan" || rec.Email != "a@b.com" {
		t.Fatalf("record = %+v", rec)
	}
	if ttl := mr.TTL("concierge:user_state:user-1"); ttl != time.Hour {
		t.Fatalf("TTL = %v, want 1h", ttl)
	}
}

func TestRedisStateStoreExpiredRecordReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewRedisStateStore(rdb, time.Minute)
	if err := s.Put(ctx, "user-3", "NYC", "thai", "x@y.com"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if rec, err := s.GetLatest(ctx, "user-3"); err != nil || rec != nil {
		t.Fatalf("GetLatest after expiry = %+v, %v", rec, err)
	}
}

func TestRedisStateStoreNoTTL(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewRedisStateStore(rdb, 0)
	if err := s.Put(ctx, "user-2", "NYC", "mexican", "x@y.com"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL("concierge:user_state:user-2"); ttl != 0 {
		t.Fatalf("TTL = %v, want none", ttl)
	}
}

func TestRedisStateStoreBackendDown(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	s := NewRedisStateStore(rdb, 0)
	mr.Close()

	if _, err := s.GetLatest(ctx, "user-1"); err == nil {
		t.Fatalf("GetLatest succeeded with redis down")
	}
	if err := s.Put(ctx, "user-1", "NYC", "mexican", "x@y.com"); err == nil {
		t.Fatalf("Put succeeded with redis down")
	}
}

func TestRedisQueueReceiveAckCycle(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	q := NewRedisQueue(rdb, "test", 30*time.Second)

	if d, err := q.Receive(ctx); err != nil || d != nil {
		t.Fatalf("Receive on empty = %+v, %v", d, err)
	}

	first, err := q.Enqueue(ctx, request(t, "italian"))
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	second, _ := q.Enqueue(ctx, request(t, "mexican"))

	d, err := q.Receive(ctx)
	if err != nil || d == nil {
		t.Fatalf("Receive = %+v, %v", d, err)
	}
	if d.ID != first || d.ReceiveCount != 1 {
		t.Fatalf("delivery = %+v, want id %s", d, first)
	}

	pending, inflight, err := q.Depth(ctx)
	if err != nil || pending != 1 || inflight != 1 {
		t.Fatalf("Depth = %d,%d,%v", pending, inflight, err)
	}

	if err := q.Acknowledge(ctx, d.AckToken); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	pending, inflight, _ = q.Depth(ctx)
	if pending != 1 || inflight != 0 {
		t.Fatalf("after ack Depth = %d,%d", pending, inflight)
	}

	d2, _ := q.Receive(ctx)
	if d2 == nil || d2.ID != second {
		t.Fatalf("second delivery = %+v", d2)
	}
}

func TestRedisQueueRedeliversUnacknowledged(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	q := NewRedisQueue(rdb, "test", 30*time.Second)
	q.now = clock.Now

	id, _ := q.Enqueue(ctx, request(t, "italian"))
	d, _ := q.Receive(ctx)
	if d == nil || d.ID != id {
		t.Fatalf("first delivery = %+v", d)
	}

	if again, _ := q.Receive(ctx); again != nil {
		t.Fatalf("message visible during timeout: %+v", again)
	}

	clock.Advance(31 * time.Second)
	again, err := q.Receive(ctx)
	if err != nil || again == nil {
		t.Fatalf("redelivery = %+v, %v", again, err)
	}
	if again.ID != id || again.ReceiveCount != 2 {
		t.Fatalf("redelivery = %+v", again)
	}

	if err := q.Acknowledge(ctx, again.AckToken); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	clock.Advance(time.Hour)
	if d, _ := q.Receive(ctx); d != nil {
		t.Fatalf("acknowledged message came back: %+v", d)
	}
}

func TestRedisQueueAckAfterReclaimRemovesPending(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	q := NewRedisQueue(rdb, "test", 10*time.Second)
	q.now = clock.Now

	_, _ = q.Enqueue(ctx, request(t, "chinese"))
	d, _ := q.Receive(ctx)

	// a slow worker finishes after the message was made visible again
	clock.Advance(11 * time.Second)
	if _, err := reclaimScript.Run(ctx, rdb, q.keys(), clock.Now().UnixMilli(), reclaimBatch).Int(); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if err := q.Acknowledge(ctx, d.AckToken); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if again, _ := q.Receive(ctx); again != nil {
		t.Fatalf("late-acknowledged message redelivered: %+v", again)
	}
}

func TestRedisQueuePreservesWireBody(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	q := NewRedisQueue(rdb, "wire", time.Minute)
	req := request(t, "italian")
	_, _ = q.Enqueue(ctx, req)

	d, _ := q.Receive(ctx)
	want, _ := req.Marshal()
	if string(d.Body) != string(want) {
		t.Fatalf("body = %s, want %s", d.Body, want)
	}
}
