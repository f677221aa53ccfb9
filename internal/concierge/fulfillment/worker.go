package fulfillment

import (
	"context"
	"time"

	"github.com/dining-concierge/server/internal/concierge/model"
	"github.com/dining-concierge/server/internal/observability"
	logx "github.com/dining-concierge/server/pkg/logger"
)

// Outcome names the result of one poll cycle.
type Outcome string

const (
	OutcomeEmpty          Outcome = "empty"
	OutcomeReceiveFailed  Outcome = "receive_failed"
	OutcomeDropped        Outcome = "dropped"
	OutcomeIndexFailed    Outcome = "index_failed"
	OutcomeNoMatch        Outcome = "no_match"
	OutcomeDetailFailed   Outcome = "detail_failed"
	OutcomeNoDetail       Outcome = "no_detail"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
	OutcomeAckFailed      Outcome = "ack_failed"
	OutcomeDispatched     Outcome = "dispatched"
)

// Acknowledged reports whether the message was removed from the queue.
func (o Outcome) Acknowledged() bool { return o == OutcomeDispatched }

// Received reports whether the cycle got a message to work on.
func (o Outcome) Received() bool { return o != OutcomeEmpty && o != OutcomeReceiveFailed }

// Result describes one poll cycle for callers and tests.
type Result struct {
	Outcome      Outcome
	MessageID    string
	RestaurantID string
	Notification *model.Notification
	Err          error
}

type Worker struct {
	queue        model.RequestQueue
	index        model.RestaurantIndex
	details      model.RestaurantDetailStore
	mailer       model.Mailer
	metrics      *observability.Metrics
	pollInterval time.Duration
	now          func() time.Time
}

func NewWorker(
	queue model.RequestQueue,
	index model.RestaurantIndex,
	details model.RestaurantDetailStore,
	mailer model.Mailer,
	metrics *observability.Metrics,
	pollInterval time.Duration,
) *Worker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Worker{
		queue:        queue,
		index:        index,
		details:      details,
		mailer:       mailer,
		metrics:      metrics,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Run polls until ctx is cancelled. After a cycle that received a message
// the next poll starts right away; otherwise it waits one poll interval.
func (w *Worker) Run(ctx context.Context) error {
	logx.Info().Dur("poll_interval", w.pollInterval).Msg("fulfillment worker started")
	for {
		if err := ctx.Err(); err != nil {
			logx.Info().Msg("fulfillment worker stopped")
			return nil
		}

		res := w.PollOnce(ctx)
		if res.Outcome.Received() {
			continue
		}

		t := time.NewTimer(w.pollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			logx.Info().Msg("fulfillment worker stopped")
			return nil
		case <-t.C:
		}
	}
}

// PollOnce handles at most one queued request. The message is acknowledged
// only after the notification was sent; every earlier failure leaves it
// for redelivery, except malformed bodies which are dropped unacknowledged.
func (w *Worker) PollOnce(ctx context.Context) Result {
	res := w.poll(ctx)
	w.metrics.ObserveFulfillment(string(res.Outcome))
	return res
}

func (w *Worker) poll(ctx context.Context) Result {
	d, err := w.queue.Receive(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("failed to receive from queue")
		return Result{Outcome: OutcomeReceiveFailed, Err: err}
	}
	if d == nil {
		logx.Debug().Msg("no messages in the queue")
		return Result{Outcome: OutcomeEmpty}
	}

	res := Result{MessageID: d.ID}
	logx.Info().Str("message_id", d.ID).Int("receive_count", d.ReceiveCount).Msg("message received")

	body, err := model.ParseRequestBody(d.Body)
	if err != nil {
		logx.Warn().Err(err).Str("message_id", d.ID).Msg("invalid message format, dropping")
		res.Outcome, res.Err = OutcomeDropped, err
		return res
	}
	req := body.Slots()

	matches, err := w.index.Search(ctx, req.Cuisine, 1)
	if err != nil {
		logx.Error().Err(err).Str("message_id", d.ID).Str("cuisine", req.Cuisine).Msg("restaurant search failed")
		res.Outcome, res.Err = OutcomeIndexFailed, err
		return res
	}
	if len(matches) == 0 {
		logx.Warn().Str("message_id", d.ID).Str("cuisine", req.Cuisine).Msg("no restaurant found")
		res.Outcome = OutcomeNoMatch
		return res
	}
	res.RestaurantID = matches[0].ID

	detail, err := w.details.Get(ctx, res.RestaurantID)
	if err != nil {
		logx.Error().Err(err).Str("message_id", d.ID).Str("restaurant_id", res.RestaurantID).Msg("restaurant detail lookup failed")
		res.Outcome, res.Err = OutcomeDetailFailed, err
		return res
	}
	if detail == nil {
		logx.Warn().Str("message_id", d.ID).Str("restaurant_id", res.RestaurantID).Msg("no restaurant details found")
		res.Outcome = OutcomeNoDetail
		return res
	}

	n := Compose(req, *detail)
	res.Notification = &n
	if err := w.mailer.Send(ctx, n); err != nil {
		logx.Error().Err(err).Str("message_id", d.ID).Msg("failed to send recommendation")
		res.Outcome, res.Err = OutcomeDispatchFailed, err
		return res
	}

	if err := w.queue.Acknowledge(ctx, d.AckToken); err != nil {
		// Sent but still queued: it will be redelivered and sent again.
		logx.Error().Err(err).Str("message_id", d.ID).Msg("failed to acknowledge dispatched message")
		res.Outcome, res.Err = OutcomeAckFailed, err
		return res
	}

	if !d.EnqueuedAt.IsZero() {
		w.metrics.ObserveDispatchLatency(w.now().Sub(d.EnqueuedAt))
	}
	logx.Info().
		Str("message_id", d.ID).
		Str("restaurant_id", res.RestaurantID).
		Str("cuisine", req.Cuisine).
		Msg("recommendation dispatched and message deleted")
	res.Outcome = OutcomeDispatched
	return res
}
