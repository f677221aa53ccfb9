package dialogue

import (
	"context"
	"fmt"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"

	"github.com/dining-concierge/server/internal/concierge/model"
	"github.com/dining-concierge/server/internal/observability"
	logx "github.com/dining-concierge/server/pkg/logger"
)

const (
	msgGreeting    = "Hi there! How can I help you today?"
	msgWelcomeBack = "Welcome back! I've sent new recommendations for %s restaurants in %s to your email based on your previous search. Need anything else?"
	msgThankYou    = "You're welcome! Have a great day!"
	msgElicit      = "Can you provide your %s?"
	msgFulfilled   = "Thanks! I will send restaurant recommendations for %s in %s to %s shortly."
	msgFallback    = "I'm not sure how to handle that request."
)

// Graph node keys. Each intent kind routes to exactly one node.
const (
	NodeGreeting          = "greeting"
	NodeThankYou          = "thank_you"
	NodeDiningSuggestions = "dining_suggestions"
	NodeFallback          = "fallback"
)

// Manager runs the slot-filling dialogue. It holds no per-session state;
// everything that survives a turn lives in the state store or the queue.
type Manager struct {
	state     model.StateStore
	queue     model.RequestQueue
	metrics   *observability.Metrics
	now       func() time.Time
	runnable  compose.Runnable[model.DialogueTurn, model.DialogueResponse]
	observers []einocb.Handler
}

func NewManager(ctx context.Context, state model.StateStore, queue model.RequestQueue, metrics *observability.Metrics) (*Manager, error) {
	m := &Manager{
		state:     state,
		queue:     queue,
		metrics:   metrics,
		now:       time.Now,
		observers: []einocb.Handler{newTurnObserver()},
	}
	runnable, err := m.buildGraph(ctx)
	if err != nil {
		return nil, err
	}
	m.runnable = runnable
	return m, nil
}

// buildGraph wires START -> intent branch -> one handler node -> END.
func (m *Manager) buildGraph(ctx context.Context) (compose.Runnable[model.DialogueTurn, model.DialogueResponse], error) {
	g := compose.NewGraph[model.DialogueTurn, model.DialogueResponse]()

	handlers := []struct {
		key string
		fn  func(context.Context, model.DialogueTurn) (model.DialogueResponse, error)
	}{
		{NodeGreeting, func(ctx context.Context, turn model.DialogueTurn) (model.DialogueResponse, error) {
			return m.greet(ctx, turn), nil
		}},
		{NodeThankYou, func(_ context.Context, turn model.DialogueTurn) (model.DialogueResponse, error) {
			return closeWith(turn.Intent, msgThankYou), nil
		}},
		{NodeDiningSuggestions, func(ctx context.Context, turn model.DialogueTurn) (model.DialogueResponse, error) {
			return m.diningSuggestions(ctx, turn), nil
		}},
		{NodeFallback, func(_ context.Context, turn model.DialogueTurn) (model.DialogueResponse, error) {
			return fallback(turn.Intent), nil
		}},
	}

	ends := make(map[string]bool, len(handlers))
	for _, h := range handlers {
		if err := g.AddLambdaNode(h.key, compose.InvokableLambda(h.fn), compose.WithNodeName(h.key)); err != nil {
			return nil, fmt.Errorf("add dialogue node %s: %w", h.key, err)
		}
		if err := g.AddEdge(h.key, compose.END); err != nil {
			return nil, fmt.Errorf("add dialogue edge %s: %w", h.key, err)
		}
		ends[h.key] = true
	}

	route := compose.NewGraphBranch(func(_ context.Context, turn model.DialogueTurn) (string, error) {
		return kindLabel(model.ClassifyIntent(turn.Intent)), nil
	}, ends)
	if err := g.AddBranch(compose.START, route); err != nil {
		return nil, fmt.Errorf("add intent branch: %w", err)
	}

	runnable, err := g.Compile(ctx, compose.WithGraphName("dialogue"))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling dialogue graph")
		return nil, fmt.Errorf("compile dialogue graph: %w", err)
	}
	logx.Debug().Msg("Dialogue graph compiled")
	return runnable, nil
}

// HandleTurn answers one user turn. Backend failures never surface to the
// caller; they are logged and reported through the response Effects.
func (m *Manager) HandleTurn(ctx context.Context, turn model.DialogueTurn) model.DialogueResponse {
	kind := model.ClassifyIntent(turn.Intent)

	resp, err := m.runnable.Invoke(ctx, turn, compose.WithCallbacks(m.observers...))
	if err != nil {
		logx.Error().Err(err).Str("session_id", turn.SessionID).Msg("dialogue graph failed, answering with fallback")
		resp = fallback(turn.Intent)
	}

	m.metrics.ObserveTurn(kindLabel(kind), string(resp.State))
	logx.Debug().
		Str("session_id", turn.SessionID).
		Str("intent", resp.Intent).
		Str("state", string(resp.State)).
		Str("slot_to_elicit", string(resp.SlotToElicit)).
		Msg("dialogue turn handled")
	return resp
}

func (m *Manager) greet(ctx context.Context, turn model.DialogueTurn) model.DialogueResponse {
	resp := closeWith(turn.Intent, msgGreeting)

	prior, err := m.state.GetLatest(ctx, turn.SessionID)
	if err != nil {
		m.metrics.ObserveSideEffectFailure("state_read")
		logx.Warn().Err(err).Str("session_id", turn.SessionID).Msg("prior state lookup failed, greeting without it")
		return resp
	}
	if !prior.Usable() {
		return resp
	}
	resp.Effects.PriorStateFound = true

	req, err := model.RepeatRequest(*prior, m.now())
	if err != nil {
		return resp
	}
	m.enqueue(ctx, turn.SessionID, req, &resp.Effects)

	resp.Message = fmt.Sprintf(msgWelcomeBack, prior.Cuisine, prior.Location)
	return resp
}

func (m *Manager) diningSuggestions(ctx context.Context, turn model.DialogueTurn) model.DialogueResponse {
	slots := turn.Slots
	if next, ok := slots.NextMissing(); ok {
		return model.DialogueResponse{
			Intent:       turn.Intent,
			State:        model.StateInProgress,
			SlotToElicit: next,
			Slots:        slots,
			Message:      fmt.Sprintf(msgElicit, next.Label()),
		}
	}

	resp := closeWith(turn.Intent, fmt.Sprintf(msgFulfilled, slots.Cuisine, slots.Location, slots.Email))
	resp.Slots = slots

	// Both side effects are attempted regardless of the other's outcome.
	resp.Effects.StateWriteAttempted = true
	if err := m.state.Put(ctx, turn.SessionID, slots.Location, slots.Cuisine, slots.Email); err != nil {
		resp.Effects.StateErr = err
		m.metrics.ObserveSideEffectFailure("state_write")
		logx.Error().Err(err).Str("session_id", turn.SessionID).Msg("failed to save user state")
	} else {
		resp.Effects.StateWritten = true
	}

	req, err := model.NewRecommendationRequest(slots, m.now())
	if err != nil {
		resp.Effects.EnqueueAttempted = true
		resp.Effects.EnqueueErr = err
		logx.Error().Err(err).Str("session_id", turn.SessionID).Msg("could not build recommendation request")
		return resp
	}
	m.enqueue(ctx, turn.SessionID, req, &resp.Effects)
	return resp
}

func (m *Manager) enqueue(ctx context.Context, sessionID string, req model.RecommendationRequest, fx *model.Effects) {
	fx.EnqueueAttempted = true
	id, err := m.queue.Enqueue(ctx, req)
	if err != nil {
		fx.EnqueueErr = err
		m.metrics.ObserveSideEffectFailure("enqueue")
		logx.Error().Err(err).
			Str("session_id", sessionID).
			Str("source", string(req.Source)).
			Msg("failed to enqueue recommendation request")
		return
	}
	fx.Enqueued = true
	fx.MessageID = id
	m.metrics.ObserveEnqueued(string(req.Source))
	logx.Info().
		Str("session_id", sessionID).
		Str("message_id", id).
		Str("source", string(req.Source)).
		Str("cuisine", req.Slots.Cuisine).
		Msg("recommendation request enqueued")
}

func closeWith(intent, message string) model.DialogueResponse {
	return model.DialogueResponse{
		Intent:  intent,
		State:   model.StateFulfilled,
		Message: message,
	}
}

func fallback(intent string) model.DialogueResponse {
	if intent == "" {
		intent = model.IntentFallback
	}
	return closeWith(intent, msgFallback)
}

// kindLabel doubles as the graph node key for k.
func kindLabel(k model.IntentKind) string {
	switch k {
	case model.KindGreeting:
		return NodeGreeting
	case model.KindThankYou:
		return NodeThankYou
	case model.KindDiningSuggestions:
		return NodeDiningSuggestions
	default:
		return NodeFallback
	}
}
