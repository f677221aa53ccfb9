package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dining-concierge/server/internal/concierge/model"
	errx "github.com/dining-concierge/server/internal/core/error"
	"github.com/dining-concierge/server/internal/observability"
	logx "github.com/dining-concierge/server/pkg/logger"
)

const maxBodyBytes = 64 << 10

type Dialogue interface {
	HandleTurn(ctx context.Context, turn model.DialogueTurn) model.DialogueResponse
}

type Server struct {
	dialogue Dialogue
	metrics  *observability.Metrics
	role     string
	started  time.Time
}

func New(dialogue Dialogue, metrics *observability.Metrics, role string) *Server {
	return &Server{
		dialogue: dialogue,
		metrics:  metrics,
		role:     role,
		started:  time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})
	r.Post("/v1/dialogue/turn", s.handleTurn)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"role":       s.role,
		"uptime_sec": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, errx.BadRequest(err), "invalid_request")
		return
	}

	sessionID := req.sessionID()
	if sessionID == "" {
		sessionID = deriveSessionID(r)
	}

	resp := s.dialogue.HandleTurn(r.Context(), model.DialogueTurn{
		SessionID: sessionID,
		Intent:    req.intent(),
		Slots:     req.slots(),
	})
	respondJSON(w, http.StatusOK, encodeResponse(sessionID, resp))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error, code string) {
	status := errx.StatusOf(err)
	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Msg("request failed")
	}
	respondJSON(w, status, errorResponse{Error: errx.SafeMessage(err), Code: code})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logx.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
