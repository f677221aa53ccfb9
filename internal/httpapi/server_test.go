package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dining-concierge/server/internal/concierge/dialogue"
	"github.com/dining-concierge/server/internal/concierge/fulfillment"
	"github.com/dining-concierge/server/internal/concierge/notify"
	"github.com/dining-concierge/server/internal/concierge/repo"
	"github.com/dining-concierge/server/internal/observability"
	logx "github.com/dining-concierge/server/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMain(m *testing.M) {
	logx.Discard()
	os.Exit(m.Run())
}

type stack struct {
	state  *repo.MemoryStateStore
	queue  *repo.MemoryQueue
	outbox *notify.Outbox
	worker *fulfillment.Worker
	server *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()
	st := &stack{
		state:  repo.NewMemoryStateStore(),
		queue:  repo.NewMemoryQueue(30 * time.Second),
		outbox: &notify.Outbox{},
	}
	index, details := repo.NewMemoryIndex(), repo.NewMemoryDetailStore()
	repo.SeedCatalog(index, details)

	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	mgr, err := dialogue.NewManager(context.Background(), st.state, st.queue, metrics)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	st.worker = fulfillment.NewWorker(st.queue, index, details, st.outbox, metrics, time.Second)
	st.server = httptest.NewServer(New(mgr, metrics, "all").Router())
	t.Cleanup(st.server.Close)
	return st
}

func (st *stack) post(t *testing.T, body string, header map[string]string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, st.server.URL+"/v1/dialogue/turn", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post turn: %v", err)
	}
	defer res.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res.StatusCode, out
}

func messageOf(t *testing.T, resp map[string]any) string {
	t.Helper()
	msgs, _ := resp["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("want one message, got %+v", resp["messages"])
	}
	m, _ := msgs[0].(map[string]any)
	content, _ := m["content"].(string)
	return content
}

func TestElicitSlotResponseShape(t *testing.T) {
	st := newStack(t)
	status, resp := st.post(t, `{
		"session_id": "s1",
		"intent": "DiningSuggestionsIntent",
		"slots": {
			"Location": {"value": {"interpretedValue": "NYC"}},
			"Cuisine": "mexican",
			"DiningTime": {"value": {"interpretedValue": "8pm"}},
			"Email": {"value": {"interpretedValue": "x@y.com"}}
		}
	}`, nil)

	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if resp["dialogAction"] != "ElicitSlot" || resp["slotToElicit"] != "NumberOfPeople" || resp["dialogState"] != "InProgress" {
		t.Fatalf("response = %+v", resp)
	}
	if got := messageOf(t, resp); got != "Can you provide your number of people?" {
		t.Fatalf("message = %q", got)
	}
	slots, _ := resp["slots"].(map[string]any)
	if v, present := slots["NumberOfPeople"]; !present || v != nil {
		t.Fatalf("unfilled slot should be null, got %+v", slots)
	}
	cuisine, _ := slots["Cuisine"].(map[string]any)
	value, _ := cuisine["value"].(map[string]any)
	if value["interpretedValue"] != "mexican" {
		t.Fatalf("cuisine echo = %+v", slots["Cuisine"])
	}
	if st.queue.Enqueued() != 0 || st.state.Len() != 0 {
		t.Fatalf("eliciting turn must not write")
	}
}

func TestMalformedSlotsReprompt(t *testing.T) {
	st := newStack(t)
	_, resp := st.post(t, `{
		"session_id": "s1",
		"intent": "DiningSuggestionsIntent",
		"slots": {"Location": 42, "Cuisine": {"value": "thai"}, "DiningTime": null}
	}`, nil)
	if resp["slotToElicit"] != "Location" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRecognizerEventShape(t *testing.T) {
	st := newStack(t)
	_, resp := st.post(t, `{
		"sessionId": "lex-1",
		"sessionState": {"intent": {"name": "ThankYouIntent", "slots": null}}
	}`, nil)
	if resp["session_id"] != "lex-1" || resp["intent"] != "ThankYouIntent" || resp["dialogAction"] != "Close" {
		t.Fatalf("response = %+v", resp)
	}
	if got := messageOf(t, resp); got != "You're welcome! Have a great day!" {
		t.Fatalf("message = %q", got)
	}
}

func TestDerivedSessionIsStable(t *testing.T) {
	st := newStack(t)
	h := map[string]string{"User-Agent": "test-agent", "X-Forwarded-For": "203.0.113.7, 10.0.0.1"}
	_, a := st.post(t, `{"intent":"Greeting"}`, h)
	_, b := st.post(t, `{"intent":"Greeting"}`, h)
	id, _ := a["session_id"].(string)
	if !strings.HasPrefix(id, "user-") || id != b["session_id"] {
		t.Fatalf("session ids %v / %v", a["session_id"], b["session_id"])
	}

	h["X-Forwarded-For"] = "198.51.100.1"
	_, c := st.post(t, `{"intent":"Greeting"}`, h)
	if c["session_id"] == id {
		t.Fatalf("different client should get a different session")
	}
}

func TestBadRequestBody(t *testing.T) {
	st := newStack(t)
	status, resp := st.post(t, `{"intent":`, nil)
	if status != http.StatusBadRequest || resp["code"] != "invalid_request" {
		t.Fatalf("status=%d resp=%+v", status, resp)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	st := newStack(t)
	res, err := http.Get(st.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", res.StatusCode)
	}

	st.post(t, `{"session_id":"s1","intent":"Greeting"}`, nil)
	res, err = http.Get(st.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer res.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	if !strings.Contains(buf.String(), "test_dialogue_turns_total") {
		t.Fatalf("metrics missing dialogue counter")
	}
}

func TestEndToEndRecommendation(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	_, resp := st.post(t, `{
		"session_id": "s1",
		"intent": "DiningSuggestionsIntent",
		"slots": {
			"Location": "Manhattan",
			"Cuisine": "italian",
			"DiningTime": "7pm",
			"PartySize": "2",
			"Email": "a@b.com"
		}
	}`, nil)
	if resp["dialogState"] != "Fulfilled" || resp["dialogAction"] != "Close" {
		t.Fatalf("response = %+v", resp)
	}
	msg := messageOf(t, resp)
	if !strings.Contains(msg, "italian") || !strings.Contains(msg, "Manhattan") {
		t.Fatalf("message = %q", msg)
	}

	res := st.worker.PollOnce(ctx)
	if res.Outcome != fulfillment.OutcomeDispatched {
		t.Fatalf("poll = %+v", res)
	}
	sent := st.outbox.Sent()
	if len(sent) != 1 || sent[0].To != "a@b.com" {
		t.Fatalf("sent = %+v", sent)
	}
	first := repo.DevRestaurants[0]
	if first.CuisineType != "italian" {
		t.Fatalf("dev catalog order changed")
	}
	if !strings.Contains(sent[0].Body, first.Name) || !strings.Contains(sent[0].Body, first.Address) {
		t.Fatalf("body = %q", sent[0].Body)
	}
	if out := st.worker.PollOnce(ctx); out.Outcome != fulfillment.OutcomeEmpty {
		t.Fatalf("queue should be drained, got %+v", out)
	}

	// A returning user's greeting repeats the last search.
	_, resp = st.post(t, `{"session_id":"s1","intent":"GreetingIntent"}`, nil)
	if msg := messageOf(t, resp); !strings.HasPrefix(msg, "Welcome back!") {
		t.Fatalf("greeting = %q", msg)
	}
	if out := st.worker.PollOnce(ctx); out.Outcome != fulfillment.OutcomeDispatched {
		t.Fatalf("repeat poll = %+v", out)
	}
	if len(st.outbox.Sent()) != 2 {
		t.Fatalf("want a second email")
	}
}
