package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/dining-concierge/server/internal/concierge/model"
)

// turnRequest is the body of POST /v1/dialogue/turn. The flat fields take
// precedence; sessionId/sessionState accept a recognizer event as is.
type turnRequest struct {
	SessionID string                     `json:"session_id"`
	Intent    string                     `json:"intent"`
	Slots     map[string]json.RawMessage `json:"slots"`

	LexSessionID string `json:"sessionId"`
	SessionState *struct {
		Intent *struct {
			Name  string                     `json:"name"`
			Slots map[string]json.RawMessage `json:"slots"`
		} `json:"intent"`
	} `json:"sessionState"`
}

func (r turnRequest) sessionID() string {
	if id := strings.TrimSpace(r.SessionID); id != "" {
		return id
	}
	return strings.TrimSpace(r.LexSessionID)
}

func (r turnRequest) intent() string {
	if r.Intent != "" {
		return strings.TrimSpace(r.Intent)
	}
	if r.SessionState != nil && r.SessionState.Intent != nil {
		return strings.TrimSpace(r.SessionState.Intent.Name)
	}
	return ""
}

func (r turnRequest) slots() model.SlotSet {
	raw := r.Slots
	if raw == nil && r.SessionState != nil && r.SessionState.Intent != nil {
		raw = r.SessionState.Intent.Slots
	}
	return decodeSlots(raw)
}

// decodeSlots reads each slot as a plain string or as
// {"value":{"interpretedValue":"..."}}; any other shape counts as not
// provided. Slots are resolved in a fixed order and the canonical key wins
// over an alias when both carry a value.
func decodeSlots(raw map[string]json.RawMessage) model.SlotSet {
	var s model.SlotSet
	for _, name := range model.SlotOrder {
		for _, key := range name.WireKeys() {
			if v := strings.TrimSpace(slotValue(raw[key])); v != "" {
				s.Set(name, v)
				break
			}
		}
	}
	return s
}

func slotValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}
	var nested struct {
		Value *struct {
			InterpretedValue *string `json:"interpretedValue"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return ""
	}
	if nested.Value == nil || nested.Value.InterpretedValue == nil {
		return ""
	}
	return *nested.Value.InterpretedValue
}

type slotJSON struct {
	Value slotValueJSON `json:"value"`
}

type slotValueJSON struct {
	InterpretedValue string `json:"interpretedValue"`
}

type messageJSON struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

const (
	actionElicitSlot = "ElicitSlot"
	actionClose      = "Close"
)

type turnResponse struct {
	SessionID    string               `json:"session_id"`
	Intent       string               `json:"intent"`
	DialogState  string               `json:"dialogState"`
	DialogAction string               `json:"dialogAction"`
	SlotToElicit string               `json:"slotToElicit,omitempty"`
	Slots        map[string]*slotJSON `json:"slots,omitempty"`
	Messages     []messageJSON        `json:"messages"`
}

func encodeResponse(sessionID string, resp model.DialogueResponse) turnResponse {
	out := turnResponse{
		SessionID:    sessionID,
		Intent:       resp.Intent,
		DialogState:  string(resp.State),
		DialogAction: actionClose,
		Messages:     []messageJSON{{ContentType: "PlainText", Content: resp.Message}},
	}
	if resp.Eliciting() {
		out.DialogAction = actionElicitSlot
		out.SlotToElicit = string(resp.SlotToElicit)
	}
	if model.ClassifyIntent(resp.Intent) == model.KindDiningSuggestions {
		out.Slots = encodeSlots(resp.Slots)
	}
	return out
}

// encodeSlots always lists every slot; unfilled ones are null.
func encodeSlots(s model.SlotSet) map[string]*slotJSON {
	out := make(map[string]*slotJSON, len(model.SlotOrder))
	for _, name := range model.SlotOrder {
		if !s.Filled(name) {
			out[string(name)] = nil
			continue
		}
		out[string(name)] = &slotJSON{Value: slotValueJSON{InterpretedValue: s.Get(name)}}
	}
	return out
}
