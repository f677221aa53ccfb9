package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	errx "github.com/dining-concierge/server/internal/core/error"
)

// RequestSource says which dialogue path produced a request.
type RequestSource string

const (
	SourceDialogue RequestSource = "dialogue"
	SourceRepeat   RequestSource = "repeat"
)

// RecommendationRequest is a completed ask for one restaurant suggestion.
// Build it with NewRecommendationRequest or RepeatRequest.
type RecommendationRequest struct {
	Slots     SlotSet
	Source    RequestSource
	CreatedAt time.Time
}

// NewRecommendationRequest builds a request from a fully filled slot set.
func NewRecommendationRequest(slots SlotSet, now time.Time) (RecommendationRequest, error) {
	if missing := slots.Missing(); len(missing) > 0 {
		return RecommendationRequest{}, fmt.Errorf("%w: missing slots %v", errx.ErrInvalidPayload, missing)
	}
	return RecommendationRequest{Slots: slots, Source: SourceDialogue, CreatedAt: now.UTC()}, nil
}

// RepeatRequest re-issues a session's last search. Dining time and party
// size stay empty.
func RepeatRequest(rec UserStateRecord, now time.Time) (RecommendationRequest, error) {
	if !rec.Usable() {
		return RecommendationRequest{}, fmt.Errorf("%w: prior state incomplete", errx.ErrInvalidPayload)
	}
	return RecommendationRequest{
		Slots: SlotSet{
			Location: rec.Location,
			Cuisine:  rec.Cuisine,
			Email:    rec.Email,
		},
		Source:    SourceRepeat,
		CreatedAt: now.UTC(),
	}, nil
}

// RequestBody is the queue message body. Every field is nullable on the
// wire; Cuisine and Email are required for processing.
type RequestBody struct {
	Location       *string `json:"Location"`
	Cuisine        *string `json:"Cuisine"`
	DiningTime     *string `json:"DiningTime"`
	NumberOfPeople *string `json:"NumberOfPeople"`
	Email          *string `json:"Email"`
}

// Body converts the request to its wire form; empty slots become null.
func (r RecommendationRequest) Body() RequestBody {
	return RequestBody{
		Location:       nullable(r.Slots.Location),
		Cuisine:        nullable(r.Slots.Cuisine),
		DiningTime:     nullable(r.Slots.DiningTime),
		NumberOfPeople: nullable(r.Slots.PartySize),
		Email:          nullable(r.Slots.Email),
	}
}

// Marshal encodes the wire body.
func (r RecommendationRequest) Marshal() ([]byte, error) {
	return json.Marshal(r.Body())
}

// ParseRequestBody decodes and validates a queue message body.
func ParseRequestBody(raw []byte) (RequestBody, error) {
	var b RequestBody
	if err := json.Unmarshal(raw, &b); err != nil {
		return RequestBody{}, fmt.Errorf("%w: %v", errx.ErrInvalidPayload, err)
	}
	if err := b.Validate(); err != nil {
		return RequestBody{}, err
	}
	return b, nil
}

// Validate checks the fields the fulfillment worker cannot do without.
func (b RequestBody) Validate() error {
	if value(b.Cuisine) == "" {
		return fmt.Errorf("%w: Cuisine is required", errx.ErrInvalidPayload)
	}
	if value(b.Email) == "" {
		return fmt.Errorf("%w: Email is required", errx.ErrInvalidPayload)
	}
	return nil
}

// Slots flattens the body, mapping null to empty.
func (b RequestBody) Slots() SlotSet {
	return SlotSet{
		Location:   value(b.Location),
		Cuisine:    value(b.Cuisine),
		DiningTime: value(b.DiningTime),
		PartySize:  value(b.NumberOfPeople),
		Email:      value(b.Email),
	}
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// Delivery is one received queue message. AckToken must be passed back to
// Acknowledge to remove it.
type Delivery struct {
	ID           string
	Body         []byte
	AckToken     string
	ReceiveCount int
	EnqueuedAt   time.Time
}
