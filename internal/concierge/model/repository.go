package model

import "context"

type StateStore interface {
	// GetLatest returns the most recent record for the session, or nil when
	// none exists or sessionID is empty.
	GetLatest(ctx context.Context, sessionID string) (*UserStateRecord, error)

	// Put creates or overwrites the session record, stamping the current time.
	Put(ctx context.Context, sessionID, location, cuisine, email string) error
}

type RequestQueue interface {
	// Enqueue publishes a request and returns its message id.
	Enqueue(ctx context.Context, req RecommendationRequest) (string, error)

	// Receive returns one visible message, or nil when the queue is empty.
	// The message stays invisible for the visibility timeout and is
	// redelivered unless acknowledged.
	Receive(ctx context.Context) (*Delivery, error)

	// Acknowledge removes a received message for good.
	Acknowledge(ctx context.Context, ackToken string) error
}

type RestaurantIndex interface {
	// Search returns up to limit restaurants whose normalized cuisine type
	// equals the given one.
	Search(ctx context.Context, cuisine string, limit int) ([]RestaurantSummary, error)
}

type RestaurantDetailStore interface {
	// Get returns the restaurant, or nil when the id is unknown.
	Get(ctx context.Context, restaurantID string) (*RestaurantDetail, error)
}

// Notification is a plain-text email.
type Notification struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, n Notification) error
}
