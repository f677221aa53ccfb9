package model

import "strings"

// Intent names as produced by the recognizer.
const (
	IntentGreeting          = "GreetingIntent"
	IntentThankYou          = "ThankYouIntent"
	IntentDiningSuggestions = "DiningSuggestionsIntent"
	IntentFallback          = "FallbackIntent"
)

// IntentKind is the dialogue manager's view of an intent name.
type IntentKind int

const (
	KindUnknown IntentKind = iota
	KindGreeting
	KindThankYou
	KindDiningSuggestions
)

// ClassifyIntent maps recognizer intent names (with or without the
// "Intent" suffix) onto the kinds the dialogue handles.
func ClassifyIntent(name string) IntentKind {
	switch strings.TrimSuffix(strings.TrimSpace(name), "Intent") {
	case "Greeting":
		return KindGreeting
	case "ThankYou":
		return KindThankYou
	case "DiningSuggestions":
		return KindDiningSuggestions
	default:
		return KindUnknown
	}
}

// DialogState tags a response as still eliciting or finished.
type DialogState string

const (
	StateInProgress DialogState = "InProgress"
	StateFulfilled  DialogState = "Fulfilled"
)

// DialogueTurn is the input of one dialogue manager invocation.
type DialogueTurn struct {
	SessionID string
	Intent    string
	Slots     SlotSet
}

// DialogueResponse is what the caller relays back to the chat front end.
type DialogueResponse struct {
	Intent       string
	State        DialogState
	SlotToElicit SlotName // only set when State is InProgress
	Slots        SlotSet
	Message      string

	// Effects records which side effects this turn attempted and how they
	// went. It never reaches the user.
	Effects Effects
}

// Eliciting reports whether the response asks the user for a slot.
func (r DialogueResponse) Eliciting() bool {
	return r.State == StateInProgress && r.SlotToElicit != ""
}

// Effects is the outcome of the persistence and enqueue attempts of a turn.
type Effects struct {
	StateWriteAttempted bool
	StateWritten        bool
	StateErr            error

	EnqueueAttempted bool
	Enqueued         bool
	MessageID        string
	EnqueueErr       error

	// PriorStateFound is set on greetings that found a usable record.
	PriorStateFound bool
}
