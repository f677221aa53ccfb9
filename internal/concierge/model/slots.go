package model

import "strings"

// SlotName identifies one piece of information the dining dialogue collects.
type SlotName string

const (
	SlotLocation   SlotName = "Location"
	SlotCuisine    SlotName = "Cuisine"
	SlotDiningTime SlotName = "DiningTime"
	SlotPartySize  SlotName = "NumberOfPeople"
	SlotEmail      SlotName = "Email"
)

// SlotOrder is the elicitation priority: the first unfilled slot in this
// order is always the next one asked for.
var SlotOrder = []SlotName{SlotLocation, SlotCuisine, SlotDiningTime, SlotPartySize, SlotEmail}

var slotLabels = map[SlotName]string{
	SlotLocation:   "location",
	SlotCuisine:    "cuisine type",
	SlotDiningTime: "dining time",
	SlotPartySize:  "number of people",
	SlotEmail:      "email",
}

// Label is the human-readable name used in prompts.
func (n SlotName) Label() string {
	if l, ok := slotLabels[n]; ok {
		return l
	}
	return strings.ToLower(string(n))
}

// WireKeys lists the input keys accepted for the slot, canonical name first.
func (n SlotName) WireKeys() []string {
	if n == SlotPartySize {
		return []string{string(SlotPartySize), "PartySize"}
	}
	return []string{string(n)}
}

// SlotSet holds the recognized value of every slot. An empty string means
// the slot is not filled.
type SlotSet struct {
	Location   string
	Cuisine    string
	DiningTime string
	PartySize  string
	Email      string
}

// Get returns the value of the named slot.
func (s SlotSet) Get(name SlotName) string {
	switch name {
	case SlotLocation:
		return s.Location
	case SlotCuisine:
		return s.Cuisine
	case SlotDiningTime:
		return s.DiningTime
	case SlotPartySize:
		return s.PartySize
	case SlotEmail:
		return s.Email
	}
	return ""
}

// Set stores a trimmed value for the named slot. Unknown names are ignored.
func (s *SlotSet) Set(name SlotName, value string) {
	value = strings.TrimSpace(value)
	switch name {
	case SlotLocation:
		s.Location = value
	case SlotCuisine:
		s.Cuisine = value
	case SlotDiningTime:
		s.DiningTime = value
	case SlotPartySize:
		s.PartySize = value
	case SlotEmail:
		s.Email = value
	}
}

// Filled reports whether the named slot has a non-empty value.
func (s SlotSet) Filled(name SlotName) bool {
	return strings.TrimSpace(s.Get(name)) != ""
}

// Missing lists unfilled slots in elicitation order.
func (s SlotSet) Missing() []SlotName {
	var out []SlotName
	for _, n := range SlotOrder {
		if !s.Filled(n) {
			out = append(out, n)
		}
	}
	return out
}

// NextMissing returns the slot to elicit next, if any.
func (s SlotSet) NextMissing() (SlotName, bool) {
	for _, n := range SlotOrder {
		if !s.Filled(n) {
			return n, true
		}
	}
	return "", false
}

// Complete reports whether every slot is filled.
func (s SlotSet) Complete() bool {
	_, missing := s.NextMissing()
	return !missing
}
