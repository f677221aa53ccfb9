package model

import (
	"strings"
	"time"
)

// UserStateRecord is the most recent completed search of a session.
type UserStateRecord struct {
	UserID      string    `json:"UserID"`
	LastUpdated time.Time `json:"LastUpdated"`
	Location    string    `json:"Location"`
	Cuisine     string    `json:"Cuisine"`
	Email       string    `json:"Email"`
}

// Usable reports whether the record carries enough to repeat the search.
func (r *UserStateRecord) Usable() bool {
	if r == nil {
		return false
	}
	return strings.TrimSpace(r.Location) != "" &&
		strings.TrimSpace(r.Cuisine) != "" &&
		strings.TrimSpace(r.Email) != ""
}
