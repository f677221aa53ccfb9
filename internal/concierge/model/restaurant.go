package model

import (
	"strings"
	"time"
)

// RestaurantSummary is the minimal index record used for selection.
type RestaurantSummary struct {
	ID          string `json:"restaurant_id"`
	CuisineType string `json:"cuisine_type"`
}

// RestaurantDetail holds the display data of one restaurant.
type RestaurantDetail struct {
	ID          string    `json:"restaurant_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	CuisineType string    `json:"cuisine_type"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	ZipCode     string    `json:"zip_code"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	InsertedAt  time.Time `json:"inserted_at"`
}

// NormalizeCuisine is the index key form of a cuisine type.
func NormalizeCuisine(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
