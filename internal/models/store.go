package models

import "time"

type Store struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	City        string     `json:"city"`
	AddressText string     `json:"address_text"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	ImageURL    string     `json:"image_url,omitempty"`
	IsOpen      bool       `json:"is_open"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// NearbyStoreResult is a store listing entry annotated with the distance
// from the requested point.
type NearbyStoreResult struct {
	Store
	DistanceMiles float64 `json:"distance_miles"`
}
