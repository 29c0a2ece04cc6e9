package models

import "time"

// Trip is a catalog trip owned by a user. Places are grouped under its regions.
type Trip struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Region groups places within a trip
type Region struct {
	ID     int64  `json:"id" db:"id"`
	TripID int64  `json:"tripId" db:"trip_id"`
	Name   string `json:"name" db:"name"`
}

// Place is a point of interest a user can visit
type Place struct {
	ID        int64   `json:"id" db:"id"`
	RegionID  int64   `json:"regionId" db:"region_id"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Notes     string  `json:"notes,omitempty" db:"notes"`
}

// PlaceMatch is the result of a nearest-place lookup. The names are the
// catalog values at lookup time and become the visit snapshot on promotion.
type PlaceMatch struct {
	PlaceID        int64
	DistanceMeters float64
	TripID         int64
	TripName       string
	RegionName     string
	PlaceName      string
	PlaceNotes     string
}
