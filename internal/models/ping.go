package models

import "time"

// Ping is a single location observation reported by a user.
type Ping struct {
	UserID         string
	Latitude       float64
	Longitude      float64
	AccuracyMeters *float64  // nil when the device did not report accuracy
	At             time.Time // zero means "now"
}

// PingRequest is the JSON body accepted by the ingestion endpoints
type PingRequest struct {
	Latitude  *float64   `json:"latitude" binding:"required"`
	Longitude *float64   `json:"longitude" binding:"required"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}
