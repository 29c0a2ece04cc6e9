package models

import "time"

// Visit event types published to notifiers
const (
	EventVisitConfirmed = "visit.confirmed"
	EventVisitEnded     = "visit.ended"
)

// VisitEvent is a committed visit lifecycle change
type VisitEvent struct {
	Type      string     `json:"type"`
	UserID    string     `json:"userId"`
	PlaceID   *int64     `json:"placeId,omitempty"`
	VisitID   string     `json:"visitId"`
	PlaceName string     `json:"placeName,omitempty"`
	ArrivedAt time.Time  `json:"arrivedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// NewVisitEvent builds an event of the given type from a visit
func NewVisitEvent(eventType string, v *PlaceVisitEvent) VisitEvent {
	return VisitEvent{
		Type:      eventType,
		UserID:    v.UserID,
		PlaceID:   v.PlaceID,
		VisitID:   v.ID,
		PlaceName: v.PlaceNameSnapshot,
		ArrivedAt: v.ArrivedAt,
		EndedAt:   v.EndedAt,
	}
}
