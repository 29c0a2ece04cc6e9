package models

import "time"

// PlaceVisitEvent is a confirmed dwell period at a place. EndedAt is nil
// while the visit is open.
//
// The snapshot fields are copied from the catalog when the visit is
// confirmed, so renaming or deleting the trip, region or place later does
// not rewrite visit history. PlaceID becomes nil when the place is deleted.
type PlaceVisitEvent struct {
	ID          string     `json:"id" db:"id"`
	UserID      string     `json:"userId" db:"user_id"`
	PlaceID     *int64     `json:"placeId,omitempty" db:"place_id"`
	ArrivedAt   time.Time  `json:"arrivedAt" db:"arrived_at"`
	LastSeenAt  time.Time  `json:"lastSeenAt" db:"last_seen_at"`
	EndedAt     *time.Time `json:"endedAt,omitempty" db:"ended_at"`

	TripIDSnapshot     *int64 `json:"tripIdSnapshot,omitempty" db:"trip_id_snapshot"`
	TripNameSnapshot   string `json:"tripNameSnapshot" db:"trip_name_snapshot"`
	RegionNameSnapshot string `json:"regionNameSnapshot" db:"region_name_snapshot"`
	PlaceNameSnapshot  string `json:"placeNameSnapshot" db:"place_name_snapshot"`
	PlaceNotesSnapshot string `json:"placeNotesSnapshot,omitempty" db:"place_notes_snapshot"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsOpen reports whether the visit is still ongoing
func (v PlaceVisitEvent) IsOpen() bool {
	return v.EndedAt == nil
}

// ObservedDwellMinutes returns LastSeenAt - ArrivedAt in minutes. ok is false
// when either timestamp is unset.
func (v PlaceVisitEvent) ObservedDwellMinutes() (minutes float64, ok bool) {
	if v.ArrivedAt.IsZero() || v.LastSeenAt.IsZero() {
		return 0, false
	}
	return v.LastSeenAt.Sub(v.ArrivedAt).Minutes(), true
}

// Close freezes the visit at its last true observation.
func (v *PlaceVisitEvent) Close() {
	ended := v.LastSeenAt
	v.EndedAt = &ended
}

// VisitsResponse represents a paginated response of visits
type VisitsResponse struct {
	Data       []PlaceVisitEvent `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
