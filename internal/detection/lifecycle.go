package detection

import (
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// newVisit builds the confirmed visit for a promoted candidate. ArrivedAt is
// the first hit of the streak, not the promoting ping.
func newVisit(id string, c *models.PlaceVisitCandidate, match *models.PlaceMatch, now time.Time, notesMaxChars int) *models.PlaceVisitEvent {
	placeID := match.PlaceID
	tripID := match.TripID
	return &models.PlaceVisitEvent{
		ID:                 id,
		UserID:             c.UserID,
		PlaceID:            &placeID,
		ArrivedAt:          c.FirstHitAt,
		LastSeenAt:         later(now, c.LastHitAt),
		TripIDSnapshot:     &tripID,
		TripNameSnapshot:   match.TripName,
		RegionNameSnapshot: match.RegionName,
		PlaceNameSnapshot:  match.PlaceName,
		PlaceNotesSnapshot: truncateRunes(match.PlaceNotes, notesMaxChars),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// extendVisit records presence at an open visit
func extendVisit(v *models.PlaceVisitEvent, now time.Time) {
	v.LastSeenAt = later(now, v.LastSeenAt)
	v.UpdatedAt = now
}

// closeVisit ends a visit at its last observation, never at now
func closeVisit(v *models.PlaceVisitEvent, now time.Time) {
	v.Close()
	v.UpdatedAt = now
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
