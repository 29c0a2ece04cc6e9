package detection

import (
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// reinforce applies one proximity hit to a pair's candidate and returns the
// candidate to persist. A candidate whose last hit is outside the window is
// replaced by a fresh streak; its count does not carry over.
func reinforce(current *models.PlaceVisitCandidate, userID string, placeID int64, now time.Time, window time.Duration) (next *models.PlaceVisitCandidate, restarted bool) {
	if current == nil || !current.Reinforceable(now, window) {
		return models.NewPlaceVisitCandidate(userID, placeID, now), current != nil
	}
	c := *current
	// A late ping still counts but never moves LastHitAt backwards.
	c.RecordHit(later(now, c.LastHitAt))
	return &c, false
}

// promotable reports whether a candidate has reached the hit threshold
func promotable(c *models.PlaceVisitCandidate, requiredHits int) bool {
	return c.ConsecutiveHits >= requiredHits
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
