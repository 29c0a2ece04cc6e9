package models

import "time"

// PlaceVisitCandidate is an unconfirmed streak of proximity hits for a
// (user, place) pair. At most one exists per pair.
type PlaceVisitCandidate struct {
	UserID          string    `json:"userId" db:"user_id"`
	PlaceID         int64     `json:"placeId" db:"place_id"`
	FirstHitAt      time.Time `json:"firstHitAt" db:"first_hit_at"`
	LastHitAt       time.Time `json:"lastHitAt" db:"last_hit_at"`
	ConsecutiveHits int       `json:"consecutiveHits" db:"consecutive_hits"`
}

// NewPlaceVisitCandidate starts a fresh streak with a single hit at now.
func NewPlaceVisitCandidate(userID string, placeID int64, now time.Time) *PlaceVisitCandidate {
	c := &PlaceVisitCandidate{UserID: userID, PlaceID: placeID}
	c.RecordHit(now)
	return c
}

// RecordHit counts one more hit. The first recorded hit also sets FirstHitAt.
func (c *PlaceVisitCandidate) RecordHit(now time.Time) {
	if c.ConsecutiveHits == 0 {
		c.FirstHitAt = now
	}
	c.ConsecutiveHits++
	c.LastHitAt = now
}

// Reinforceable reports whether a hit at now may extend this streak. The gap
// to LastHitAt counts in both directions, so a delayed ping only joins the
// streak when it is within window of the latest hit.
func (c *PlaceVisitCandidate) Reinforceable(now time.Time, window time.Duration) bool {
	gap := now.Sub(c.LastHitAt)
	if gap < 0 {
		gap = -gap
	}
	return gap <= window
}

// Predates reports whether now lies more than window before LastHitAt. Such
// a ping belongs to no live streak.
func (c *PlaceVisitCandidate) Predates(now time.Time, window time.Duration) bool {
	return now.Before(c.LastHitAt.Add(-window))
}
