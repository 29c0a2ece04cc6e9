package models

import (
	"errors"
	"fmt"
	"time"
)

// MissingAccuracyPolicy selects the effective radius of a ping without accuracy
type MissingAccuracyPolicy string

const (
	MissingAccuracyMaxRadius MissingAccuracyPolicy = "max-radius"
	MissingAccuracyMinRadius MissingAccuracyPolicy = "min-radius"
)

// CrossPlacePolicy selects what happens to an open visit at place A when a
// visit at place B is confirmed.
type CrossPlacePolicy string

const (
	// CrossPlaceStaleness leaves A open until the staleness sweep closes it.
	CrossPlaceStaleness CrossPlacePolicy = "staleness"
	// CrossPlaceClosePrevious closes A as soon as B is confirmed.
	CrossPlaceClosePrevious CrossPlacePolicy = "close-previous"
)

// DetectionSettings are the tunable thresholds of visit detection.
// LocationTimeThresholdMinutes is the base time unit; the hit window,
// candidate staleness and visit end thresholds are derived from it.
type DetectionSettings struct {
	LocationTimeThresholdMinutes          float64               `json:"locationTimeThresholdMinutes"`
	VisitedRequiredHits                   int                   `json:"visitedRequiredHits"`
	VisitedMinRadiusMeters                float64               `json:"visitedMinRadiusMeters"`
	VisitedMaxRadiusMeters                float64               `json:"visitedMaxRadiusMeters"`
	VisitedAccuracyMultiplier             float64               `json:"visitedAccuracyMultiplier"`
	VisitedAccuracyRejectMeters           float64               `json:"visitedAccuracyRejectMeters"` // 0 disables rejection
	VisitedMaxSearchRadiusMeters          float64               `json:"visitedMaxSearchRadiusMeters"`
	VisitedPlaceNotesSnapshotMaxHtmlChars int                   `json:"visitedPlaceNotesSnapshotMaxHtmlChars"`
	MissingAccuracyPolicy                 MissingAccuracyPolicy `json:"missingAccuracyPolicy"`
	CrossPlacePolicy                      CrossPlacePolicy      `json:"crossPlacePolicy"`
}

// Derived threshold factors, in units of LocationTimeThresholdMinutes
const (
	hitWindowFactor      = 1.6
	candidateStaleFactor = 12
	endVisitAfterFactor  = 9
)

func (s DetectionSettings) minutes(factor float64) time.Duration {
	return time.Duration(factor * s.LocationTimeThresholdMinutes * float64(time.Minute))
}

// HitWindow is the maximum gap between two hits of the same streak
func (s DetectionSettings) HitWindow() time.Duration {
	return s.minutes(hitWindowFactor)
}

// CandidateStale is the age after which an unpromoted candidate is evicted
func (s DetectionSettings) CandidateStale() time.Duration {
	return s.minutes(candidateStaleFactor)
}

// EndVisitAfter is the silence after which an open visit is closed
func (s DetectionSettings) EndVisitAfter() time.Duration {
	return s.minutes(endVisitAfterFactor)
}

// Validate checks the relations between thresholds
func (s DetectionSettings) Validate() error {
	var errs []error
	if s.LocationTimeThresholdMinutes <= 0 {
		errs = append(errs, fmt.Errorf("locationTimeThresholdMinutes must be > 0, got %v", s.LocationTimeThresholdMinutes))
	}
	if s.VisitedRequiredHits < 1 {
		errs = append(errs, fmt.Errorf("visitedRequiredHits must be >= 1, got %d", s.VisitedRequiredHits))
	}
	if s.VisitedMinRadiusMeters < 0 {
		errs = append(errs, fmt.Errorf("visitedMinRadiusMeters must be >= 0, got %v", s.VisitedMinRadiusMeters))
	}
	if s.VisitedMinRadiusMeters > s.VisitedMaxRadiusMeters {
		errs = append(errs, fmt.Errorf("visitedMinRadiusMeters (%v) exceeds visitedMaxRadiusMeters (%v)",
			s.VisitedMinRadiusMeters, s.VisitedMaxRadiusMeters))
	}
	if s.VisitedAccuracyMultiplier < 0 {
		errs = append(errs, fmt.Errorf("visitedAccuracyMultiplier must be >= 0, got %v", s.VisitedAccuracyMultiplier))
	}
	if s.VisitedAccuracyRejectMeters < 0 {
		errs = append(errs, fmt.Errorf("visitedAccuracyRejectMeters must be >= 0, got %v", s.VisitedAccuracyRejectMeters))
	}
	if s.VisitedMaxSearchRadiusMeters < s.VisitedMaxRadiusMeters {
		errs = append(errs, fmt.Errorf("visitedMaxSearchRadiusMeters (%v) is below visitedMaxRadiusMeters (%v)",
			s.VisitedMaxSearchRadiusMeters, s.VisitedMaxRadiusMeters))
	}
	if s.VisitedPlaceNotesSnapshotMaxHtmlChars < 0 {
		errs = append(errs, fmt.Errorf("visitedPlaceNotesSnapshotMaxHtmlChars must be >= 0, got %d", s.VisitedPlaceNotesSnapshotMaxHtmlChars))
	}
	switch s.MissingAccuracyPolicy {
	case MissingAccuracyMaxRadius, MissingAccuracyMinRadius:
	default:
		errs = append(errs, fmt.Errorf("unknown missingAccuracyPolicy %q", s.MissingAccuracyPolicy))
	}
	switch s.CrossPlacePolicy {
	case CrossPlaceStaleness, CrossPlaceClosePrevious:
	default:
		errs = append(errs, fmt.Errorf("unknown crossPlacePolicy %q", s.CrossPlacePolicy))
	}
	return errors.Join(errs...)
}

// DefaultDetectionSettings returns the thresholds used when nothing is configured
func DefaultDetectionSettings() DetectionSettings {
	return DetectionSettings{
		LocationTimeThresholdMinutes:          5,
		VisitedRequiredHits:                   2,
		VisitedMinRadiusMeters:                35,
		VisitedMaxRadiusMeters:                150,
		VisitedAccuracyMultiplier:             1.5,
		VisitedAccuracyRejectMeters:           200,
		VisitedMaxSearchRadiusMeters:          500,
		VisitedPlaceNotesSnapshotMaxHtmlChars: 2000,
		MissingAccuracyPolicy:                 MissingAccuracyMaxRadius,
		CrossPlacePolicy:                      CrossPlaceStaleness,
	}
}
