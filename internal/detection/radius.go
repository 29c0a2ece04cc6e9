package detection

import (
	"math"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// AccuracyRejected reports whether a ping is too imprecise to be used at all.
// A missing accuracy or a zero threshold never rejects.
func AccuracyRejected(s models.DetectionSettings, accuracyMeters *float64) bool {
	return s.VisitedAccuracyRejectMeters > 0 &&
		accuracyMeters != nil &&
		*accuracyMeters > s.VisitedAccuracyRejectMeters
}

// EffectiveRadius is the accuracy-adjusted distance within which a ping
// counts as being at a place.
func EffectiveRadius(s models.DetectionSettings, accuracyMeters *float64) float64 {
	if accuracyMeters == nil || math.IsNaN(*accuracyMeters) {
		if s.MissingAccuracyPolicy == models.MissingAccuracyMinRadius {
			return s.VisitedMinRadiusMeters
		}
		return s.VisitedMaxRadiusMeters
	}
	r := *accuracyMeters * s.VisitedAccuracyMultiplier
	return math.Min(math.Max(r, s.VisitedMinRadiusMeters), s.VisitedMaxRadiusMeters)
}

// LookupRadius caps the effective radius by the maximum search radius
func LookupRadius(s models.DetectionSettings, accuracyMeters *float64) float64 {
	return math.Min(EffectiveRadius(s, accuracyMeters), s.VisitedMaxSearchRadiusMeters)
}
