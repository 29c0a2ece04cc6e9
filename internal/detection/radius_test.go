package detection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

func TestAccuracyRejected(t *testing.T) {
	s := testSettings()
	s.VisitedAccuracyRejectMeters = 100

	assert.False(t, AccuracyRejected(s, nil))
	assert.False(t, AccuracyRejected(s, acc(99.9)))
	assert.False(t, AccuracyRejected(s, acc(100)))
	assert.True(t, AccuracyRejected(s, acc(100.1)))

	s.VisitedAccuracyRejectMeters = 0
	assert.False(t, AccuracyRejected(s, acc(1e6)))
}

func TestEffectiveRadius_NaNAccuracyTreatedAsMissing(t *testing.T) {
	s := testSettings()
	assert.Equal(t, s.VisitedMaxRadiusMeters, EffectiveRadius(s, acc(math.NaN())))
}

func TestEffectiveRadius_ZeroMultiplierUsesMin(t *testing.T) {
	s := testSettings()
	s.VisitedAccuracyMultiplier = 0
	assert.Equal(t, s.VisitedMinRadiusMeters, EffectiveRadius(s, acc(80)))
}

func TestLookupRadius_SearchCap(t *testing.T) {
	// Not a valid configuration, but the cap must hold on its own.
	s := models.DetectionSettings{
		VisitedMinRadiusMeters:       10,
		VisitedMaxRadiusMeters:       2000,
		VisitedAccuracyMultiplier:    10,
		VisitedMaxSearchRadiusMeters: 300,
		MissingAccuracyPolicy:        models.MissingAccuracyMaxRadius,
	}
	assert.Equal(t, 1000.0, EffectiveRadius(s, acc(100)))
	assert.Equal(t, 300.0, LookupRadius(s, acc(100)))
	assert.Equal(t, 300.0, LookupRadius(s, nil))
}
