package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

func TestSettingsRepository_DefaultsWhenEmpty(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)

	s, err := repo.Load(context.Background(), models.DefaultDetectionSettings())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDetectionSettings(), s)
}

func TestSettingsRepository_SaveLoad(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	want := models.DefaultDetectionSettings()
	want.LocationTimeThresholdMinutes = 2.5
	want.VisitedRequiredHits = 3
	want.CrossPlacePolicy = models.CrossPlaceClosePrevious
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx, models.DefaultDetectionSettings())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// saving again overwrites
	want.VisitedRequiredHits = 4
	require.NoError(t, repo.Save(ctx, want))
	got, err = repo.Load(ctx, models.DefaultDetectionSettings())
	require.NoError(t, err)
	assert.Equal(t, 4, got.VisitedRequiredHits)
}

func TestSettingsRepository_PartialOverride(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO detection_settings (key, value, updated_at) VALUES ('visitedMaxRadiusMeters', '90', 0), ('unknownKey', '"x"', 0)`)
	require.NoError(t, err)

	got, err := repo.Load(ctx, models.DefaultDetectionSettings())
	require.NoError(t, err)
	assert.Equal(t, 90.0, got.VisitedMaxRadiusMeters)
	assert.Equal(t, 2, got.VisitedRequiredHits)
}
