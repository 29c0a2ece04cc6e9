package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jengzang/placevisit-backend-go/internal/database"
	"github.com/jengzang/placevisit-backend-go/internal/models"
)

var t0 = time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "placevisit.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateUp(db))
	return db
}

type catalog struct {
	trip      *models.Trip
	region    *models.Region
	miradouro models.Place
	cathedral models.Place
}

// seedLisbon creates one trip with two places 355m apart for userID
func seedLisbon(t *testing.T, db *sql.DB, userID string) catalog {
	t.Helper()
	ctx := context.Background()
	trips := NewTripRepository(db)
	places := NewPlaceRepository(db)

	trip, err := trips.CreateTrip(ctx, userID, "Lisbon 2025")
	require.NoError(t, err)
	region, err := trips.CreateRegion(ctx, userID, trip.ID, "Alfama")
	require.NoError(t, err)

	c := catalog{
		trip:      trip,
		region:    region,
		miradouro: models.Place{RegionID: region.ID, Name: "Miradouro de Santa Luzia", Latitude: 38.7115, Longitude: -9.1300, Notes: "Sunset <b>views</b>"},
		cathedral: models.Place{RegionID: region.ID, Name: "Sé de Lisboa", Latitude: 38.7098, Longitude: -9.1335},
	}
	require.NoError(t, places.CreatePlace(ctx, userID, &c.miradouro))
	require.NoError(t, places.CreatePlace(ctx, userID, &c.cathedral))
	return c
}

func ptr[T any](v T) *T { return &v }
