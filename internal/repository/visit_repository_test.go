package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

func newTestVisit(id, userID string, placeID int64, arrived time.Time) *models.PlaceVisitEvent {
	return &models.PlaceVisitEvent{
		ID:                 id,
		UserID:             userID,
		PlaceID:            ptr(placeID),
		ArrivedAt:          arrived,
		LastSeenAt:         arrived.Add(5 * time.Minute),
		TripIDSnapshot:     ptr(int64(1)),
		TripNameSnapshot:   "Lisbon 2025",
		RegionNameSnapshot: "Alfama",
		PlaceNameSnapshot:  "Miradouro de Santa Luzia",
		PlaceNotesSnapshot: "Sunset <b>views</b>",
		CreatedAt:          arrived.Add(5 * time.Minute),
		UpdatedAt:          arrived.Add(5 * time.Minute),
	}
}

func TestVisitRepository_InsertUpdateGet(t *testing.T) {
	db := openTestDB(t)
	c := seedLisbon(t, db, "user-1")
	repo := NewVisitRepository(db)
	ctx := context.Background()

	v := newTestVisit("visit-1", "user-1", c.miradouro.ID, t0)
	require.NoError(t, repo.InsertVisit(ctx, v))

	open, err := repo.ListOpenVisitsAt(ctx, "user-1", c.miradouro.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].IsOpen())
	assert.Equal(t, "Alfama", open[0].RegionNameSnapshot)
	assert.Equal(t, int64(1), *open[0].TripIDSnapshot)

	v.LastSeenAt = t0.Add(20 * time.Minute)
	v.Close()
	v.UpdatedAt = t0.Add(70 * time.Minute)
	require.NoError(t, repo.UpdateVisit(ctx, v))

	got, err := repo.GetByID(ctx, "user-1", "visit-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.EndedAt)
	assert.True(t, got.EndedAt.Equal(t0.Add(20*time.Minute)))
	assert.True(t, got.ArrivedAt.Equal(t0))

	got, err = repo.GetByID(ctx, "user-2", "visit-1")
	require.NoError(t, err)
	assert.Nil(t, got, "visits of other users are invisible")

	missing := newTestVisit("nope", "user-1", c.miradouro.ID, t0)
	assert.Error(t, repo.UpdateVisit(ctx, missing))
}

func TestVisitRepository_OneOpenVisitPerPlace(t *testing.T) {
	db := openTestDB(t)
	c := seedLisbon(t, db, "user-1")
	repo := NewVisitRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertVisit(ctx, newTestVisit("a", "user-1", c.miradouro.ID, t0)))
	assert.Error(t, repo.InsertVisit(ctx, newTestVisit("b", "user-1", c.miradouro.ID, t0.Add(time.Hour))))
	assert.NoError(t, repo.InsertVisit(ctx, newTestVisit("c", "user-1", c.cathedral.ID, t0.Add(time.Hour))))
}

func TestVisitRepository_ListStaleOpenVisits(t *testing.T) {
	db := openTestDB(t)
	c := seedLisbon(t, db, "user-1")
	repo := NewVisitRepository(db)
	ctx := context.Background()

	old := newTestVisit("old", "user-1", c.miradouro.ID, t0)
	fresh := newTestVisit("fresh", "user-1", c.cathedral.ID, t0.Add(time.Hour))
	require.NoError(t, repo.InsertVisit(ctx, old))
	require.NoError(t, repo.InsertVisit(ctx, fresh))

	stale, err := repo.ListStaleOpenVisits(ctx, "user-1", t0.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].ID)

	all, err := repo.ListOpenVisits(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestVisitRepository_List(t *testing.T) {
	db := openTestDB(t)
	c := seedLisbon(t, db, "user-1")
	repo := NewVisitRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		v := newTestVisit(string(rune('a'+i)), "user-1", c.cathedral.ID, t0.Add(time.Duration(i)*time.Hour))
		if i < 4 {
			v.Close()
		}
		require.NoError(t, repo.InsertVisit(ctx, v))
	}
	require.NoError(t, repo.InsertVisit(ctx, newTestVisit("m", "user-1", c.miradouro.ID, t0)))

	visits, total, err := repo.List(ctx, models.VisitFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, visits, 6)
	assert.Equal(t, "e", visits[0].ID, "newest first")

	visits, total, err = repo.List(ctx, models.VisitFilter{UserID: "user-1", Open: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, v := range visits {
		assert.True(t, v.IsOpen())
	}

	_, total, err = repo.List(ctx, models.VisitFilter{UserID: "user-1", PlaceID: c.miradouro.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	visits, total, err = repo.List(ctx, models.VisitFilter{
		UserID: "user-1", PlaceID: c.cathedral.ID,
		From: t0.Add(time.Hour).UnixMilli(), To: t0.Add(3 * time.Hour).UnixMilli(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, visits, 2)
	assert.Equal(t, "c", visits[0].ID)

	visits, total, err = repo.List(ctx, models.VisitFilter{UserID: "user-1", Page: 2, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Len(t, visits, 2)

	_, total, err = repo.List(ctx, models.VisitFilter{UserID: "user-2"})
	require.NoError(t, err)
	assert.Zero(t, total)
}
