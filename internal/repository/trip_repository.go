package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// ErrNotFound is returned when a catalog row does not exist or belongs to another user
var ErrNotFound = errors.New("not found")

// TripRepository handles database operations for trips and their regions
type TripRepository struct {
	db DBTX
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db DBTX) *TripRepository {
	return &TripRepository{db: db}
}

// CreateTrip stores a trip owned by userID
func (r *TripRepository) CreateTrip(ctx context.Context, userID, name string) (*models.Trip, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO trips (user_id, name, created_at) VALUES (?, ?, ?)`,
		userID, name, toMillis(now))
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return &models.Trip{ID: id, UserID: userID, Name: name, CreatedAt: fromMillis(toMillis(now))}, nil
}

// ListTrips returns the user's trips, oldest first
func (r *TripRepository) ListTrips(ctx context.Context, userID string) ([]models.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, name, created_at FROM trips WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		t.CreatedAt = fromMillis(createdAt)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// CreateRegion stores a region under one of the user's trips
func (r *TripRepository) CreateRegion(ctx context.Context, userID string, tripID int64, name string) (*models.Region, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM trips WHERE id = ?`, tripID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return nil, fmt.Errorf("trip %d: %w", tripID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trip: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO regions (trip_id, name) VALUES (?, ?)`, tripID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create region: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create region: %w", err)
	}
	return &models.Region{ID: id, TripID: tripID, Name: name}, nil
}
