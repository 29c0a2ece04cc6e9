package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

const visitColumns = `id, user_id, place_id, arrived_at, last_seen_at, ended_at,
	trip_id_snapshot, trip_name_snapshot, region_name_snapshot, place_name_snapshot, place_notes_snapshot,
	created_at, updated_at`

// VisitRepository handles database operations for place visits
type VisitRepository struct {
	db DBTX
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db DBTX) *VisitRepository {
	return &VisitRepository{db: db}
}

// InsertVisit stores a newly confirmed visit
func (r *VisitRepository) InsertVisit(ctx context.Context, v *models.PlaceVisitEvent) error {
	query := `INSERT INTO place_visit_events (` + visitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.UserID, nullInt64(v.PlaceID), toMillis(v.ArrivedAt), toMillis(v.LastSeenAt), nullMillis(v.EndedAt),
		nullInt64(v.TripIDSnapshot), v.TripNameSnapshot, v.RegionNameSnapshot, v.PlaceNameSnapshot, v.PlaceNotesSnapshot,
		toMillis(v.CreatedAt), toMillis(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// UpdateVisit writes the mutable fields of a visit. Snapshots and ArrivedAt
// never change after insert.
func (r *VisitRepository) UpdateVisit(ctx context.Context, v *models.PlaceVisitEvent) error {
	query := `UPDATE place_visit_events SET last_seen_at = ?, ended_at = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, toMillis(v.LastSeenAt), nullMillis(v.EndedAt), toMillis(v.UpdatedAt), v.ID)
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update visit: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("failed to update visit %s: not found", v.ID)
	}
	return nil
}

// ListOpenVisits returns every open visit of the user
func (r *VisitRepository) ListOpenVisits(ctx context.Context, userID string) ([]models.PlaceVisitEvent, error) {
	return r.query(ctx, `SELECT `+visitColumns+` FROM place_visit_events
		WHERE user_id = ? AND ended_at IS NULL ORDER BY arrived_at, id`, userID)
}

// ListOpenVisitsAt returns the user's open visits at one place
func (r *VisitRepository) ListOpenVisitsAt(ctx context.Context, userID string, placeID int64) ([]models.PlaceVisitEvent, error) {
	return r.query(ctx, `SELECT `+visitColumns+` FROM place_visit_events
		WHERE user_id = ? AND place_id = ? AND ended_at IS NULL ORDER BY arrived_at, id`, userID, placeID)
}

// ListStaleOpenVisits returns the user's open visits last seen before cutoff
func (r *VisitRepository) ListStaleOpenVisits(ctx context.Context, userID string, cutoff time.Time) ([]models.PlaceVisitEvent, error) {
	return r.query(ctx, `SELECT `+visitColumns+` FROM place_visit_events
		WHERE user_id = ? AND ended_at IS NULL AND last_seen_at < ? ORDER BY arrived_at, id`, userID, toMillis(cutoff))
}

// GetByID returns a visit of the user, nil when absent
func (r *VisitRepository) GetByID(ctx context.Context, userID, id string) (*models.PlaceVisitEvent, error) {
	visits, err := r.query(ctx, `SELECT `+visitColumns+` FROM place_visit_events WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, nil
	}
	return &visits[0], nil
}

// List retrieves the user's visits with filtering and pagination, newest first
func (r *VisitRepository) List(ctx context.Context, filter models.VisitFilter) ([]models.PlaceVisitEvent, int64, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.Open != nil {
		if *filter.Open {
			conditions = append(conditions, "ended_at IS NULL")
		} else {
			conditions = append(conditions, "ended_at IS NOT NULL")
		}
	}
	if filter.PlaceID > 0 {
		conditions = append(conditions, "place_id = ?")
		args = append(args, filter.PlaceID)
	}
	if filter.From > 0 {
		conditions = append(conditions, "arrived_at >= ?")
		args = append(args, filter.From)
	}
	if filter.To > 0 {
		conditions = append(conditions, "arrived_at < ?")
		args = append(args, filter.To)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM place_visit_events"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count visits: %w", err)
	}

	filter.Normalize()
	offset := (filter.Page - 1) * filter.PageSize
	query := `SELECT ` + visitColumns + ` FROM place_visit_events` + where + ` ORDER BY arrived_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, offset)

	visits, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

func (r *VisitRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.PlaceVisitEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []models.PlaceVisitEvent
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate visits: %w", err)
	}
	return visits, nil
}

func scanVisit(rows *sql.Rows) (models.PlaceVisitEvent, error) {
	var v models.PlaceVisitEvent
	var placeID, endedAt, tripID sql.NullInt64
	var arrivedAt, lastSeenAt, createdAt, updatedAt int64

	err := rows.Scan(
		&v.ID, &v.UserID, &placeID, &arrivedAt, &lastSeenAt, &endedAt,
		&tripID, &v.TripNameSnapshot, &v.RegionNameSnapshot, &v.PlaceNameSnapshot, &v.PlaceNotesSnapshot,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return v, fmt.Errorf("failed to scan visit: %w", err)
	}

	v.PlaceID = fromNullInt64(placeID)
	v.ArrivedAt = fromMillis(arrivedAt)
	v.LastSeenAt = fromMillis(lastSeenAt)
	v.EndedAt = fromNullMillis(endedAt)
	v.TripIDSnapshot = fromNullInt64(tripID)
	v.CreatedAt = fromMillis(createdAt)
	v.UpdatedAt = fromMillis(updatedAt)
	return v, nil
}
