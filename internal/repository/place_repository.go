package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/spatial"
)

// PlaceRepository handles database operations for places and answers
// nearest-place lookups for visit detection.
type PlaceRepository struct {
	db DBTX
}

// NewPlaceRepository creates a new place repository
func NewPlaceRepository(db DBTX) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// CreatePlace stores a place under one of the user's regions and indexes its S2 cell
func (r *PlaceRepository) CreatePlace(ctx context.Context, userID string, p *models.Place) error {
	if !spatial.ValidCoordinate(p.Latitude, p.Longitude) {
		return fmt.Errorf("invalid coordinate %v,%v", p.Latitude, p.Longitude)
	}

	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT t.user_id FROM regions r JOIN trips t ON t.id = r.trip_id WHERE r.id = ?`,
		p.RegionID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != userID) {
		return fmt.Errorf("region %d: %w", p.RegionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load region: %w", err)
	}

	cell := spatial.CellID(p.Latitude, p.Longitude)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO places (region_id, name, latitude, longitude, notes, cell_id) VALUES (?, ?, ?, ?, ?, ?)`,
		p.RegionID, p.Name, p.Latitude, p.Longitude, p.Notes, int64(cell))
	if err != nil {
		return fmt.Errorf("failed to create place: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

// RenamePlace changes a place name. Visits keep the name they were confirmed with.
func (r *PlaceRepository) RenamePlace(ctx context.Context, userID string, placeID int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE places SET name = ?
		WHERE id = ? AND region_id IN (SELECT r.id FROM regions r JOIN trips t ON t.id = r.trip_id WHERE t.user_id = ?)`,
		name, placeID, userID)
	return affectedOne(res, err, "rename place", placeID)
}

// DeletePlace removes a place. Its candidates go with it; its visits keep
// their snapshots and lose the place reference.
func (r *PlaceRepository) DeletePlace(ctx context.Context, userID string, placeID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM places
		WHERE id = ? AND region_id IN (SELECT r.id FROM regions r JOIN trips t ON t.id = r.trip_id WHERE t.user_id = ?)`,
		placeID, userID)
	return affectedOne(res, err, "delete place", placeID)
}

func affectedOne(res sql.Result, err error, op string, id int64) error {
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("place %d: %w", id, ErrNotFound)
	}
	return nil
}

// FindNearestPlace returns the closest place of the user's trips within
// maxRadiusMeters, nil when there is none. Candidates come from an S2 cell
// covering of the search cap; exact distance decides. Ties go to the lowest id.
func (r *PlaceRepository) FindNearestPlace(ctx context.Context, userID string, lat, lng, maxRadiusMeters float64) (*models.PlaceMatch, error) {
	if maxRadiusMeters <= 0 || !spatial.ValidCoordinate(lat, lng) {
		return nil, nil
	}

	ranges := spatial.CoverRadius(lat, lng, maxRadiusMeters)
	if len(ranges) == 0 {
		return nil, nil
	}

	cellConds := make([]string, 0, len(ranges))
	args := []interface{}{userID}
	for _, cr := range ranges {
		cellConds = append(cellConds, "p.cell_id BETWEEN ? AND ?")
		args = append(args, int64(cr.Min), int64(cr.Max))
	}

	query := `SELECT p.id, p.name, p.notes, p.latitude, p.longitude, t.id, t.name, r.name
		FROM places p
		JOIN regions r ON r.id = p.region_id
		JOIN trips t ON t.id = r.trip_id
		WHERE t.user_id = ? AND (` + strings.Join(cellConds, " OR ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby places: %w", err)
	}
	defer rows.Close()

	var best *models.PlaceMatch
	for rows.Next() {
		var m models.PlaceMatch
		var plat, plng float64
		if err := rows.Scan(&m.PlaceID, &m.PlaceName, &m.PlaceNotes, &plat, &plng, &m.TripID, &m.TripName, &m.RegionName); err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		m.DistanceMeters = spatial.HaversineDistance(lat, lng, plat, plng)
		if m.DistanceMeters > maxRadiusMeters {
			continue
		}
		if best == nil || m.DistanceMeters < best.DistanceMeters ||
			(m.DistanceMeters == best.DistanceMeters && m.PlaceID < best.PlaceID) {
			match := m
			best = &match
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}
	return best, nil
}
