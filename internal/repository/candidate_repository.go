package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// CandidateRepository handles database operations for visit candidates
type CandidateRepository struct {
	db DBTX
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db DBTX) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// GetCandidate returns the candidate of a (user, place) pair, nil when absent
func (r *CandidateRepository) GetCandidate(ctx context.Context, userID string, placeID int64) (*models.PlaceVisitCandidate, error) {
	query := `SELECT user_id, place_id, first_hit_at, last_hit_at, consecutive_hits
		FROM place_visit_candidates WHERE user_id = ? AND place_id = ?`

	var c models.PlaceVisitCandidate
	var first, last int64
	err := r.db.QueryRowContext(ctx, query, userID, placeID).Scan(&c.UserID, &c.PlaceID, &first, &last, &c.ConsecutiveHits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	c.FirstHitAt = fromMillis(first)
	c.LastHitAt = fromMillis(last)
	return &c, nil
}

// UpsertCandidate inserts the candidate or replaces the stored streak
func (r *CandidateRepository) UpsertCandidate(ctx context.Context, c *models.PlaceVisitCandidate) error {
	query := `INSERT INTO place_visit_candidates (user_id, place_id, first_hit_at, last_hit_at, consecutive_hits)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, place_id) DO UPDATE SET
			first_hit_at = excluded.first_hit_at,
			last_hit_at = excluded.last_hit_at,
			consecutive_hits = excluded.consecutive_hits`

	_, err := r.db.ExecContext(ctx, query, c.UserID, c.PlaceID, toMillis(c.FirstHitAt), toMillis(c.LastHitAt), c.ConsecutiveHits)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate: %w", err)
	}
	return nil
}

// DeleteCandidate removes the candidate of a (user, place) pair
func (r *CandidateRepository) DeleteCandidate(ctx context.Context, userID string, placeID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM place_visit_candidates WHERE user_id = ? AND place_id = ?`, userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}

// ListStaleCandidates returns the user's candidates last hit before cutoff
func (r *CandidateRepository) ListStaleCandidates(ctx context.Context, userID string, cutoff time.Time) ([]models.PlaceVisitCandidate, error) {
	query := `SELECT user_id, place_id, first_hit_at, last_hit_at, consecutive_hits
		FROM place_visit_candidates WHERE user_id = ? AND last_hit_at < ?
		ORDER BY place_id`

	rows, err := r.db.QueryContext(ctx, query, userID, toMillis(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to query stale candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.PlaceVisitCandidate
	for rows.Next() {
		var c models.PlaceVisitCandidate
		var first, last int64
		if err := rows.Scan(&c.UserID, &c.PlaceID, &first, &last, &c.ConsecutiveHits); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.FirstHitAt = fromMillis(first)
		c.LastHitAt = fromMillis(last)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
