package detection

import (
	"context"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/metrics"
	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// sweepStaleVisits closes the user's open visits that have not been seen
// for longer than EndVisitAfter. Only this user's rows are touched.
func (p *Processor) sweepStaleVisits(ctx context.Context, s Stores, settings models.DetectionSettings, userID string, now time.Time, res *pingResult) error {
	cutoff := now.Add(-settings.EndVisitAfter())
	stale, err := s.Visits.ListStaleOpenVisits(ctx, userID, cutoff)
	if err != nil {
		return collaboratorErr("list stale visits", err)
	}
	for i := range stale {
		v := &stale[i]
		if err := p.transition(userID, placeIDOf(v), visitState(v), StateClosed); err != nil {
			return err
		}
		closeVisit(v, now)
		if err := s.Visits.UpdateVisit(ctx, v); err != nil {
			return collaboratorErr("close stale visit", err)
		}
		res.closed(v, metrics.CloseReasonStale)
		p.log.Debug().
			Str("user_id", userID).
			Str("visit_id", v.ID).
			Time("ended_at", *v.EndedAt).
			Msg("closed stale visit")
	}
	return nil
}

// sweepStaleCandidates evicts candidates whose last hit is older than
// CandidateStale, wherever the current ping is.
func (p *Processor) sweepStaleCandidates(ctx context.Context, s Stores, settings models.DetectionSettings, userID string, now time.Time, res *pingResult) error {
	cutoff := now.Add(-settings.CandidateStale())
	stale, err := s.Candidates.ListStaleCandidates(ctx, userID, cutoff)
	if err != nil {
		return collaboratorErr("list stale candidates", err)
	}
	for _, c := range stale {
		if err := p.transition(userID, c.PlaceID, StateCandidate, StateNoVisit); err != nil {
			return err
		}
		if err := s.Candidates.DeleteCandidate(ctx, userID, c.PlaceID); err != nil {
			return collaboratorErr("evict stale candidate", err)
		}
	}
	res.evicted += len(stale)
	return nil
}

func placeIDOf(v *models.PlaceVisitEvent) int64 {
	if v.PlaceID == nil {
		return 0
	}
	return *v.PlaceID
}
