package detection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jengzang/placevisit-backend-go/internal/metrics"
	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// Outcome is what a single ping did. None of these are errors.
type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"  // accuracy gate, nothing touched
	OutcomeNoPlace   Outcome = "no-place"  // sweeps only
	OutcomeCandidate Outcome = "candidate" // streak started or reinforced
	OutcomePromoted  Outcome = "promoted"  // visit confirmed
	OutcomeExtended  Outcome = "extended"  // open visit seen again
)

// Processor is the single entry point of visit detection
type Processor struct {
	settings SettingsProvider
	locator  PlaceLocator
	uow      UnitOfWork
	locker   Locker
	notifier Notifier

	now   func() time.Time
	newID func() string
	log   zerolog.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithClock sets the clock used for pings without a timestamp
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithIDGenerator sets the visit id generator
func WithIDGenerator(newID func() string) Option {
	return func(p *Processor) { p.newID = newID }
}

// WithLogger sets the processor logger
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// NewProcessor wires the processor to its collaborators. notifier may be nil.
func NewProcessor(settings SettingsProvider, locator PlaceLocator, uow UnitOfWork, locker Locker, notifier Notifier, opts ...Option) *Processor {
	p := &Processor{
		settings: settings,
		locator:  locator,
		uow:      uow,
		locker:   locker,
		notifier: notifier,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		log:      log.Logger.With().Str("component", "detection").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// pingResult collects what a unit of work did, for publishing after commit
type pingResult struct {
	outcome Outcome
	events  []models.VisitEvent
	opened  int
	closes  []string
	evicted int
}

func (r *pingResult) closed(v *models.PlaceVisitEvent, reason string) {
	r.events = append(r.events, models.NewVisitEvent(models.EventVisitEnded, v))
	r.closes = append(r.closes, reason)
}

// ProcessPing classifies one ping of one user. Pings of the same user are
// serialised; sweeps, lookup and the candidate/visit update commit together.
func (p *Processor) ProcessPing(ctx context.Context, ping models.Ping) (Outcome, error) {
	start := time.Now()
	outcome, err := p.processPing(ctx, ping)
	if err != nil {
		metrics.RecordPingFailure(failureKind(err))
		if errors.Is(err, ErrInvariantViolation) {
			p.log.Error().Err(err).Str("user_id", ping.UserID).Msg("refusing ping update")
		}
		return "", err
	}
	metrics.RecordPing(string(outcome), time.Since(start))
	return outcome, nil
}

func (p *Processor) processPing(ctx context.Context, ping models.Ping) (Outcome, error) {
	if ping.UserID == "" {
		return "", errors.New("ping has no user id")
	}
	now := ping.At
	if now.IsZero() {
		now = p.now()
	}
	now = now.UTC()

	settings, err := p.settings.GetSettings(ctx)
	if err != nil {
		return "", collaboratorErr("load settings", err)
	}
	if err := settings.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if AccuracyRejected(settings, ping.AccuracyMeters) {
		p.log.Debug().
			Str("user_id", ping.UserID).
			Float64("accuracy", *ping.AccuracyMeters).
			Msg("ping rejected by accuracy gate")
		return OutcomeRejected, nil
	}

	unlock, err := p.locker.Lock(ctx, ping.UserID)
	if err != nil {
		return "", collaboratorErr("acquire user lock", err)
	}
	defer unlock()

	var res pingResult
	err = p.uow.Do(ctx, func(ctx context.Context, s Stores) error {
		res = pingResult{}
		if err := p.sweepStaleVisits(ctx, s, settings, ping.UserID, now, &res); err != nil {
			return err
		}
		if err := p.sweepStaleCandidates(ctx, s, settings, ping.UserID, now, &res); err != nil {
			return err
		}

		radius := LookupRadius(settings, ping.AccuracyMeters)
		match, err := p.locator.FindNearestPlace(ctx, ping.UserID, ping.Latitude, ping.Longitude, radius)
		if err != nil {
			return collaboratorErr("find nearest place", err)
		}
		if match == nil {
			res.outcome = OutcomeNoPlace
			return nil
		}
		return p.apply(ctx, s, settings, ping.UserID, match, now, &res)
	})
	if err != nil {
		return "", collaboratorErr("commit ping", err)
	}

	p.afterCommit(ctx, &res)
	return res.outcome, nil
}

// apply moves the (user, matched place) pair one step through the state machine
func (p *Processor) apply(ctx context.Context, s Stores, settings models.DetectionSettings, userID string, match *models.PlaceMatch, now time.Time, res *pingResult) error {
	placeID := match.PlaceID

	open, err := s.Visits.ListOpenVisitsAt(ctx, userID, placeID)
	if err != nil {
		return collaboratorErr("load open visit", err)
	}
	if len(open) > 1 {
		return &InvariantError{UserID: userID, PlaceID: placeID,
			Detail: fmt.Sprintf("%d open visits for the same place", len(open))}
	}
	var openVisit *models.PlaceVisitEvent
	if len(open) == 1 {
		openVisit = &open[0]
	}

	// A confirmed visit does not need re-confirming: skip the candidate table.
	if openVisit != nil {
		if err := p.transition(userID, placeID, StateOpen, StateOpen); err != nil {
			return err
		}
		extendVisit(openVisit, now)
		if err := s.Visits.UpdateVisit(ctx, openVisit); err != nil {
			return collaboratorErr("extend visit", err)
		}
		res.outcome = OutcomeExtended
		return nil
	}

	candidate, err := s.Candidates.GetCandidate(ctx, userID, placeID)
	if err != nil {
		return collaboratorErr("load candidate", err)
	}
	if candidate != nil && (candidate.ConsecutiveHits < 1 || candidate.LastHitAt.Before(candidate.FirstHitAt)) {
		return &InvariantError{UserID: userID, PlaceID: placeID,
			Detail: fmt.Sprintf("corrupt candidate: %d hits, first hit %s, last hit %s",
				candidate.ConsecutiveHits, candidate.FirstHitAt.Format(time.RFC3339), candidate.LastHitAt.Format(time.RFC3339))}
	}
	if candidate != nil && candidate.Predates(now, settings.HitWindow()) {
		p.log.Debug().
			Str("user_id", userID).
			Int64("place_id", placeID).
			Time("at", now).
			Time("last_hit_at", candidate.LastHitAt).
			Msg("ping predates candidate streak, ignored")
		res.outcome = OutcomeCandidate
		return nil
	}
	from := resolveState(candidate, nil)

	// A candidate already at or above a lowered threshold promotes on its next
	// in-window hit.
	next, restarted := reinforce(candidate, userID, placeID, now, settings.HitWindow())
	if restarted {
		p.log.Debug().Str("user_id", userID).Int64("place_id", placeID).Msg("candidate outside hit window, streak restarted")
	}

	if !promotable(next, settings.VisitedRequiredHits) {
		if err := p.transition(userID, placeID, from, StateCandidate); err != nil {
			return err
		}
		if err := s.Candidates.UpsertCandidate(ctx, next); err != nil {
			return collaboratorErr("save candidate", err)
		}
		res.outcome = OutcomeCandidate
		return nil
	}

	if err := p.transition(userID, placeID, from, StateOpen); err != nil {
		return err
	}
	if candidate != nil {
		if err := s.Candidates.DeleteCandidate(ctx, userID, placeID); err != nil {
			return collaboratorErr("consume candidate", err)
		}
	}
	if settings.CrossPlacePolicy == models.CrossPlaceClosePrevious {
		if err := p.closeOtherVisits(ctx, s, userID, placeID, now, res); err != nil {
			return err
		}
	}
	visit := newVisit(p.newID(), next, match, now, settings.VisitedPlaceNotesSnapshotMaxHtmlChars)
	if err := s.Visits.InsertVisit(ctx, visit); err != nil {
		return collaboratorErr("insert visit", err)
	}
	res.events = append(res.events, models.NewVisitEvent(models.EventVisitConfirmed, visit))
	res.opened++
	res.outcome = OutcomePromoted
	p.log.Info().
		Str("user_id", userID).
		Int64("place_id", placeID).
		Str("visit_id", visit.ID).
		Time("arrived_at", visit.ArrivedAt).
		Msg("visit confirmed")
	return nil
}

// closeOtherVisits ends every open visit of the user at a place other than placeID
func (p *Processor) closeOtherVisits(ctx context.Context, s Stores, userID string, placeID int64, now time.Time, res *pingResult) error {
	open, err := s.Visits.ListOpenVisits(ctx, userID)
	if err != nil {
		return collaboratorErr("list open visits", err)
	}
	for i := range open {
		v := &open[i]
		if v.PlaceID != nil && *v.PlaceID == placeID {
			continue
		}
		if err := p.transition(userID, placeIDOf(v), StateOpen, StateClosed); err != nil {
			return err
		}
		closeVisit(v, now)
		if err := s.Visits.UpdateVisit(ctx, v); err != nil {
			return collaboratorErr("close previous visit", err)
		}
		res.closed(v, metrics.CloseReasonCrossPlace)
	}
	return nil
}

func (p *Processor) transition(userID string, placeID int64, from, to State) error {
	if !CanTransition(from, to) {
		return &InvariantError{UserID: userID, PlaceID: placeID,
			Detail: fmt.Sprintf("illegal transition %s -> %s", from, to)}
	}
	return nil
}

// afterCommit records metrics and publishes events. Publish failures are
// logged only; the visit rows are already committed.
func (p *Processor) afterCommit(ctx context.Context, res *pingResult) {
	for i := 0; i < res.opened; i++ {
		metrics.RecordVisitOpened()
	}
	for _, reason := range res.closes {
		metrics.RecordVisitClosed(reason)
	}
	if res.evicted > 0 {
		metrics.RecordCandidatesEvicted(res.evicted)
	}
	if p.notifier == nil {
		return
	}
	for _, ev := range res.events {
		if err := p.notifier.Publish(ctx, ev); err != nil {
			metrics.RecordNotifyFailure()
			p.log.Warn().Err(err).
				Str("user_id", ev.UserID).
				Str("visit_id", ev.VisitID).
				Str("type", ev.Type).
				Msg("failed to publish visit event")
		}
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvariantViolation):
		return "invariant"
	case errors.Is(err, ErrInvalidSettings):
		return "settings"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrCollaborator):
		return "collaborator"
	default:
		return "other"
	}
}
