package detection

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
	"github.com/jengzang/placevisit-backend-go/internal/spatial"
)

type candKey struct {
	userID  string
	placeID int64
}

// memDB is a transactional in-memory store: a failed unit of work restores
// the snapshot taken when it started.
type memDB struct {
	mu         sync.Mutex
	candidates map[candKey]models.PlaceVisitCandidate
	visits     map[string]models.PlaceVisitEvent
	writes     int
}

func newMemDB() *memDB {
	return &memDB{
		candidates: make(map[candKey]models.PlaceVisitCandidate),
		visits:     make(map[string]models.PlaceVisitEvent),
	}
}

func (db *memDB) Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	candidates := make(map[candKey]models.PlaceVisitCandidate, len(db.candidates))
	for k, v := range db.candidates {
		candidates[k] = v
	}
	visits := make(map[string]models.PlaceVisitEvent, len(db.visits))
	for k, v := range db.visits {
		visits[k] = v
	}
	writes := db.writes

	err := fn(ctx, Stores{Candidates: memCandidates{db}, Visits: memVisits{db}})
	if err != nil {
		db.candidates, db.visits, db.writes = candidates, visits, writes
	}
	return err
}

func (db *memDB) candidate(userID string, placeID int64) (models.PlaceVisitCandidate, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.candidates[candKey{userID, placeID}]
	return c, ok
}

func (db *memDB) putCandidate(c models.PlaceVisitCandidate) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.candidates[candKey{c.UserID, c.PlaceID}] = c
}

func (db *memDB) putVisit(v models.PlaceVisitEvent) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.visits[v.ID] = v
}

func (db *memDB) visit(id string) models.PlaceVisitEvent {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.visits[id]
}

func (db *memDB) allVisits() []models.PlaceVisitEvent {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]models.PlaceVisitEvent, 0, len(db.visits))
	for _, v := range db.visits {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArrivedAt.Before(out[j].ArrivedAt) })
	return out
}

func (db *memDB) candidateCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.candidates)
}

func (db *memDB) writeCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writes
}

type memCandidates struct{ db *memDB }

func (m memCandidates) GetCandidate(_ context.Context, userID string, placeID int64) (*models.PlaceVisitCandidate, error) {
	c, ok := m.db.candidates[candKey{userID, placeID}]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m memCandidates) UpsertCandidate(_ context.Context, c *models.PlaceVisitCandidate) error {
	m.db.writes++
	m.db.candidates[candKey{c.UserID, c.PlaceID}] = *c
	return nil
}

func (m memCandidates) DeleteCandidate(_ context.Context, userID string, placeID int64) error {
	m.db.writes++
	delete(m.db.candidates, candKey{userID, placeID})
	return nil
}

func (m memCandidates) ListStaleCandidates(_ context.Context, userID string, cutoff time.Time) ([]models.PlaceVisitCandidate, error) {
	var out []models.PlaceVisitCandidate
	for _, c := range m.db.candidates {
		if c.UserID == userID && c.LastHitAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memVisits struct{ db *memDB }

func (m memVisits) InsertVisit(_ context.Context, v *models.PlaceVisitEvent) error {
	m.db.writes++
	m.db.visits[v.ID] = *v
	return nil
}

func (m memVisits) UpdateVisit(_ context.Context, v *models.PlaceVisitEvent) error {
	if _, ok := m.db.visits[v.ID]; !ok {
		return errors.New("visit not found")
	}
	m.db.writes++
	m.db.visits[v.ID] = *v
	return nil
}

func (m memVisits) list(keep func(models.PlaceVisitEvent) bool) []models.PlaceVisitEvent {
	var out []models.PlaceVisitEvent
	for _, v := range m.db.visits {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memVisits) ListOpenVisits(_ context.Context, userID string) ([]models.PlaceVisitEvent, error) {
	return m.list(func(v models.PlaceVisitEvent) bool { return v.UserID == userID && v.IsOpen() }), nil
}

func (m memVisits) ListOpenVisitsAt(_ context.Context, userID string, placeID int64) ([]models.PlaceVisitEvent, error) {
	return m.list(func(v models.PlaceVisitEvent) bool {
		return v.UserID == userID && v.IsOpen() && v.PlaceID != nil && *v.PlaceID == placeID
	}), nil
}

func (m memVisits) ListStaleOpenVisits(_ context.Context, userID string, cutoff time.Time) ([]models.PlaceVisitEvent, error) {
	return m.list(func(v models.PlaceVisitEvent) bool {
		return v.UserID == userID && v.IsOpen() && v.LastSeenAt.Before(cutoff)
	}), nil
}

// fakeLocator returns the nearest configured place within the radius
type fakeLocator struct {
	mu     sync.Mutex
	places []models.Place
	calls  []float64 // radius of each call
	err    error
}

func (l *fakeLocator) FindNearestPlace(_ context.Context, _ string, lat, lng, radius float64) (*models.PlaceMatch, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, radius)
	if l.err != nil {
		return nil, l.err
	}
	var best *models.PlaceMatch
	for _, p := range l.places {
		d := spatial.HaversineDistance(lat, lng, p.Latitude, p.Longitude)
		if d > radius || (best != nil && d >= best.DistanceMeters) {
			continue
		}
		best = &models.PlaceMatch{
			PlaceID:        p.ID,
			DistanceMeters: d,
			TripID:         100,
			TripName:       "Lisbon 2025",
			RegionName:     "Alfama",
			PlaceName:      p.Name,
			PlaceNotes:     p.Notes,
		}
	}
	return best, nil
}

func (l *fakeLocator) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *fakeLocator) lastRadius() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[len(l.calls)-1]
}

type staticSettings struct {
	s   models.DetectionSettings
	err error
}

func (p staticSettings) GetSettings(context.Context) (models.DetectionSettings, error) {
	return p.s, p.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.VisitEvent
	err    error
}

func (n *recordingNotifier) Publish(_ context.Context, ev models.VisitEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}
