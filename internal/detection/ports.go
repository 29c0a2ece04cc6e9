package detection

import (
	"context"
	"time"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// SettingsProvider supplies the thresholds. It is called once per ping and
// is expected to cache.
type SettingsProvider interface {
	GetSettings(ctx context.Context) (models.DetectionSettings, error)
}

// PlaceLocator finds the closest place of the user's own trips within
// maxRadiusMeters of a coordinate. A nil match with a nil error means none.
type PlaceLocator interface {
	FindNearestPlace(ctx context.Context, userID string, lat, lng, maxRadiusMeters float64) (*models.PlaceMatch, error)
}

// Notifier receives visit lifecycle events after they are committed
type Notifier interface {
	Publish(ctx context.Context, event models.VisitEvent) error
}

// Locker serialises work per user. unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// CandidateStore persists candidates. Get returns nil, nil when absent.
type CandidateStore interface {
	GetCandidate(ctx context.Context, userID string, placeID int64) (*models.PlaceVisitCandidate, error)
	UpsertCandidate(ctx context.Context, c *models.PlaceVisitCandidate) error
	DeleteCandidate(ctx context.Context, userID string, placeID int64) error
	// ListStaleCandidates returns the user's candidates with LastHitAt before cutoff
	ListStaleCandidates(ctx context.Context, userID string, cutoff time.Time) ([]models.PlaceVisitCandidate, error)
}

// VisitStore persists visits
type VisitStore interface {
	InsertVisit(ctx context.Context, v *models.PlaceVisitEvent) error
	// UpdateVisit writes LastSeenAt and EndedAt of an existing visit
	UpdateVisit(ctx context.Context, v *models.PlaceVisitEvent) error
	ListOpenVisits(ctx context.Context, userID string) ([]models.PlaceVisitEvent, error)
	ListOpenVisitsAt(ctx context.Context, userID string, placeID int64) ([]models.PlaceVisitEvent, error)
	// ListStaleOpenVisits returns open visits with LastSeenAt before cutoff
	ListStaleOpenVisits(ctx context.Context, userID string, cutoff time.Time) ([]models.PlaceVisitEvent, error)
}

// Stores is the set of stores bound to one unit of work
type Stores struct {
	Candidates CandidateStore
	Visits     VisitStore
}

// UnitOfWork runs fn atomically: either every write made through the
// provided stores commits, or none does.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
