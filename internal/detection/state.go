package detection

import "github.com/jengzang/placevisit-backend-go/internal/models"

// State is the lifecycle position of a (user, place) pair. It is stored
// across two tables (candidates and visits) but every transition is checked
// against one table here.
type State int

const (
	StateNoVisit State = iota
	StateCandidate
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNoVisit:
		return "no-visit"
	case StateCandidate:
		return "candidate"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type transition struct {
	from, to State
}

var allowedTransitions = map[transition]bool{
	{StateNoVisit, StateCandidate}:   true, // first hit below threshold
	{StateNoVisit, StateOpen}:        true, // first hit already meets threshold
	{StateCandidate, StateCandidate}: true, // reinforce or restart streak
	{StateCandidate, StateOpen}:      true, // promotion
	{StateCandidate, StateNoVisit}:   true, // eviction
	{StateOpen, StateOpen}:           true, // extension
	{StateOpen, StateClosed}:         true, // staleness or cross-place close
}

// CanTransition reports whether the state machine allows from -> to
func CanTransition(from, to State) bool {
	return allowedTransitions[transition{from, to}]
}

// resolveState derives the live state of a pair from its rows. An open visit
// wins over any candidate row.
func resolveState(candidate *models.PlaceVisitCandidate, open *models.PlaceVisitEvent) State {
	switch {
	case open != nil && open.IsOpen():
		return StateOpen
	case candidate != nil:
		return StateCandidate
	default:
		return StateNoVisit
	}
}

// visitState maps a stored visit to its lifecycle state
func visitState(v *models.PlaceVisitEvent) State {
	if v.IsOpen() {
		return StateOpen
	}
	return StateClosed
}
