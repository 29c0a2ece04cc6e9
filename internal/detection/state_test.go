package detection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

func TestCanTransition_Exhaustive(t *testing.T) {
	states := []State{StateNoVisit, StateCandidate, StateOpen, StateClosed}
	allowed := map[[2]State]bool{
		{StateNoVisit, StateCandidate}:   true,
		{StateNoVisit, StateOpen}:        true,
		{StateCandidate, StateCandidate}: true,
		{StateCandidate, StateOpen}:      true,
		{StateCandidate, StateNoVisit}:   true,
		{StateOpen, StateOpen}:           true,
		{StateOpen, StateClosed}:         true,
	}
	for _, from := range states {
		for _, to := range states {
			want := allowed[[2]State{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestClosedIsTerminal(t *testing.T) {
	for _, to := range []State{StateNoVisit, StateCandidate, StateOpen, StateClosed} {
		assert.False(t, CanTransition(StateClosed, to))
	}
}

func TestResolveState(t *testing.T) {
	now := time.Now()
	ended := now
	cand := &models.PlaceVisitCandidate{ConsecutiveHits: 1}
	open := &models.PlaceVisitEvent{ArrivedAt: now, LastSeenAt: now}
	closed := &models.PlaceVisitEvent{ArrivedAt: now, LastSeenAt: now, EndedAt: &ended}

	assert.Equal(t, StateNoVisit, resolveState(nil, nil))
	assert.Equal(t, StateCandidate, resolveState(cand, nil))
	assert.Equal(t, StateOpen, resolveState(nil, open))
	assert.Equal(t, StateOpen, resolveState(cand, open))
	assert.Equal(t, StateCandidate, resolveState(cand, closed))
	assert.Equal(t, StateClosed, visitState(closed))
	assert.Equal(t, "open", StateOpen.String())
}
