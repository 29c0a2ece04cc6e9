package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// DefaultBuffer is the per-subscriber channel capacity
const DefaultBuffer = 32

// Broker fans visit events out to in-process subscribers of the same user.
// A subscriber whose buffer is full misses the event; Publish never blocks.
type Broker struct {
	mu      sync.RWMutex
	clients map[string]map[chan models.VisitEvent]struct{}
	buffer  int
	log     zerolog.Logger
}

// NewBroker creates a broker with the given per-subscriber buffer
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		clients: make(map[string]map[chan models.VisitEvent]struct{}),
		buffer:  buffer,
		log:     log.Logger.With().Str("component", "broker").Logger(),
	}
}

// Subscribe registers a subscriber for userID. cancel must be called once
// the subscriber is done; it closes the channel.
func (b *Broker) Subscribe(userID string) (events <-chan models.VisitEvent, cancel func()) {
	ch := make(chan models.VisitEvent, b.buffer)

	b.mu.Lock()
	subs, ok := b.clients[userID]
	if !ok {
		subs = make(map[chan models.VisitEvent]struct{})
		b.clients[userID] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.remove(userID, ch) })
	}
}

func (b *Broker) remove(userID string, ch chan models.VisitEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.clients[userID]
	delete(subs, ch)
	if len(subs) == 0 {
		delete(b.clients, userID)
	}
	close(ch)
}

// Publish implements detection.Notifier
func (b *Broker) Publish(_ context.Context, event models.VisitEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.clients[event.UserID] {
		select {
		case ch <- event:
		default:
			b.log.Warn().
				Str("user_id", event.UserID).
				Str("visit_id", event.VisitID).
				Msg("subscriber buffer full, dropping event")
		}
	}
	return nil
}

// Subscribers returns the number of subscribers of userID
func (b *Broker) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[userID])
}
