package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jengzang/placevisit-backend-go/internal/models"
)

// ChannelPrefix prefixes the per-user Redis channel, "visits:<userID>"
const ChannelPrefix = "visits:"

// Channel returns the Redis channel of a user
func Channel(userID string) string {
	return ChannelPrefix + userID
}

// RedisPublisher publishes visit events as JSON on the user's channel
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher over client
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish implements detection.Notifier
func (p *RedisPublisher) Publish(ctx context.Context, event models.VisitEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode visit event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(event.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish visit event: %w", err)
	}
	return nil
}

// Relay forwards every event published on the visit channels into a local
// broker, so SSE subscribers see events processed by any replica. It returns
// when ctx is done.
func Relay(ctx context.Context, client *redis.Client, broker *Broker) error {
	sub := client.PSubscribe(ctx, ChannelPrefix+"*")
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to visit channels: %w", err)
	}

	logger := log.Logger.With().Str("component", "relay").Logger()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event models.VisitEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed visit event")
				continue
			}
			if event.UserID == "" {
				event.UserID = strings.TrimPrefix(msg.Channel, ChannelPrefix)
			}
			broker.Publish(ctx, event)
		}
	}
}
