package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"tapnews/internal/model"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "tapnews:favorites:"

// Redis fans favorite changes out to every API instance over pub/sub.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger}
}

func ownerChannel(ownerID string) string {
	return channelPrefix + ownerID
}

func (r *Redis) Publish(ctx context.Context, event model.FavoriteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal favorite event: %w", err)
	}
	return r.client.Publish(ctx, ownerChannel(event.OwnerID), data).Err()
}

func (r *Redis) Subscribe(ctx context.Context, ownerID string) (<-chan model.FavoriteEvent, error) {
	pubsub := r.client.Subscribe(ctx, ownerChannel(ownerID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	messages := pubsub.Channel()
	out := make(chan model.FavoriteEvent, subscriberBuffer)

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var event model.FavoriteEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					r.logger.Warn("invalid favorite event payload", "channel", msg.Channel, "error", err)
					continue
				}

				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
