package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"companionhub/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const channelPrefix = "companionhub:"

// RedisPublisher fans events out through Redis PUBLISH/SUBSCRIBE so every
// API instance can serve every listener.
type RedisPublisher struct {
	Client *redis.Client
	Logger *zap.Logger
}

func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{Client: client, Logger: logger}
}

// Publish marshals the event and publishes it. Failures are logged only.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, event models.Notification) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.Logger.Warn("failed to encode notification", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := p.Client.Publish(ctx, channelPrefix+channel, payload).Err(); err != nil {
		p.Logger.Warn("failed to publish notification",
			zap.String("channel", channel),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

// Subscribe relays messages of channel until ctx is done.
func (p *RedisPublisher) Subscribe(ctx context.Context, channel string) (<-chan models.Notification, error) {
	sub := p.Client.Subscribe(ctx, channelPrefix+channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan models.Notification, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					p.Logger.Debug("dropping undecodable notification", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				default:
					p.Logger.Debug("listener too slow, dropping notification", zap.String("channel", channel))
				}
			}
		}
	}()
	return out, nil
}
