// Package notification fans events out to listeners. Delivery is
// best-effort: nothing is acknowledged, ordered across channels or kept
// for offline recipients.
package notification

import (
	"context"
	"time"

	"companionhub/models"
)

// Publisher pushes an event to every current listener of a channel.
// Publish never fails from the caller's point of view.
type Publisher interface {
	Publish(ctx context.Context, channel string, event models.Notification)
}

// Subscriber streams the events of one channel until ctx is done, at which
// point the returned channel is closed.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan models.Notification, error)
}

// Broker is both ends of the fan-out.
type Broker interface {
	Publisher
	Subscriber
}

func UserChannel(userID string) string { return "user:" + userID }
func ChatChannel(chatID string) string { return "chat:" + chatID }

// NewEvent stamps an event of the given type.
func NewEvent(eventType string, data any) models.Notification {
	return models.Notification{Type: eventType, Data: data, CreatedAt: time.Now()}
}

// PublishToUsers publishes event on the user channel of every ID, skipping blanks.
func PublishToUsers(ctx context.Context, p Publisher, event models.Notification, userIDs ...string) {
	for _, id := range userIDs {
		if id != "" {
			p.Publish(ctx, UserChannel(id), event)
		}
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, models.Notification) {}
