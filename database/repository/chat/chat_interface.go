package chatRepo

import (
	"context"

	"companionhub/models"
)

// ChatRepository defines chat and message data access. Lookups return
// (nil, nil) when nothing matches.
type ChatRepository interface {
	// FindByParticipants finds the chat for a participant key and booking ("" for none).
	FindByParticipants(ctx context.Context, participantKey, bookingID string) (*models.Chat, error)
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	// Create inserts a chat. Returns repository.ErrDuplicate when the
	// participant/booking pair already has one.
	Create(ctx context.Context, chat *models.Chat) error
	// AppendMessage stores msg and records it as the chat's last message.
	AppendMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns messages of a chat in send order.
	ListMessages(ctx context.Context, chatID string, page, limit int) ([]models.Message, error)
	CountMessages(ctx context.Context, chatID string) (int64, error)
}
