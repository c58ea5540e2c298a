package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"companionhub/database/repository"
	chatRepo "companionhub/database/repository/chat"
	"companionhub/models"
)

// ChatRepo is an in-memory chatRepo.ChatRepository.
type ChatRepo struct {
	mu       sync.RWMutex
	chats    map[string]models.Chat
	messages map[string][]models.Message
}

func NewChatRepo() *ChatRepo {
	return &ChatRepo{
		chats:    make(map[string]models.Chat),
		messages: make(map[string][]models.Message),
	}
}

var _ chatRepo.ChatRepository = (*ChatRepo)(nil)

func copyChat(c models.Chat) *models.Chat {
	c.Participants = append([]string(nil), c.Participants...)
	c.MessageIDs = append([]string{}, c.MessageIDs...)
	c.ParticipantSummaries = nil
	return &c
}

func (r *ChatRepo) FindByParticipants(_ context.Context, participantKey, bookingID string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.chats {
		if c.ParticipantKey == participantKey && c.BookingID == bookingID {
			return copyChat(c), nil
		}
	}
	return nil, nil
}

func (r *ChatRepo) GetByID(_ context.Context, id string) (*models.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, nil
	}
	return copyChat(c), nil
}

func (r *ChatRepo) Create(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.ID == chat.ID || (c.ParticipantKey == chat.ParticipantKey && c.BookingID == chat.BookingID) {
			return repository.ErrDuplicate
		}
	}
	r.chats[chat.ID] = *copyChat(*chat)
	return nil
}

func (r *ChatRepo) AppendMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[msg.ChatID]
	if !ok {
		return fmt.Errorf("chat %s not found", msg.ChatID)
	}
	stored := *msg
	stored.Sender = nil
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], stored)

	c.MessageIDs = append(c.MessageIDs, msg.ID)
	c.LastMessage = &models.LastMessage{Content: msg.Content, SenderID: msg.SenderID, Timestamp: msg.CreatedAt}
	c.UpdatedAt = msg.CreatedAt
	r.chats[msg.ChatID] = c
	return nil
}

func (r *ChatRepo) ListMessages(_ context.Context, chatID string, page, limit int) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := append([]models.Message(nil), r.messages[chatID]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return append([]models.Message{}, paginate(msgs, page, limit)...), nil
}

func (r *ChatRepo) CountMessages(_ context.Context, chatID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.messages[chatID])), nil
}
