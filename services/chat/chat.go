// Package chat implements two-party conversations, optionally tied to a booking.
package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"companionhub/database/repository"
	bookingRepo "companionhub/database/repository/booking"
	chatRepo "companionhub/database/repository/chat"
	userRepo "companionhub/database/repository/user"
	"companionhub/models"
	"companionhub/services/notification"
	"companionhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatService interface {
	CreateOrGet(ctx context.Context, caller *models.User, in CreateChatInput) (*models.Chat, error)
	SendMessage(ctx context.Context, caller *models.User, in SendMessageInput) (*models.Message, error)
	ListMessages(ctx context.Context, caller *models.User, chatID string, page, limit int) (*MessagePage, error)
}

type DefaultChatService struct {
	Chats     chatRepo.ChatRepository
	Bookings  bookingRepo.BookingRepository
	Users     userRepo.UserRepository
	Publisher notification.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

type CreateChatInput struct {
	ParticipantID string `json:"participantId" validate:"required"`
	BookingID     string `json:"bookingId"`
}

type SendMessageInput struct {
	ChatID  string `json:"chatId" validate:"required"`
	Content string `json:"content" validate:"required,max=2000"`
}

type MessagePage struct {
	Messages   []models.Message  `json:"messages"`
	Pagination models.Pagination `json:"pagination"`
}

func (s *DefaultChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// participantKey orders the pair so both sides map to the same chat.
func participantKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, ":")
}

// CreateOrGet returns the caller's chat with participantID, creating it on
// first use. With a booking, only its two parties may chat about it.
func (s *DefaultChatService) CreateOrGet(ctx context.Context, caller *models.User, in CreateChatInput) (*models.Chat, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.ParticipantID == caller.ID {
		return nil, utils.ValidationError("Cannot start a chat with yourself")
	}

	if in.BookingID != "" {
		b, err := s.Bookings.GetByID(ctx, in.BookingID)
		if err != nil {
			s.Logger.Error("failed to load booking for chat", zap.String("bookingId", in.BookingID), zap.Error(err))
			return nil, utils.InternalError("failed to load booking", err)
		}
		if b == nil {
			return nil, utils.NewError(utils.KindNotFound, "Booking not found")
		}
		if !b.IsParticipant(caller.ID) {
			return nil, utils.NewError(utils.KindForbidden, "Access denied")
		}
		if in.ParticipantID != b.OtherParty(caller.ID) {
			return nil, utils.ValidationError("Invalid participant for this booking")
		}
	} else {
		other, err := s.Users.GetByID(ctx, in.ParticipantID)
		if err != nil {
			s.Logger.Error("failed to load chat participant", zap.Error(err))
			return nil, utils.InternalError("failed to load participant", err)
		}
		if other == nil {
			return nil, utils.NewError(utils.KindNotFound, "User not found")
		}
	}

	key := participantKey(caller.ID, in.ParticipantID)
	chat, err := s.Chats.FindByParticipants(ctx, key, in.BookingID)
	if err != nil {
		s.Logger.Error("failed to find chat", zap.Error(err))
		return nil, utils.InternalError("failed to find chat", err)
	}
	if chat == nil {
		chat, err = s.create(ctx, caller.ID, in, key)
		if err != nil {
			return nil, err
		}
	}

	summaries, err := s.Users.GetSummaries(ctx, chat.Participants)
	if err != nil {
		s.Logger.Warn("failed to resolve chat participants", zap.Error(err))
	} else {
		for _, id := range chat.Participants {
			if sum, ok := summaries[id]; ok {
				chat.ParticipantSummaries = append(chat.ParticipantSummaries, sum)
			}
		}
	}
	return chat, nil
}

func (s *DefaultChatService) create(ctx context.Context, callerID string, in CreateChatInput, key string) (*models.Chat, error) {
	now := s.now()
	chat := &models.Chat{
		ID:             uuid.NewString(),
		Participants:   []string{callerID, in.ParticipantID},
		ParticipantKey: key,
		BookingID:      in.BookingID,
		MessageIDs:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.Chats.Create(ctx, chat)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with the other participant; use their chat.
		existing, findErr := s.Chats.FindByParticipants(ctx, key, in.BookingID)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		err = findErr
	}
	if err != nil {
		s.Logger.Error("failed to create chat", zap.Error(err))
		return nil, utils.InternalError("failed to create chat", err)
	}
	return chat, nil
}

// loadForParticipant fetches a chat the caller takes part in.
func (s *DefaultChatService) loadForParticipant(ctx context.Context, caller *models.User, chatID string) (*models.Chat, error) {
	chat, err := s.Chats.GetByID(ctx, chatID)
	if err != nil {
		s.Logger.Error("failed to load chat", zap.String("chatId", chatID), zap.Error(err))
		return nil, utils.InternalError("failed to load chat", err)
	}
	if chat == nil {
		return nil, utils.NewError(utils.KindNotFound, "Chat not found")
	}
	if !chat.HasParticipant(caller.ID) {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	return chat, nil
}

// SendMessage stores a message and pushes it to the chat and the receiver.
func (s *DefaultChatService) SendMessage(ctx context.Context, caller *models.User, in SendMessageInput) (*models.Message, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	chat, err := s.loadForParticipant(ctx, caller, in.ChatID)
	if err != nil {
		return nil, err
	}

	var receiver string
	for _, p := range chat.Participants {
		if p != caller.ID {
			receiver = p
		}
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		ChatID:     chat.ID,
		SenderID:   caller.ID,
		ReceiverID: receiver,
		BookingID:  chat.BookingID,
		Content:    in.Content,
		CreatedAt:  s.now(),
	}
	if err := s.Chats.AppendMessage(ctx, msg); err != nil {
		s.Logger.Error("failed to store message", zap.String("chatId", chat.ID), zap.Error(err))
		return nil, utils.InternalError("failed to send message", err)
	}
	msg.Sender = caller.Summary()

	event := notification.NewEvent(models.EventChatMessage, msg)
	s.Publisher.Publish(ctx, notification.ChatChannel(chat.ID), event)
	notification.PublishToUsers(ctx, s.Publisher, event, receiver)
	return msg, nil
}

// ListMessages pages through a chat's messages in send order.
func (s *DefaultChatService) ListMessages(ctx context.Context, caller *models.User, chatID string, page, limit int) (*MessagePage, error) {
	if _, err := s.loadForParticipant(ctx, caller, chatID); err != nil {
		return nil, err
	}
	page, limit = models.NormalizePage(page, limit)
	messages, err := s.Chats.ListMessages(ctx, chatID, page, limit)
	if err != nil {
		s.Logger.Error("failed to list messages", zap.String("chatId", chatID), zap.Error(err))
		return nil, utils.InternalError("failed to list messages", err)
	}
	total, err := s.Chats.CountMessages(ctx, chatID)
	if err != nil {
		s.Logger.Error("failed to count messages", zap.String("chatId", chatID), zap.Error(err))
		return nil, utils.InternalError("failed to count messages", err)
	}
	return &MessagePage{Messages: messages, Pagination: models.NewPagination(page, limit, total)}, nil
}
