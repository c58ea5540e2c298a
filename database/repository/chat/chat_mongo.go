package chatRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companionhub/database/repository"
	"companionhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoChatRepo keeps chats and messages in two collections.
type MongoChatRepo struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewMongoChatRepo(db *mongo.Database, logger *zap.Logger) ChatRepository {
	repo := &MongoChatRepo{
		chats:    db.Collection("chats"),
		messages: db.Collection("messages"),
	}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("failed to create chat indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoChatRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chatIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "participant_key", Value: 1}, {Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "participants", Value: 1}}},
	}
	if _, err := r.chats.Indexes().CreateMany(ctx, chatIndexes); err != nil {
		return fmt.Errorf("failed to create chat indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := r.messages.Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

func (r *MongoChatRepo) findOne(ctx context.Context, filter bson.M) (*models.Chat, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	var chat models.Chat
	if err := r.chats.FindOne(ctx, filter).Decode(&chat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching chat: %w", err)
	}
	return &chat, nil
}

func (r *MongoChatRepo) FindByParticipants(ctx context.Context, participantKey, bookingID string) (*models.Chat, error) {
	return r.findOne(ctx, bson.M{"participant_key": participantKey, "booking_id": bookingID})
}

func (r *MongoChatRepo) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if chat.MessageIDs == nil {
		chat.MessageIDs = []string{}
	}
	if _, err := r.chats.InsertOne(ctx, chat); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("error creating chat: %w", err)
	}
	return nil
}

// AppendMessage inserts the message, then pushes its ID onto the chat.
// The two writes are independent single-document operations.
func (r *MongoChatRepo) AppendMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}

	update := bson.M{
		"$push": bson.M{"message_ids": msg.ID},
		"$set": bson.M{
			"last_message": models.LastMessage{
				Content:   msg.Content,
				SenderID:  msg.SenderID,
				Timestamp: msg.CreatedAt,
			},
			"updated_at": msg.CreatedAt,
		},
	}
	result, err := r.chats.UpdateOne(ctx, bson.M{"id": msg.ChatID}, update)
	if err != nil {
		return fmt.Errorf("error updating chat %s: %w", msg.ChatID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("chat %s not found", msg.ChatID)
	}
	return nil
}

func (r *MongoChatRepo) ListMessages(ctx context.Context, chatID string, page, limit int) ([]models.Message, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}}).
		SetSkip(repository.Page(page, limit)).
		SetLimit(int64(limit))

	cursor, err := r.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}
	return messages, nil
}

func (r *MongoChatRepo) CountMessages(ctx context.Context, chatID string) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx)
	defer cancel()

	n, err := r.messages.CountDocuments(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return 0, fmt.Errorf("error counting messages: %w", err)
	}
	return n, nil
}
