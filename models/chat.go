package models

import "time"

type LastMessage struct {
	Content   string    `bson:"content" json:"content"`
	SenderID  string    `bson:"sender_id" json:"senderId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Chat is a two-party conversation, optionally scoped to a booking.
type Chat struct {
	ID           string   `bson:"id" json:"id"`
	Participants []string `bson:"participants" json:"participants"`
	// ParticipantKey is the sorted participant pair; unique together with BookingID.
	ParticipantKey string       `bson:"participant_key" json:"-"`
	BookingID      string       `bson:"booking_id" json:"bookingId,omitempty"`
	MessageIDs     []string     `bson:"message_ids" json:"messageIds"`
	LastMessage    *LastMessage `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	CreatedAt      time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updatedAt"`

	ParticipantSummaries []*UserSummary `bson:"-" json:"participantDetails,omitempty"`
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type Message struct {
	ID         string    `bson:"id" json:"id"`
	ChatID     string    `bson:"chat_id" json:"chatId"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	ReceiverID string    `bson:"receiver_id" json:"receiverId"`
	BookingID  string    `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	Content    string    `bson:"content" json:"content"`
	IsRead     bool      `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`

	Sender *UserSummary `bson:"-" json:"sender,omitempty"`
}
