package models

import "time"

// Event types pushed through the notification fan-out.
const (
	EventBookingCreated  = "booking.created"
	EventBookingStatus   = "booking.status"
	EventBookingUpdated  = "booking.updated"
	EventBookingReminder = "booking.reminder"
	EventBookingPaid     = "booking.paid"
	EventChatMessage     = "chat.message"
)

// Notification is the payload delivered to a channel. Delivery is best-effort.
type Notification struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}
