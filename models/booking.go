package models

import "time"

// BookingStatus is a state in the booking lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusRefunded   BookingStatus = "refunded"
)

// bookingTransitions is the lifecycle graph. Terminal states have no entry.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {StatusRefunded},
	StatusCancelled:  {StatusRefunded},
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle graph has an edge from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllBookingStatuses lists every status in lifecycle order.
func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusRefunded}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type EventType string

const (
	EventTravel          EventType = "travel"
	EventEvent           EventType = "event"
	EventOuting          EventType = "outing"
	EventPersonalSupport EventType = "personal_support"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTravel, EventEvent, EventOuting, EventPersonalSupport:
		return true
	}
	return false
}

// BookingRating is the seeker's post-hoc review of a completed booking.
type BookingRating struct {
	Score      int       `bson:"score" json:"score"`
	Review     string    `bson:"review,omitempty" json:"review,omitempty"`
	ReviewedAt time.Time `bson:"reviewed_at" json:"reviewedAt"`
}

// Booking is a time-bounded reservation of a companion by a seeker.
// Price fields are snapshotted at creation and only re-derived when the
// time window of a pending booking changes.
type Booking struct {
	ID               string    `bson:"id" json:"id"`
	UserID           string    `bson:"user_id" json:"userId"`
	CompanionID      string    `bson:"companion_id" json:"companionId"`
	EventID          string    `bson:"event_id" json:"eventId"`
	EventName        string    `bson:"event_name" json:"eventName"`
	EventType        EventType `bson:"event_type" json:"eventType"`
	EventDescription string    `bson:"event_description" json:"eventDescription"`
	MeetingPoint     string    `bson:"meeting_point" json:"meetingPoint"`
	StartDate        time.Time `bson:"start_date" json:"startDate"`
	EndDate          time.Time `bson:"end_date" json:"endDate"`

	DurationHours        float64 `bson:"duration_hours" json:"durationHours"`
	PricePerHour         float64 `bson:"price_per_hour" json:"pricePerHour"`
	TotalPrice           float64 `bson:"total_price" json:"totalPrice"`
	CommissionPercentage float64 `bson:"commission_percentage" json:"commissionPercentage"`
	CommissionAmount     float64 `bson:"commission_amount" json:"commissionAmount"`

	Status             BookingStatus  `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus  `bson:"payment_status" json:"paymentStatus"`
	PaymentID          string         `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	CancellationReason string         `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	CancellationTime   *time.Time     `bson:"cancellation_time,omitempty" json:"cancellationTime,omitempty"`
	Notes              string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Rating             *BookingRating `bson:"rating,omitempty" json:"rating,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	// Display summaries; resolved on read, never persisted.
	User      *UserSummary `bson:"-" json:"user,omitempty"`
	Companion *UserSummary `bson:"-" json:"companion,omitempty"`
}

// IsParticipant reports whether userID is the seeker or the companion.
func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (b.UserID == userID || b.CompanionID == userID)
}

// OtherParty returns the participant that is not userID.
func (b *Booking) OtherParty(userID string) string {
	if b.UserID == userID {
		return b.CompanionID
	}
	return b.UserID
}
