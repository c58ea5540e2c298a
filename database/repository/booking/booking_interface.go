package bookingRepo

import (
	"context"
	"time"

	"companionhub/models"
)

// BookingRepository defines booking data access. Lookups return (nil, nil)
// when no document matches. Every write touches exactly one document.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a booking by its ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Find lists bookings matching filter, newest first.
	Find(ctx context.Context, filter BookingFilter, page, limit int) ([]models.Booking, error)
	// Count counts bookings matching filter.
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	// UpdateDetails writes only the patched fields of a pending booking. A
	// window change additionally requires that no payment has been started.
	// repository.ErrConflict is returned when those conditions no longer hold.
	UpdateDetails(ctx context.Context, id string, patch DetailsPatch) (*models.Booking, error)
	// SetRating stores the rating of a completed, unrated booking, or
	// returns repository.ErrConflict.
	SetRating(ctx context.Context, id string, rating models.BookingRating, updatedAt time.Time) (*models.Booking, error)
	// UpdateStatus moves the booking from -> change.To atomically. It returns
	// repository.ErrConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from models.BookingStatus, change StatusChange) (*models.Booking, error)
	// SetPayment records the payment state of a booking. paymentID is
	// written only when non-empty.
	SetPayment(ctx context.Context, id string, status models.PaymentStatus, paymentID string) (*models.Booking, error)
}

// BookingFilter narrows Find and Count. Empty fields are ignored.
type BookingFilter struct {
	UserID      string
	CompanionID string
	Status      models.BookingStatus
}

// StatusChange describes the fields written by a status transition.
type StatusChange struct {
	To                 models.BookingStatus
	CancellationReason string
	CancellationTime   *time.Time
	// PaymentStatus is written only when non-empty.
	PaymentStatus models.PaymentStatus
	UpdatedAt     time.Time
}

// DetailsPatch lists the fields written by UpdateDetails. Nil fields are
// left untouched.
type DetailsPatch struct {
	EventName        *string
	EventType        *models.EventType
	EventDescription *string
	MeetingPoint     *string
	Notes            *string
	Window           *WindowChange
	UpdatedAt        time.Time
}

// WindowChange is a new time window together with the price derived for it.
type WindowChange struct {
	StartDate        time.Time
	EndDate          time.Time
	DurationHours    float64
	TotalPrice       float64
	CommissionAmount float64
}
