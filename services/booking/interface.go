package booking

import (
	"context"
	"time"

	bookingRepo "companionhub/database/repository/booking"
	userRepo "companionhub/database/repository/user"
	"companionhub/models"
	"companionhub/services/notification"

	"go.uber.org/zap"
)

// BookingService is the booking engine. Every operation takes the resolved
// caller identity; ownership is checked here, roles at the route.
type BookingService interface {
	Create(ctx context.Context, seeker *models.User, in CreateInput) (*models.Booking, error)
	ListForUser(ctx context.Context, caller *models.User, q ListQuery) (*BookingPage, error)
	Get(ctx context.Context, caller *models.User, bookingID string) (*models.Booking, error)
	Transition(ctx context.Context, caller *models.User, bookingID string, in TransitionInput) (*models.Booking, error)
	UpdateDetails(ctx context.Context, caller *models.User, bookingID string, in DetailsUpdate) (*models.Booking, error)
	Rate(ctx context.Context, caller *models.User, bookingID string, in RatingInput) (*models.Booking, error)
	// RecordRefund moves a paid booking to refunded after the gateway refund succeeded.
	RecordRefund(ctx context.Context, admin *models.User, bookingID string) (*models.Booking, error)
}

// ReminderScheduler schedules the pre-start reminder of a confirmed booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking *models.Booking) error
}

// Config carries the platform pricing defaults.
type Config struct {
	DefaultPricePerHour      float64
	DefaultCommissionPercent float64
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings  bookingRepo.BookingRepository
	Users     userRepo.UserRepository
	Publisher notification.Publisher
	Reminders ReminderScheduler
	Config    Config
	Logger    *zap.Logger
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// BookingPage is one page of a booking listing.
type BookingPage struct {
	Bookings   []models.Booking  `json:"bookings"`
	Pagination models.Pagination `json:"pagination"`
}
