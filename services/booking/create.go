package booking

import (
	"context"
	"time"

	"companionhub/models"
	"companionhub/services/pricing"
	"companionhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateInput is a booking request. The time window is checked by Create,
// not by tags, so an inverted window reports InvalidTimeRange.
type CreateInput struct {
	CompanionID      string           `json:"companionId" validate:"required"`
	EventName        string           `json:"eventName" validate:"required,max=200"`
	EventType        models.EventType `json:"eventType" validate:"required,oneof=travel event outing personal_support"`
	EventDescription string           `json:"eventDescription" validate:"required,max=2000"`
	MeetingPoint     string           `json:"meetingPoint" validate:"required,max=500"`
	StartDate        time.Time        `json:"startDate" validate:"required"`
	EndDate          time.Time        `json:"endDate" validate:"required"`
	Notes            string           `json:"notes" validate:"max=1000"`
}

// Create books a verified, active companion for the seeker. Price and
// commission are snapshotted from the companion at this moment.
func (s *DefaultBookingService) Create(ctx context.Context, seeker *models.User, in CreateInput) (*models.Booking, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	companion, err := s.Users.GetByID(ctx, in.CompanionID)
	if err != nil {
		s.Logger.Error("failed to load companion", zap.String("companionId", in.CompanionID), zap.Error(err))
		return nil, utils.InternalError("failed to load companion", err)
	}
	if !companion.IsBookable() {
		return nil, utils.NewError(utils.KindInvalidCompanion, "Invalid companion")
	}

	if !in.StartDate.Before(in.EndDate) {
		return nil, utils.NewError(utils.KindInvalidTimeRange, "End date must be after start date")
	}
	hours := pricing.DurationHours(in.StartDate, in.EndDate)
	if hours <= 0 {
		return nil, utils.NewError(utils.KindInvalidTimeRange, "Invalid duration")
	}

	quote := pricing.Derive(
		hours,
		pricing.ResolveRate(companion, s.Config.DefaultPricePerHour),
		pricing.ResolveCommission(companion, s.Config.DefaultCommissionPercent),
	)

	now := s.now()
	booking := &models.Booking{
		ID:               uuid.NewString(),
		UserID:           seeker.ID,
		CompanionID:      companion.ID,
		EventID:          uuid.NewString(),
		EventName:        in.EventName,
		EventType:        in.EventType,
		EventDescription: in.EventDescription,
		MeetingPoint:     in.MeetingPoint,
		StartDate:        in.StartDate.UTC(),
		EndDate:          in.EndDate.UTC(),
		Status:           models.StatusPending,
		PaymentStatus:    models.PaymentPending,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	quote.Apply(booking)

	if err := s.Bookings.Create(ctx, booking); err != nil {
		s.Logger.Error("failed to create booking", zap.Error(err))
		return nil, utils.InternalError("failed to create booking", err)
	}
	s.Logger.Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("userId", booking.UserID),
		zap.String("companionId", booking.CompanionID),
		zap.Float64("totalPrice", booking.TotalPrice),
	)

	booking.User = seeker.Summary()
	booking.Companion = companion.Summary()
	s.notifyParties(ctx, models.EventBookingCreated, booking)
	return booking, nil
}
