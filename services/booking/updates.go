package booking

import (
	"context"
	"errors"
	"time"

	"companionhub/database/repository"
	bookingRepo "companionhub/database/repository/booking"
	"companionhub/models"
	"companionhub/services/pricing"
	"companionhub/utils"

	"go.uber.org/zap"
)

// DetailsUpdate patches a pending booking. Nil fields are left alone.
type DetailsUpdate struct {
	EventName        *string           `json:"eventName" validate:"omitempty,min=1,max=200"`
	EventType        *models.EventType `json:"eventType" validate:"omitempty,oneof=travel event outing personal_support"`
	EventDescription *string           `json:"eventDescription" validate:"omitempty,min=1,max=2000"`
	MeetingPoint     *string           `json:"meetingPoint" validate:"omitempty,min=1,max=500"`
	StartDate        *time.Time        `json:"startDate"`
	EndDate          *time.Time        `json:"endDate"`
	Notes            *string           `json:"notes" validate:"omitempty,max=1000"`
}

func (u DetailsUpdate) isEmpty() bool {
	return u.EventName == nil && u.EventType == nil && u.EventDescription == nil &&
		u.MeetingPoint == nil && u.StartDate == nil && u.EndDate == nil && u.Notes == nil
}

// UpdateDetails applies a patch to a pending booking. The price is derived
// again, from the snapshotted rate and commission, only when the time
// window changes; other patches leave the price fields untouched. The
// window is frozen once a payment has been opened or settled.
func (s *DefaultBookingService) UpdateDetails(ctx context.Context, caller *models.User, bookingID string, in DetailsUpdate) (*models.Booking, error) {
	if in.isEmpty() {
		return nil, utils.ValidationError("Invalid updates")
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleAdmin && b.UserID != caller.ID {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	if b.Status != models.StatusPending {
		return nil, utils.NewError(utils.KindInvalidTransition, "Only pending bookings can be updated")
	}

	patch := bookingRepo.DetailsPatch{
		EventName:        in.EventName,
		EventType:        in.EventType,
		EventDescription: in.EventDescription,
		MeetingPoint:     in.MeetingPoint,
		Notes:            in.Notes,
		UpdatedAt:        s.now(),
	}

	start, end := b.StartDate, b.EndDate
	if in.StartDate != nil {
		start = in.StartDate.UTC()
	}
	if in.EndDate != nil {
		end = in.EndDate.UTC()
	}
	if !start.Equal(b.StartDate) || !end.Equal(b.EndDate) {
		if !start.Before(end) {
			return nil, utils.NewError(utils.KindInvalidTimeRange, "End date must be after start date")
		}
		// The charged amount is fixed once a checkout exists.
		if b.PaymentStatus != models.PaymentPending || b.PaymentID != "" {
			return nil, utils.NewError(utils.KindInvalidTransition, "Time window cannot change after payment has started")
		}
		q := pricing.Derive(pricing.DurationHours(start, end), b.PricePerHour, b.CommissionPercentage)
		patch.Window = &bookingRepo.WindowChange{
			StartDate:        start,
			EndDate:          end,
			DurationHours:    q.DurationHours,
			TotalPrice:       q.TotalPrice,
			CommissionAmount: q.CommissionAmount,
		}
	}

	b, err = s.Bookings.UpdateDetails(ctx, b.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, utils.NewError(utils.KindInvalidTransition, "Booking changed concurrently")
		}
		s.Logger.Error("failed to update booking", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, utils.InternalError("failed to update booking", err)
	}

	if err := s.attachSummaries(ctx, b); err != nil {
		s.Logger.Warn("update applied without party summaries", zap.String("bookingId", b.ID))
	}
	s.notifyParties(ctx, models.EventBookingUpdated, b)
	return b, nil
}
