package booking

import (
	"context"
	"errors"
	"strings"

	"companionhub/database/repository"
	bookingRepo "companionhub/database/repository/booking"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
)

// TransitionInput requests a status change. Reason is required when cancelling.
type TransitionInput struct {
	Status models.BookingStatus `json:"status" validate:"required"`
	Reason string               `json:"reason" validate:"max=500"`
}

// Transition moves a booking along the lifecycle graph. Only the seeker,
// the companion or an administrator may call it. A rejected transition
// leaves the stored booking untouched.
func (s *DefaultBookingService) Transition(ctx context.Context, caller *models.User, bookingID string, in TransitionInput) (*models.Booking, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, utils.ValidationError("invalid status", utils.FieldError{
			Field: "status", Message: "is not a booking status",
		})
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, b) {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	if in.Status == models.StatusRefunded && b.PaymentStatus == models.PaymentPaid {
		return nil, utils.NewError(utils.KindInvalidTransition, "Paid bookings are refunded through the refund operation")
	}
	return s.apply(ctx, b, in)
}

// RecordRefund marks a paid booking refunded once the money has been returned.
func (s *DefaultBookingService) RecordRefund(ctx context.Context, admin *models.User, bookingID string) (*models.Booking, error) {
	if admin == nil || admin.Role != models.RoleAdmin {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, b, TransitionInput{Status: models.StatusRefunded})
}

func (s *DefaultBookingService) apply(ctx context.Context, b *models.Booking, in TransitionInput) (*models.Booking, error) {
	if !models.CanTransition(b.Status, in.Status) {
		return nil, utils.NewError(utils.KindInvalidTransition,
			"Cannot move booking from "+string(b.Status)+" to "+string(in.Status))
	}

	now := s.now()
	change := bookingRepo.StatusChange{To: in.Status, UpdatedAt: now}
	switch in.Status {
	case models.StatusCancelled:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return nil, utils.ValidationError("A cancellation reason is required", utils.FieldError{
				Field: "reason", Message: "is required",
			})
		}
		change.CancellationReason = reason
		change.CancellationTime = &now
	case models.StatusRefunded:
		if b.PaymentStatus == models.PaymentPaid {
			change.PaymentStatus = models.PaymentRefunded
		}
	}

	from := b.Status
	updated, err := s.Bookings.UpdateStatus(ctx, b.ID, from, change)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, utils.NewError(utils.KindInvalidTransition, "Booking status changed concurrently")
		}
		s.Logger.Error("failed to update booking status", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, utils.InternalError("failed to update booking status", err)
	}
	s.Logger.Info("booking status changed",
		zap.String("bookingId", updated.ID),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
	)

	if updated.Status == models.StatusConfirmed && s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(ctx, updated); err != nil {
			s.Logger.Warn("failed to schedule reminder", zap.String("bookingId", updated.ID), zap.Error(err))
		}
	}

	if err := s.attachSummaries(ctx, updated); err != nil {
		s.Logger.Warn("transition applied without party summaries", zap.String("bookingId", updated.ID))
	}
	s.notifyParties(ctx, models.EventBookingStatus, updated)
	return updated, nil
}
