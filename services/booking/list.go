package booking

import (
	"context"

	bookingRepo "companionhub/database/repository/booking"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
)

const (
	ScopeSeeker    = "seeker"
	ScopeCompanion = "companion"
)

// ListQuery selects a page of the caller's bookings. Scope picks which side
// of the booking the caller is on; it defaults to seeker.
type ListQuery struct {
	Page   int
	Limit  int
	Status models.BookingStatus
	Scope  string
}

// ListForUser returns the caller's bookings, newest first.
func (s *DefaultBookingService) ListForUser(ctx context.Context, caller *models.User, q ListQuery) (*BookingPage, error) {
	filter := bookingRepo.BookingFilter{Status: q.Status}
	switch q.Scope {
	case "", ScopeSeeker:
		filter.UserID = caller.ID
	case ScopeCompanion:
		filter.CompanionID = caller.ID
	default:
		return nil, utils.ValidationError("invalid scope", utils.FieldError{
			Field: "scope", Message: "must be one of: seeker companion",
		})
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, utils.ValidationError("invalid status filter", utils.FieldError{
			Field: "status", Message: "is not a booking status",
		})
	}

	page, limit := models.NormalizePage(q.Page, q.Limit)
	bookings, err := s.Bookings.Find(ctx, filter, page, limit)
	if err != nil {
		s.Logger.Error("failed to list bookings", zap.String("userId", caller.ID), zap.Error(err))
		return nil, utils.InternalError("failed to list bookings", err)
	}
	total, err := s.Bookings.Count(ctx, filter)
	if err != nil {
		s.Logger.Error("failed to count bookings", zap.String("userId", caller.ID), zap.Error(err))
		return nil, utils.InternalError("failed to count bookings", err)
	}

	refs := make([]*models.Booking, len(bookings))
	for i := range bookings {
		refs[i] = &bookings[i]
	}
	if err := s.attachSummaries(ctx, refs...); err != nil {
		return nil, err
	}

	return &BookingPage{
		Bookings:   bookings,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// Get returns a booking visible to its participants and administrators.
func (s *DefaultBookingService) Get(ctx context.Context, caller *models.User, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccess(caller, b) {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	if err := s.attachSummaries(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}
