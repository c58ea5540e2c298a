package booking

import (
	"context"
	"errors"
	"strings"

	"companionhub/database/repository"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
)

type RatingInput struct {
	Score  int    `json:"score" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=1000"`
}

// Rate records the seeker's one review of a completed booking and folds
// the score into the companion's running average.
func (s *DefaultBookingService) Rate(ctx context.Context, caller *models.User, bookingID string, in RatingInput) (*models.Booking, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.ID {
		return nil, utils.NewError(utils.KindForbidden, "Only the booking's seeker can rate it")
	}
	if b.Status != models.StatusCompleted {
		return nil, utils.ValidationError("Only completed bookings can be rated")
	}
	if b.Rating != nil {
		return nil, utils.ValidationError("Booking has already been rated")
	}

	now := s.now()
	rating := models.BookingRating{
		Score:      in.Score,
		Review:     strings.TrimSpace(in.Review),
		ReviewedAt: now,
	}
	b, err = s.Bookings.SetRating(ctx, b.ID, rating, now)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, utils.ValidationError("Booking has already been rated")
		}
		s.Logger.Error("failed to save rating", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, utils.InternalError("failed to save rating", err)
	}
	if err := s.Users.AddRating(ctx, b.CompanionID, in.Score); err != nil {
		s.Logger.Error("failed to update companion rating",
			zap.String("companionId", b.CompanionID), zap.Error(err))
		return nil, utils.InternalError("failed to update companion rating", err)
	}

	if err := s.attachSummaries(ctx, b); err != nil {
		s.Logger.Warn("rating saved without party summaries", zap.String("bookingId", b.ID))
	}
	return b, nil
}
