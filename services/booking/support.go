package booking

import (
	"context"

	"companionhub/models"
	"companionhub/services/notification"
	"companionhub/utils"

	"go.uber.org/zap"
)

// load fetches a booking, mapping absence to NotFound.
func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	if bookingID == "" {
		return nil, utils.ValidationError("booking id is required")
	}
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		s.Logger.Error("failed to load booking", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, utils.InternalError("failed to load booking", err)
	}
	if b == nil {
		return nil, utils.NewError(utils.KindNotFound, "Booking not found")
	}
	return b, nil
}

func canAccess(caller *models.User, b *models.Booking) bool {
	return caller.Role == models.RoleAdmin || b.IsParticipant(caller.ID)
}

// attachSummaries resolves seeker and companion display summaries in one lookup.
func (s *DefaultBookingService) attachSummaries(ctx context.Context, bookings ...*models.Booking) error {
	ids := make([]string, 0, 2*len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.UserID, b.CompanionID)
	}
	summaries, err := s.Users.GetSummaries(ctx, ids)
	if err != nil {
		s.Logger.Error("failed to resolve booking parties", zap.Error(err))
		return utils.InternalError("failed to resolve booking parties", err)
	}
	for _, b := range bookings {
		b.User = summaries[b.UserID]
		b.Companion = summaries[b.CompanionID]
	}
	return nil
}

func (s *DefaultBookingService) notifyParties(ctx context.Context, eventType string, b *models.Booking) {
	notification.PublishToUsers(ctx, s.Publisher, notification.NewEvent(eventType, b), b.UserID, b.CompanionID)
}
