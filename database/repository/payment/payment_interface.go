package paymentRepo

import (
	"context"

	"companionhub/models"
)

// PaymentRepository stores gateway payment attempts.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	// GetByID returns (nil, nil) when the payment does not exist.
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	// LatestForBooking returns the newest payment of a booking in the given
	// status, or (nil, nil).
	LatestForBooking(ctx context.Context, bookingID string, status models.PaymentRecordStatus) (*models.Payment, error)
	Save(ctx context.Context, payment *models.Payment) error
}
