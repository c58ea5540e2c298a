// Package payment collects booking payments through a card gateway and
// records refunds.
package payment

import (
	"context"
	"time"

	bookingRepo "companionhub/database/repository/booking"
	paymentRepo "companionhub/database/repository/payment"
	"companionhub/models"
	"companionhub/services/booking"
	"companionhub/services/notification"
	"companionhub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	Initiate(ctx context.Context, caller *models.User, bookingID string, in InitiateInput) (*Checkout, error)
	Confirm(ctx context.Context, caller *models.User, paymentID string) (*models.Payment, error)
	Refund(ctx context.Context, admin *models.User, bookingID string) (*models.Booking, error)
}

type DefaultPaymentService struct {
	Bookings bookingRepo.BookingRepository
	Payments paymentRepo.PaymentRepository
	// Engine records the refunded status once the gateway refund succeeds.
	Engine    booking.BookingService
	Gateway   Gateway
	Currency  string
	Publisher notification.Publisher
	Logger    *zap.Logger
	Now       func() time.Time
}

type InitiateInput struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=card upi netbanking wallet"`
}

// Checkout is what the client needs to complete a payment.
type Checkout struct {
	Payment      *models.Payment `json:"payment"`
	ClientSecret string          `json:"clientSecret"`
}

func (s *DefaultPaymentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultPaymentService) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		s.Logger.Error("failed to load booking", zap.String("bookingId", id), zap.Error(err))
		return nil, utils.InternalError("failed to load booking", err)
	}
	if b == nil {
		return nil, utils.NewError(utils.KindNotFound, "Booking not found")
	}
	return b, nil
}

// Initiate opens a gateway payment for the booking's total price.
func (s *DefaultPaymentService) Initiate(ctx context.Context, caller *models.User, bookingID string, in InitiateInput) (*Checkout, error) {
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.ID {
		return nil, utils.NewError(utils.KindForbidden, "Only the seeker can pay for a booking")
	}
	if b.PaymentStatus != models.PaymentPending {
		return nil, utils.ValidationError("Booking is already paid")
	}
	if b.Status != models.StatusPending && b.Status != models.StatusConfirmed {
		return nil, utils.NewError(utils.KindInvalidTransition, "Booking cannot be paid while "+string(b.Status))
	}
	if MinorUnits(b.TotalPrice) <= 0 {
		return nil, utils.ValidationError("Booking has nothing to pay")
	}

	// Attaching the payment reference freezes the booking's time window,
	// so the amount is read from the booking as stored after that write.
	paymentID := uuid.NewString()
	b, err = s.Bookings.SetPayment(ctx, b.ID, models.PaymentPending, paymentID)
	if err != nil {
		s.Logger.Error("failed to attach payment", zap.String("bookingId", bookingID), zap.Error(err))
		return nil, utils.InternalError("failed to attach payment", err)
	}
	if b == nil {
		return nil, utils.NewError(utils.KindNotFound, "Booking not found")
	}
	amount := MinorUnits(b.TotalPrice)

	now := s.now()
	p := &models.Payment{
		ID:            paymentID,
		UserID:        caller.ID,
		BookingID:     b.ID,
		Amount:        b.TotalPrice,
		Currency:      s.Currency,
		PaymentMethod: in.PaymentMethod,
		Status:        models.PaymentRecordPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.Metadata = map[string]string{"booking_id": b.ID, "payment_id": p.ID, "user_id": caller.ID}

	intent, err := s.Gateway.CreateIntent(ctx, amount, s.Currency, in.PaymentMethod, p.Metadata)
	if err != nil {
		s.Logger.Error("payment intent creation failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, utils.WrapError(utils.KindPaymentFailure, "Payment could not be started", err)
	}
	p.PaymentIntentID = intent.ID

	if err := s.Payments.Create(ctx, p); err != nil {
		s.Logger.Error("failed to store payment", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, utils.InternalError("failed to store payment", err)
	}
	s.Logger.Info("payment initiated", zap.String("paymentId", p.ID), zap.String("bookingId", b.ID))
	return &Checkout{Payment: p, ClientSecret: intent.ClientSecret}, nil
}

// Confirm reconciles a pending payment with the gateway. A succeeded intent
// marks the booking paid; settled payments are returned unchanged.
func (s *DefaultPaymentService) Confirm(ctx context.Context, caller *models.User, paymentID string) (*models.Payment, error) {
	p, err := s.Payments.GetByID(ctx, paymentID)
	if err != nil {
		s.Logger.Error("failed to load payment", zap.String("paymentId", paymentID), zap.Error(err))
		return nil, utils.InternalError("failed to load payment", err)
	}
	if p == nil {
		return nil, utils.NewError(utils.KindNotFound, "Payment not found")
	}
	if p.UserID != caller.ID && caller.Role != models.RoleAdmin {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	if p.Status != models.PaymentRecordPending {
		return p, nil
	}

	intent, err := s.Gateway.GetIntent(ctx, p.PaymentIntentID)
	if err != nil {
		s.Logger.Error("payment intent lookup failed", zap.String("paymentId", p.ID), zap.Error(err))
		return nil, utils.WrapError(utils.KindPaymentFailure, "Payment status unavailable", err)
	}

	switch intent.State {
	case IntentSucceeded:
		p.Status = models.PaymentRecordSucceeded
	case IntentFailed:
		p.Status = models.PaymentRecordFailed
	default:
		return p, nil
	}
	p.UpdatedAt = s.now()
	if err := s.Payments.Save(ctx, p); err != nil {
		s.Logger.Error("failed to update payment", zap.String("paymentId", p.ID), zap.Error(err))
		return nil, utils.InternalError("failed to update payment", err)
	}
	if p.Status != models.PaymentRecordSucceeded {
		s.Logger.Info("payment failed", zap.String("paymentId", p.ID))
		return p, nil
	}

	b, err := s.Bookings.SetPayment(ctx, p.BookingID, models.PaymentPaid, p.ID)
	if err != nil {
		s.Logger.Error("failed to mark booking paid", zap.String("bookingId", p.BookingID), zap.Error(err))
		return nil, utils.InternalError("failed to mark booking paid", err)
	}
	if b != nil {
		notification.PublishToUsers(ctx, s.Publisher, notification.NewEvent(models.EventBookingPaid, b), b.UserID, b.CompanionID)
	}
	s.Logger.Info("payment succeeded", zap.String("paymentId", p.ID), zap.String("bookingId", p.BookingID))
	return p, nil
}

// Refund returns the money of a paid, finished booking and marks it refunded.
func (s *DefaultPaymentService) Refund(ctx context.Context, admin *models.User, bookingID string) (*models.Booking, error) {
	if admin == nil || admin.Role != models.RoleAdmin {
		return nil, utils.NewError(utils.KindForbidden, "Access denied")
	}
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != models.PaymentPaid {
		return nil, utils.NewError(utils.KindInvalidTransition, "Booking has not been paid")
	}
	if b.Status != models.StatusCompleted && b.Status != models.StatusCancelled {
		return nil, utils.NewError(utils.KindInvalidTransition, "Cannot refund a booking while "+string(b.Status))
	}

	p, err := s.Payments.LatestForBooking(ctx, b.ID, models.PaymentRecordSucceeded)
	if err != nil {
		s.Logger.Error("failed to load payment", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, utils.InternalError("failed to load payment", err)
	}
	if p == nil {
		return nil, utils.NewError(utils.KindNotFound, "No successful payment for this booking")
	}

	result, err := s.Gateway.Refund(ctx, p.PaymentIntentID)
	if err != nil {
		s.Logger.Error("gateway refund failed", zap.String("paymentId", p.ID), zap.Error(err))
		return nil, utils.WrapError(utils.KindPaymentFailure, "Refund failed", err)
	}
	p.Status = models.PaymentRecordRefunded
	p.RefundID = result.ID
	p.RefundedAmount = float64(result.Amount) / 100
	p.UpdatedAt = s.now()
	if err := s.Payments.Save(ctx, p); err != nil {
		// The money has moved; keep going so the booking reflects it.
		s.Logger.Error("failed to record refund on payment", zap.String("paymentId", p.ID), zap.Error(err))
	}
	return s.Engine.RecordRefund(ctx, admin, b.ID)
}
