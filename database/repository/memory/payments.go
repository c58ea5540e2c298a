package memory

import (
	"context"
	"sync"

	"companionhub/database/repository"
	paymentRepo "companionhub/database/repository/payment"
	"companionhub/models"
)

// PaymentRepo is an in-memory paymentRepo.PaymentRepository.
type PaymentRepo struct {
	mu       sync.RWMutex
	payments map[string]models.Payment
}

func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{payments: make(map[string]models.Payment)}
}

var _ paymentRepo.PaymentRepository = (*PaymentRepo)(nil)

func (r *PaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.payments[payment.ID]; exists {
		return repository.ErrDuplicate
	}
	r.payments[payment.ID] = *payment
	return nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PaymentRepo) LatestForBooking(_ context.Context, bookingID string, status models.PaymentRecordStatus) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Payment
	for _, p := range r.payments {
		if p.BookingID != bookingID || p.Status != status {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			cp := p
			latest = &cp
		}
	}
	return latest, nil
}

func (r *PaymentRepo) Save(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ID]; !ok {
		return repository.ErrConflict
	}
	r.payments[payment.ID] = *payment
	return nil
}
