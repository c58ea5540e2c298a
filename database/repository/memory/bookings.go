package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"companionhub/database/repository"
	bookingRepo "companionhub/database/repository/booking"
	"companionhub/models"
)

// BookingRepo is an in-memory bookingRepo.BookingRepository. Every method
// holds the lock for the whole read-modify-write, matching the single
// document atomicity of the Mongo implementation.
type BookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]models.Booking)}
}

var _ bookingRepo.BookingRepository = (*BookingRepo)(nil)

func detach(b models.Booking) *models.Booking {
	b.User, b.Companion = nil, nil
	return &b
}

func (r *BookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.ID]; exists {
		return repository.ErrDuplicate
	}
	r.bookings[booking.ID] = *detach(*booking)
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func matches(b models.Booking, filter bookingRepo.BookingFilter) bool {
	if filter.UserID != "" && b.UserID != filter.UserID {
		return false
	}
	if filter.CompanionID != "" && b.CompanionID != filter.CompanionID {
		return false
	}
	if filter.Status != "" && b.Status != filter.Status {
		return false
	}
	return true
}

func (r *BookingRepo) Find(_ context.Context, filter bookingRepo.BookingFilter, page, limit int) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found []models.Booking
	for _, b := range r.bookings {
		if matches(b, filter) {
			found = append(found, b)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].CreatedAt.After(found[j].CreatedAt)
		}
		return found[i].ID > found[j].ID
	})
	return append([]models.Booking{}, paginate(found, page, limit)...), nil
}

func (r *BookingRepo) Count(_ context.Context, filter bookingRepo.BookingFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, b := range r.bookings {
		if matches(b, filter) {
			n++
		}
	}
	return n, nil
}

func (r *BookingRepo) UpdateDetails(_ context.Context, id string, patch bookingRepo.DetailsPatch) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != models.StatusPending {
		return nil, repository.ErrConflict
	}
	if patch.Window != nil && (b.PaymentStatus != models.PaymentPending || b.PaymentID != "") {
		return nil, repository.ErrConflict
	}
	if patch.EventName != nil {
		b.EventName = *patch.EventName
	}
	if patch.EventType != nil {
		b.EventType = *patch.EventType
	}
	if patch.EventDescription != nil {
		b.EventDescription = *patch.EventDescription
	}
	if patch.MeetingPoint != nil {
		b.MeetingPoint = *patch.MeetingPoint
	}
	if patch.Notes != nil {
		b.Notes = *patch.Notes
	}
	if w := patch.Window; w != nil {
		b.StartDate, b.EndDate = w.StartDate, w.EndDate
		b.DurationHours = w.DurationHours
		b.TotalPrice = w.TotalPrice
		b.CommissionAmount = w.CommissionAmount
	}
	b.UpdatedAt = patch.UpdatedAt
	r.bookings[id] = b
	return &b, nil
}

func (r *BookingRepo) SetRating(_ context.Context, id string, rating models.BookingRating, updatedAt time.Time) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != models.StatusCompleted || b.Rating != nil {
		return nil, repository.ErrConflict
	}
	b.Rating = &rating
	b.UpdatedAt = updatedAt
	r.bookings[id] = b
	return &b, nil
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id string, from models.BookingStatus, change bookingRepo.StatusChange) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != from {
		return nil, repository.ErrConflict
	}
	b.Status = change.To
	b.UpdatedAt = change.UpdatedAt
	if change.CancellationReason != "" {
		b.CancellationReason = change.CancellationReason
	}
	if change.CancellationTime != nil {
		t := *change.CancellationTime
		b.CancellationTime = &t
	}
	if change.PaymentStatus != "" {
		b.PaymentStatus = change.PaymentStatus
	}
	r.bookings[id] = b
	return &b, nil
}

func (r *BookingRepo) SetPayment(_ context.Context, id string, status models.PaymentStatus, paymentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	b.PaymentStatus = status
	if paymentID != "" {
		b.PaymentID = paymentID
	}
	b.UpdatedAt = time.Now()
	r.bookings[id] = b
	return &b, nil
}
