// Package pricing derives booking prices. Every function is pure.
package pricing

import (
	"time"

	"companionhub/models"
)

// Quote is the price snapshot stored on a booking.
type Quote struct {
	DurationHours        float64
	PricePerHour         float64
	TotalPrice           float64
	CommissionPercentage float64
	CommissionAmount     float64
}

// Derive computes total = hours * rate and commission = total * pct / 100.
func Derive(durationHours, pricePerHour, commissionPercentage float64) Quote {
	total := durationHours * pricePerHour
	return Quote{
		DurationHours:        durationHours,
		PricePerHour:         pricePerHour,
		TotalPrice:           total,
		CommissionPercentage: commissionPercentage,
		CommissionAmount:     total * commissionPercentage / 100,
	}
}

// DurationHours returns end - start in fractional hours. It is not clamped;
// callers reject non-positive results.
func DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// ResolveRate returns the companion's hourly rate, or fallback when unset.
func ResolveRate(companion *models.User, fallback float64) float64 {
	if companion != nil && companion.PricePerHour != nil && *companion.PricePerHour > 0 {
		return *companion.PricePerHour
	}
	return fallback
}

// ResolveCommission returns the companion's commission override, or fallback.
func ResolveCommission(companion *models.User, fallback float64) float64 {
	if companion != nil && companion.CommissionPercentage != nil {
		pct := *companion.CommissionPercentage
		if pct >= 0 && pct <= 100 {
			return pct
		}
	}
	return fallback
}

// Apply writes q onto b.
func (q Quote) Apply(b *models.Booking) {
	b.DurationHours = q.DurationHours
	b.PricePerHour = q.PricePerHour
	b.TotalPrice = q.TotalPrice
	b.CommissionPercentage = q.CommissionPercentage
	b.CommissionAmount = q.CommissionAmount
}
