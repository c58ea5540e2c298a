package pricing

import (
	"testing"
	"time"

	"companionhub/models"
)

func TestDerive(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                      string
		hours, rate, pct          float64
		wantTotal, wantCommission float64
	}{
		{"two hours at default", 2, 500, 20, 1000, 200},
		{"half hour", 0.5, 300, 20, 150, 30},
		{"zero commission", 3, 250, 0, 750, 0},
		{"full commission", 1, 100, 100, 100, 100},
		{"free companion", 4, 0, 20, 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := Derive(tt.hours, tt.rate, tt.pct)
			if q.TotalPrice != tt.wantTotal {
				t.Errorf("total: got %v, want %v", q.TotalPrice, tt.wantTotal)
			}
			if q.CommissionAmount != tt.wantCommission {
				t.Errorf("commission: got %v, want %v", q.CommissionAmount, tt.wantCommission)
			}
		})
	}
}

func TestDeriveMatchesFormula(t *testing.T) {
	t.Parallel()
	for _, hours := range []float64{0.25, 1, 1.75, 7.5, 48} {
		for _, rate := range []float64{0, 99.99, 500, 1234.5} {
			for _, pct := range []float64{0, 12.5, 20, 100} {
				q := Derive(hours, rate, pct)
				total := hours * rate
				if q.TotalPrice != total || q.CommissionAmount != total*pct/100 {
					t.Fatalf("Derive(%v, %v, %v) = %+v", hours, rate, pct, q)
				}
			}
		}
	}
}

func TestDurationHours(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if got := DurationHours(start, start.Add(2*time.Hour)); got != 2 {
		t.Errorf("expected 2h, got %v", got)
	}
	if got := DurationHours(start, start.Add(90*time.Minute)); got != 1.5 {
		t.Errorf("expected 1.5h, got %v", got)
	}
	if got := DurationHours(start, start); got != 0 {
		t.Errorf("expected 0h, got %v", got)
	}
	if got := DurationHours(start, start.Add(-time.Hour)); got >= 0 {
		t.Errorf("expected negative duration, got %v", got)
	}
}

func TestResolveRateAndCommission(t *testing.T) {
	t.Parallel()
	rate, pct, zero, bad := 750.0, 15.0, 0.0, 130.0

	if got := ResolveRate(nil, 500); got != 500 {
		t.Errorf("nil companion: got %v", got)
	}
	if got := ResolveRate(&models.User{PricePerHour: &rate}, 500); got != 750 {
		t.Errorf("explicit rate: got %v", got)
	}
	if got := ResolveRate(&models.User{PricePerHour: &zero}, 500); got != 500 {
		t.Errorf("zero rate should fall back: got %v", got)
	}

	if got := ResolveCommission(&models.User{}, 20); got != 20 {
		t.Errorf("default commission: got %v", got)
	}
	if got := ResolveCommission(&models.User{CommissionPercentage: &pct}, 20); got != 15 {
		t.Errorf("override commission: got %v", got)
	}
	if got := ResolveCommission(&models.User{CommissionPercentage: &bad}, 20); got != 20 {
		t.Errorf("out of range override should fall back: got %v", got)
	}
}
