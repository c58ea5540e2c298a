package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "companionhub/database/repository/booking"
	"companionhub/database/repository/memory"
	"companionhub/models"
	"companionhub/services/booking"
	"companionhub/services/notification"
	"companionhub/utils"

	"go.uber.org/zap"
)

type fakeGateway struct {
	created  []int64
	state    IntentState
	refunded []string
	fail     error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, _ string, _ models.PaymentMethod, _ map[string]string) (*Intent, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	g.created = append(g.created, amount)
	return &Intent{ID: "pi_test", ClientSecret: "secret_test", State: IntentPending}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*Intent, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	return &Intent{ID: id, State: g.state}, nil
}

func (g *fakeGateway) Refund(_ context.Context, id string) (*RefundResult, error) {
	if g.fail != nil {
		return nil, g.fail
	}
	g.refunded = append(g.refunded, id)
	return &RefundResult{ID: "re_test", Amount: 100000}, nil
}

type paymentFixture struct {
	svc      *DefaultPaymentService
	gateway  *fakeGateway
	bookings *memory.BookingRepo
	hub      *notification.Hub

	seeker, companion, admin *models.User
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		gateway:   &fakeGateway{state: IntentPending},
		bookings:  memory.NewBookingRepo(),
		hub:       notification.NewHub(),
		seeker:    &models.User{ID: "seeker", Role: models.RoleSeeker},
		companion: &models.User{ID: "companion", Role: models.RoleCompanion},
		admin:     &models.User{ID: "admin", Role: models.RoleAdmin},
	}
	engine := &booking.DefaultBookingService{
		Bookings:  f.bookings,
		Users:     memory.NewUserRepo(),
		Publisher: f.hub,
		Logger:    zap.NewNop(),
	}
	f.svc = &DefaultPaymentService{
		Bookings:  f.bookings,
		Payments:  memory.NewPaymentRepo(),
		Engine:    engine,
		Gateway:   f.gateway,
		Currency:  "inr",
		Publisher: f.hub,
		Logger:    zap.NewNop(),
	}
	return f
}

func (f *paymentFixture) seed(t *testing.T, id string, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		ID:            id,
		UserID:        f.seeker.ID,
		CompanionID:   f.companion.ID,
		TotalPrice:    1000,
		Status:        status,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     time.Now(),
	}
	if err := f.bookings.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestMinorUnits(t *testing.T) {
	tests := map[float64]int64{1000: 100000, 19.99: 1999, 0.005: 1, 0: 0}
	for in, want := range tests {
		if got := MinorUnits(in); got != want {
			t.Errorf("MinorUnits(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestInitiateAndConfirm(t *testing.T) {
	t.Parallel()
	f := newPaymentFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := f.seed(t, "b1", models.StatusConfirmed)

	checkout, err := f.svc.Initiate(ctx, f.seeker, b.ID, InitiateInput{PaymentMethod: models.MethodCard})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if checkout.ClientSecret != "secret_test" || checkout.Payment.PaymentIntentID != "pi_test" {
		t.Errorf("unexpected checkout %+v", checkout)
	}
	if len(f.gateway.created) != 1 || f.gateway.created[0] != 100000 {
		t.Errorf("expected 100000 minor units, got %v", f.gateway.created)
	}
	if opened, _ := f.bookings.GetByID(ctx, b.ID); opened.PaymentID != checkout.Payment.ID {
		t.Errorf("booking should reference the open payment, got %q", opened.PaymentID)
	}

	// Still processing at the gateway: nothing changes.
	p, err := f.svc.Confirm(ctx, f.seeker, checkout.Payment.ID)
	if err != nil || p.Status != models.PaymentRecordPending {
		t.Fatalf("pending confirm: %v %+v", err, p)
	}

	inbox, _ := f.hub.Subscribe(ctx, notification.UserChannel(f.companion.ID))
	f.gateway.state = IntentSucceeded
	p, err = f.svc.Confirm(ctx, f.seeker, checkout.Payment.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if p.Status != models.PaymentRecordSucceeded {
		t.Errorf("expected succeeded, got %s", p.Status)
	}
	stored, _ := f.bookings.GetByID(ctx, b.ID)
	if stored.PaymentStatus != models.PaymentPaid || stored.PaymentID != p.ID {
		t.Errorf("booking not marked paid: %+v", stored)
	}
	select {
	case ev := <-inbox:
		if ev.Type != models.EventBookingPaid {
			t.Errorf("unexpected event %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("companion was not notified")
	}

	_, err = f.svc.Initiate(ctx, f.seeker, b.ID, InitiateInput{PaymentMethod: models.MethodCard})
	if !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("paying twice: %v", err)
	}
}

func TestConfirmFailedIntent(t *testing.T) {
	t.Parallel()
	f := newPaymentFixture(t)
	ctx := context.Background()
	b := f.seed(t, "b1", models.StatusPending)

	checkout, err := f.svc.Initiate(ctx, f.seeker, b.ID, InitiateInput{PaymentMethod: models.MethodUPI})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.gateway.state = IntentFailed
	p, err := f.svc.Confirm(ctx, f.seeker, checkout.Payment.ID)
	if err != nil || p.Status != models.PaymentRecordFailed {
		t.Fatalf("expected failed payment, got %v %+v", err, p)
	}
	stored, _ := f.bookings.GetByID(ctx, b.ID)
	if stored.PaymentStatus != models.PaymentPending {
		t.Errorf("booking must stay unpaid, got %s", stored.PaymentStatus)
	}

	_, err = f.svc.Confirm(ctx, f.companion, checkout.Payment.ID)
	if !utils.IsKind(err, utils.KindForbidden) {
		t.Errorf("companion confirm: %v", err)
	}
	_, err = f.svc.Confirm(ctx, f.seeker, "missing")
	if !utils.IsKind(err, utils.KindNotFound) {
		t.Errorf("missing payment: %v", err)
	}
}

func TestInitiateRejects(t *testing.T) {
	t.Parallel()
	f := newPaymentFixture(t)
	ctx := context.Background()
	pending := f.seed(t, "pending", models.StatusPending)
	done := f.seed(t, "done", models.StatusCompleted)

	tests := []struct {
		name   string
		caller *models.User
		id     string
		method models.PaymentMethod
		kind   utils.ErrorKind
	}{
		{"bad method", f.seeker, pending.ID, "cash", utils.KindValidation},
		{"missing booking", f.seeker, "nope", models.MethodCard, utils.KindNotFound},
		{"not the seeker", f.companion, pending.ID, models.MethodCard, utils.KindForbidden},
		{"finished booking", f.seeker, done.ID, models.MethodCard, utils.KindInvalidTransition},
	}
	for _, tt := range tests {
		_, err := f.svc.Initiate(ctx, tt.caller, tt.id, InitiateInput{PaymentMethod: tt.method})
		if !utils.IsKind(err, tt.kind) {
			t.Errorf("%s: expected %s, got %v", tt.name, tt.kind, err)
		}
	}

	f.gateway.fail = errors.New("card network down")
	_, err := f.svc.Initiate(ctx, f.seeker, pending.ID, InitiateInput{PaymentMethod: models.MethodCard})
	if !utils.IsKind(err, utils.KindPaymentFailure) {
		t.Errorf("gateway failure: %v", err)
	}
}

func TestRefund(t *testing.T) {
	t.Parallel()
	f := newPaymentFixture(t)
	ctx := context.Background()
	b := f.seed(t, "b1", models.StatusPending)

	checkout, err := f.svc.Initiate(ctx, f.seeker, b.ID, InitiateInput{PaymentMethod: models.MethodCard})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	f.gateway.state = IntentSucceeded
	if _, err := f.svc.Confirm(ctx, f.seeker, checkout.Payment.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := f.svc.Refund(ctx, f.seeker, b.ID); !utils.IsKind(err, utils.KindForbidden) {
		t.Errorf("non-admin refund: %v", err)
	}
	if _, err := f.svc.Refund(ctx, f.admin, b.ID); !utils.IsKind(err, utils.KindInvalidTransition) {
		t.Errorf("refund of a pending booking: %v", err)
	}

	if _, err := f.bookings.UpdateStatus(ctx, b.ID, models.StatusPending, bookingRepo.StatusChange{
		To: models.StatusCancelled, CancellationReason: "plans changed", UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	refunded, err := f.svc.Refund(ctx, f.admin, b.ID)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.Status != models.StatusRefunded || refunded.PaymentStatus != models.PaymentRefunded {
		t.Errorf("unexpected booking %+v", refunded)
	}
	if len(f.gateway.refunded) != 1 || f.gateway.refunded[0] != "pi_test" {
		t.Errorf("gateway refund not issued: %v", f.gateway.refunded)
	}
	p, _ := f.svc.Payments.GetByID(ctx, checkout.Payment.ID)
	if p.Status != models.PaymentRecordRefunded || p.RefundID != "re_test" || p.RefundedAmount != 1000 {
		t.Errorf("payment not marked refunded: %+v", p)
	}

	if _, err := f.svc.Refund(ctx, f.admin, b.ID); !utils.IsKind(err, utils.KindInvalidTransition) {
		t.Errorf("second refund: %v", err)
	}
}
