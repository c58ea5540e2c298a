package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"companionhub/database/repository/memory"
	"companionhub/handlers"
	"companionhub/models"
	"companionhub/services/auth"
	"companionhub/services/booking"
	"companionhub/services/chat"
	"companionhub/services/notification"
	"companionhub/services/payment"
	"companionhub/services/user"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type stubGateway struct{}

func (stubGateway) CreateIntent(context.Context, int64, string, models.PaymentMethod, map[string]string) (*payment.Intent, error) {
	return &payment.Intent{ID: "pi_1", ClientSecret: "cs_1", State: payment.IntentPending}, nil
}

func (stubGateway) GetIntent(_ context.Context, id string) (*payment.Intent, error) {
	return &payment.Intent{ID: id, State: payment.IntentSucceeded}, nil
}

func (stubGateway) Refund(context.Context, string) (*payment.RefundResult, error) {
	return &payment.RefundResult{ID: "re_1"}, nil
}

type envelope struct {
	Success bool               `json:"success"`
	Kind    string             `json:"kind"`
	Message string             `json:"message"`
	Errors  []utils.FieldError `json:"errors"`
	Data    json.RawMessage    `json:"data"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
	users  *memory.UserRepo
	tokens *utils.JWTIssuer
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := memory.NewUserRepo()
	bookings := memory.NewBookingRepo()
	hub := notification.NewHub()
	tokens := utils.NewJWTIssuer("routes-test-secret", time.Hour)

	userSvc := &user.DefaultUserService{Repo: users, Tokens: tokens, Logger: logger, BcryptCost: bcrypt.MinCost}
	bookingSvc := &booking.DefaultBookingService{
		Bookings:  bookings,
		Users:     users,
		Publisher: hub,
		Config:    booking.Config{DefaultPricePerHour: 400, DefaultCommissionPercent: 20},
		Logger:    logger,
	}
	paymentSvc := &payment.DefaultPaymentService{
		Bookings:  bookings,
		Payments:  memory.NewPaymentRepo(),
		Engine:    bookingSvc,
		Gateway:   stubGateway{},
		Currency:  "inr",
		Publisher: hub,
		Logger:    logger,
	}
	chatSvc := &chat.DefaultChatService{Chats: memory.NewChatRepo(), Bookings: bookings, Users: users, Publisher: hub, Logger: logger}
	monitor := utils.NewHealthMonitor(time.Minute, map[string]utils.HealthCheck{
		"database": func(context.Context) error { return nil },
	})

	hb := &handlers.HandlerBundle{
		Auth:     handlers.NewAuthHandler(userSvc, logger),
		Users:    handlers.NewUserHandler(userSvc, logger),
		Bookings: handlers.NewBookingHandler(bookingSvc, logger),
		Payments: handlers.NewPaymentHandler(paymentSvc, logger),
		Chat:     handlers.NewChatHandler(chatSvc, logger),
		Admin:    handlers.NewAdminHandler(userSvc, logger),
		Events:   handlers.NewEventsHandler(hub, logger),
		Health:   handlers.NewHealthHandler(monitor),
	}

	r := gin.New()
	r.Use(utils.ErrorHandler(logger))
	RegisterRoutes(r, hb, Options{
		Gate:           auth.NewGate(users, tokens, logger),
		AllowedOrigins: []string{"*"},
		Logger:         logger,
	})
	return &server{t: t, router: r, users: users, tokens: tokens}
}

func (s *server) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("%s %s: invalid JSON %q", method, path, w.Body.String())
		}
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func (s *server) register(name, email, role string) (string, string) {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	if code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", email, code, env.Message)
	}
	resp := decode[user.AuthResponse](s.t, env.Data)
	return resp.User.ID, resp.Token
}

func (s *server) admin() string {
	s.t.Helper()
	u := &models.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
	if err := s.users.Create(context.Background(), u); err != nil {
		s.t.Fatalf("seed admin: %v", err)
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		s.t.Fatalf("issue: %v", err)
	}
	return tok
}

func bookingRequest(companionID string) gin.H {
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Hour)
	return gin.H{
		"companionId":      companionID,
		"eventName":        "Gallery opening",
		"eventType":        "event",
		"eventDescription": "Modern art evening",
		"meetingPoint":     "Main entrance",
		"startDate":        start,
		"endDate":          start.Add(2 * time.Hour),
	}
}

func TestPublicEndpoints(t *testing.T) {
	s := newServer(t)

	if code, env := s.do(http.MethodGet, "/", "", nil); code != http.StatusOK || !env.Success {
		t.Errorf("welcome: %d %+v", code, env)
	}
	if code, env := s.do(http.MethodGet, "/health", "", nil); code != http.StatusOK || !env.Success {
		t.Errorf("health: %d %+v", code, env)
	}
	if code, _ := s.do(http.MethodPost, "/api/auth/logout", "", nil); code != http.StatusOK {
		t.Errorf("logout: %d", code)
	}
}

func TestAccessGate(t *testing.T) {
	s := newServer(t)
	_, seekerToken := s.register("Sam", "sam@example.com", "user")
	_, companionToken := s.register("Cleo", "cleo@example.com", "companion")

	code, env := s.do(http.MethodGet, "/api/bookings", "", nil)
	if code != http.StatusUnauthorized || env.Kind != string(utils.KindMissingCredential) {
		t.Errorf("no token: %d %+v", code, env)
	}
	code, env = s.do(http.MethodGet, "/api/bookings", "not-a-jwt", nil)
	if code != http.StatusUnauthorized || env.Kind != string(utils.KindInvalidCredential) {
		t.Errorf("bad token: %d %+v", code, env)
	}

	// The role check precedes body validation.
	code, env = s.do(http.MethodPost, "/api/bookings", companionToken, "{not json")
	if code != http.StatusForbidden {
		t.Errorf("companion creating a booking: %d %+v", code, env)
	}
	code, _ = s.do(http.MethodGet, "/api/admin/users", seekerToken, nil)
	if code != http.StatusForbidden {
		t.Errorf("seeker on admin route: %d", code)
	}
	code, env = s.do(http.MethodPost, "/api/bookings", seekerToken, gin.H{})
	if code != http.StatusBadRequest || env.Kind != string(utils.KindValidation) || len(env.Errors) == 0 {
		t.Errorf("empty booking body: %d %+v", code, env)
	}
}

func TestLoginAndProfile(t *testing.T) {
	s := newServer(t)
	s.register("Sam", "sam@example.com", "user")

	code, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "sam@example.com"})
	if code != http.StatusBadRequest || env.Message != "Please provide email and password" {
		t.Errorf("incomplete login: %d %+v", code, env)
	}
	code, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "sam@example.com", "password": "wrong-pass"})
	if code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", code)
	}
	code, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "SAM@example.com", "password": "secret123"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %+v", code, env)
	}
	token := decode[user.AuthResponse](t, env.Data).Token

	code, env = s.do(http.MethodPut, "/api/users/profile", token, gin.H{"role": "admin"})
	if code != http.StatusBadRequest || len(env.Errors) != 1 || env.Errors[0].Field != "role" {
		t.Errorf("disallowed field: %d %+v", code, env)
	}
	code, env = s.do(http.MethodPut, "/api/users/profile", token, gin.H{"name": "Samuel"})
	if code != http.StatusOK || decode[models.User](t, env.Data).Name != "Samuel" {
		t.Errorf("update profile: %d %+v", code, env)
	}
	code, env = s.do(http.MethodGet, "/api/users/profile", token, nil)
	if code != http.StatusOK || decode[models.User](t, env.Data).Email != "sam@example.com" {
		t.Errorf("get profile: %d %+v", code, env)
	}
}

func TestBookingLifecycle(t *testing.T) {
	s := newServer(t)
	adminToken := s.admin()
	_, seekerToken := s.register("Sam", "sam@example.com", "user")
	companionID, companionToken := s.register("Cleo", "cleo@example.com", "companion")

	code, env := s.do(http.MethodPost, "/api/bookings", seekerToken, bookingRequest(companionID))
	if code != http.StatusBadRequest || env.Kind != string(utils.KindInvalidCompanion) {
		t.Fatalf("unverified companion: %d %+v", code, env)
	}

	code, _ = s.do(http.MethodPut, "/api/admin/users/"+companionID+"/verify", adminToken, gin.H{"isVerified": true})
	if code != http.StatusOK {
		t.Fatalf("verify companion: %d", code)
	}
	code, env = s.do(http.MethodGet, "/api/users/companions", seekerToken, nil)
	if page := decode[user.CompanionPage](t, env.Data); code != http.StatusOK || len(page.Companions) != 1 {
		t.Errorf("companion listing: %d %+v", code, env)
	}

	code, env = s.do(http.MethodPost, "/api/bookings", seekerToken, bookingRequest(companionID))
	if code != http.StatusCreated {
		t.Fatalf("create booking: %d %+v", code, env)
	}
	b := decode[models.Booking](t, env.Data)
	if b.TotalPrice != 800 || b.CommissionAmount != 160 || b.Status != models.StatusPending {
		t.Errorf("unexpected booking %+v", b)
	}

	code, env = s.do(http.MethodGet, "/api/bookings?scope=companion", companionToken, nil)
	if page := decode[booking.BookingPage](t, env.Data); code != http.StatusOK || page.Pagination.Total != 1 {
		t.Errorf("companion listing: %d %+v", code, env)
	}

	code, env = s.do(http.MethodPatch, "/api/bookings/"+b.ID+"/status", companionToken, gin.H{"status": "completed"})
	if code != http.StatusBadRequest || env.Kind != string(utils.KindInvalidTransition) {
		t.Errorf("skipping ahead: %d %+v", code, env)
	}
	code, env = s.do(http.MethodPatch, "/api/bookings/"+b.ID+"/status", companionToken, gin.H{"status": "confirmed"})
	if code != http.StatusOK || decode[models.Booking](t, env.Data).Status != models.StatusConfirmed {
		t.Fatalf("confirm: %d %+v", code, env)
	}

	code, env = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", seekerToken, gin.H{"paymentMethod": "card"})
	if code != http.StatusCreated {
		t.Fatalf("initiate payment: %d %+v", code, env)
	}
	checkout := decode[payment.Checkout](t, env.Data)
	if checkout.ClientSecret != "cs_1" {
		t.Errorf("unexpected checkout %+v", checkout)
	}
	code, env = s.do(http.MethodPost, "/api/payments/"+checkout.Payment.ID+"/confirm", seekerToken, nil)
	if code != http.StatusOK || decode[models.Payment](t, env.Data).Status != models.PaymentRecordSucceeded {
		t.Fatalf("confirm payment: %d %+v", code, env)
	}

	code, env = s.do(http.MethodGet, "/api/bookings/"+b.ID, seekerToken, nil)
	if got := decode[models.Booking](t, env.Data); code != http.StatusOK || got.PaymentStatus != models.PaymentPaid {
		t.Errorf("paid booking: %d %+v", code, env)
	}

	code, _ = s.do(http.MethodPatch, "/api/bookings/"+b.ID+"/status", seekerToken, gin.H{"status": "cancelled", "reason": "weather"})
	if code != http.StatusOK {
		t.Fatalf("cancel: %d", code)
	}
	code, _ = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/rating", adminToken, gin.H{"score": 5})
	if code != http.StatusForbidden {
		t.Errorf("admin rating: %d", code)
	}
	code, _ = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/refund", seekerToken, nil)
	if code != http.StatusForbidden {
		t.Errorf("seeker refund: %d", code)
	}
	code, env = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/refund", adminToken, nil)
	if got := decode[models.Booking](t, env.Data); code != http.StatusOK || got.Status != models.StatusRefunded || got.PaymentStatus != models.PaymentRefunded {
		t.Errorf("refund: %d %+v", code, env)
	}
}

func TestChatEndpoints(t *testing.T) {
	s := newServer(t)
	seekerID, seekerToken := s.register("Sam", "sam@example.com", "user")
	companionID, companionToken := s.register("Cleo", "cleo@example.com", "companion")

	code, env := s.do(http.MethodPost, "/api/chat", seekerToken, gin.H{"participantId": companionID})
	if code != http.StatusOK {
		t.Fatalf("create chat: %d %+v", code, env)
	}
	conv := decode[models.Chat](t, env.Data)

	code, env = s.do(http.MethodPost, "/api/chat", companionToken, gin.H{"participantId": seekerID})
	if code != http.StatusOK || decode[models.Chat](t, env.Data).ID != conv.ID {
		t.Errorf("reopen chat: %d %+v", code, env)
	}

	code, _ = s.do(http.MethodPost, "/api/chat/messages", companionToken, gin.H{"chatId": conv.ID, "content": "Hello!"})
	if code != http.StatusCreated {
		t.Fatalf("send: %d", code)
	}
	code, env = s.do(http.MethodGet, "/api/chat/"+conv.ID+"/messages?page=1&limit=5", seekerToken, nil)
	page := decode[chat.MessagePage](t, env.Data)
	if code != http.StatusOK || len(page.Messages) != 1 || page.Messages[0].SenderID != companionID {
		t.Errorf("list messages: %d %+v", code, env)
	}
	code, _ = s.do(http.MethodGet, "/api/chat/"+conv.ID+"/messages?page=abc", seekerToken, nil)
	if code != http.StatusBadRequest {
		t.Errorf("bad page: %d", code)
	}
}
