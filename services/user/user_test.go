package user

import (
	"context"
	"testing"
	"time"

	"companionhub/database/repository/memory"
	"companionhub/models"
	"companionhub/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*DefaultUserService, *memory.UserRepo) {
	t.Helper()
	repo := memory.NewUserRepo()
	return &DefaultUserService{
		Repo:       repo,
		Tokens:     utils.NewJWTIssuer("test-secret", time.Hour),
		Logger:     zap.NewNop(),
		BcryptCost: bcrypt.MinCost,
	}, repo
}

func register(t *testing.T, svc *DefaultUserService, in RegisterInput) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("register %s: %v", in.Email, err)
	}
	return resp
}

func TestRegister(t *testing.T) {
	t.Parallel()
	svc, repo := newService(t)

	resp := register(t, svc, RegisterInput{Name: " Asha ", Email: "Asha@Example.com", Password: "secret1", Phone: "9990001111"})
	if resp.Token == "" || resp.User.Role != models.RoleSeeker || resp.User.Email != "asha@example.com" {
		t.Errorf("unexpected response %+v", resp)
	}
	subject, err := svc.Tokens.Verify(resp.Token)
	if err != nil || subject != resp.User.ID {
		t.Errorf("token does not resolve to user: %q %v", subject, err)
	}

	stored, _ := repo.GetByEmailWithPassword(context.Background(), "asha@example.com")
	if stored == nil || stored.PasswordHash == "secret1" || !stored.IsActive || stored.Name != "Asha" {
		t.Fatalf("unexpected stored user %+v", stored)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")) != nil {
		t.Error("password hash does not match")
	}

	companion := register(t, svc, RegisterInput{Name: "Ravi", Email: "ravi@example.com", Password: "secret1", Role: models.RoleCompanion})
	if companion.User.Role != models.RoleCompanion || companion.User.IsVerified {
		t.Errorf("companion should start unverified: %+v", companion.User)
	}
}

func TestRegisterRejects(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	register(t, svc, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1", Phone: "9990001111"})

	tests := []struct {
		name string
		in   RegisterInput
		kind utils.ErrorKind
	}{
		{"duplicate email", RegisterInput{Name: "B", Email: "ASHA@example.com", Password: "secret1"}, utils.KindDuplicateIdentity},
		{"duplicate phone", RegisterInput{Name: "B", Email: "b@example.com", Password: "secret1", Phone: "9990001111"}, utils.KindDuplicateIdentity},
		{"short password", RegisterInput{Name: "B", Email: "b@example.com", Password: "123"}, utils.KindValidation},
		{"bad email", RegisterInput{Name: "B", Email: "nope", Password: "secret1"}, utils.KindValidation},
		{"admin role", RegisterInput{Name: "B", Email: "b@example.com", Password: "secret1", Role: models.RoleAdmin}, utils.KindValidation},
		{"missing name", RegisterInput{Email: "b@example.com", Password: "secret1"}, utils.KindValidation},
	}
	for _, tt := range tests {
		_, err := svc.Register(context.Background(), tt.in)
		if !utils.IsKind(err, tt.kind) {
			t.Errorf("%s: expected %s, got %v", tt.name, tt.kind, err)
		}
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc, repo := newService(t)
	reg := register(t, svc, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1"})

	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return later }

	resp, err := svc.Login(context.Background(), LoginInput{Email: "ASHA@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != reg.User.ID || resp.Token == "" {
		t.Errorf("unexpected login response %+v", resp)
	}
	stored, _ := repo.GetByID(context.Background(), reg.User.ID)
	if !stored.LastActive.Equal(later) {
		t.Errorf("lastActive not updated: %v", stored.LastActive)
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "wrong-password"})
	if !utils.IsKind(err, utils.KindInvalidCredential) {
		t.Errorf("wrong password: %v", err)
	}
	_, err = svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret1"})
	if !utils.IsKind(err, utils.KindInvalidCredential) {
		t.Errorf("unknown email: %v", err)
	}
	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@example.com"})
	if !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("missing password: %v", err)
	}

	if _, err := svc.SetActive(context.Background(), reg.User.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "secret1"})
	if !utils.IsKind(err, utils.KindInvalidCredential) {
		t.Errorf("deactivated account: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()
	seekerResp := register(t, svc, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "secret1", Phone: "9990001111"})
	companionResp := register(t, svc, RegisterInput{Name: "Ravi", Email: "ravi@example.com", Password: "secret1", Role: models.RoleCompanion})
	seeker, _ := svc.GetProfile(ctx, seekerResp.User.ID)
	companion, _ := svc.GetProfile(ctx, companionResp.User.ID)

	name, gender := "Asha K", "female"
	prefs := models.Preferences{Languages: []string{"en", "hi"}}
	updated, err := svc.UpdateProfile(ctx, seeker, ProfileUpdate{Name: &name, Gender: &gender, Preferences: &prefs})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.Gender != gender || len(updated.Preferences.Languages) != 2 {
		t.Errorf("unexpected profile %+v", updated)
	}

	price := 750.0
	_, err = svc.UpdateProfile(ctx, seeker, ProfileUpdate{PricePerHour: &price})
	if !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("seeker price update: %v", err)
	}
	updated, err = svc.UpdateProfile(ctx, companion, ProfileUpdate{PricePerHour: &price})
	if err != nil || updated.PricePerHour == nil || *updated.PricePerHour != 750 {
		t.Errorf("companion price update: %+v %v", updated, err)
	}

	phone := "9990001111"
	_, err = svc.UpdateProfile(ctx, companion, ProfileUpdate{Phone: &phone})
	if !utils.IsKind(err, utils.KindDuplicateIdentity) {
		t.Errorf("duplicate phone: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, seeker, ProfileUpdate{})
	if !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("empty update: %v", err)
	}

	bad := "robot"
	_, err = svc.UpdateProfile(ctx, seeker, ProfileUpdate{Gender: &bad})
	if !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("bad gender: %v", err)
	}
}

func TestListCompanionsAndAdmin(t *testing.T) {
	t.Parallel()
	svc, repo := newService(t)
	ctx := context.Background()

	var ids []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		resp := register(t, svc, RegisterInput{Name: "C", Email: email, Password: "secret1", Role: models.RoleCompanion})
		ids = append(ids, resp.User.ID)
	}
	register(t, svc, RegisterInput{Name: "S", Email: "s@example.com", Password: "secret1"})

	page, err := svc.ListCompanions(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Pagination.Total != 0 {
		t.Errorf("unverified companions must not be listed, got %d", page.Pagination.Total)
	}

	for _, id := range ids {
		if _, err := svc.SetVerified(ctx, id, true); err != nil {
			t.Fatalf("verify: %v", err)
		}
	}
	if _, err := svc.SetActive(ctx, ids[2], false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := repo.AddRating(ctx, ids[0], 5); err != nil {
		t.Fatalf("rate: %v", err)
	}

	page, _ = svc.ListCompanions(ctx, 1, 10)
	if page.Pagination.Total != 2 || len(page.Companions) != 2 {
		t.Fatalf("expected 2 bookable companions, got %+v", page.Pagination)
	}
	if page.Companions[0].ID != ids[0] {
		t.Errorf("expected best rated first, got %s", page.Companions[0].ID)
	}

	all, err := svc.ListUsers(ctx, "", 1, 2)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if all.Pagination.Total != 4 || all.Pagination.Pages != 2 || len(all.Users) != 2 {
		t.Errorf("unexpected user page %+v", all.Pagination)
	}
	seekers, _ := svc.ListUsers(ctx, models.RoleSeeker, 1, 10)
	if seekers.Pagination.Total != 1 {
		t.Errorf("expected 1 seeker, got %d", seekers.Pagination.Total)
	}
	if _, err := svc.ListUsers(ctx, "root", 1, 10); !utils.IsKind(err, utils.KindValidation) {
		t.Errorf("invalid role filter: %v", err)
	}

	if _, err := svc.SetVerified(ctx, "missing", true); !utils.IsKind(err, utils.KindNotFound) {
		t.Errorf("missing user: %v", err)
	}
	if _, err := svc.GetProfile(ctx, "missing"); !utils.IsKind(err, utils.KindNotFound) {
		t.Errorf("missing profile: %v", err)
	}
}
