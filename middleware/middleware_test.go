package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"companionhub/database/repository/memory"
	"companionhub/models"
	"companionhub/services/auth"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, map[models.Role]string) {
	t.Helper()
	users := memory.NewUserRepo()
	tokens := utils.NewJWTIssuer("test-secret", time.Hour)
	logger := zap.NewNop()

	issued := map[models.Role]string{}
	for _, role := range []models.Role{models.RoleSeeker, models.RoleCompanion, models.RoleAdmin} {
		u := &models.User{ID: string(role) + "-id", Email: string(role) + "@example.com", Role: role, IsActive: true}
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed: %v", err)
		}
		tok, err := tokens.Issue(u.ID)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		issued[role] = tok
	}

	r := gin.New()
	r.Use(utils.ErrorHandler(logger))
	gate := auth.NewGate(users, tokens, logger)
	r.GET("/me", Authenticate(gate, logger), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).ID)
	})
	r.GET("/admin", Authenticate(gate, logger), RequireRoles(auth.Roles(models.RoleAdmin), logger), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, issued
}

func serve(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, tokens := newRouter(t)

	if w := serve(r, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got %d", w.Code)
	}
	if w := serve(r, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d", w.Code)
	}
	w := serve(r, "/me", tokens[models.RoleCompanion])
	if w.Code != http.StatusOK || w.Body.String() != "companion-id" {
		t.Errorf("valid token: got %d %q", w.Code, w.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	r, tokens := newRouter(t)

	if w := serve(r, "/admin", tokens[models.RoleSeeker]); w.Code != http.StatusForbidden {
		t.Errorf("user on admin route: got %d", w.Code)
	}
	if w := serve(r, "/admin", tokens[models.RoleAdmin]); w.Code != http.StatusNoContent {
		t.Errorf("admin: got %d", w.Code)
	}

	// Without Authenticate in front there is no identity.
	bare := gin.New()
	bare.GET("/x", RequireRoles(auth.AnyRole(), zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })
	if w := serve(bare, "/x", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no identity: got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	if err := TrustProxies(r, []string{"192.0.2.0/24", "10.0.0.0/8"}); err != nil {
		t.Fatalf("trust proxies: %v", err)
	}
	r.Use(RateLimit(2, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second client throttled: %d", w.Code)
	}
}

func TestClientIPTrustsConfiguredProxies(t *testing.T) {
	tests := []struct {
		name    string
		proxies []string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded by proxy", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": " 203.0.113.1 , 10.0.0.2"}, "10.0.0.3:1234", "203.0.113.1"},
		{"real ip from proxy", []string{"10.0.0.0/8"}, map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.3:1234", "198.51.100.2"},
		{"untrusted peer", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": "203.0.113.1"}, "192.0.2.4:5678", "192.0.2.4"},
		{"spoofed hop", []string{"10.0.0.0/8"}, map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.9"}, "10.0.0.3:1234", "198.51.100.9"},
		{"no proxies", nil, map[string]string{"X-Forwarded-For": "203.0.113.1"}, "10.0.0.3:1234", "10.0.0.3"},
	}
	for _, tt := range tests {
		r := gin.New()
		if err := TrustProxies(r, tt.proxies); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		for k, v := range tt.headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Body.String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}

	if err := TrustProxies(gin.New(), []string{"not-a-cidr"}); err == nil {
		t.Error("expected an error for a malformed proxy")
	}
}
