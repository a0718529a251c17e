package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/app-catalog/app-catalog/internal/auth"
	"github.com/app-catalog/app-catalog/internal/config"
)

func newTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuerWithSecret("0123456789abcdef0123456789abcdef", config.AuthConfig{
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "app-catalog-test",
	})
	if err != nil {
		t.Fatalf("NewTokenIssuerWithSecret: %v", err)
	}
	return issuer
}

// authedRouter wires AuthMiddleware (plus optional guards) in front of a
// terminal handler that records the caller identity it saw.
func authedRouter(issuer *auth.TokenIssuer, seen *map[string]interface{}, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(issuer)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		if seen != nil {
			*seen = map[string]interface{}{
				"user_id":      c.GetString(ContextUserID),
				"email":        c.GetString(ContextEmail),
				"is_admin":     c.GetBool(ContextIsAdmin),
				"is_developer": c.GetBool(ContextIsDeveloper),
			}
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", handlers...)
	return r
}

func doGet(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := authedRouter(newTestIssuer(t), nil)

	if w := doGet(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", w.Code)
	}
	if w := doGet(r, "Basic dXNlcjpwYXNz"); w.Code != http.StatusUnauthorized {
		t.Errorf("non-bearer scheme: status = %d, want 401", w.Code)
	}
	if w := doGet(r, "Bearer not.a.jwt"); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	issuer := newTestIssuer(t)
	r := authedRouter(issuer, nil)

	refresh, err := issuer.IssueRefreshToken("user-1", "alice@example.com", false, true)
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}
	if w := doGet(r, "Bearer "+refresh); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token on API route: status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_PopulatesContext(t *testing.T) {
	issuer := newTestIssuer(t)
	var seen map[string]interface{}
	r := authedRouter(issuer, &seen)

	access, err := issuer.IssueAccessToken("user-1", "alice@example.com", false, true)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	w := doGet(r, "Bearer "+access)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if seen["user_id"] != "user-1" || seen["email"] != "alice@example.com" {
		t.Errorf("identity = %v", seen)
	}
	if seen["is_admin"] != false || seen["is_developer"] != true {
		t.Errorf("capabilities = %v", seen)
	}
}

func TestRequireDeveloper(t *testing.T) {
	issuer := newTestIssuer(t)
	r := authedRouter(issuer, nil, RequireDeveloper())

	tests := []struct {
		name             string
		admin, developer bool
		want             int
	}{
		{"plain user", false, false, http.StatusForbidden},
		{"developer", false, true, http.StatusNoContent},
		{"admin passes developer gate", true, false, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.IssueAccessToken("user-1", "a@example.com", tt.admin, tt.developer)
			if err != nil {
				t.Fatalf("IssueAccessToken: %v", err)
			}
			if w := doGet(r, "Bearer "+token); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := newTestIssuer(t)
	r := authedRouter(issuer, nil, RequireAdmin())

	developer, err := issuer.IssueAccessToken("user-1", "a@example.com", false, true)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if w := doGet(r, "Bearer "+developer); w.Code != http.StatusForbidden {
		t.Errorf("developer on admin route: status = %d, want 403", w.Code)
	}

	admin, err := issuer.IssueAccessToken("user-2", "b@example.com", true, false)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if w := doGet(r, "Bearer "+admin); w.Code != http.StatusNoContent {
		t.Errorf("admin: status = %d, want 204", w.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Generated when absent.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("no request ID generated")
	}

	// Reused when supplied by the caller.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "upstream-id-42" {
		t.Errorf("request ID = %q, want the inbound value echoed", got)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy not set")
	}
}
