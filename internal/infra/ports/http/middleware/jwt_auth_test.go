package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sharepad/sharepad/internal/infra/appctx"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, subject string, expiresAt time.Time) string {
	t.Helper()

	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runMiddleware(t *testing.T, cookie *http.Cookie) (int, uuid.UUID, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uuid.UUID
	var called bool

	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		gotID, called = appctx.UserID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}

	return rec.Code, gotID, called
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, testSecret, userID.String(), time.Now().Add(time.Hour))

	code, gotID, called := runMiddleware(t, &http.Cookie{Name: "jwt", Value: token})

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if !called {
		t.Fatal("next handler saw no user id in context")
	}
	if gotID != userID {
		t.Errorf("user id in context = %s, want %s", gotID, userID)
	}
}

func TestJWTAuthMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"missing cookie", nil},
		{"garbage token", &http.Cookie{Name: "jwt", Value: "not-a-token"}},
		{
			"wrong signing key",
			&http.Cookie{Name: "jwt", Value: signTokenWithSecret(uuid.New().String(), "other-secret")},
		},
		{
			"expired token",
			&http.Cookie{Name: "jwt", Value: signTokenWithSecret(uuid.New().String(), testSecret, withExpiry(-time.Hour))},
		},
		{
			"subject is not a uuid",
			&http.Cookie{Name: "jwt", Value: signTokenWithSecret("alice", testSecret)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, called := runMiddleware(t, tt.cookie)

			if code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", code)
			}
			if called {
				t.Error("next handler was called for an invalid token")
			}
		})
	}
}

type tokenOption func(*jwt.RegisteredClaims)

func withExpiry(d time.Duration) tokenOption {
	return func(c *jwt.RegisteredClaims) {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(d))
	}
}

func signTokenWithSecret(subject, secret string, opts ...tokenOption) string {
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	for _, opt := range opts {
		opt(claims)
	}

	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return token
}

func TestBuildCookieDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"localhost", ""},
		{"localhost:3000", ""},
		{"127.0.0.1", ""},
		{"192.168.1.10:8080", ""},
		{"example.com", ".example.com"},
		{"api.example.com", ".example.com"},
		{"example.com:443", ".example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BuildCookieDomain(tt.host); got != tt.want {
			t.Errorf("BuildCookieDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
