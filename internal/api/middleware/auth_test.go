package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/entregas/delivery-marketplace/internal/core/domain"
)

type stubRoleSource struct {
	roles map[string][]string
}

func (s *stubRoleSource) FindRoles(_ context.Context, id string) ([]string, error) {
	roles, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return roles, nil
}

func (s *stubRoleSource) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, nil
}
func (s *stubRoleSource) FindByID(context.Context, string) (*domain.User, error) { return nil, nil }
func (s *stubRoleSource) FindByUsername(context.Context, string) (*domain.User, error) {
	return nil, nil
}
func (s *stubRoleSource) FindAll(context.Context) ([]*domain.User, error) { return nil, nil }
func (s *stubRoleSource) Summaries(context.Context, []string) (map[string]domain.UserSummary, error) {
	return nil, nil
}
func (s *stubRoleSource) Update(context.Context, string, *domain.User) error   { return nil }
func (s *stubRoleSource) UpdatePassword(context.Context, string, string) error { return nil }
func (s *stubRoleSource) Delete(context.Context, string) error                 { return nil }

type stubRoleCache struct {
	entries map[string][]string
	sets    int
}

func (c *stubRoleCache) Get(_ context.Context, id string) ([]string, bool, error) {
	roles, ok := c.entries[id]
	return roles, ok, nil
}

func (c *stubRoleCache) Set(_ context.Context, id string, roles []string) error {
	if c.entries == nil {
		c.entries = map[string][]string{}
	}
	c.entries[id] = roles
	c.sets++
	return nil
}

func (c *stubRoleCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      sub,
		"username": "alice",
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "u1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	users := &stubRoleSource{roles: map[string][]string{"u1": {domain.RoleUser}}}
	cache := &stubRoleCache{}

	called := false
	mw := Auth("secret", cache, users, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		called = true
		id, ok := c.Get("identity").(domain.Identity)
		if !ok {
			t.Fatalf("identity not set")
		}
		if id.SubjectID != "u1" {
			t.Fatalf("subject = %q, want u1", id.SubjectID)
		}
		if !id.HasRole(domain.RoleUser) {
			t.Fatalf("expected USER_ROLE")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if cache.sets != 1 {
		t.Fatalf("expected roles cached once, got %d", cache.sets)
	}
}

func TestAuthMiddleware_CacheHitSkipsStore(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "u1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Empty store: a lookup there would 401, proving the cache served.
	users := &stubRoleSource{roles: map[string][]string{}}
	cache := &stubRoleCache{entries: map[string][]string{"u1": {domain.RoleAdmin}}}

	mw := Auth("secret", cache, users, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		id := c.Get("identity").(domain.Identity)
		if !id.HasRole(domain.RoleAdmin) {
			t.Fatalf("expected cached ADMIN_ROLE")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAuthMiddleware_UnknownSubject(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "ghost"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", &stubRoleCache{}, &stubRoleSource{}, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", &stubRoleCache{}, &stubRoleSource{}, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", &stubRoleCache{}, &stubRoleSource{}, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other", "u1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth("secret", &stubRoleCache{}, &stubRoleSource{}, zerolog.Nop())
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
