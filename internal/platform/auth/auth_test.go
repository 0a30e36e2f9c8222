package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func issueTestToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	issuer := NewTokenIssuer(testSecret, ttl)
	token, err := issuer.Issue("user-1", "Alice", RoleMRStaff)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, time.Hour))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != "user-1" {
			t.Errorf("expected user-1, got %s", UserIDFromContext(ctx))
		}
		if RoleFromContext(ctx) != RoleMRStaff {
			t.Errorf("expected mr_staff, got %s", RoleFromContext(ctx))
		}
		if UserNameFromContext(ctx) != "Alice" {
			t.Errorf("expected Alice, got %s", UserNameFromContext(ctx))
		}
		return c.NoContent(http.StatusOK)
	}

	h := JWTMiddleware(testSecret)(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(testSecret)(func(c echo.Context) error { return nil })
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, -time.Minute))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(testSecret)(func(c echo.Context) error { return nil })
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", err)
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, time.Hour))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware([]byte("other-secret"))(func(c echo.Context) error { return nil })
	if err := h(c); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestDevAuthMiddleware_AnonymousGetsDevIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := uuid.Parse(UserIDFromContext(ctx)); err != nil {
			t.Errorf("dev identity must be a parseable uuid, got %q", UserIDFromContext(ctx))
		}
		if RoleFromContext(ctx) != RoleAdmin {
			t.Errorf("expected admin role, got %s", RoleFromContext(ctx))
		}
		return c.NoContent(http.StatusOK)
	}

	h := DevAuthMiddleware(testSecret)(RequireRole(RoleMRStaff)(handler))
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDevAuthMiddleware_BearerTokenKeepsRealClaims(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, time.Hour))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		if UserIDFromContext(ctx) != "user-1" {
			t.Errorf("expected user-1, got %s", UserIDFromContext(ctx))
		}
		if RoleFromContext(ctx) != RoleMRStaff {
			t.Errorf("expected mr_staff, got %s", RoleFromContext(ctx))
		}
		return c.NoContent(http.StatusOK)
	}

	h := DevAuthMiddleware(testSecret)(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDevAuthMiddleware_InvalidTokenRejected(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := DevAuthMiddleware(testSecret)(func(c echo.Context) error { return nil })
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad token, got %v", err)
	}
}

func roleContext(role string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestRequireRole_Matches(t *testing.T) {
	c := roleContext(RoleMRStaff)
	called := false
	h := RequireRole(RoleMRStaff)(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to run")
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	c := roleContext(RoleAdmin)
	h := RequireRole(RoleMRStaff)(func(c echo.Context) error { return nil })
	if err := h(c); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	c := roleContext(RoleCA)
	h := RequireRole(RoleMRStaff)(func(c echo.Context) error { return nil })
	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}
