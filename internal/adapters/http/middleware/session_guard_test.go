package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julianthant/codecave-sub000/internal/session"
	res "github.com/julianthant/codecave-sub000/pkg/http"
)

type stubAuthority struct {
	result    *session.Verified
	err       error
	lastToken string
}

func (s *stubAuthority) VerifySession(_ context.Context, token string) (*session.Verified, error) {
	s.lastToken = token
	return s.result, s.err
}

func verified() *session.Verified {
	return &session.Verified{
		Session: &session.Session{ID: "sess-1", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)},
		User:    &session.Identity{ID: "u-1", Email: "a@x.com", Name: "Alice"},
	}
}

func guardContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestSessionGuardRejectsWithoutCredential(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c, rec := guardContext(t, req)

	guard := NewSessionGuard(&stubAuthority{result: verified()}, "codecave_session")
	_ = guard.Handler(okHandler)(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if c.Get(ContextUser) != nil {
		t.Fatalf("user must not be attached on rejection")
	}
	var errResp res.ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &errResp)
	if errResp.Error.Message != "no credential provided" {
		t.Fatalf("unexpected message: %q", errResp.Error.Message)
	}
}

func TestSessionGuardAcceptsBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer tok-123")
	c, rec := guardContext(t, req)

	authority := &stubAuthority{result: verified()}
	guard := NewSessionGuard(authority, "codecave_session")
	_ = guard.Handler(okHandler)(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if authority.lastToken != "tok-123" {
		t.Fatalf("bearer token not forwarded: %q", authority.lastToken)
	}
	user, ok := c.Get(ContextUser).(*session.Identity)
	if !ok || user.ID != "u-1" {
		t.Fatalf("expected user on context")
	}
	if _, ok := c.Get(ContextSession).(*session.Session); !ok {
		t.Fatalf("expected session on context")
	}
}

func TestSessionGuardFallsBackToCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "codecave_session", Value: "cookie-tok"})
	c, rec := guardContext(t, req)

	authority := &stubAuthority{result: verified()}
	guard := NewSessionGuard(authority, "codecave_session")
	_ = guard.Handler(okHandler)(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if authority.lastToken != "cookie-tok" {
		t.Fatalf("cookie token not forwarded: %q", authority.lastToken)
	}
}

func TestSessionGuardPrefersBearerOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer header-tok")
	req.AddCookie(&http.Cookie{Name: "codecave_session", Value: "cookie-tok"})
	c, _ := guardContext(t, req)

	authority := &stubAuthority{result: verified()}
	guard := NewSessionGuard(authority, "codecave_session")
	_ = guard.Handler(okHandler)(c)

	if authority.lastToken != "header-tok" {
		t.Fatalf("expected header token to win, got %q", authority.lastToken)
	}
}

func TestSessionGuardCollapsesVerificationFailures(t *testing.T) {
	cases := []struct {
		name      string
		authority session.Authority
	}{
		{"authority error", &stubAuthority{err: errors.New("expired")}},
		{"nil result", &stubAuthority{}},
		{"missing session", &stubAuthority{result: &session.Verified{User: &session.Identity{ID: "u-1"}}}},
		{"missing user", &stubAuthority{result: &session.Verified{Session: &session.Session{ID: "sess-1"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer tok")
			c, rec := guardContext(t, req)

			guard := NewSessionGuard(tc.authority, "codecave_session")
			_ = guard.Handler(okHandler)(c)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var errResp res.ErrorResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &errResp)
			if errResp.Error.Message != "invalid or expired session" {
				t.Fatalf("failure causes must collapse to one message, got %q", errResp.Error.Message)
			}
		})
	}
}

func TestSessionGuardSkipsPublicRoutes(t *testing.T) {
	e := echo.New()
	authority := &stubAuthority{err: errors.New("must not be called")}
	guard := NewSessionGuard(authority, "codecave_session").Public("/auth/refresh")

	e.POST("/api/v1/auth/refresh", okHandler, guard.Handler)
	e.GET("/api/v1/auth/me", okHandler, guard.Handler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("public route must bypass the guard, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("protected route must stay guarded, got %d", rec.Code)
	}
}
