package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/julianthant/codecave-sub000/internal/domain"
	res "github.com/julianthant/codecave-sub000/pkg/http"
)

type stubBridge struct {
	user      *domain.User
	lastToken string
}

func (s *stubBridge) ResolveSession(_ context.Context, _ string, token string) (*domain.User, error) {
	s.lastToken = token
	if s.user == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.user, nil
}

func TestSupabaseGuardRejectsMissingAndInvalidTokensAlike(t *testing.T) {
	bridge := &stubBridge{}
	guard := NewSupabaseGuard(bridge)

	for _, withHeader := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if withHeader {
			req.Header.Set(echo.HeaderAuthorization, "Bearer bad-token")
		}
		c, rec := guardContext(t, req)
		_ = guard.Handler(okHandler)(c)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		var errResp res.ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &errResp)
		if errResp.Error.Message != "token validation failed" {
			t.Fatalf("expected uniform failure message, got %q", errResp.Error.Message)
		}
	}
}

func TestSupabaseGuardAttachesResolvedUser(t *testing.T) {
	bridge := &stubBridge{user: &domain.User{ID: "u-1", Email: "a@x.com", Provider: domain.ProviderGitHub}}
	guard := NewSupabaseGuard(bridge)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer sb-token")
	c, rec := guardContext(t, req)
	_ = guard.Handler(okHandler)(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if bridge.lastToken != "sb-token" {
		t.Fatalf("token not forwarded: %q", bridge.lastToken)
	}
	user, ok := c.Get(ContextSupabaseUser).(*domain.User)
	if !ok || user.ID != "u-1" {
		t.Fatalf("expected resolved user on context")
	}
}
