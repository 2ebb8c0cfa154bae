package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/julianthant/codecave-sub000/internal/domain"
	res "github.com/julianthant/codecave-sub000/pkg/http"
)

// ContextSupabaseUser holds the platform user resolved by the bridge.
const ContextSupabaseUser = "supabase_user"

// BridgeResolver is the Supabase bridge capability the guard needs.
type BridgeResolver interface {
	ResolveSession(ctx context.Context, traceID, token string) (*domain.User, error)
}

// SupabaseGuard is the alternate verification path. It extracts a
// bearer token itself (no cookie fallback) and delegates to the
// bridge; a missing token and a rejected token produce the same
// outcome.
type SupabaseGuard struct {
	bridge BridgeResolver
}

func NewSupabaseGuard(bridge BridgeResolver) *SupabaseGuard {
	return &SupabaseGuard{bridge: bridge}
}

func (g *SupabaseGuard) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractBearer(c)
		user, err := g.bridge.ResolveSession(c.Request().Context(), res.RequestID(c), token)
		if err != nil {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "token validation failed", res.RequestID(c), nil)
		}
		c.Set(ContextSupabaseUser, user)
		c.Set(ContextUserID, user.ID)
		return next(c)
	}
}
