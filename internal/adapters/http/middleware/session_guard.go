package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/julianthant/codecave-sub000/internal/session"
	res "github.com/julianthant/codecave-sub000/pkg/http"
)

// Context keys set by the guards on successful verification.
const (
	ContextUser    = "user"
	ContextSession = "session"
	ContextUserID  = "user_id"
)

// SessionGuard gates requests behind the external session authority.
// Routes registered as public skip the check entirely; everything else
// fails closed: no credential, a verification error, or an incomplete
// authority result all reject before the handler runs.
type SessionGuard struct {
	authority  session.Authority
	cookieName string
	public     []string
}

func NewSessionGuard(authority session.Authority, cookieName string) *SessionGuard {
	return &SessionGuard{authority: authority, cookieName: cookieName}
}

// Public marks route path suffixes (echo route templates) that pass
// through without a credential.
func (g *SessionGuard) Public(paths ...string) *SessionGuard {
	g.public = append(g.public, paths...)
	return g
}

func (g *SessionGuard) isPublic(c echo.Context) bool {
	path := c.Path()
	for _, p := range g.public {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

func (g *SessionGuard) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if g.isPublic(c) {
			return next(c)
		}

		token := extractBearer(c)
		if token == "" {
			if cookie, err := c.Cookie(g.cookieName); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "no credential provided", res.RequestID(c), nil)
		}

		verified, err := g.authority.VerifySession(c.Request().Context(), token)
		if err != nil || verified == nil || verified.Session == nil || verified.User == nil {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "invalid or expired session", res.RequestID(c), nil)
		}

		c.Set(ContextUser, verified.User)
		c.Set(ContextSession, verified.Session)
		c.Set(ContextUserID, verified.User.ID)
		return next(c)
	}
}

func extractBearer(c echo.Context) string {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
