package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/julianthant/codecave-sub000/internal/adapters/http/api/v1/handlers"
	authmw "github.com/julianthant/codecave-sub000/internal/adapters/http/middleware"
)

type Router struct {
	handlers      *handlers.AuthHandler
	sessionGuard  *authmw.SessionGuard
	supabaseGuard *authmw.SupabaseGuard
}

func NewRouter(h *handlers.AuthHandler, sessionGuard *authmw.SessionGuard, supabaseGuard *authmw.SupabaseGuard) *Router {
	return &Router{handlers: h, sessionGuard: sessionGuard, supabaseGuard: supabaseGuard}
}

func (r *Router) Register(g *echo.Group) {
	// The guard covers the whole auth group; public routes are marked
	// on the guard so the bypass decision lives in one place.
	r.sessionGuard.Public(
		"/auth/oauth/:provider/callback",
		"/auth/refresh",
		"/auth/verify",
		"/auth/supabase/session",
	)

	auth := g.Group("/auth", r.sessionGuard.Handler)
	auth.POST("/oauth/:provider/callback", r.handlers.OAuthCallback)
	auth.POST("/refresh", r.handlers.Refresh)
	auth.POST("/verify", r.handlers.VerifyToken)
	auth.GET("/me", r.handlers.GetMe)

	supabase := auth.Group("/supabase", r.supabaseGuard.Handler)
	supabase.POST("/session", r.handlers.SupabaseSession)
}
