package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/julianthant/codecave-sub000/internal/adapters/http/middleware"
	"github.com/julianthant/codecave-sub000/internal/domain"
	"github.com/julianthant/codecave-sub000/internal/oauth"
	"github.com/julianthant/codecave-sub000/internal/usecase"
	res "github.com/julianthant/codecave-sub000/pkg/http"
)

type AuthHandler struct {
	service usecase.Service
}

func NewAuthHandler(s usecase.Service) *AuthHandler { return &AuthHandler{service: s} }

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

// OAuthCallback receives the raw provider profile captured by the web
// layer's OAuth strategy, resolves it to a platform user and issues a
// token pair. A cross-provider email collision maps to 409 with both
// provider names in the details.
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	provider, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "unknown oauth provider", res.RequestID(c), nil)
	}
	raw := new(oauth.RawProfile)
	if err := c.Bind(raw); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c), nil)
	}

	user, err := h.service.ResolveOAuthUser(c.Request().Context(), res.RequestID(c), provider, *raw)
	if err != nil {
		if conflict, ok := usecase.AsConflict(err); ok {
			return res.ErrorJSON(c, http.StatusConflict, "provider_conflict", conflict.Error(), res.RequestID(c), map[string]string{
				"existing_provider":  string(conflict.ExistingProvider),
				"attempted_provider": string(conflict.AttemptedProvider),
			})
		}
		return res.ErrorJSON(c, http.StatusBadGateway, "resolution_failed", "could not resolve oauth user", res.RequestID(c), nil)
	}

	result, err := h.service.IssueTokens(user)
	if err != nil {
		return res.ErrorJSON(c, http.StatusInternalServerError, "token_issue_failed", "could not issue tokens", res.RequestID(c), nil)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	req := new(refreshRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c), nil)
	}
	tokens, err := h.service.RefreshTokens(c.Request().Context(), res.RequestID(c), req.RefreshToken)
	if err != nil {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "please sign in again", res.RequestID(c), nil)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) VerifyToken(c echo.Context) error {
	req := new(verifyTokenRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c), nil)
	}
	result, err := h.service.VerifyToken(c.Request().Context(), res.RequestID(c), req.Token)
	if err != nil {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "invalid token", res.RequestID(c), nil)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":  result.UserID,
		"email":    result.Email,
		"name":     result.Name,
		"provider": result.Provider,
		"claims":   result.Claims,
	})
}

// GetMe returns the public profile of the session-guarded caller.
func (h *AuthHandler) GetMe(c echo.Context) error {
	userID, _ := c.Get(authmw.ContextUserID).(string)
	if userID == "" {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "no credential provided", res.RequestID(c), nil)
	}
	me, err := h.service.GetMe(c.Request().Context(), res.RequestID(c), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return res.ErrorJSON(c, http.StatusNotFound, "not_found", "user not found", res.RequestID(c), nil)
		}
		return res.ErrorJSON(c, http.StatusInternalServerError, "internal_error", "profile lookup failed", res.RequestID(c), nil)
	}
	return res.JSON(c, http.StatusOK, me)
}

// SupabaseSession returns the user resolved by the Supabase guard.
func (h *AuthHandler) SupabaseSession(c echo.Context) error {
	user, _ := c.Get(authmw.ContextSupabaseUser).(*domain.User)
	if user == nil {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "token validation failed", res.RequestID(c), nil)
	}
	return res.JSON(c, http.StatusOK, user.PublicProfile())
}
