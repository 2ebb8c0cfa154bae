package usecase

import (
	"context"
	"errors"

	"github.com/julianthant/codecave-sub000/config"
	repo "github.com/julianthant/codecave-sub000/internal/adapters/postgres"
	"github.com/julianthant/codecave-sub000/internal/domain"
	"github.com/julianthant/codecave-sub000/internal/oauth"
	"github.com/julianthant/codecave-sub000/internal/tokenverify"
	pkglog "github.com/julianthant/codecave-sub000/pkg/log"
)

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResult is the login payload handed to callers. User is the
// public profile: the provider linkage key is already stripped.
type AuthResult struct {
	Tokens
	User domain.PublicProfile `json:"user"`
}

type Service interface {
	ResolveOAuthUser(ctx context.Context, traceID string, provider domain.Provider, raw oauth.RawProfile) (*domain.User, error)
	IssueTokens(user *domain.User) (*AuthResult, error)
	RefreshTokens(ctx context.Context, traceID, refreshToken string) (*Tokens, error)
	GetMe(ctx context.Context, traceID, userID string) (domain.PublicProfile, error)
	VerifyToken(ctx context.Context, traceID, token string) (*tokenverify.Result, error)
}

type authService struct {
	cfg    *config.Config
	logger pkglog.Logger
	users  repo.UserRepository
	signer TokenSigner
}

func NewAuthService(cfg *config.Config, logger pkglog.Logger, users repo.UserRepository, signer TokenSigner) Service {
	return &authService{cfg: cfg, logger: logger, users: users, signer: signer}
}

// ResolveOAuthUser maps a normalized provider profile to exactly one
// platform user. Lookup order is fixed: identity key first, then
// email. An email already claimed under a different provider is a
// conflict and produces no writes.
func (s *authService) ResolveOAuthUser(ctx context.Context, traceID string, provider domain.Provider, raw oauth.RawProfile) (*domain.User, error) {
	normalize, err := oauth.For(provider)
	if err != nil {
		return nil, err
	}
	profile := normalize(raw)

	user, err := s.users.FindByProviderID(ctx, provider, profile.ID)
	switch {
	case err == nil:
		if err := s.refreshProfile(ctx, user, profile); err != nil {
			return nil, err
		}
	case repo.IsNotFound(err):
		user, err = s.linkOrCreate(ctx, provider, profile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Str("provider", string(provider)).Msg("oauth user resolved")
	return user, nil
}

func (s *authService) linkOrCreate(ctx context.Context, provider domain.Provider, profile oauth.Profile) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		if existing.Provider != provider {
			return nil, &domain.ConflictError{ExistingProvider: existing.Provider, AttemptedProvider: provider}
		}
		// Same provider, identity row matched by email only. Refresh
		// the profile; the identity key is left untouched.
		if err := s.refreshProfile(ctx, existing, profile); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !repo.IsNotFound(err) {
		return nil, err
	}

	user := newUserFromProfile(provider, profile)
	if err := s.users.Create(ctx, user); err != nil {
		if repo.IsDuplicate(err) {
			// Concurrent callback won the race; the row exists now.
			if again, lerr := s.users.FindByProviderID(ctx, provider, profile.ID); lerr == nil {
				return again, nil
			}
		}
		return nil, err
	}
	return user, nil
}

// refreshProfile updates the mutable profile fields from the latest
// provider payload. Email, Provider and ProviderID are never rewritten.
func (s *authService) refreshProfile(ctx context.Context, user *domain.User, profile oauth.Profile) error {
	user.Name = profile.Name
	user.Avatar = profile.Avatar
	user.Bio = profile.Bio
	user.Website = profile.Website
	user.Location = profile.Location
	user.Company = profile.Company
	user.GithubUsername = profile.GithubUsername
	user.LinkedinProfile = profile.LinkedinProfile
	return s.users.Update(ctx, user)
}

func newUserFromProfile(provider domain.Provider, profile oauth.Profile) *domain.User {
	return &domain.User{
		Email:           profile.Email,
		Provider:        provider,
		ProviderID:      profile.ID,
		Name:            profile.Name,
		Avatar:          profile.Avatar,
		Bio:             profile.Bio,
		Website:         profile.Website,
		Location:        profile.Location,
		Company:         profile.Company,
		GithubUsername:  profile.GithubUsername,
		LinkedinProfile: profile.LinkedinProfile,
		Skills:          []string{},
		IsActive:        true,
	}
}

func (s *authService) IssueTokens(user *domain.User) (*AuthResult, error) {
	access, err := s.signer.SignAccessToken(user, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signer.SignRefreshToken(user.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Tokens: Tokens{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.cfg.AccessTTL.Seconds())},
		User:   user.PublicProfile(),
	}, nil
}

// RefreshTokens exchanges a valid refresh token for a fresh pair. Both
// tokens rotate. Every failure collapses to ErrUnauthorized.
func (s *authService) RefreshTokens(ctx context.Context, traceID, refreshToken string) (*Tokens, error) {
	tok, claims, err := s.signer.ParseRefresh(refreshToken)
	if err != nil || tok == nil || !tok.Valid {
		return nil, domain.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, sub)
	if err != nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	result, err := s.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Msg("tokens refreshed")
	return &result.Tokens, nil
}

func (s *authService) GetMe(ctx context.Context, traceID, userID string) (domain.PublicProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return domain.PublicProfile{}, domain.ErrUserNotFound
		}
		return domain.PublicProfile{}, err
	}
	return user.PublicProfile(), nil
}

func (s *authService) VerifyToken(ctx context.Context, traceID, token string) (*tokenverify.Result, error) {
	result, err := tokenverify.Verify(s.signer, token, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("trace_id", traceID).Str("user_id", result.UserID).Msg("token verified")
	return result, nil
}

// AsConflict unwraps a resolution error into its conflict form, if any.
func AsConflict(err error) (*domain.ConflictError, bool) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
