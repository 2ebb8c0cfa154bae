package usecase

import (
	"context"
	"strings"

	repo "github.com/julianthant/codecave-sub000/internal/adapters/postgres"
	"github.com/julianthant/codecave-sub000/internal/adapters/supabase"
	"github.com/julianthant/codecave-sub000/internal/domain"
	"github.com/julianthant/codecave-sub000/internal/oauth"
	pkglog "github.com/julianthant/codecave-sub000/pkg/log"
)

// defaultBridgeProvider is used when a Supabase identity carries no
// recognizable provider hint.
const defaultBridgeProvider = domain.ProviderGitHub

// SupabaseBridge is the alternate verification path: it trusts a
// Supabase-issued token and resolves a platform user by email only.
// Unlike the OAuth resolver it never updates an existing match and
// performs no cross-provider conflict detection.
type SupabaseBridge struct {
	logger pkglog.Logger
	users  repo.UserRepository
	client supabase.Client
}

func NewSupabaseBridge(logger pkglog.Logger, users repo.UserRepository, client supabase.Client) *SupabaseBridge {
	return &SupabaseBridge{logger: logger, users: users, client: client}
}

// ResolveSession verifies a Supabase access token and returns the
// matching platform user, creating one when none exists. Missing
// tokens and rejected tokens produce the same opaque failure.
func (b *SupabaseBridge) ResolveSession(ctx context.Context, traceID, token string) (*domain.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrUnauthorized
	}
	subject, err := b.client.GetUser(ctx, token)
	if err != nil || subject == nil || subject.Email == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := b.users.FindByEmail(ctx, subject.Email)
	if err == nil {
		return user, nil
	}
	if !repo.IsNotFound(err) {
		return nil, err
	}

	provider := inferProvider(subject)
	profile := oauth.FromSupabase(subject.ID, subject.Email, subject.UserMetadata)
	user = newUserFromProfile(provider, profile)
	if err := b.users.Create(ctx, user); err != nil {
		if repo.IsDuplicate(err) {
			if again, lerr := b.users.FindByEmail(ctx, subject.Email); lerr == nil {
				return again, nil
			}
		}
		return nil, err
	}
	b.logger.Info().Str("trace_id", traceID).Str("user_id", user.ID).Str("provider", string(provider)).Msg("user created via supabase bridge")
	return user, nil
}

// inferProvider picks a provider tag for a Supabase subject: the first
// linked identity wins, then app_metadata.provider, then the default.
// Matching is case-insensitive; unknown names fall back to the default.
func inferProvider(subject *supabase.Subject) domain.Provider {
	if len(subject.Identities) > 0 {
		if p, err := domain.ParseProvider(subject.Identities[0].Provider); err == nil {
			return p
		}
		return defaultBridgeProvider
	}
	if subject.AppMetadata.Provider != "" {
		if p, err := domain.ParseProvider(subject.AppMetadata.Provider); err == nil {
			return p
		}
	}
	return defaultBridgeProvider
}
