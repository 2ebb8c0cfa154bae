package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user id has no record.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnauthorized covers every verification failure: missing
	// credential, bad or expired session, invalid refresh token,
	// inactive user. The underlying cause is not exposed to callers.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnknownProvider is returned for provider names outside the
	// supported set.
	ErrUnknownProvider = errors.New("unknown oauth provider")
)

// ConflictError reports that an email is already claimed by an account
// created through a different provider. Both provider names are carried
// so the caller can tell the user which provider to sign in with.
type ConflictError struct {
	ExistingProvider  Provider
	AttemptedProvider Provider
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("email already registered via %s, attempted %s", e.ExistingProvider, e.AttemptedProvider)
}

// ParseProvider maps a case-insensitive provider name to its tag.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "GITHUB":
		return ProviderGitHub, nil
	case "GOOGLE":
		return ProviderGoogle, nil
	case "LINKEDIN", "LINKEDIN_OIDC":
		return ProviderLinkedIn, nil
	}
	return "", ErrUnknownProvider
}
