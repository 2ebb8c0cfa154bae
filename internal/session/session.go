package session

import (
	"context"
	"time"
)

// Session is the opaque session record owned by the external session
// authority. Only the fields the guard needs are modeled.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is the authority's view of the authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verified is a successful verification result. Both fields must be
// present for the guard to accept it.
type Verified struct {
	Session *Session  `json:"session"`
	User    *Identity `json:"user"`
}

// Authority validates a presented credential against the external
// session service. Implementations must return an error for any token
// they cannot positively verify.
type Authority interface {
	VerifySession(ctx context.Context, token string) (*Verified, error)
}
