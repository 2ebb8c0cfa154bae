package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/julianthant/codecave-sub000/internal/session"
)

// SessionAuthority asks the platform session service to validate a
// credential over NATS request/reply.
type SessionAuthority struct {
	conn    *nats.Conn
	subject string
}

func NewSessionAuthority(conn *nats.Conn, subject string) *SessionAuthority {
	return &SessionAuthority{conn: conn, subject: subject}
}

type sessionVerifyRequest struct {
	Token string `json:"token"`
}

type sessionVerifyResponse struct {
	OK      bool              `json:"ok"`
	Session *session.Session  `json:"session,omitempty"`
	User    *session.Identity `json:"user,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func (a *SessionAuthority) VerifySession(ctx context.Context, token string) (*session.Verified, error) {
	data, err := json.Marshal(sessionVerifyRequest{Token: token})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	msg, err := a.conn.RequestWithContext(ctx, a.subject, data)
	if err != nil {
		return nil, err
	}
	var resp sessionVerifyResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		if resp.Error != "" {
			return nil, fmt.Errorf("session verify failed: %s", resp.Error)
		}
		return nil, fmt.Errorf("session verify failed")
	}
	return &session.Verified{Session: resp.Session, User: resp.User}, nil
}
