package redisauthority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianthant/codecave-sub000/internal/session"
)

const keyPrefix = "session:"

// Authority validates credentials against session records the platform
// backend writes into Redis. The record under session:<token> holds
// the serialized session plus a user snapshot.
type Authority struct {
	client *redis.Client
}

func New(client *redis.Client) *Authority {
	return &Authority{client: client}
}

type record struct {
	Session *session.Session  `json:"session"`
	User    *session.Identity `json:"user"`
}

func (a *Authority) VerifySession(ctx context.Context, token string) (*session.Verified, error) {
	val, err := a.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("malformed session record: %w", err)
	}
	if rec.Session != nil && !rec.Session.ExpiresAt.IsZero() && time.Now().After(rec.Session.ExpiresAt) {
		_ = a.client.Del(ctx, keyPrefix+token).Err()
		return nil, fmt.Errorf("session expired")
	}
	return &session.Verified{Session: rec.Session, User: rec.User}, nil
}
