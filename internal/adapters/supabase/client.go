package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Subject is the Supabase-shaped identity record returned by the auth
// user endpoint.
type Subject struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  AppMetadata    `json:"app_metadata"`
	Identities   []Identity     `json:"identities"`
}

type AppMetadata struct {
	Provider  string   `json:"provider"`
	Providers []string `json:"providers"`
}

type Identity struct {
	Provider string `json:"provider"`
}

// Client verifies third-party-issued access tokens. A nil Subject with
// a nil error means the token was positively rejected.
type Client interface {
	GetUser(ctx context.Context, accessToken string) (*Subject, error)
}

type httpClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewHTTPClient(baseURL, serviceKey string, timeout time.Duration) Client {
	return &httpClient{baseURL: baseURL, serviceKey: serviceKey, client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) GetUser(ctx context.Context, accessToken string) (*Subject, error) {
	var subject *Subject
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("apikey", c.serviceKey)
		req.Header.Set("Accept", "application/json")

		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		switch {
		case res.StatusCode == http.StatusOK:
		case res.StatusCode == http.StatusUnauthorized,
			res.StatusCode == http.StatusForbidden,
			res.StatusCode == http.StatusNotFound:
			// token rejected, not a transport failure
			subject = nil
			return nil
		case res.StatusCode >= 500:
			return fmt.Errorf("supabase error: %d", res.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("supabase error: %d", res.StatusCode))
		}

		var s Subject
		if err := json.NewDecoder(res.Body).Decode(&s); err != nil {
			return backoff.Permanent(err)
		}
		subject = &s
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 3 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return subject, nil
}
