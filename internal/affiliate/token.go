package affiliate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Tokens are refreshed this long before their reported expiry rather than
// waiting for a 401.
const tokenRefreshSkew = 5 * time.Minute

// tokenSource yields the credential material attached to provider requests.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// staticToken is a fixed API key.
type staticToken string

func (t staticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrCredentialsMissing
	}
	return string(t), nil
}

// oauthToken caches a bearer token and refreshes it ahead of expiry. A
// single mutex serialises refreshes; token endpoints are idempotent, so the
// lock is about avoiding duplicate requests, not correctness.
type oauthToken struct {
	client   *http.Client
	tokenURL string
	grant    url.Values
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newOAuthToken(cfg Config, client *http.Client) *oauthToken {
	grant := url.Values{}
	switch cfg.Auth {
	case AuthPassword:
		grant.Set("grant_type", "password")
		grant.Set("username", cfg.Username)
		grant.Set("password", cfg.Password)
		if cfg.ClientID != "" {
			grant.Set("client_id", cfg.ClientID)
		}
	default:
		grant.Set("grant_type", "client_credentials")
		grant.Set("client_id", cfg.ClientID)
		grant.Set("client_secret", cfg.ClientSecret)
	}
	return &oauthToken{
		client:   client,
		tokenURL: cfg.TokenURL,
		grant:    grant,
		now:      time.Now,
	}
}

func (o *oauthToken) Token(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.token != "" && o.now().Before(o.expires.Add(-tokenRefreshSkew)) {
		return o.token, nil
	}
	if err := o.refresh(ctx); err != nil {
		return "", err
	}
	return o.token, nil
}

func (o *oauthToken) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(o.grant.Encode()))
	if err != nil {
		return fmt.Errorf("affiliate: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("affiliate: token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("affiliate: token endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("affiliate: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("affiliate: token response missing access_token")
	}

	o.token = payload.AccessToken
	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	o.expires = o.now().Add(time.Duration(expiresIn) * time.Second)
	return nil
}
