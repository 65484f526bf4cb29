// Package absher integrates with the external government vehicle-insurance
// API (Absher/TAMM): a client-credentials token endpoint and a per-vehicle
// insurance search endpoint.
package absher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/facility-dashboard-api/internal/config"
	"github.com/facility-dashboard-api/internal/domain"
)

// tokenSafetyMargin is subtracted from expires_in so a token is never used
// right at the edge of its validity window.
const tokenSafetyMargin = time.Minute

const authTimeout = 10 * time.Second

// TokenSource obtains and caches a bearer token from the external auth
// endpoint. It is constructed once at startup and shared by reference; the
// cached token lives only in memory and is recreated lazily after a restart.
type TokenSource struct {
	authURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewTokenSource(cfg *config.Config) *TokenSource {
	return &TokenSource{
		authURL:      cfg.AbsherAuthURL,
		clientID:     cfg.AbsherClientID,
		clientSecret: cfg.AbsherClientSecret,
		client:       &http.Client{Timeout: authTimeout},
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns the cached token while it is still valid, otherwise performs
// a client-credentials grant. Failures are never cached.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	if t.authURL == "" || t.clientID == "" || t.clientSecret == "" {
		return "", fmt.Errorf("absher credentials missing: %w", domain.ErrAuth)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.now().Before(t.expiresAt) {
		return t.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request: %v: %w", err, domain.ErrAuth)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("auth endpoint returned %d: %w", resp.StatusCode, domain.ErrAuth)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("auth response missing access_token: %w", domain.ErrAuth)
	}

	t.accessToken = tr.AccessToken
	t.expiresAt = t.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSafetyMargin)
	return t.accessToken, nil
}

// ClearCache force-invalidates the cached token, e.g. after a credential
// rotation. The next Token call will hit the auth endpoint again.
func (t *TokenSource) ClearCache() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.accessToken = ""
	t.expiresAt = time.Time{}
}
