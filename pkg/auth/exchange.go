package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Exchanger converts an authorization code plus PKCE verifier into a validated
// token set. The callback server depends on this interface so tests can assert
// it is never invoked on a state mismatch.
type Exchanger interface {
	Exchange(ctx context.Context, code, codeVerifier string, port int) (*TokenResponse, error)
}

// TokenExchangeClient performs the single token-endpoint POST for one login
// attempt. It has no retry logic; callers decide whether to retry.
type TokenExchangeClient struct {
	cfg  Config
	http *http.Client
}

// NewTokenExchangeClient builds an exchange client for the given config. A nil
// httpClient falls back to a 30 second timeout client.
func NewTokenExchangeClient(cfg Config, httpClient *http.Client) *TokenExchangeClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenExchangeClient{cfg: cfg, http: httpClient}
}

// Exchange POSTs the authorization-code grant and validates the response
// before trusting it. Non-2xx responses surface the body text in the error.
func (c *TokenExchangeClient) Exchange(ctx context.Context, code, codeVerifier string, port int) (*TokenResponse, error) {
	base, _ := c.cfg.BaseURL()
	if base == "" {
		return nil, fmt.Errorf("no base URL configured for domain %q", c.cfg.Domain)
	}

	values := url.Values{}
	values.Set("grant_type", "authorization_code")
	values.Set("code", code)
	values.Set("redirect_uri", c.cfg.RedirectURL(port))
	values.Set("client_id", c.cfg.ClientID)
	values.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+tokenPath, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("token exchange failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return ValidateTokenResponse(body)
}
