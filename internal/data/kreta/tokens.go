package kreta

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
)

// Tokens is the response of the idp's /connect/token endpoint
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// refreshLeeway renews the access token this much before its actual expiry,
// so a batch of four concurrent fetches never straddles the boundary.
const refreshLeeway = 2 * time.Minute

// ExpiresAt reads the expiry out of the access token itself. The JWT exp
// claim survives process restarts, unlike a deadline computed from ExpiresIn
// at receive time. Falls back to ExpiresIn when the token is not parseable.
func (t *Tokens) ExpiresAt() time.Time {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	// signature verification is the portal's job, we only read the claim
	if _, _, err := parser.ParseUnverified(t.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

// NeedsRefresh reports whether the access token is expired or close to it
func (t *Tokens) NeedsRefresh() bool {
	return time.Now().After(t.ExpiresAt().Add(-refreshLeeway))
}

// decodeTokens reads a token endpoint response body
func decodeTokens(resp *http.Response) (*Tokens, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("token endpoint returned %s: %s", resp.Status, truncate(string(body), 300))
	}

	var tokens Tokens
	if err := sonic.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("token endpoint returned 2xx but the body is not valid json: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}
	return &tokens, nil
}
