// Package kreta is a client for the school portal's undocumented mobile API.
// It logs in by walking the portal's OAuth/PKCE flow the way the mobile app
// would, then exposes typed fetches for the four record streams.
package kreta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// Credentials identify one student account on one institute
type Credentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Institute string `json:"institute"`
}

// Validate checks that no field is empty
func (c *Credentials) Validate() error {
	if c.Username == "" || c.Password == "" || c.Institute == "" {
		return fmt.Errorf("credentials need a username, a password and an institute id")
	}
	return nil
}

// Client is an authenticated portal session. It does not guarantee the
// access token is still fresh; call RefreshIfNeeded before a batch of
// fetches. A Client is not safe for concurrent use, callers serialize access
// (the session cache wraps every client in a lock).
type Client struct {
	http      *http.Client
	tokens    Tokens
	institute string
}

// userAgent mimics the student mobile app; the token endpoint rejects
// unknown agents.
const userAgent = "hu.ekreta.student/5.8.0+2025082301/SM-S9280/9/28"

// newHTTPClient builds the http client the whole flow shares: the login
// sequence needs cookies and capped redirects.
func newHTTPClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// FullLogin walks the complete login sequence and returns a ready client
func FullLogin(ctx context.Context, creds *Credentials) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	flow, err := NewLoginFlow()
	if err != nil {
		return nil, err
	}

	tokens, err := flow.Run(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("logging in with credentials for %s: %w", creds.Username, err)
	}

	util.LogInfof("logged in as %s@%s", creds.Username, creds.Institute)
	return &Client{
		http:      flow.http,
		tokens:    *tokens,
		institute: creds.Institute,
	}, nil
}

// RefreshIfNeeded exchanges the refresh token for a fresh access token when
// the current one is about to expire. A no-op while the token is still good.
func (c *Client) RefreshIfNeeded(ctx context.Context) error {
	if !c.tokens.NeedsRefresh() {
		return nil
	}
	util.LogDebugf("access token for institute %s is stale, refreshing", c.institute)
	return c.Refresh(ctx)
}

// Refresh unconditionally exchanges the refresh token
func (c *Client) Refresh(ctx context.Context) error {
	form := strings.NewReader(fmt.Sprintf(
		"institute_code=%s&refresh_token=%s&grant_type=refresh_token&client_id=%s",
		c.institute, c.tokens.RefreshToken, clientID,
	))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, form)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting new access token: %w", err)
	}
	defer resp.Body.Close()

	tokens, err := decodeTokens(resp)
	if err != nil {
		return fmt.Errorf("refreshing access token: %w", err)
	}
	c.tokens = *tokens
	return nil
}

// getJSON performs an authenticated GET and hands back the raw body.
// Non-2xx responses become errors carrying the status and a body snippet so
// the portal's error page is visible in logs.
func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %s: %s", url, resp.Status, truncate(string(body), 300))
	}
	return body, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
