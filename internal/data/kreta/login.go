package kreta

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// The idp endpoints and the client id the student mobile app registers with
const (
	clientID          = "kreta-ellenorzo-student-mobile-android"
	idpBase           = "https://idp.e-kreta.hu"
	authorizeEndpoint = idpBase + "/connect/authorize"
	loginEndpoint     = idpBase + "/account/login"
	tokenEndpoint     = idpBase + "/connect/token"
	redirectURI       = "https://mobil.e-kreta.hu/ellenorzo-student/prod/oauthredirect"
	authorizeScope    = "openid email offline_access kreta-ellenorzo-webapi.public kreta-eugyintezes-webapi.public kreta-fileservice-webapi.public kreta-mobile-global-webapi.public kreta-dkt-webapi.public kreta-ier-webapi.public"
)

// LoginFlow scrapes the portal's login page and completes the OAuth/PKCE
// code exchange without a browser. The portal has no API login, so this
// mimics what the login form itself would submit. How stable the page
// structure stays over time is anyone's guess.
type LoginFlow struct {
	http *http.Client
}

// beginData is what the login page gives us to continue the flow
type beginData struct {
	verifier          string
	returnURL         string
	verificationToken string
}

// NewLoginFlow creates a flow with a fresh cookie jar
func NewLoginFlow() (*LoginFlow, error) {
	client, err := newHTTPClient()
	if err != nil {
		return nil, err
	}
	return &LoginFlow{http: client}, nil
}

// Run walks the whole sequence: request the login page, post the
// credentials, resolve the authorization code and exchange it for tokens.
func (f *LoginFlow) Run(ctx context.Context, creds *Credentials) (*Tokens, error) {
	data, err := f.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting the login page: %w", err)
	}
	if err := f.postCredentials(ctx, data, creds); err != nil {
		return nil, fmt.Errorf("posting credentials: %w", err)
	}
	tokens, err := f.requestToken(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("exchanging the authorization code: %w", err)
	}
	return tokens, nil
}

func randomToken(bytes int) string {
	buf := make([]byte, bytes)
	rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// pkceChallenge returns a (verifier, challenge) pair per RFC 7636 S256
func pkceChallenge() (string, string) {
	verifier := randomToken(64)
	digest := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(digest[:])
	return verifier, challenge
}

// begin requests the authorize endpoint and scrapes the two hidden inputs
// the login form posts back: ReturnUrl and __RequestVerificationToken.
func (f *LoginFlow) begin(ctx context.Context) (*beginData, error) {
	verifier, challenge := pkceChallenge()

	query := url.Values{
		"redirect_uri":          {redirectURI},
		"client_id":             {clientID},
		"response_type":         {"code"},
		"prompt":                {"login"},
		"state":                 {randomToken(16)},
		"nonce":                 {randomToken(16)},
		"scope":                 {authorizeScope},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authorizeEndpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("authorize endpoint returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	returnURL, err := hiddenInputValue(body, "ReturnUrl")
	if err != nil {
		return nil, err
	}
	verificationToken, err := hiddenInputValue(body, "__RequestVerificationToken")
	if err != nil {
		return nil, err
	}

	return &beginData{
		verifier:          verifier,
		returnURL:         returnURL,
		verificationToken: verificationToken,
	}, nil
}

// postCredentials submits the login form the way the page's own javascript
// would
func (f *LoginFlow) postCredentials(ctx context.Context, data *beginData, creds *Credentials) error {
	form := url.Values{
		"ReturnUrl":                  {data.returnURL},
		"__RequestVerificationToken": {data.verificationToken},
		"UserName":                   {creds.Username},
		"Password":                   {creds.Password},
		"InstituteCode":              {creds.Institute},
		"loginType":                  {"InstituteLogin"},
		"ClientId":                   {""},
		"IsTemporaryLogin":           {"False"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login endpoint returned %s: %s", resp.Status, truncate(string(body), 300))
	}
	return nil
}

// requestToken resolves the authorization code by following the ReturnUrl
// redirect chain, then posts the code exchange.
func (f *LoginFlow) requestToken(ctx context.Context, data *beginData) (*Tokens, error) {
	code, err := f.resolveCode(ctx, data)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
		"code_verifier": {data.verifier},
		"client_id":     {clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeTokens(resp)
}

// resolveCode follows the post-login ReturnUrl until the oauthredirect and
// pulls the code out of the final url
func (f *LoginFlow) resolveCode(ctx context.Context, data *beginData) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, idpBase+data.returnURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("return url resolution returned %s", resp.Status)
	}

	final := resp.Request.URL
	code := final.Query().Get("code")
	if code == "" {
		// some idp versions put the code in the fragment-style query of the
		// Location header instead
		if loc := resp.Header.Get("Location"); loc != "" {
			if u, err := url.Parse(loc); err == nil {
				code = u.Query().Get("code")
			}
		}
	}
	if code == "" {
		return "", fmt.Errorf("resolved return url %s has no code= parameter", final)
	}
	return code, nil
}

// hiddenInputValue finds <input id=... value=...> or <input name=... value=...>
// in the login page
func hiddenInputValue(page []byte, key string) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(page)))
	if err != nil {
		return "", fmt.Errorf("parsing login page: %w", err)
	}

	var value string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if value != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" {
			matched := false
			val := ""
			for _, attr := range n.Attr {
				if (attr.Key == "id" || attr.Key == "name") && attr.Val == key {
					matched = true
				}
				if attr.Key == "value" {
					val = attr.Val
				}
			}
			if matched && val != "" {
				value = val
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if value == "" {
		return "", fmt.Errorf("login page has no %s input", key)
	}
	return value, nil
}
