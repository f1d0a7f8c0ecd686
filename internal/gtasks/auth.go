package gtasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	domain "github.com/donaldgifford/grocery-autopilot/pkg/types"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token" //nolint:gosec // not a credential
	refreshBuffer   = 60 * time.Second
)

// storedCredentials mirrors the token file written by the Google OAuth
// consent flow. Only the refresh token and client credentials are read.
type storedCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// FileTokenProvider implements TokenProvider using a refresh token
// stored on disk. It caches access tokens and refreshes automatically
// when expired or within 60 seconds of expiry. Thread-safe via mutex.
type FileTokenProvider struct {
	path     string
	tokenURL string
	client   *http.Client

	mu      sync.Mutex
	token   string
	expiry  time.Time
	nowFunc func() time.Time // for testing
}

// FileTokenOption configures the FileTokenProvider.
type FileTokenOption func(*FileTokenProvider)

// WithTokenURL overrides the default Google token endpoint.
func WithTokenURL(u string) FileTokenOption {
	return func(p *FileTokenProvider) {
		p.tokenURL = u
	}
}

// WithTokenHTTPClient overrides the default HTTP client.
func WithTokenHTTPClient(c *http.Client) FileTokenOption {
	return func(p *FileTokenProvider) {
		p.client = c
	}
}

// WithTokenNowFunc overrides the time function for testing.
func WithTokenNowFunc(f func() time.Time) FileTokenOption {
	return func(p *FileTokenProvider) {
		p.nowFunc = f
	}
}

// NewFileTokenProvider creates a token provider backed by a credentials
// file at path.
func NewFileTokenProvider(path string, opts ...FileTokenOption) *FileTokenProvider {
	p := &FileTokenProvider{
		path:     path,
		tokenURL: defaultTokenURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Token returns a valid access token, refreshing if necessary.
func (p *FileTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.nowFunc().Before(p.expiry.Add(-refreshBuffer)) {
		return p.token, nil
	}

	return p.refreshLocked(ctx)
}

func (p *FileTokenProvider) refreshLocked(ctx context.Context) (string, error) {
	creds, err := p.load()
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
	}

	tokenURL := p.tokenURL
	if creds.TokenURI != "" && p.tokenURL == defaultTokenURL {
		tokenURL = creds.TokenURI
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tokenErrorResponse
		_ = json.Unmarshal(body, &errResp) //nolint:errcheck // best-effort error parsing
		err := fmt.Errorf(
			"token refresh failed (status %d): %s - %s",
			resp.StatusCode,
			errResp.Error,
			errResp.ErrorDescription,
		)
		return "", domain.TasksAuthError(p.path, err)
	}

	var tokenResp accessTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}

	p.token = tokenResp.AccessToken
	p.expiry = p.nowFunc().Add(
		time.Duration(tokenResp.ExpiresIn) * time.Second,
	)

	return p.token, nil
}

// load reads the credentials file. A missing or incomplete file means
// the one-time consent flow was never run.
func (p *FileTokenProvider) load() (*storedCredentials, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.TasksAuthError(p.path, err)
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds storedCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", p.path, err)
	}
	if creds.RefreshToken == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, domain.TasksAuthError(
			p.path,
			fmt.Errorf("credentials file %s is missing required fields", p.path),
		)
	}
	return &creds, nil
}
