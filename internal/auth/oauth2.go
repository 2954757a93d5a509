package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mailgate/internal/conf"
)

// refreshWindow is the look-ahead before expiry at which GetToken refreshes
// or reacquires instead of returning the cached token.
const refreshWindow = 5 * time.Minute

// ConfigError reports a missing or invalid OAuth2 setting, caught before any
// network call.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("oauth2 configuration error: %s cannot be empty", e.Field)
}

// ResponseError reports a token endpoint rejection, carrying the server's
// error code and description when present.
type ResponseError struct {
	Status      int
	Code        string
	Description string
}

func (e *ResponseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("oauth2 response error: %s - %s", e.Code, e.Description)
	}
	return fmt.Sprintf("oauth2 response error: token request failed (%d): %s", e.Status, e.Description)
}

// Token is a bearer credential. Tokens are replaced wholesale on refresh,
// never mutated, so a manager shared behind a lock can never hand out a
// partially-updated token.
type Token struct {
	AccessToken  string
	TokenType    string
	ExpiresAt    time.Time
	RefreshToken string
	Scope        string
}

func (t *Token) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsExpiringSoon reports whether the token expires within window. An already
// expired token is always expiring soon.
func (t *Token) IsExpiringSoon(window time.Duration) bool {
	return time.Now().After(t.ExpiresAt.Add(-window))
}

func (t *Token) AuthorizationHeader() string {
	return t.TokenType + " " + t.AccessToken
}

// tokenResponse is the token endpoint's JSON shape, including the embedded
// error fields a grant failure may carry in a 200 response.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// OAuth2Client acquires, refreshes and caches a bearer token. One instance
// may be shared by every connection's provider: GetToken is the single
// synchronized access point, so concurrent sessions never observe a
// half-updated token and an expiring token is exchanged exactly once.
type OAuth2Client struct {
	config     conf.OAuth2Config
	httpClient *http.Client
	logger     *slog.Logger
	store      *TokenStore

	mu       sync.Mutex
	authCode string
	current  *Token
}

// NewOAuth2Client validates the registration and builds a client. No network
// call is made until GetToken.
func NewOAuth2Client(cfg conf.OAuth2Config, logger *slog.Logger) (*OAuth2Client, error) {
	switch {
	case cfg.TenantID == "":
		return nil, &ConfigError{Field: "tenant id"}
	case cfg.ClientID == "":
		return nil, &ConfigError{Field: "client id"}
	case cfg.ClientSecret == "":
		return nil, &ConfigError{Field: "client secret"}
	case cfg.Scope == "":
		return nil, &ConfigError{Field: "scope"}
	}

	if cfg.Authority == "" {
		cfg.Authority = "https://login.microsoftonline.com/" + cfg.TenantID
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OAuth2Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		authCode:   cfg.AuthCode,
	}, nil
}

// UseStore attaches a persistent refresh-token store. A stored refresh token
// lets the first GetToken resume without re-running the authorization-code
// flow.
func (c *OAuth2Client) UseStore(store *TokenStore) {
	c.store = store
}

// SetHTTPClient overrides the HTTP transport, mainly for tests.
func (c *OAuth2Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

func (c *OAuth2Client) tokenEndpoint() string {
	return c.config.Authority + "/oauth2/v2.0/token"
}

// GetToken returns a token that is valid for at least the refresh window,
// acquiring or refreshing as needed. An expired or expiring token is never
// surfaced to the caller. Safe for concurrent use: the whole
// check-then-exchange sequence runs under the client's lock.
func (c *OAuth2Client) GetToken(ctx context.Context) (*Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		if !c.current.IsExpiringSoon(refreshWindow) {
			return c.current, nil
		}
		c.logger.Debug("token expiring soon", "expires_at", c.current.ExpiresAt)
		if c.current.RefreshToken != "" {
			return c.Refresh(ctx, c.current.RefreshToken)
		}
		return c.AcquireClientCredentials(ctx)
	}

	if c.store != nil {
		refreshToken, err := c.store.Load(c.config.Authority, c.config.ClientID)
		if err != nil {
			c.logger.Warn("loading stored refresh token", "error", err)
		} else if refreshToken != "" {
			c.logger.Debug("resuming from stored refresh token")
			token, err := c.Refresh(ctx, refreshToken)
			if err == nil {
				return token, nil
			}
			c.logger.Warn("stored refresh token rejected, acquiring fresh", "error", err)
		}
	}

	if c.authCode != "" {
		code := c.authCode
		c.authCode = ""
		return c.AcquireAuthorizationCode(ctx, code)
	}
	return c.AcquireClientCredentials(ctx)
}

// AcquireClientCredentials obtains a token via the client-credentials grant.
func (c *OAuth2Client) AcquireClientCredentials(ctx context.Context) (*Token, error) {
	c.logger.Debug("acquiring token via client credentials grant")
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"scope":         {c.config.Scope},
	})
}

// AcquireAuthorizationCode exchanges an authorization code for a token.
func (c *OAuth2Client) AcquireAuthorizationCode(ctx context.Context, code string) (*Token, error) {
	c.logger.Debug("acquiring token via authorization code grant")
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"code":          {code},
		"redirect_uri":  {c.config.RedirectURI},
		"scope":         {c.config.Scope},
	})
}

// Refresh exchanges a refresh token for a new token. Single attempt: a
// failed refresh is returned to the caller, which may retry the whole
// operation.
func (c *OAuth2Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	c.logger.Debug("refreshing token")
	return c.requestToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"refresh_token": {refreshToken},
		"scope":         {c.config.Scope},
	})
}

// AuthorizationURL builds the URL a user visits to start the
// authorization-code flow.
func (c *OAuth2Client) AuthorizationURL(state string) string {
	return fmt.Sprintf("%s/oauth2/v2.0/authorize?client_id=%s&response_type=code&redirect_uri=%s&scope=%s&state=%s",
		c.config.Authority,
		url.QueryEscape(c.config.ClientID),
		url.QueryEscape(c.config.RedirectURI),
		url.QueryEscape(c.config.Scope),
		url.QueryEscape(state))
}

func (c *OAuth2Client) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenEndpoint(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{Status: resp.StatusCode, Description: truncate(string(body), 512)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.Error != "" {
		description := tr.ErrorDescription
		if description == "" {
			description = "no error description"
		}
		return nil, &ResponseError{Status: resp.StatusCode, Code: tr.Error, Description: description}
	}

	token := &Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		RefreshToken: tr.RefreshToken,
		Scope:        tr.Scope,
	}

	c.logTokenClaims(token.AccessToken)

	if c.store != nil && token.RefreshToken != "" {
		if err := c.store.Save(c.config.Authority, c.config.ClientID, token.RefreshToken); err != nil {
			c.logger.Warn("persisting refresh token", "error", err)
		}
	}

	c.current = token
	c.logger.Debug("acquired token", "expires_at", token.ExpiresAt)
	return token, nil
}

// logTokenClaims decodes the access token as a JWT without verification and
// logs the principal and expiry claims. Opaque tokens are tolerated.
func (c *OAuth2Client) logTokenClaims(accessToken string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return
	}
	attrs := []any{}
	if appID, ok := claims["appid"].(string); ok {
		attrs = append(attrs, "appid", appID)
	}
	if upn, ok := claims["upn"].(string); ok {
		attrs = append(attrs, "upn", upn)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		attrs = append(attrs, "claim_exp", exp.Time)
	}
	c.logger.Debug("token claims", attrs...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
