package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-portal"
	"github.com/goliatone/go-print"
)

const authPrefix = "/auth/v1"

// Config holds the hosted backend connection settings.
type Config struct {
	// BaseURL is the project URL, e.g. https://project.example.co
	BaseURL string
	// APIKey is the public (anon) key sent with every request.
	APIKey string
	// ServiceKey authorizes admin endpoints. Leave empty on clients that
	// never list users.
	ServiceKey string

	// HTTPClient defaults to http.DefaultClient. Requests are bounded by
	// their context only.
	HTTPClient *http.Client
	Clock      func() time.Time
	Logger     portal.Logger
	// Debug dumps request and response payloads through the logger.
	Debug bool
}

// Client talks to the hosted auth API and keeps the current session.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
	logger     portal.Logger
	bus        *Bus
	state      *sessionState
}

type sessionState struct {
	mu      sync.RWMutex
	session *portal.Session
}

var (
	_ portal.CredentialExchange = (*Client)(nil)
	_ portal.SessionSource      = (*Client)(nil)
	_ portal.IdentityUpdater    = (*Client)(nil)
	_ portal.EmailDirectory     = (*Client)(nil)
)

// New creates a client with no session.
func New(cfg Config) *Client {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = portal.DefaultLogger()
	}

	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
		now:        now,
		logger:     logger,
		bus:        NewBus(),
		state:      &sessionState{},
	}
}

// Bind returns a client sharing transport and keys but holding session as
// its own current session with a separate event bus.
func (c *Client) Bind(session *portal.Session) *Client {
	bound := *c
	bound.bus = NewBus()
	bound.state = &sessionState{}
	if session != nil {
		cp := *session
		bound.state.session = &cp
	}
	return &bound
}

// Session returns the cached session without refreshing it.
func (c *Client) Session() *portal.Session {
	c.state.mu.RLock()
	defer c.state.mu.RUnlock()
	if c.state.session == nil {
		return nil
	}
	cp := *c.state.session
	return &cp
}

// OnSessionChange implements portal.SessionSource.
func (c *Client) OnSessionChange(fn func(portal.SessionEvent)) func() {
	return c.bus.Subscribe(fn)
}

// SignInWithPassword implements portal.CredentialExchange.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*portal.Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	query := url.Values{"grant_type": {"password"}}

	var resp tokenResponse
	if err := c.do(ctx, "sign_in_password", http.MethodPost, "/token", query, "", payload, &resp); err != nil {
		return nil, err
	}
	return c.establish(resp, portal.SessionSignedIn)
}

// RequestOTP implements portal.CredentialExchange.
func (c *Client) RequestOTP(ctx context.Context, req portal.OTPRequest) error {
	payload := map[string]any{
		"create_user": req.CreateUser,
	}
	if req.Kind == portal.ContactPhone {
		payload["phone"] = req.Destination
		payload["channel"] = "sms"
	} else {
		payload["email"] = req.Destination
	}
	if len(req.Metadata) > 0 {
		payload["data"] = req.Metadata
	}

	return c.do(ctx, "request_otp", http.MethodPost, "/otp", nil, "", payload, nil)
}

// VerifyOTP implements portal.CredentialExchange.
func (c *Client) VerifyOTP(ctx context.Context, destination, code string, channel portal.Channel) (*portal.Session, error) {
	payload := map[string]any{
		"token": code,
		"type":  string(channel),
	}
	if channel == portal.ChannelSMS {
		payload["phone"] = destination
	} else {
		payload["email"] = destination
	}

	var resp tokenResponse
	if err := c.do(ctx, "verify_otp", http.MethodPost, "/verify", nil, "", payload, &resp); err != nil {
		return nil, err
	}
	return c.establish(resp, portal.SessionSignedIn)
}

// UpdateIdentity implements portal.IdentityUpdater for the current session.
func (c *Client) UpdateIdentity(ctx context.Context, patch portal.IdentityPatch) (*portal.Identity, error) {
	session := c.Session()
	if session == nil {
		return nil, portal.ErrNoSession
	}

	var identity portal.Identity
	if err := c.do(ctx, "update_identity", http.MethodPut, "/user", nil, session.AccessToken, patch, &identity); err != nil {
		return nil, err
	}

	c.state.mu.Lock()
	if c.state.session != nil {
		c.state.session.Identity = identity
	}
	c.state.mu.Unlock()

	c.bus.Publish(portal.SessionEvent{Kind: portal.SessionIdentityUpdated, Session: c.Session()})
	return &identity, nil
}

// GetIdentity fetches the identity that owns accessToken.
func (c *Client) GetIdentity(ctx context.Context, accessToken string) (*portal.Identity, error) {
	var identity portal.Identity
	if err := c.do(ctx, "get_identity", http.MethodGet, "/user", nil, accessToken, nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetSession implements portal.SessionSource. An expired session with a
// refresh token is refreshed first.
func (c *Client) GetSession(ctx context.Context) (*portal.Session, error) {
	session := c.Session()
	if session == nil {
		return nil, nil
	}
	if !session.Expired(c.now()) {
		return session, nil
	}
	if session.RefreshToken == "" {
		c.clear()
		return nil, nil
	}
	return c.RefreshSession(ctx)
}

// RefreshSession trades the refresh token for a new session. A rejected
// refresh signs the client out.
func (c *Client) RefreshSession(ctx context.Context) (*portal.Session, error) {
	session := c.Session()
	if session == nil || session.RefreshToken == "" {
		return nil, portal.ErrNoSession
	}

	payload := map[string]any{"refresh_token": session.RefreshToken}
	query := url.Values{"grant_type": {"refresh_token"}}

	var resp tokenResponse
	if err := c.do(ctx, "refresh_session", http.MethodPost, "/token", query, "", payload, &resp); err != nil {
		if !portal.IsTransportError(err) {
			c.clear()
		}
		return nil, err
	}
	return c.establish(resp, portal.SessionTokenRefreshed)
}

// SignOut implements portal.SessionSource. Without a session it does
// nothing. The local session is dropped even when the service call fails.
func (c *Client) SignOut(ctx context.Context) error {
	session := c.Session()
	if session == nil {
		return nil
	}

	err := c.do(ctx, "sign_out", http.MethodPost, "/logout", nil, session.AccessToken, nil, nil)
	c.clear()

	var svcErr *ServiceError
	if errors.As(err, &svcErr) && (svcErr.Status == http.StatusUnauthorized || svcErr.Status == http.StatusNotFound) {
		return nil
	}
	return err
}

// RecoverPassword sends a password recovery email that links back to redirectTo.
func (c *Client) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	var query url.Values
	if redirectTo != "" {
		query = url.Values{"redirect_to": {redirectTo}}
	}
	return c.do(ctx, "recover_password", http.MethodPost, "/recover", query, "", map[string]any{"email": email}, nil)
}

func (c *Client) establish(resp tokenResponse, kind portal.SessionEventKind) (*portal.Session, error) {
	if resp.AccessToken == "" {
		return nil, &ServiceError{Operation: string(kind), Code: "missing_access_token", Message: "missing access token"}
	}

	session := resp.session(c.now())
	c.state.mu.Lock()
	c.state.session = session
	c.state.mu.Unlock()

	out := *session
	c.bus.Publish(portal.SessionEvent{Kind: kind, Session: &out})
	return &out, nil
}

func (c *Client) clear() {
	c.state.mu.Lock()
	had := c.state.session != nil
	c.state.session = nil
	c.state.mu.Unlock()

	if had {
		c.bus.Publish(portal.SessionEvent{Kind: portal.SessionSignedOut})
	}
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, bearer string, in, out any) error {
	return c.request(ctx, operation, method, authPrefix+path, query, c.cfg.APIKey, bearer, in, out)
}

func (c *Client) request(ctx context.Context, operation, method, path string, query url.Values, key, bearer string, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
		if c.cfg.Debug {
			c.logger.Debug("hosted %s request: %s", operation, print.MaybePrettyJSON(in))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", key)
	if bearer == "" {
		bearer = key
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return portal.NewTransportError(err, operation)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return portal.NewTransportError(err, operation)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServiceError(operation, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServiceError{
			Operation: operation,
			Status:    resp.StatusCode,
			Code:      "invalid_response",
			Message:   "failed to decode response",
		}
	}
	if c.cfg.Debug {
		c.logger.Debug("hosted %s response: %s", operation, print.MaybePrettyJSON(out))
	}
	return nil
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	ExpiresAt    int64           `json:"expires_at"`
	RefreshToken string          `json:"refresh_token"`
	User         portal.Identity `json:"user"`
}

func (t tokenResponse) session(now time.Time) *portal.Session {
	s := &portal.Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Identity:     t.User,
	}
	switch {
	case t.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		s.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return s
}
