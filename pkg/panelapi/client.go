// Package panelapi implements the client for the hosting panel's private web
// API: session login, zone snapshot retrieval and record writes.
package panelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// sessionCookieName is the cookie carrying the session token. The panel
	// sets it on a successful login and expects it on every call after.
	sessionCookieName = "cpsession"

	loginPath = "/web-hosting/cplogin"
	usersPath = "/api/users"
)

// dnsPath builds the zone DNS feature endpoint for a user and domain.
func dnsPath(userID, domain string) string {
	return fmt.Sprintf("/api/users/%s/domains/%s/features/dns",
		url.PathEscape(userID), url.PathEscape(domain))
}

// Client handles HTTP communication with the hosting panel.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new panel API client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Login exchanges credentials for a Session in two calls: a form login that
// yields the session cookie, then a user lookup that yields the account id.
//
// The panel signals a successful login with a 302 redirect; a 200 means the
// credentials were rejected. Any other status is an unexpected response.
func (c *Client) Login(ctx context.Context, user, pass string) (*Session, error) {
	form := url.Values{}
	form.Set("ldomain", user)
	form.Set("lpass", pass)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Reason: ReasonUnexpectedResponse, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// The redirect itself is the success signal, so it must not be followed.
	resp, err := c.noRedirectClient().Do(req)
	if err != nil {
		return nil, &AuthError{Reason: ReasonUnexpectedResponse, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusFound:
		// success
	case http.StatusOK:
		return nil, &AuthError{Reason: ReasonInvalidCredentials, Status: resp.StatusCode}
	default:
		return nil, &AuthError{Reason: ReasonUnexpectedResponse, Status: resp.StatusCode}
	}

	token := sessionToken(resp.Header.Values("Set-Cookie"))
	if token == "" {
		return nil, &AuthError{Reason: ReasonCookieMissing, Status: resp.StatusCode}
	}

	userID, err := c.fetchUserID(ctx, token)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("authenticated with panel", slog.String("user_id", userID))

	return &Session{Token: token, UserID: userID}, nil
}

// noRedirectClient returns a copy of the HTTP client that surfaces redirect
// responses instead of following them.
func (c *Client) noRedirectClient() *http.Client {
	clone := *c.httpClient
	clone.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &clone
}

// sessionToken extracts the session token from Set-Cookie header values.
// The token is the cookie value up to the first attribute separator.
func sessionToken(setCookies []string) string {
	for _, h := range setCookies {
		if !strings.HasPrefix(h, sessionCookieName+"=") {
			continue
		}
		token := strings.TrimPrefix(h, sessionCookieName+"=")
		if i := strings.IndexByte(token, ';'); i >= 0 {
			token = token[:i]
		}
		return token
	}
	return ""
}

// fetchUserID resolves the numeric account id for the session token.
func (c *Client) fetchUserID(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+usersPath, nil)
	if err != nil {
		return "", &AuthError{Reason: ReasonUserIDUnavailable, Err: err}
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Reason: ReasonUserIDUnavailable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Reason: ReasonUserIDUnavailable, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{
			Reason: ReasonUserIDUnavailable,
			Status: resp.StatusCode,
			Err:    envelopeError(body),
		}
	}

	var user struct {
		UserID json.Number `json:"user_id"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return "", &AuthError{Reason: ReasonUserIDUnavailable, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if user.UserID.String() == "" {
		return "", &AuthError{Reason: ReasonUserIDUnavailable, Err: fmt.Errorf("response has no user_id field")}
	}

	return user.UserID.String(), nil
}

// GetZone fetches the current DNS snapshot for a domain.
func (c *Client) GetZone(ctx context.Context, sess *Session, domain string) (*Zone, error) {
	body, status, err := c.do(ctx, sess, http.MethodGet, dnsPath(sess.UserID, domain), nil)
	if err != nil {
		return nil, &LookupError{Domain: domain, Err: err}
	}

	if status != http.StatusOK {
		return nil, &LookupError{Domain: domain, Status: status, Err: envelopeError(body)}
	}

	var zone Zone
	if err := json.Unmarshal(body, &zone); err != nil {
		return nil, &LookupError{Domain: domain, Status: status, Err: fmt.Errorf("parsing zone: %w", err)}
	}

	return &zone, nil
}

// AddRecord inserts a new record into the domain's zone.
func (c *Client) AddRecord(ctx context.Context, sess *Session, domain string, rec ZoneRecord) error {
	payload := struct {
		Domain string     `json:"domain"`
		Record ZoneRecord `json:"record"`
	}{Domain: domain, Record: rec}

	body, status, err := c.do(ctx, sess, http.MethodPost, dnsPath(sess.UserID, domain), payload)
	if err != nil {
		return &WriteError{Op: "add", Domain: domain, Err: err}
	}
	if status != http.StatusNoContent {
		return &WriteError{Op: "add", Domain: domain, Status: status, Err: envelopeError(body)}
	}

	c.logger.Debug("record added",
		slog.String("domain", domain),
		slog.String("name", rec.Name),
		slog.String("type", string(rec.Type)))

	return nil
}

// UpdateRecord replaces an existing record. The panel requires the prior
// record state as the selector for which entry to mutate.
func (c *Client) UpdateRecord(ctx context.Context, sess *Session, domain string, old, updated ZoneRecord) error {
	payload := struct {
		Domain string     `json:"domain"`
		Old    ZoneRecord `json:"old"`
		New    ZoneRecord `json:"new"`
	}{Domain: domain, Old: old, New: updated}

	body, status, err := c.do(ctx, sess, http.MethodPut, dnsPath(sess.UserID, domain), payload)
	if err != nil {
		return &WriteError{Op: "update", Domain: domain, Err: err}
	}
	if status != http.StatusNoContent {
		return &WriteError{Op: "update", Domain: domain, Status: status, Err: envelopeError(body)}
	}

	c.logger.Debug("record updated",
		slog.String("domain", domain),
		slog.String("name", updated.Name),
		slog.String("type", string(updated.Type)))

	return nil
}

// do performs one cookie-authenticated JSON request and returns the raw body
// and status code. Transport failures are returned as-is for the caller to
// classify.
func (c *Client) do(ctx context.Context, sess *Session, method, path string, reqBody any) ([]byte, int, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.Token})
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}

	return body, resp.StatusCode, nil
}

// envelopeError decodes the panel's validation error envelope from an error
// response body. Bodies that are not the envelope yield nil; the status code
// on the classified error is diagnostic enough in that case.
func envelopeError(body []byte) error {
	var envelope ResponseError
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Code == "" {
		return nil
	}
	return &envelope
}
