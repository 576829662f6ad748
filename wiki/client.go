package wiki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/wikibot/metrics"
)

// MaxConcurrentRequests limits parallel API calls to prevent overwhelming the server
const MaxConcurrentRequests = 3

// tracerName identifies this package's spans.
const tracerName = "github.com/olgasafonova/wikibot/wiki"

// anonTokenSentinel is what MediaWiki hands out when the session is not
// actually logged in. It must be treated the same as a missing token.
const anonTokenSentinel = `+\`

// mutatingActions is the fixed allow-list of actions that require a CSRF
// token. Post refuses to send these without one. Note purge is excluded:
// MediaWiki accepts it tokenless.
var mutatingActions = map[string]bool{
	"delete": true,
	"edit":   true,
	"move":   true,
	"upload": true,
}

// Client holds session state for one MediaWiki API endpoint: credentials,
// cookies, and the current CSRF token. One Client may be shared across
// concurrent callers once logged in; Login and Logout are the only writers
// of the token field.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	// mu guards config and authentication state
	mu        sync.RWMutex
	config    *Config
	loggedIn  bool
	csrfToken string

	// Rate limiting - semaphore to control concurrent requests
	semaphore chan struct{}
}

// NewClient creates a new MediaWiki API client
func NewClient(config *Config, logger *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Jar:       jar,
			Transport: transport,
		},
		logger:    logger,
		semaphore: make(chan struct{}, MaxConcurrentRequests),
	}
}

// Configure updates endpoint and credentials without any I/O. It may be
// called before or after Login; re-running Login after changing credentials
// is supported.
func (c *Client) Configure(endpoint, username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.BaseURL = endpoint
	c.config.Username = username
	c.config.Password = password
}

// LoggedIn reports whether a CSRF token is currently held.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggedIn
}

// token returns the current CSRF token, or "" when not logged in.
func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}

func (c *Client) baseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.BaseURL
}

// acquire takes a semaphore slot, honoring cancellation while waiting.
func (c *Client) acquire(ctx context.Context) (func(), error) {
	select {
	case c.semaphore <- struct{}{}:
		return func() { <-c.semaphore }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("cancelled while waiting for rate limiter: %w", ctx.Err())
	}
}

// decorate applies the fixed request decorations every call carries. The
// schema-version selector only goes on GET queries; legacy write actions
// answer in the unversioned shape.
func decorate(params url.Values, get bool) {
	params.Set("format", "json")
	params.Set("errorformat", "plaintext")
	if get {
		params.Set("formatversion", "2")
	}
}

// do issues one HTTP request and decodes the JSON envelope. Transport
// failures come back as *TransportError, undecodable bodies as
// *DecodeError, and an explicit error envelope as *APIError. No retries
// happen here; retry policy belongs to callers.
func (c *Client) do(ctx context.Context, req *http.Request, op, action string) (map[string]any, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "wiki.request")
	span.SetAttributes(
		attribute.String("wiki.action", action),
		attribute.String("http.method", req.Method),
	)
	defer span.End()

	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", c.config.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.APIRequests.WithLabelValues(action, "transport_error").Inc()
		return nil, &TransportError{Op: op, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		metrics.APIRequests.WithLabelValues(action, "transport_error").Inc()
		return nil, &TransportError{Op: op, Err: err}
	}
	metrics.APIRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.APIRequests.WithLabelValues(action, "http_error").Inc()
		return nil, &TransportError{
			Op:  op,
			Err: fmt.Errorf("server returned status %d: %s", resp.StatusCode, summarize(body)),
		}
	}

	// UseNumber keeps continuation cursors in their wire form; a float64
	// round-trip would corrupt integer cursors above 2^53.
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var result map[string]any
	if err := dec.Decode(&result); err != nil {
		metrics.APIRequests.WithLabelValues(action, "decode_error").Inc()
		return nil, &DecodeError{Summary: summarize(body), Err: err}
	}

	if apiErr := apiErrorFrom(result); apiErr != nil {
		span.SetStatus(codes.Error, apiErr.Code)
		metrics.APIRequests.WithLabelValues(action, "api_error").Inc()
		return nil, apiErr
	}

	metrics.APIRequests.WithLabelValues(action, "ok").Inc()
	return result, nil
}

// Get issues a query request with the parameters carried in the URL.
func (c *Client) Get(ctx context.Context, params url.Values) (map[string]any, error) {
	decorate(params, true)

	req, err := http.NewRequest(http.MethodGet, c.baseURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Op: "get", Err: err}
	}
	return c.do(ctx, req, "get", params.Get("action"))
}

// Post issues a form-encoded request. When the action is on the mutating
// allow-list the stored CSRF token is appended; with no token held the call
// fails fast with ErrNotAuthenticated and nothing is sent.
func (c *Client) Post(ctx context.Context, params url.Values) (map[string]any, error) {
	action := params.Get("action")
	if mutatingActions[action] {
		tok := c.token()
		if tok == "" {
			return nil, ErrNotAuthenticated
		}
		params.Set("token", tok)
	}
	decorate(params, false)

	req, err := http.NewRequest(http.MethodPost, c.baseURL(), strings.NewReader(params.Encode()))
	if err != nil {
		return nil, &TransportError{Op: "post", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, req, "post", action)
}

// SendMultipart issues a multipart POST carrying one file part. Textual
// parameters, including the CSRF token for mutating actions, go into the
// form fields; the file goes into the "file" part.
func (c *Client) SendMultipart(ctx context.Context, params url.Values, filename string, file io.Reader) (map[string]any, error) {
	action := params.Get("action")
	if mutatingActions[action] {
		tok := c.token()
		if tok == "" {
			return nil, ErrNotAuthenticated
		}
		params.Set("token", tok)
	}
	decorate(params, false)

	var buf strings.Builder
	writer := multipart.NewWriter(&buf)
	for key, values := range params {
		for _, v := range values {
			if err := writer.WriteField(key, v); err != nil {
				return nil, &TransportError{Op: "upload", Err: err}
			}
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL(), strings.NewReader(buf.String()))
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(ctx, req, "upload", action)
}

// Login runs the full authentication sequence: fetch a login token, submit
// credentials, then fetch and store the CSRF token. On any failure the
// session stays unauthenticated with no partial state.
func (c *Client) Login(ctx context.Context) error {
	c.mu.RLock()
	cfg := *c.config
	c.mu.RUnlock()

	if !cfg.HasCredentials() {
		return &LoginError{Reason: "no credentials configured"}
	}

	loginToken, err := c.fetchToken(ctx, "login", "logintoken")
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("action", "login")
	params.Set("lgname", cfg.Username)
	params.Set("lgpassword", cfg.Password)
	params.Set("lgtoken", loginToken)

	resp, err := c.Post(ctx, params)
	if err != nil {
		return err
	}

	login := getMap(resp["login"])
	if login == nil {
		return &LoginError{Reason: "unexpected login response shape"}
	}
	if result := getString(login["result"]); result != "Success" {
		reason := getString(login["reason"])
		if reason == "" {
			// formatversion=2 with errorformat=plaintext nests the text
			if rm := getMap(login["reason"]); rm != nil {
				reason = getString(rm["text"])
			}
		}
		if reason == "" {
			reason = result
		}
		return &LoginError{Reason: reason}
	}

	csrf, err := c.fetchToken(ctx, "csrf", "csrftoken")
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.csrfToken = csrf
	c.loggedIn = true
	c.mu.Unlock()

	c.logger.Info("logged in", "username", cfg.Username)
	return nil
}

// fetchToken asks meta=tokens for one token type and validates it against
// the anonymous sentinel.
func (c *Client) fetchToken(ctx context.Context, tokenType, field string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", tokenType)

	resp, err := c.Get(ctx, params)
	if err != nil {
		return "", err
	}

	query := getMap(resp["query"])
	if query == nil {
		return "", ErrTokenNotFound
	}
	tokens := getMap(query["tokens"])
	if tokens == nil {
		return "", ErrTokenNotFound
	}
	tok := getString(tokens[field])
	if tok == "" || tok == anonTokenSentinel {
		return "", ErrTokenNotFound
	}
	return tok, nil
}

// Logout posts the logout action, then forgets the token client-side no
// matter what the network said: the point is to drop local state.
func (c *Client) Logout(ctx context.Context) error {
	tok := c.token()

	defer func() {
		c.mu.Lock()
		c.csrfToken = ""
		c.loggedIn = false
		c.mu.Unlock()
		c.logger.Info("logged out")
	}()

	params := url.Values{}
	params.Set("action", "logout")
	if tok != "" {
		params.Set("token", tok)
	}
	if _, err := c.Post(ctx, params); err != nil {
		return err
	}
	return nil
}

// summarize trims a response body to a diagnosable size for error messages.
func summarize(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
