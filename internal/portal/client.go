package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"alarm-status-backend/internal/extract"
	"alarm-status-backend/internal/model"
)

// Fixed paths dictated by the portal. The server has no public API; every
// operation scrapes the pages a browser would load.
const (
	loginPath        = "/login/auth.do"
	homePath         = "/home.do"
	statusPath       = "/equipements/status/showBloc.do"
	temperaturesPath = "/equipements/temperatures/showTab.do"
	logsPath         = "/equipements/logs/showTable.do"
	commandPath      = "/equipements/status/checkUpdateSystemStatus.do"
	logoutPath       = "/disconnect.do"
)

const (
	defaultBaseURL   = "https://maisonprotegee.orange.fr"
	defaultUserAgent = "Mozilla/5.0 (compatible; HomeAssistant)"

	defaultTimeout = 30 * time.Second
	// The temperature endpoint is slow server-side; it gets its own, much
	// longer timeout rather than a global one.
	defaultTemperatureTimeout = 180 * time.Second

	defaultAuthRetryDelay = 5 * time.Minute

	defaultEventWindowDays = 30

	maxBodyBytes = 1 << 20
)

// queryDateLayout formats the fromDate/toDate parameters of the log query.
const queryDateLayout = "02/01/2006"

// Action is an alarm control command.
type Action string

const (
	ActionArm    Action = "arm"
	ActionDisarm Action = "disarm"
)

// Config holds the per-account settings of a portal client.
type Config struct {
	BaseURL  string
	Username string
	Password string

	UserAgent          string
	Timeout            time.Duration
	TemperatureTimeout time.Duration

	// AuthRetryDelay is the cooldown after a failed login. It protects the
	// portal from repeated attempts with bad credentials, which would
	// otherwise trip the account lockout on the server side.
	AuthRetryDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.TemperatureTimeout <= 0 {
		c.TemperatureTimeout = defaultTemperatureTimeout
	}
	if c.AuthRetryDelay <= 0 {
		c.AuthRetryDelay = defaultAuthRetryDelay
	}
}

// Client is a session-authenticated scraping client for the alarm portal.
// One client owns one logical session for one credential set; operations may
// be invoked concurrently, authentication attempts are serialized.
type Client struct {
	cfg Config

	// login follows redirects: the redirect chain ending at home.do is the
	// success signal. read and slow keep redirects disabled because a 302
	// is the session-expired signal, not a navigation convenience.
	login *http.Client
	read  *http.Client
	slow  *http.Client
	jar   *sessionJar

	mu              sync.Mutex
	authenticated   bool
	lastAuthFailure time.Time
	lastAuthSuccess time.Time
}

// NewClient creates a portal client with its own cookie jar.
func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("portal: username and password are required")
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, fmt.Errorf("portal: failed to create cookie jar: %w", err)
	}

	return &Client{
		cfg:   cfg,
		login: &http.Client{Jar: jar, Timeout: cfg.Timeout},
		read:  &http.Client{Jar: jar, Timeout: cfg.Timeout, CheckRedirect: noRedirect},
		slow:  &http.Client{Jar: jar, Timeout: cfg.TemperatureTimeout, CheckRedirect: noRedirect},
		jar:   jar,
	}, nil
}

func noRedirect(_ *http.Request, _ []*http.Request) error {
	return http.ErrUseLastResponse
}

// sessionJar is a cookie jar whose backing store can be dropped while
// requests are in flight. http.Client reads its Jar field without
// synchronization, so the field is assigned once and the swap happens
// behind this lock instead.
type sessionJar struct {
	mu  sync.Mutex
	jar http.CookieJar
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &sessionJar{jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// reset discards every stored cookie.
func (j *sessionJar) reset() {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
}

// Authenticate logs in to the portal. It returns false without any network
// call while the failure cooldown is active, and is a no-op when the session
// is already authenticated, so redundant calls from concurrent operations
// are safe.
func (c *Client) Authenticate(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticateLocked(ctx)
}

func (c *Client) authenticateLocked(ctx context.Context) (bool, error) {
	if c.authenticated {
		return true, nil
	}
	if !c.lastAuthFailure.IsZero() {
		if wait := c.cfg.AuthRetryDelay - time.Since(c.lastAuthFailure); wait > 0 {
			log.Printf("portal: authentication failed recently for %s, waiting %d seconds before retry", c.cfg.Username, int(wait.Seconds()))
			return false, nil
		}
	}

	form := url.Values{
		"id":          {c.cfg.Username},
		"pwd":         {c.cfg.Password},
		"rememberme":  {"true"},
		"rememberpwd": {"true"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("portal: failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.login.Do(req)
	if err != nil {
		c.lastAuthFailure = time.Now()
		return false, &TransportError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	// Success means the redirect chain landed on home.do. Status alone is
	// useless: the portal answers a failed login with a 200 carrying the
	// login form again.
	finalURL := resp.Request.URL
	if strings.HasSuffix(finalURL.Path, homePath) {
		c.authenticated = true
		c.lastAuthFailure = time.Time{}
		c.lastAuthSuccess = time.Now()
		log.Printf("portal: authentication successful for %s", c.cfg.Username)
		return true, nil
	}

	if resp.StatusCode == http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr == nil {
			page := strings.ToLower(string(body))
			if strings.Contains(page, "session déjà ouverte") || strings.Contains(page, "session deja ouverte") {
				log.Printf("portal: session already open elsewhere for %s", c.cfg.Username)
				c.lastAuthFailure = time.Now()
				return false, ErrSessionActiveElsewhere
			}
			if strings.Contains(page, "identifiant") || strings.Contains(page, "mot de passe") {
				log.Printf("portal: authentication failed for %s: invalid credentials", c.cfg.Username)
				c.lastAuthFailure = time.Now()
				return false, ErrCredentialsInvalid
			}
		}
	}

	log.Printf("portal: authentication failed for %s: status %d, final URL %s", c.cfg.Username, resp.StatusCode, finalURL)
	c.lastAuthFailure = time.Now()
	return false, nil
}

// GetStatus fetches and parses the current alarm state.
func (c *Client) GetStatus(ctx context.Context) (*model.StatusSnapshot, error) {
	body, err := c.fetchResource(ctx, c.read, "status fetch", c.cfg.BaseURL+statusPath, nil, "", true)
	if err != nil {
		return nil, err
	}

	alarm, found := extract.Status(string(body))
	if !found {
		// A page without any status signal usually means the session
		// silently degraded; never report stale state as current.
		log.Printf("portal: no status parsed from page, session may be invalid")
		c.clearSession()
		return nil, ErrSessionInvalidated
	}

	return &model.StatusSnapshot{Alarm: alarm, ObservedAt: time.Now().UTC()}, nil
}

// GetTemperatures fetches and parses the room temperature table.
func (c *Client) GetTemperatures(ctx context.Context) (*model.TemperatureSnapshot, error) {
	body, err := c.fetchResource(ctx, c.slow, "temperature fetch", c.cfg.BaseURL+temperaturesPath, nil, "", true)
	if err != nil {
		return nil, err
	}

	readings, notes := extract.Temperatures(string(body))
	for _, note := range notes {
		log.Printf("portal: temperature extraction: %s", note)
	}
	if len(readings) == 0 {
		log.Printf("portal: no temperatures parsed from page, session may be invalid")
		c.clearSession()
		return nil, ErrSessionInvalidated
	}

	return &model.TemperatureSnapshot{Readings: readings, ObservedAt: time.Now().UTC()}, nil
}

// GetEvents fetches the event log covering the last days days. An empty log
// is a valid result; unlike status and temperatures it does not indicate a
// broken session.
func (c *Client) GetEvents(ctx context.Context, days int) (*model.EventSnapshot, error) {
	if days <= 0 {
		days = defaultEventWindowDays
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	params := url.Values{
		"fromDate": {from.Format(queryDateLayout)},
		"toDate":   {to.Format(queryDateLayout)},
		"filters":  {"1"},
	}

	body, err := c.fetchResource(ctx, c.read, "event fetch", c.cfg.BaseURL+logsPath, params, "", true)
	if err != nil {
		return nil, err
	}

	events, notes := extract.Events(string(body))
	for _, note := range notes {
		log.Printf("portal: event extraction: %s", note)
	}

	return &model.EventSnapshot{Events: events, ObservedAt: time.Now().UTC()}, nil
}

// SetStatus sends an arm or disarm command. A successful dispatch does not
// return the new state; callers re-poll GetStatus afterwards.
func (c *Client) SetStatus(ctx context.Context, action Action) error {
	var command, previous string
	switch action {
	case ActionArm:
		command, previous = "arm", "100"
	case ActionDisarm:
		command, previous = "disarm", "101"
	default:
		return fmt.Errorf("%w: %q", ErrInputInvalid, action)
	}

	params := url.Values{
		"command":         {command},
		"previousCommand": {previous},
	}
	_, err := c.fetchResource(ctx, c.read, "set status", c.cfg.BaseURL+commandPath, params, c.cfg.BaseURL+statusPath, false)
	return err
}

// Logout releases the server-side session, best effort. With force it sends
// the request even when the client believes it is not authenticated.
func (c *Client) Logout(ctx context.Context, force bool) error {
	c.mu.Lock()
	authenticated := c.authenticated
	c.mu.Unlock()
	if !authenticated && !force {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+logoutPath, nil)
	if err != nil {
		return fmt.Errorf("portal: failed to create logout request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.login.Do(req)
	c.setAuthenticated(false)
	if err != nil {
		log.Printf("portal: logout failed for %s: %v", c.cfg.Username, err)
		return &TransportError{Op: "logout", Err: err}
	}
	resp.Body.Close()
	return nil
}

// Authenticated reports whether the client believes its session is valid.
// Best effort; the server is the source of truth.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// LastAuthSuccess returns the time of the last successful login, zero if
// there has been none.
func (c *Client) LastAuthSuccess() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAuthSuccess
}

// fetchResource implements the shared authenticate-fetch-retry-once protocol
// of every read and control operation. requireBody enforces the
// empty-body-means-invalid-session rule; control requests carry no body and
// skip it.
func (c *Client) fetchResource(ctx context.Context, hc *http.Client, op, rawURL string, params url.Values, referer string, requireBody bool) ([]byte, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, hc, rawURL, params, referer)
	if err != nil {
		c.setAuthenticated(false)
		return nil, &TransportError{Op: op, Err: err}
	}

	switch status {
	case http.StatusNotFound:
		// The server discarded its session state; retrying with the same
		// cookies would loop.
		log.Printf("portal: %s returned 404, session invalidated", op)
		c.clearSession()
		return nil, ErrSessionInvalidated

	case http.StatusFound, http.StatusUnauthorized, http.StatusForbidden:
		log.Printf("portal: %s returned %d, re-authenticating", op, status)
		c.clearSession()
		if err := c.ensureAuthenticated(ctx); err != nil {
			return nil, err
		}

		status, body, err = c.do(ctx, hc, rawURL, params, referer)
		if err != nil {
			c.setAuthenticated(false)
			return nil, &TransportError{Op: op, Err: err}
		}
		switch status {
		case http.StatusFound, http.StatusUnauthorized, http.StatusForbidden:
			// One re-auth cycle bounds the retry depth.
			log.Printf("portal: %s still rejected after re-authentication", op)
			c.setAuthenticated(false)
			return nil, ErrSessionExpired
		case http.StatusNotFound:
			log.Printf("portal: %s returned 404 on retry, session invalidated", op)
			c.clearSession()
			return nil, ErrSessionInvalidated
		}
	}

	if status < 200 || status > 299 {
		log.Printf("portal: %s returned unexpected status %d", op, status)
		c.setAuthenticated(false)
		return nil, fmt.Errorf("portal: %s: unexpected status %d", op, status)
	}
	if requireBody && len(bytes.TrimSpace(body)) == 0 {
		log.Printf("portal: %s returned an empty body, session may be invalid", op)
		c.clearSession()
		return nil, ErrSessionInvalidated
	}
	return body, nil
}

// do performs a single GET with the fixed user agent. Redirect handling is
// whatever hc is configured with.
func (c *Client) do(ctx context.Context, hc *http.Client, rawURL string, params url.Values, referer string) (int, []byte, error) {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) ensureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, err := c.authenticateLocked(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}
	return nil
}

func (c *Client) setAuthenticated(v bool) {
	c.mu.Lock()
	c.authenticated = v
	c.mu.Unlock()
}

// clearSession drops the stored cookies and marks the session
// unauthenticated. The clients keep their jar; only its contents go.
func (c *Client) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jar.reset()
	c.authenticated = false
}
