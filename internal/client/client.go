// Package client is a typed client for the fitness API together with the
// in-memory state the command line dashboard is computed from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/fitness-manager/internal/gym"
)

// APIError is a non-success response from the API.
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"error_code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from an API response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Principal is the identity behind a session as reported by the server.
type Principal struct {
	AccountID int64    `json:"account_id"`
	Email     string   `json:"email"`
	Role      gym.Role `json:"role"`
	UserID    *int64   `json:"user_id,omitempty"`
	CoachID   *int64   `json:"coach_id,omitempty"`
}

// Session is an issued session token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string

	Users        *Endpoint[gym.User]
	Coaches      *Endpoint[gym.Coach]
	Facilities   *Endpoint[gym.Facility]
	Bookings     *Endpoint[gym.Booking]
	Events       *Endpoint[gym.Event]
	Participants *Endpoint[gym.Participant]
	Attendance   *Endpoint[gym.Attendance]
	Progress     *Endpoint[gym.FitnessProgress]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithToken resumes a previously issued session.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client for the server at baseURL, for example
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http or https url", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Users = newEndpoint[gym.User](c, "/api/users")
	c.Coaches = newEndpoint[gym.Coach](c, "/api/coaches")
	c.Facilities = newEndpoint[gym.Facility](c, "/api/facilities")
	c.Bookings = newEndpoint[gym.Booking](c, "/api/bookings")
	c.Events = newEndpoint[gym.Event](c, "/api/events")
	c.Participants = newEndpoint[gym.Participant](c, "/api/participants")
	c.Attendance = newEndpoint[gym.Attendance](c, "/api/attendance")
	c.Progress = newEndpoint[gym.FitnessProgress](c, "/api/fitness-progress")
	return c, nil
}

// Token returns the current session token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges credentials for a session and uses it for later requests.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return Session{}, err
	}
	c.setToken(session.Token)
	return session, nil
}

// Logout revokes the current session. The local token is dropped even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodDelete, "/api/sessions/current", nil, nil)
	c.setToken("")
	return err
}

// CurrentSession asks the server who the current token belongs to.
func (c *Client) CurrentSession(ctx context.Context) (Principal, error) {
	var out struct {
		Principal Principal `json:"principal"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/sessions/current", nil, &out); err != nil {
		return Principal{}, err
	}
	return out.Principal, nil
}

// Register creates a user together with a student account.
func (c *Client) Register(ctx context.Context, user gym.User, password string) (gym.User, error) {
	body := struct {
		gym.User
		Password string `json:"password"`
	}{User: user, Password: password}

	var out mutationResponse[gym.User]
	if err := c.do(ctx, http.MethodPost, "/api/register", body, &out); err != nil {
		return gym.User{}, err
	}
	return out.Data, nil
}

// AccountRequest asks for a new account. Coach accounts need CoachID and
// student accounts need UserID.
type AccountRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     gym.Role `json:"role"`
	UserID   *int64   `json:"user_id,omitempty"`
	CoachID  *int64   `json:"coach_id,omitempty"`
}

// CreateAccount issues an account. Administrators only.
func (c *Client) CreateAccount(ctx context.Context, req AccountRequest) (int64, error) {
	var out struct {
		AccountID int64 `json:"account_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/accounts", req, &out); err != nil {
		return 0, err
	}
	return out.AccountID, nil
}

// ProgressForUser lists one user's fitness progress, newest first.
func (c *Client) ProgressForUser(ctx context.Context, userID int64) ([]gym.FitnessProgress, error) {
	var out []gym.FitnessProgress
	path := "/api/users/" + strconv.FormatInt(userID, 10) + "/fitness-progress"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
