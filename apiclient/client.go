// Package apiclient talks to the stock service over HTTP. Session replaces
// process-wide auth state: each Session carries its own token and user.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultTimeout = 15 * time.Second

// User is the account returned by the auth endpoints.
type User struct {
	ID           uint     `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	DepartmentID *uint    `json:"department_id"`
	Status       string   `json:"status"`
}

func (u *User) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a client for baseURL, e.g. "http://localhost:9000/api/v1".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do sends one JSON request. Transport failures and timeouts are retried
// once. On success the envelope's data is decoded into out when out is
// not nil.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var (
		code int
		raw  []byte
		err  error
	)
	for attempt := 0; attempt < 2; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		code, raw, err = c.send(method, path, token, body)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}

	if code < 200 || code > 299 {
		apiErr := &APIError{Status: code}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (c *Client) send(method, path, token string, body interface{}) (int, []byte, error) {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	a.Timeout(c.timeout)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		a.JSON(body)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, nil, &TransportError{Err: err}
	}

	code, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, nil, classify(errs)
	}
	return code, raw, nil
}

// Session is one logged-in user of the client. It is safe for concurrent use.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
	user  *User
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) set(token string, user *User) {
	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
}

func (s *Session) clear() {
	s.set("", nil)
}

type loginResponse struct {
	Token     string    `json:"token"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Login(ctx context.Context, username, password string) (*User, error) {
	var res loginResponse
	err := s.client.Do(ctx, fiber.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	s.set(res.Token, res.User)
	return res.User, nil
}

// Restore resumes a session from a stored token. A 401 clears the session.
func (s *Session) Restore(ctx context.Context, token string) (*User, error) {
	var user User
	if err := s.client.Do(ctx, fiber.MethodGet, "/auth/me", token, nil, &user); err != nil {
		if IsUnauthorized(err) {
			s.clear()
		}
		return nil, err
	}
	s.set(token, &user)
	return &user, nil
}

// Logout ends the server session and always clears the local one.
func (s *Session) Logout(ctx context.Context) error {
	token := s.Token()
	defer s.clear()
	if token == "" {
		return nil
	}
	err := s.client.Do(ctx, fiber.MethodPost, "/auth/logout", token, nil, nil)
	if IsUnauthorized(err) {
		return nil
	}
	return err
}

// Do sends an authenticated request. A 401 means the server dropped the
// session, so the local one is cleared too.
func (s *Session) Do(ctx context.Context, method, path string, body, out interface{}) error {
	err := s.client.Do(ctx, method, path, s.Token(), body, out)
	if IsUnauthorized(err) {
		s.clear()
	}
	return err
}
