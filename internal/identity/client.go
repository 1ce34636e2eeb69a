package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Provider is the contract the rest of the service consumes. Sign-in and
// account lifecycle are delegated here; the provider owns all password state.
type Provider interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	DeleteUser(ctx context.Context, id string) error
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, newPassword string) error
}

// CreateUserRequest creates a pre-confirmed identity with attached metadata.
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	Metadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

// User is the provider's identity record.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

// Session is the provider-side session returned by a password sign-in. Only
// the user identity matters to callers; the provider session is discarded in
// favour of a locally issued token.
type Session struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// Config configures the HTTP client for a GoTrue-compatible auth service.
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// Client talks to the identity provider's REST API.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewClient constructs the provider adapter.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("identity provider base url must not be empty")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("identity provider service key must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger.With().Str("component", "identity_client").Logger(),
	}, nil
}

// CreateUser registers an identity through the admin API.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/admin/users", c.serviceKey, req, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// DeleteUser removes an identity through the admin API.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+id, c.serviceKey, nil, nil)
}

// SignInWithPassword exchanges credentials for a provider session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.serviceKey, payload, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// SignOut invalidates the provider-side session.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// ResetPasswordForEmail triggers the provider's recovery mail flow.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	payload := map[string]string{"email": email}
	if redirectTo != "" {
		payload["redirect_to"] = redirectTo
	}
	return c.do(ctx, http.MethodPost, "/recover", c.serviceKey, payload, nil)
}

// UpdatePassword sets a new password for the session owner.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	payload := map[string]string{"password": newPassword}
	return c.do(ctx, http.MethodPut, "/user", accessToken, payload, nil)
}

type providerError struct {
	Code      string `json:"error_code"`
	Message   string `json:"msg"`
	ErrorDesc string `json:"error_description"`
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("identity provider request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.translateError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
		}
	}

	return nil
}

// translateError maps provider status codes and error codes onto the typed
// error set, so callers branch on errors.Is instead of message substrings.
func (c *Client) translateError(resp *http.Response) error {
	var detail providerError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &detail)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest, http.StatusUnauthorized:
		switch detail.Code {
		case "invalid_credentials", "invalid_grant":
			return ErrInvalidCredentials
		case "user_not_found":
			return ErrUserNotFound
		case "email_exists", "user_already_exists":
			return ErrEmailExists
		case "over_request_rate_limit":
			return ErrRateLimited
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrInvalidCredentials
		}
	case http.StatusNotFound:
		return ErrUserNotFound
	case http.StatusUnprocessableEntity, http.StatusConflict:
		if detail.Code == "email_exists" || detail.Code == "user_already_exists" {
			return ErrEmailExists
		}
	}

	c.logger.Warn().
		Int("status", resp.StatusCode).
		Str("error_code", detail.Code).
		Msg("unexpected identity provider error")

	return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
}
