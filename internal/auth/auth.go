// Package auth is the identity provider boundary. Authentication itself is
// delegated to an external identity service; this package holds the REST
// client for its three operations and the on-disk persistence of the
// resulting session. Screen flows and credential validation UX are outside
// the core.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidCredentials indicates a rejected email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse indicates a sign-up with an already registered email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrUserNotFound indicates a password reset for an unknown email.
	ErrUserNotFound = errors.New("no account for this email")
)

// Session is the signed-in identity. Token is the provider-issued ID token;
// UserID and ExpiresAt are recovered from its claims.
type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session's token has passed its expiry.
// Sessions without a known expiry never report expired.
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Provider is the boundary contract consumed by the CLI.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (Session, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// Client talks to the identity service's REST endpoints.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates an identity client for the given endpoint.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type credentialRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	RequestType string `json:"request_type,omitempty"`
}

type credentialResponse struct {
	IDToken     string `json:"id_token"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	UserID      string `json:"user_id"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := c.post(ctx, "/v1/accounts:signInWithPassword", credentialRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	return c.sessionFrom(resp), nil
}

// SignUp registers a new account and returns its session.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (Session, error) {
	resp, err := c.post(ctx, "/v1/accounts:signUp", credentialRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return Session{}, fmt.Errorf("sign up: %w", err)
	}
	return c.sessionFrom(resp), nil
}

// SendPasswordReset asks the provider to email a reset link.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	_, err := c.post(ctx, "/v1/accounts:sendOobCode", credentialRequest{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	})
	if err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload credentialRequest) (credentialResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return credentialResponse{}, err
	}

	url := c.baseURL + path
	if c.apiKey != "" {
		url += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return credentialResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return credentialResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return credentialResponse{}, providerError(resp.StatusCode, errResp.Error.Message)
	}

	var out credentialResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return credentialResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// providerError maps the provider's error codes onto the package sentinels.
func providerError(status int, message string) error {
	switch message {
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "EMAIL_NOT_FOUND":
		if message == "EMAIL_NOT_FOUND" {
			return ErrUserNotFound
		}
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailInUse
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("identity service: status %d: %s", status, message)
}

// sessionFrom builds a Session, preferring the ID token's claims for user id
// and expiry. The token is parsed without signature verification: it was
// received first-hand over TLS from its issuer, and this client is a
// consumer of the token, not a verifier.
func (c *Client) sessionFrom(resp credentialResponse) Session {
	s := Session{
		UserID:      resp.UserID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		Token:       resp.IDToken,
	}
	if resp.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.IDToken, claims); err != nil {
		return s
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		s.UserID = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s
}
