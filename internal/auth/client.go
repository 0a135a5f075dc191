// Package auth is the session client for the hosted auth service. It speaks
// the GoTrue REST dialect (/token, /signup, /logout) and verifies access
// tokens locally against the project's JWT secret.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"studocs/internal/config"
	"studocs/internal/model"
)

// SessionClient is the contract the controllers depend on.
type SessionClient interface {
	// CurrentSession resolves an access token into a session. It never fails:
	// any problem is logged and reported as nil, meaning "not authenticated".
	CurrentSession(ctx context.Context, accessToken string) *model.Session
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	// SignUp creates a pending account; no session exists until the user
	// confirms through the emailed link, which lands on redirectTo.
	SignUp(ctx context.Context, email, password, redirectTo string) error
	SignOut(ctx context.Context, accessToken string) error
}

// Client implements SessionClient over HTTP.
type Client struct {
	baseURL string
	anonKey string
	secret  []byte
	http    *http.Client
	log     *zap.Logger
	now     func() time.Time
}

var _ SessionClient = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the traced default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient validates cfg and builds a client.
func NewClient(cfg config.AuthConfig, log *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("auth url is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid auth url: %w", err)
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("auth anon key is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		secret:  []byte(cfg.JWTSecret),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:     log.With(zap.String("component", "auth")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (c *Client) CurrentSession(ctx context.Context, accessToken string) *model.Session {
	if accessToken == "" {
		return nil
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		c.log.Info("session_rejected", zap.Error(err))
		return nil
	}
	if claims.Subject == "" {
		c.log.Warn("session_rejected", zap.String("reason", "missing subject"))
		return nil
	}

	return &model.Session{
		AccessToken: accessToken,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        model.User{ID: claims.Subject, Email: claims.Email},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         model.User `json:"user"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/token", url.Values{"grant_type": {"password"}}, "", credentials{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response without access_token", ErrTransport)
	}

	expires := time.Unix(out.ExpiresAt, 0)
	if out.ExpiresAt == 0 {
		expires = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return &model.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    expires,
		User:         out.User,
	}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) error {
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.do(ctx, http.MethodPost, "/signup", q, "", credentials{Email: email, Password: password}, nil)
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrUnauthorized
	}
	return c.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil, nil)
}

// errorBody covers the three error shapes GoTrue has used over time.
type errorBody struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer string, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("auth_request_failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	c.log.Info("auth_request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)

	re := &RemoteError{Status: status, Code: eb.ErrorCode}
	if re.Code == "" {
		re.Code = eb.Error
	}
	for _, m := range []string{eb.Msg, eb.ErrorDescription, eb.Message, eb.Error} {
		if m != "" {
			re.Message = m
			break
		}
	}
	if re.Message == "" {
		re.Message = http.StatusText(status)
	}
	if status >= 500 {
		return errors.Join(ErrTransport, re)
	}
	return re
}
