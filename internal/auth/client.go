// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultAPIBase is the account service root.
	DefaultAPIBase = "https://www.idlab.top/userapi/user"

	// DefaultTimeout bounds each account request.
	DefaultTimeout = 30 * time.Second

	// maxAccountResponse caps how much of an account response is read.
	maxAccountResponse = 1 << 20
)

// ErrMissingCredentials is returned before any request when a required
// field is blank.
var ErrMissingCredentials = errors.New("username and password are required")

// ErrorKind classifies account API failures.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindInvalidResponse
	KindServer
	KindUnknown
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindInvalidResponse:
		return "invalid_response"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError is a failed account request. Error() is the message shown to
// the user.
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch e.Kind {
	case KindNetwork:
		return "网络错误: " + e.Message
	case KindInvalidResponse:
		return "无效的响应"
	case KindServer:
		return e.Message
	default:
		return "未知错误"
	}
}

// Unwrap returns the transport error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Client calls the account API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates an account client. Empty baseURL and zero timeout
// select the defaults.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Named("account"),
	}
}

// Login exchanges a username and password for a signed-in User.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	c.log.Debug("login request", zap.String("username", username))
	data, err := c.post(ctx, "/login", loginRequest{Username: username, Password: password})
	if err != nil {
		c.log.Warn("login failed", zap.String("username", username), zap.Error(err))
		return User{}, err
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil || !u.Valid() {
		return User{}, &APIError{Kind: KindInvalidResponse, Err: err}
	}
	c.log.Info("login succeeded", zap.String("username", u.Username))
	return u, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if email == "" {
		return errors.New("email is required")
	}

	c.log.Debug("register request", zap.String("username", username))
	if _, err := c.post(ctx, "/register", registerRequest{Username: username, Email: email, Password: password}); err != nil {
		c.log.Warn("register failed", zap.String("username", username), zap.Error(err))
		return err
	}
	c.log.Info("register succeeded", zap.String("username", username))
	return nil
}

// post sends body as JSON and returns the 200 response body.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAccountResponse))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: err.Error(), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			return nil, &APIError{Kind: KindServer, Message: er.Error, Status: resp.StatusCode}
		}
		return nil, &APIError{Kind: KindUnknown, Status: resp.StatusCode}
	}
	return data, nil
}
