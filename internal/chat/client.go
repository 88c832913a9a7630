// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

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
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/jeranaias/keyai/internal/auth"
	"github.com/jeranaias/keyai/internal/util"
)

// Configuration defaults for the knowledge-chat service.
const (
	// DefaultEndpoint is the knowledge-chat URL.
	DefaultEndpoint = "https://www.idlab.top/userapi/knowledge/chatNew"

	// DefaultTimeout is long: the knowledge service can take a while.
	DefaultTimeout = 90 * time.Second

	// DefaultRegeneratePhrase is sent instead of the question on regenerate.
	DefaultRegeneratePhrase = "回答不满意，请重新生成"

	// DefaultMaxResponseBytes caps the response body.
	DefaultMaxResponseBytes = 10 * 1024 * 1024

	// DefaultRequestsPerMinute is the client-side request budget.
	DefaultRequestsPerMinute = 30

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "keyai/1.0"

	// rateBurst lets a few requests through back to back.
	rateBurst = 3
)

// Credentials is the session store the client authenticates with.
type Credentials interface {
	CurrentUser() (auth.User, bool)
	Logout() error
}

// Config configures a Client.
type Config struct {
	Endpoint          string
	Timeout           time.Duration
	RegeneratePhrase  string
	MaxResponseBytes  int64
	RequestsPerMinute int // 0 disables the limiter
	UserAgent         string
}

// DefaultConfig returns the stock client configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:          DefaultEndpoint,
		Timeout:           DefaultTimeout,
		RegeneratePhrase:  DefaultRegeneratePhrase,
		MaxResponseBytes:  DefaultMaxResponseBytes,
		RequestsPerMinute: DefaultRequestsPerMinute,
		UserAgent:         DefaultUserAgent,
	}
}

// request is the wire body.
type request struct {
	Question      string `json:"question"`
	LastSessionID string `json:"lastSessionId,omitempty"`
}

// Client sends questions to the knowledge-chat service.
type Client struct {
	cfg        Config
	creds      Credentials
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewClient creates a client. Zero-valued Config fields take defaults.
func NewClient(cfg Config, creds Credentials, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RegeneratePhrase == "" {
		cfg.RegeneratePhrase = def.RegeneratePhrase
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = def.MaxResponseBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg:   cfg,
		creds: creds,
		// Answers are never cached: no cache layer is configured and every
		// request carries Cache-Control: no-cache.
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Named("chat"),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), rateBurst)
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Endpoint returns the configured service URL.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// Ask sends one question on sess and waits for the answer. With regenerate
// set, the fixed regenerate phrase is sent instead of question and the
// server continues the session's thread.
//
// Any request already in flight on sess is cancelled first. If this
// request is itself replaced before it completes, Ask returns
// ErrSuperseded and leaves sess untouched.
func (c *Client) Ask(ctx context.Context, sess *Session, question string, regenerate bool) (Response, error) {
	if sess == nil {
		sess = NewSession()
	}

	user, ok := c.creds.CurrentUser()
	if !ok {
		return Response{}, ErrNotAuthenticated
	}

	question = norm.NFC.String(question)
	if !regenerate && strings.TrimSpace(question) == "" {
		return Response{}, ErrEmptyQuestion
	}
	body := question
	if regenerate {
		body = c.cfg.RegeneratePhrase
	}

	reqCtx, token, sessionID := sess.begin(ctx, question, regenerate)
	defer sess.end(token)

	log := c.log.With(
		zap.String("request", token),
		zap.String("username", user.Username),
		zap.Bool("regenerate", regenerate))

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			return Response{}, c.limiterError(ctx, sess, token, err)
		}
	}

	req, err := c.buildRequest(reqCtx, user, request{Question: body, LastSessionID: sessionID})
	if err != nil {
		log.Error("build request failed", zap.Error(err))
		return Response{}, err
	}

	log.Debug("sending question",
		zap.String("question", util.TruncateForLog(body, 50)),
		zap.Bool("continues_session", sessionID != ""))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.transportError(ctx, sess, token, err)
		log.Warn("request failed", zap.Error(err))
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := c.readResponse(resp.Body)
	if err != nil {
		if !errors.Is(err, ErrResponseTooLarge) {
			err = c.transportError(ctx, sess, token, err)
		}
		log.Warn("read response failed", zap.Error(err))
		return Response{}, err
	}

	if !sess.isCurrent(token) {
		log.Debug("discarding superseded response", zap.Int("status", resp.StatusCode))
		return Response{}, ErrSuperseded
	}

	log.Info("response received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if err := c.creds.Logout(); err != nil {
			log.Error("logout after 401 failed", zap.Error(err))
		}
		return Response{}, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Response{}, newServerError(resp.StatusCode, data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Response{}, ErrEmptyResponse
	}

	parsed := Parse(data)
	if !sess.commit(token, parsed.SessionID) {
		return Response{}, ErrSuperseded
	}
	log.Debug("answer parsed",
		zap.Int("text_runes", len([]rune(parsed.Text))),
		zap.Int("refers", len(parsed.Refers)),
		zap.String("session", parsed.SessionID))
	return parsed, nil
}

func (c *Client) buildRequest(ctx context.Context, user auth.User, body request) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Authorization", user.Token)
	req.Header.Set("openid", user.Username)
	return req, nil
}

// readResponse reads the body up to the configured limit.
func (c *Client) readResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.cfg.MaxResponseBytes {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// transportError classifies a failure to complete the exchange. A request
// cancelled because a newer one replaced it is reported as superseded; one
// cancelled by the caller keeps the caller's context error.
func (c *Client) transportError(parent context.Context, sess *Session, token string, err error) error {
	if !sess.isCurrent(token) {
		return ErrSuperseded
	}
	if parent.Err() != nil {
		return fmt.Errorf("request canceled: %w", parent.Err())
	}
	if errors.Is(err, context.Canceled) {
		// Cancelled through Session.Cancel.
		return fmt.Errorf("request canceled: %w", context.Canceled)
	}
	return newNetworkError(err)
}

// limiterError reports a request that never left because the local
// request budget could not be met before its context ended.
func (c *Client) limiterError(parent context.Context, sess *Session, token string, err error) error {
	if !sess.isCurrent(token) {
		return ErrSuperseded
	}
	if parent.Err() != nil || errors.Is(err, context.Canceled) {
		return c.transportError(parent, sess, token, err)
	}
	return fmt.Errorf("%w: %v", ErrRateLimited, err)
}
