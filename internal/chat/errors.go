// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
)

// Error variables for chat failures.
var (
	// ErrNotAuthenticated means no user is signed in; nothing was sent.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnauthorized means the server rejected the token. The saved
	// session has been cleared.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited is HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer is any other 4xx/5xx response.
	ErrServer = errors.New("server error")

	// ErrNetwork is a transport failure.
	ErrNetwork = errors.New("network error")

	// ErrMalformedRequest means the request could not be built locally.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrEmptyResponse is a success status with an empty body.
	ErrEmptyResponse = errors.New("empty response")

	// ErrResponseTooLarge means the body exceeded the configured limit.
	ErrResponseTooLarge = errors.New("response too large")

	// ErrEmptyQuestion is returned for a blank question.
	ErrEmptyQuestion = errors.New("empty question")

	// ErrSuperseded means a newer request on the same session replaced
	// this one; its result was discarded.
	ErrSuperseded = errors.New("request superseded")
)

// =============================================================================
// SERVER ERRORS
// =============================================================================

// ServerError is a non-success HTTP response other than 401.
type ServerError struct {
	Status int
	// Message is the server's own "error" field, when it sent one.
	Message string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Class())
}

// Unwrap maps the status to its sentinel.
func (e *ServerError) Unwrap() error {
	switch e.Status {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrServer
	}
}

// Class is a short human-readable category for the status.
func (e *ServerError) Class() string {
	switch {
	case e.Status == http.StatusForbidden:
		return "forbidden"
	case e.Status == http.StatusTooManyRequests:
		return "rate limited"
	case e.Status >= 500:
		return "server fault"
	case e.Status >= 400:
		return "bad request"
	default:
		return http.StatusText(e.Status)
	}
}

func newServerError(status int, body []byte) *ServerError {
	msg, _ := ServerMessage(body)
	return &ServerError{Status: status, Message: msg}
}

// =============================================================================
// NETWORK ERRORS
// =============================================================================

// NetworkKind classifies a transport failure.
type NetworkKind int

const (
	NetOther NetworkKind = iota
	NetTimeout
	NetDNSFailure
	NetConnectionLost
)

// String returns the name of the kind.
func (k NetworkKind) String() string {
	switch k {
	case NetTimeout:
		return "timeout"
	case NetDNSFailure:
		return "dnsFailure"
	case NetConnectionLost:
		return "connectionLost"
	default:
		return "other"
	}
}

// NetworkError is a transport failure.
type NetworkError struct {
	Kind NetworkKind
	Err  error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error (%s): %v", e.Kind, e.Err)
}

// Unwrap returns ErrNetwork and the underlying error.
func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

func newNetworkError(err error) *NetworkError {
	return &NetworkError{Kind: classifyNetwork(err), Err: err}
}

func classifyNetwork(err error) NetworkKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return NetDNSFailure
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NetTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetTimeout
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed) {
		return NetConnectionLost
	}
	return NetOther
}

// =============================================================================
// USER MESSAGES
// =============================================================================

// quotaHint is appended to rate-limit and server-fault messages.
const quotaHint = "，请检查是否还有请求配额"

// UserMessage returns the message shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var serverErr *ServerError
	var netErr *NetworkError

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "请先登录"
	case errors.Is(err, ErrUnauthorized):
		return "认证失败，请重新登录(401)"
	case errors.As(err, &serverErr):
		return serverMessage(serverErr)
	case errors.As(err, &netErr):
		return networkMessage(netErr)
	case errors.Is(err, ErrRateLimited):
		return "请求过于频繁，请稍后重试"
	case errors.Is(err, ErrEmptyQuestion):
		return "问题不能为空，请输入您想询问的内容后再试"
	case errors.Is(err, ErrMalformedRequest):
		return "请求构建失败"
	case errors.Is(err, ErrEmptyResponse):
		return "响应数据为空"
	case errors.Is(err, ErrResponseTooLarge):
		return "响应内容过大"
	case errors.Is(err, context.Canceled), errors.Is(err, ErrSuperseded):
		return "请求已取消"
	default:
		return "请求失败: " + err.Error()
	}
}

func serverMessage(e *ServerError) string {
	if e.Message != "" {
		return "服务器错误: " + e.Message
	}

	var msg string
	switch e.Status {
	case http.StatusBadRequest:
		msg = "请求参数错误(400)"
	case http.StatusUnauthorized:
		msg = "认证失败，请重新登录(401)"
	case http.StatusForbidden:
		msg = "权限不足(403)"
	case http.StatusNotFound:
		msg = "服务不存在(404)"
	case http.StatusTooManyRequests:
		msg = "请求过于频繁，请稍后重试(429)"
	case http.StatusInternalServerError:
		msg = "服务器内部错误(500)"
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		msg = fmt.Sprintf("服务器暂时不可用，请稍后重试(%d)", e.Status)
	default:
		msg = fmt.Sprintf("服务器响应错误: %d", e.Status)
		if text := http.StatusText(e.Status); text != "" {
			msg += " - " + text
		}
	}

	if e.Status == http.StatusTooManyRequests || e.Status >= 500 {
		msg += quotaHint
	}
	return msg
}

func networkMessage(e *NetworkError) string {
	switch e.Kind {
	case NetTimeout:
		return "请求超时，请稍后重试"
	case NetDNSFailure:
		return "DNS解析失败，请检查网络设置或稍后重试"
	case NetConnectionLost:
		return "网络连接已断开，请重新连接网络"
	}
	if errors.Is(e.Err, syscall.ECONNREFUSED) {
		return "无法连接到服务器，请检查网络设置"
	}
	return "网络请求失败: " + e.Err.Error()
}
