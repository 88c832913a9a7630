// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNetwork(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want NetworkKind
	}{
		{"dns", &net.DNSError{Err: "no such host", Name: "www.idlab.top", IsNotFound: true}, NetDNSFailure},
		{"dns timeout", &net.DNSError{Err: "timeout", Name: "x", IsTimeout: true}, NetTimeout},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), NetTimeout},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, NetConnectionLost},
		{"eof", io.ErrUnexpectedEOF, NetConnectionLost},
		{"other", errors.New("tls: handshake failure"), NetOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyNetwork(tt.err))
		})
	}
}

func TestNetworkErrorUnwraps(t *testing.T) {
	err := newNetworkError(io.EOF)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, NetConnectionLost, err.Kind)
	assert.Contains(t, err.Error(), "connectionLost")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNotAuthenticated, "请先登录"},
		{ErrUnauthorized, "认证失败，请重新登录(401)"},
		{ErrEmptyQuestion, "问题不能为空，请输入您想询问的内容后再试"},
		{fmt.Errorf("%w: bad", ErrMalformedRequest), "请求构建失败"},
		{ErrEmptyResponse, "响应数据为空"},
		{ErrResponseTooLarge, "响应内容过大"},
		{ErrSuperseded, "请求已取消"},
		{&NetworkError{Kind: NetDNSFailure, Err: errors.New("x")}, "DNS解析失败，请检查网络设置或稍后重试"},
		{&NetworkError{Kind: NetConnectionLost, Err: io.EOF}, "网络连接已断开，请重新连接网络"},
		{&NetworkError{Kind: NetOther, Err: errors.New("boom")}, "网络请求失败: boom"},
		{&ServerError{Status: 502}, "服务器暂时不可用，请稍后重试(502)，请检查是否还有请求配额"},
		{errors.New("odd"), "请求失败: odd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err), "%v", tt.err)
	}
}

func TestServerErrorClass(t *testing.T) {
	assert.Equal(t, "forbidden", (&ServerError{Status: 403}).Class())
	assert.Equal(t, "rate limited", (&ServerError{Status: 429}).Class())
	assert.Equal(t, "server fault", (&ServerError{Status: 504}).Class())
	assert.Equal(t, "bad request", (&ServerError{Status: 404}).Class())
	assert.Contains(t, (&ServerError{Status: 500, Message: "down"}).Error(), "down")
}
