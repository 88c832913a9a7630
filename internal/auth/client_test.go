// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req loginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "secret", req.Password)

		w.Write([]byte(`{"username":"alice","email":"a@example.com","token":"tok"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", 0, nil)
	u, err := c.Login(context.Background(), " alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, User{Username: "alice", Email: "a@example.com", Token: "tok"}, u)
}

func TestLoginErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    ErrorKind
		message string
	}{
		{"server message", http.StatusUnauthorized, `{"error":"用户名或密码错误"}`, KindServer, "用户名或密码错误"},
		{"unknown body", http.StatusInternalServerError, `oops`, KindUnknown, "未知错误"},
		{"missing token", http.StatusOK, `{"username":"alice"}`, KindInvalidResponse, "无效的响应"},
		{"not json", http.StatusOK, `<html>`, KindInvalidResponse, "无效的响应"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, 0, nil).Login(context.Background(), "alice", "pw")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.message, apiErr.Error())
		})
	}
}

func TestLoginNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, 0, nil).Login(context.Background(), "alice", "pw")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Contains(t, apiErr.Error(), "网络错误: ")
}

func TestLoginRequiresCredentials(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 0, nil)
	_, err := c.Login(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = c.Login(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestRegister(t *testing.T) {
	var got registerRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Username == "taken" {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"用户名已存在"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, 0, nil)
	require.NoError(t, c.Register(context.Background(), "dave", "d@example.com", "pw"))
	assert.Equal(t, registerRequest{Username: "dave", Email: "d@example.com", Password: "pw"}, got)

	err := c.Register(context.Background(), "taken", "t@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, "用户名已存在", err.Error())

	assert.Error(t, c.Register(context.Background(), "erin", "", "pw"))
}
