// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "strings"

// User is the signed-in account as returned by the login endpoint.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Token    string `json:"token"`
}

// Valid reports whether the user carries enough to authenticate a request.
func (u User) Valid() bool {
	return strings.TrimSpace(u.Username) != "" && strings.TrimSpace(u.Token) != ""
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}
