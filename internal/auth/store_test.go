// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyai", "user.json")
	s := NewStore(path, nil)

	_, ok := s.CurrentUser()
	assert.False(t, ok)

	u := User{Username: "alice", Email: "a@example.com", Token: "tok-1"}
	require.NoError(t, s.Save(u))

	got, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A second process sees the same user.
	other := NewStore(path, nil)
	got, ok = other.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
}

func TestStoreRejectsInvalidUser(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "user.json"), nil)
	assert.Error(t, s.Save(User{Username: "bob"}))
	assert.False(t, s.IsLoggedIn())
}

func TestStoreLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	s := NewStore(path, nil)
	require.NoError(t, s.Save(User{Username: "alice", Token: "t"}))

	require.NoError(t, s.Logout())
	assert.False(t, s.IsLoggedIn())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Logging out twice is harmless.
	assert.NoError(t, s.Logout())
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := NewStore(path, nil)
	assert.False(t, s.IsLoggedIn())
	assert.Error(t, s.Load())
}

func TestStoreMissingToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"username":"alice"}`), 0600))

	s := NewStore(path, nil)
	assert.False(t, s.IsLoggedIn())
}

func TestStoreWatchPicksUpExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.json")
	s := NewStore(path, nil)

	var changes atomic.Int32
	w, err := s.Watch(context.Background(), func(User, bool) { changes.Add(1) })
	require.NoError(t, err)
	defer w.Close()

	writer := NewStore(path, nil)
	require.NoError(t, writer.Save(User{Username: "carol", Token: "t"}))

	require.Eventually(t, func() bool {
		u, ok := s.CurrentUser()
		return ok && u.Username == "carol"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, writer.Logout())
	require.Eventually(t, func() bool {
		return !s.IsLoggedIn()
	}, 2*time.Second, 10*time.Millisecond)

	assert.GreaterOrEqual(t, changes.Load(), int32(2))
}

func TestWatcherCloseStopsGoroutine(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "user.json"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	w, err := s.Watch(ctx, nil)
	require.NoError(t, err)

	cancel()
	assert.NoError(t, w.Close())
}
