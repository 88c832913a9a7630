// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadStore_LoadMissing(t *testing.T) {
	store := NewThreadStore(t.TempDir())

	_, err := store.Load()
	assert.True(t, errors.Is(err, ErrNoThread))
}

func TestThreadStore_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewThreadStore(dir)

	require.NoError(t, store.Save(Thread{SessionID: "abc", LastQuestion: "你好"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SessionID)
	assert.Equal(t, "你好", got.LastQuestion)
	assert.False(t, got.UpdatedAt.IsZero())

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestThreadStore_SaveEmptyClears(t *testing.T) {
	store := NewThreadStore(t.TempDir())
	require.NoError(t, store.Save(Thread{SessionID: "abc"}))

	require.NoError(t, store.Save(Thread{SessionID: "  "}))
	_, err := store.Load()
	assert.True(t, errors.Is(err, ErrNoThread))
}

func TestThreadStore_Clear(t *testing.T) {
	store := NewThreadStore(t.TempDir())
	require.NoError(t, store.Clear(), "clearing nothing is fine")

	require.NoError(t, store.Save(Thread{SessionID: "abc"}))
	require.NoError(t, store.Clear())
	_, err := os.Stat(store.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestThreadStore_CorruptFile(t *testing.T) {
	store := NewThreadStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path, []byte("{not json"), 0600))

	_, err := store.Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoThread))

	var terr *ThreadError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "thread file is corrupt", terr.Message)
}

func TestThreadStore_BlankSessionIsNoThread(t *testing.T) {
	store := NewThreadStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path, []byte(`{"session_id": ""}`), 0600))

	_, err := store.Load()
	assert.True(t, errors.Is(err, ErrNoThread))
}
