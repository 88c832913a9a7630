// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps the session id of the last chat thread so that
// `keyai ask --continue` and `keyai chat --continue` can pick it up.
//
// Only one thread is remembered. Answers are never stored.
//
// # Usage
//
//	store := storage.NewThreadStore(dir)
//	t, err := store.Load()
//	if errors.Is(err, storage.ErrNoThread) {
//	    // start fresh
//	}
//	err = store.Save(storage.Thread{SessionID: id})
//
// # Storage Location
//
// The thread is stored in ~/.keyai/thread.json with 0600 permissions.
package storage
