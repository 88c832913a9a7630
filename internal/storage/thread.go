// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/keyai/internal/util"
)

// threadFileName is the file under the keyai config directory.
const threadFileName = "thread.json"

// threadFilePerm keeps the thread private to its owner.
const threadFilePerm = 0600

// =============================================================================
// THREAD TYPE
// =============================================================================

// Thread is the server-side chat thread a later ask can continue.
type Thread struct {
	SessionID    string    `json:"session_id"`
	LastQuestion string    `json:"last_question,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Empty reports whether there is nothing to continue.
func (t Thread) Empty() bool {
	return strings.TrimSpace(t.SessionID) == ""
}

// =============================================================================
// THREAD STORE
// =============================================================================

// ThreadStore reads and writes the saved thread.
type ThreadStore struct {
	// Path is the backing JSON file.
	// Default: ~/.keyai/thread.json
	Path string
}

// NewThreadStore returns a store at the default location in dir.
func NewThreadStore(dir string) *ThreadStore {
	return &ThreadStore{Path: filepath.Join(dir, threadFileName)}
}

// Load returns the saved thread. ErrNoThread means nothing is saved.
func (s *ThreadStore) Load() (Thread, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Thread{}, ErrNoThread
		}
		return Thread{}, fmt.Errorf("read thread: %w", err)
	}

	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return Thread{}, &ThreadError{Message: "thread file is corrupt", Err: err}
	}
	if t.Empty() {
		return Thread{}, ErrNoThread
	}
	return t, nil
}

// Save records t, stamping UpdatedAt. An empty thread clears the store.
func (s *ThreadStore) Save(t Thread) error {
	if t.Empty() {
		return s.Clear()
	}
	t.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode thread: %w", err)
	}
	if err := util.AtomicWriteFile(s.Path, data, threadFilePerm); err != nil {
		return fmt.Errorf("save thread: %w", err)
	}
	return nil
}

// Clear forgets the saved thread.
func (s *ThreadStore) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear thread: %w", err)
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoThread is returned by Load when no thread is saved.
var ErrNoThread = &ThreadError{Message: "no saved thread"}

// ThreadError is a thread storage failure. Two ThreadErrors match under
// errors.Is when their messages match.
type ThreadError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ThreadError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying decode error, if any.
func (e *ThreadError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for comparing thread errors.
func (e *ThreadError) Is(target error) bool {
	var t *ThreadError
	if !errors.As(target, &t) {
		return false
	}
	return e.Message == t.Message
}
