// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/keyai/internal/util"
)

// userFilePerm keeps the token readable by the owner only.
const userFilePerm = 0600

// ErrNotLoggedIn is returned when an operation needs a signed-in user.
var ErrNotLoggedIn = errors.New("not logged in")

// Store is the file-backed credential store. It caches the user in memory;
// Load re-reads the file and Watch keeps the cache in step with writes
// from other processes. Safe for concurrent use.
type Store struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	user *User
}

// NewStore opens the store at path and loads whatever is there. A missing
// or unreadable file simply means nobody is logged in.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, log: logger.Named("auth")}
	if err := s.Load(); err != nil {
		s.log.Warn("could not load saved user", zap.String("path", path), zap.Error(err))
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load re-reads the backing file.
func (s *Store) Load() error {
	user, err := readUser(s.path)

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return err
}

func readUser(path string) (*User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read user file: %w", err)
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("parse user file: %w", err)
	}
	if !u.Valid() {
		return nil, nil
	}
	return &u, nil
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// IsLoggedIn reports whether a user is signed in.
func (s *Store) IsLoggedIn() bool {
	_, ok := s.CurrentUser()
	return ok
}

// Save persists u and makes it current.
func (s *Store) Save(u User) error {
	if !u.Valid() {
		return errors.New("user must have a username and token")
	}

	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, userFilePerm); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	s.log.Info("user saved", zap.String("username", u.Username))
	return nil
}

// Logout forgets the current user and removes the backing file.
func (s *Store) Logout() error {
	s.mu.Lock()
	name := "unknown"
	if s.user != nil {
		name = s.user.Username
	}
	s.user = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove user file: %w", err)
	}
	s.log.Info("user logged out", zap.String("username", name))
	return nil
}

// =============================================================================
// WATCHING
// =============================================================================

// Watcher reloads a Store whenever its backing file changes.
type Watcher struct {
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Watch starts reloading the store on changes to its file. The file is
// replaced by rename on save, so the parent directory is watched.
// onChange, if set, runs after every reload with the new state.
func (s *Store) Watch(ctx context.Context, onChange func(User, bool)) (*Watcher, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create user dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{watcher: fw, cancel: cancel}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		s.watchLoop(ctx, fw, onChange)
	}()
	return w, nil
}

func (s *Store) watchLoop(ctx context.Context, fw *fsnotify.Watcher, onChange func(User, bool)) {
	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Load(); err != nil {
				s.log.Warn("reload user failed", zap.Error(err))
			}
			u, ok := s.CurrentUser()
			s.log.Debug("user file changed", zap.String("op", event.Op.String()), zap.Bool("logged_in", ok))
			if onChange != nil {
				onChange(u, ok)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			s.log.Warn("user file watcher error", zap.Error(err))
		}
	}
}

// Close stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
