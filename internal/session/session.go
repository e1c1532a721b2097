// Package session is the client's record of who, if anyone, is logged in.
//
// THE MODEL:
// A session is two strings, the access token and the username, persisted
// under the keys "token" and "username" the same way a browser app keeps them
// in local storage. Holding a token IS being logged in: nothing here checks
// expiry, signatures or the server. Logout removes both keys together.
//
// The Store is passed explicitly to every view that needs it instead of being
// a package-level global, so tests can hand each view an in-memory store.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/storyblog/internal/apperror"
)

// Storage keys. They match the keys the browser version of the client keeps
// in localStorage.
const (
	KeyToken    = "token"
	KeyUsername = "username"
)

// Session is a snapshot of the persisted values.
type Session struct {
	Token    string
	Username string
}

// Authenticated reports whether both halves of the session are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Username != ""
}

// Backend persists string values by key. Set and Delete must apply all of
// their keys atomically so a reader never sees a token without its username.
type Backend interface {
	Get(ctx context.Context, keys ...string) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Reader is the read-only view of a Store that views depend on.
type Reader interface {
	Current(ctx context.Context) Session
}

// Store wraps a Backend with the login/logout contract and change
// notification.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu       sync.Mutex
	watchers map[int]func(Session)
	nextID   int
}

// NewStore creates a Store on top of the given backend.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend:  backend,
		logger:   logger,
		watchers: make(map[int]func(Session)),
	}
}

// Current reads the session from the backend on every call, so a login or
// logout done by another view (or another process sharing the file) shows up
// on the next read.
//
// A half-present session (token without username or the reverse) and a
// backend read failure both come back as the zero, unauthenticated Session.
func (s *Store) Current(ctx context.Context) Session {
	values, err := s.backend.Get(ctx, KeyToken, KeyUsername)
	if err != nil {
		s.logger.Warn("reading session failed", slog.String("error", err.Error()))
		return Session{}
	}

	sess := Session{Token: values[KeyToken], Username: values[KeyUsername]}
	if !sess.Authenticated() {
		return Session{}
	}
	return sess
}

// Login persists username and token together.
func (s *Store) Login(ctx context.Context, username, token string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.ValidationFailed("username", "username is required")
	}
	if token == "" {
		return apperror.ValidationFailed("token", "token is required")
	}

	if err := s.backend.Set(ctx, map[string]string{
		KeyToken:    token,
		KeyUsername: username,
	}); err != nil {
		return fmt.Errorf("session: saving login: %w", err)
	}

	s.logger.Info("session started", slog.String("username", username))
	s.notify(Session{Token: token, Username: username})
	return nil
}

// Logout clears both keys in one write.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.backend.Delete(ctx, KeyToken, KeyUsername); err != nil {
		return fmt.Errorf("session: clearing session: %w", err)
	}

	s.logger.Info("session ended")
	s.notify(Session{})
	return nil
}

// Watch registers fn to be called after every Login and Logout with the new
// session. The returned func removes the registration.
func (s *Store) Watch(fn func(Session)) (unwatch func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(sess Session) {
	s.mu.Lock()
	fns := make([]func(Session), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// Called outside the lock so a watcher may itself call Watch.
	for _, fn := range fns {
		fn(sess)
	}
}
