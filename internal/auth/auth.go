// Package auth checks the application's single demo credential and keeps
// track of who is logged in.
//
// Login state is an explicit Session value held by a Sessions registry,
// not something hidden in a UI framework, so the record store never needs
// to know about it.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Sessions.Login on a wrong pair.
var ErrInvalidCredentials = errors.New("Username atau password salah")

// Authenticator holds the one recognised username and a bcrypt hash of its
// password.
type Authenticator struct {
	username string
	hash     []byte
}

// NewAuthenticator hashes password and returns an Authenticator for the
// pair. bcrypt rejects passwords longer than 72 bytes.
func NewAuthenticator(username, password string) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth.NewAuthenticator: hash password: %w", err)
	}
	return &Authenticator{username: username, hash: hash}, nil
}

// Check reports whether the trimmed input matches the configured pair.
// The password is checked even when the username is wrong so timing does
// not reveal which one failed.
func (a *Authenticator) Check(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.username))
	p := bcrypt.CompareHashAndPassword(a.hash, []byte(strings.TrimSpace(password))) == nil
	return u == 1 && p
}

// Session is one logged-in browser or API client.
type Session struct {
	ID            string
	Username      string
	Authenticated bool
	CreatedAt     time.Time
}

// Sessions is an in-memory session registry.
type Sessions struct {
	auth *Authenticator
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

// NewSessions returns a registry that authenticates with a. Sessions older
// than ttl are treated as logged out; a zero ttl never expires them.
func NewSessions(a *Authenticator, ttl time.Duration) *Sessions {
	return &Sessions{
		auth:     a,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

// Login checks the credentials and opens a session.
func (s *Sessions) Login(username, password string) (Session, error) {
	if !s.auth.Check(username, password) {
		return Session{}, ErrInvalidCredentials
	}

	sess := Session{
		ID:            uuid.NewString(),
		Username:      strings.TrimSpace(username),
		Authenticated: true,
		CreatedAt:     s.now(),
	}

	s.mu.Lock()
	s.sweep()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess, nil
}

// sweep drops every expired session. The caller holds s.mu.
func (s *Sessions) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *Sessions) expired(sess Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.CreatedAt) > s.ttl
}

// Len returns the number of sessions held, expired ones included until
// the next Login sweeps them.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Get returns the session for id. An unknown or expired id yields an
// unauthenticated session and false.
func (s *Sessions) Get(id string) (Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, id)
		return Session{}, false
	}
	return sess, true
}

// Logout ends the session. Unknown ids are ignored.
func (s *Sessions) Logout(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
