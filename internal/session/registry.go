package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
)

// tokenBytes is the random byte length of bearer tokens (256 bits).
const tokenBytes = 32

// ErrUnauthorized is returned when a token is missing from the registry.
var ErrUnauthorized = errors.New("session: unauthorized")

// Session is the server-held identity bound to a bearer token. It is
// immutable after creation; logout removes it.
type Session struct {
	Token  string
	UserID string
	Role   string
	Name   string
	Email  string
}

// Registry maps bearer tokens to authenticated sessions in a
// concurrency-safe way. Tokens only leave the registry through Revoke or
// process restart; there is no time-based expiry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]Session),
	}
}

// Create generates a fresh token for the identity and stores the session.
// The token is guaranteed unique among currently-active tokens.
func (r *Registry) Create(userID, role, name, email string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		token, err := newToken()
		if err != nil {
			return Session{}, err
		}
		if _, taken := r.sessions[token]; taken {
			continue
		}
		s := Session{Token: token, UserID: userID, Role: role, Name: name, Email: email}
		r.sessions[token] = s
		return s, nil
	}
}

// Lookup resolves a token to its session. Missing or unknown tokens return
// ErrUnauthorized.
func (r *Registry) Lookup(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrUnauthorized
	}
	return s, nil
}

// Revoke removes the session for token. Revoking an unknown token is a no-op.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
