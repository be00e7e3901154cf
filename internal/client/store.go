// Package client is the checklist lifecycle engine used by front ends. It
// owns the session, assembles failure lists, enforces document rules locally
// and talks to the checklist API through Gateway.
package client

import (
	"errors"
	"sync"
)

// Durable keys of the persisted session. All of token, username and role must
// be present to restore a session.
const (
	KeyAccessToken = "accessToken"
	KeyUsername    = "username"
	KeyUserRole    = "userRole"
	KeyUserName    = "userName"
)

var sessionKeys = []string{KeyAccessToken, KeyUsername, KeyUserRole, KeyUserName}

// ErrKeyNotFound is returned by Store.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Store is the durable key-value storage behind the session.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStore keeps values in a map. Useful for tests and one-shot commands.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the stored value or ErrKeyNotFound.
func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores the value, replacing any previous one.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes the key if present.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
