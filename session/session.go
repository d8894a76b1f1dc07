// Package session persists the console's authentication state: a bearer token and the cached user profile,
// stored under fixed keys and always written or removed together.
package session

import (
	"errors"
	"sync"

	"retailadmin/models"
)

// Fixed storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("no session")

// Store is the client-local session storage. Implementations must be safe for concurrent use and must never
// expose a token without its user or the reverse.
type Store interface {
	Load() (*models.Session, error)
	Save(s models.Session) error
	Clear() error
	Token() (string, bool)
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	current *models.Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, ErrNoSession
	}
	s := models.Session{Token: m.current.Token, User: m.current.User.Clone()}
	return &s, nil
}

func (m *MemoryStore) Save(s models.Session) error {
	if err := check(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &models.Session{Token: s.Token, User: s.User.Clone()}
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

func (m *MemoryStore) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", false
	}
	return m.current.Token, true
}

func check(s models.Session) error {
	if s.Token == "" {
		return errors.New("session token is empty")
	}
	return nil
}
