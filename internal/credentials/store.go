package credentials

import (
	"sync"

	"github.com/rm-hull/inventory-console/internal/models"
)

// Store holds the session's token pair. Implementations must be safe for
// concurrent use.
type Store interface {
	State() models.Credential
	SetAccessToken(token string) error
	SetRefreshToken(token string) error
	Clear() error
}

type memoryStore struct {
	mu   sync.RWMutex
	cred models.Credential
}

func NewMemoryStore(initial models.Credential) Store {
	return &memoryStore{cred: initial}
}

func (s *memoryStore) State() models.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

func (s *memoryStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred.AccessToken = token
	return nil
}

func (s *memoryStore) SetRefreshToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred.RefreshToken = token
	return nil
}

func (s *memoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = models.Credential{}
	return nil
}
