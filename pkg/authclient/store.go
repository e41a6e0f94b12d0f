package authclient

import "sync"

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// TokenStore holds the current session credentials.
type TokenStore interface {
	Get() Tokens
	Set(Tokens)
	Clear()
}

type MemoryStore struct {
	mu sync.RWMutex
	t  Tokens
}

func NewMemoryStore(t Tokens) *MemoryStore {
	return &MemoryStore{t: t}
}

func (s *MemoryStore) Get() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t
}

// Set keeps the previous refresh token when the new one is empty.
func (s *MemoryStore) Set(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.AccessToken != "" {
		s.t.AccessToken = t.AccessToken
	}
	if t.RefreshToken != "" {
		s.t.RefreshToken = t.RefreshToken
	}
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = Tokens{}
}
