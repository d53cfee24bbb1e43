package sparebank1

import "fmt"

// PersistFunc writes a freshly rotated token pair to durable storage.
type PersistFunc func(Tokens) error

// TokenStore holds the live token pair for a run. Set persists before
// returning, so a crash right after a rotation never loses the only
// copy of the new refresh token. The store is not safe for concurrent
// use; the whole pipeline runs sequentially.
type TokenStore struct {
	tokens  Tokens
	persist PersistFunc
}

// NewTokenStore creates a store seeded with the persisted token pair.
// persist may be nil for read-only use.
func NewTokenStore(initial Tokens, persist PersistFunc) *TokenStore {
	return &TokenStore{tokens: initial, persist: persist}
}

// Current returns the token pair in use.
func (s *TokenStore) Current() Tokens {
	return s.tokens
}

// Set replaces the token pair and persists it. The new tokens must not
// be used for requests until Set has returned.
func (s *TokenStore) Set(t Tokens) error {
	s.tokens = t
	if s.persist != nil {
		if err := s.persist(t); err != nil {
			return fmt.Errorf("persisting tokens: %w", err)
		}
	}
	return nil
}
