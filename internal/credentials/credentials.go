// Package credentials holds the tokens a caller hands to a reader. The only
// token the reader looks at is the delegation token issued by the planner;
// readers never authenticate against the central authority themselves.
package credentials

import (
	"fmt"
	"sync"
)

// DelegationKind is the kind under which the planner stores the delegation
// token in a credential set.
const DelegationKind = "RECORDSERVICE_DELEGATION_TOKEN"

// Token is an opaque pre-issued credential.
type Token struct {
	Kind       string
	Service    string
	Identifier []byte
	Password   []byte
}

// String never includes the password.
func (t *Token) String() string {
	if t == nil {
		return "<nil token>"
	}
	return fmt.Sprintf("Token{kind=%s, service=%s, identifier=%d bytes}", t.Kind, t.Service, len(t.Identifier))
}

// Store looks up tokens by kind.
type Store interface {
	GetToken(kind string) (*Token, bool)
}

// Set is a concurrency-safe in-memory Store.
type Set struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewSet creates a Set holding the given tokens, keyed by their Kind.
func NewSet(tokens ...*Token) *Set {
	s := &Set{tokens: make(map[string]*Token)}
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

// Add stores t under t.Kind, replacing any previous token of that kind.
func (s *Set) Add(t *Token) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Kind] = t
}

// GetToken implements Store.
func (s *Set) GetToken(kind string) (*Token, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[kind]
	return t, ok
}

// Len returns the number of tokens held.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Delegation returns the delegation token from store, if any. A nil store
// holds nothing.
func Delegation(store Store) (*Token, bool) {
	if store == nil {
		return nil, false
	}
	return store.GetToken(DelegationKind)
}
