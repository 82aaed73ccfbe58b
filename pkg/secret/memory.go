package secret

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type entry struct {
	label   string
	content map[string]string
	grants  []string
}

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]*entry
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: map[string]*entry{}}
}

func (s *MemoryStore) Create(_ context.Context, label string, content map[string]string) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reference := NewReference()
	s.secrets[reference] = &entry{label: label, content: maps.Clone(content)}
	return reference, nil
}

func (s *MemoryStore) Grant(_ context.Context, reference, relationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.secrets[reference]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(e.grants, relationID) {
		e.grants = append(e.grants, relationID)
	}
	return nil
}

func (s *MemoryStore) Resolve(_ context.Context, reference string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.secrets[reference]
	if !ok {
		return nil, ErrNotFound
	}
	return maps.Clone(e.content), nil
}

func (s *MemoryStore) Remove(_ context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, reference)
	return nil
}

// Grants lists the relations a secret has been granted to.
func (s *MemoryStore) Grants(reference string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.secrets[reference]
	if !ok {
		return nil
	}
	return slices.Clone(e.grants)
}

// Label returns the label a secret was created with.
func (s *MemoryStore) Label(reference string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.secrets[reference]; ok {
		return e.label
	}
	return ""
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.secrets)
}
