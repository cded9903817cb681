// Package memstore provides the ordered, keyed in-memory collections that back
// the person, fire station and medical record repositories.
package memstore

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrAlreadyExists = errors.New("entity already exists")
	ErrNotFound      = errors.New("entity not found")
)

// Store holds entities of type T keyed by an identity K derived from each
// entity. Iteration follows insertion order; Update keeps an entity in place.
type Store[K comparable, T any] struct {
	mu    sync.RWMutex
	key   func(T) K
	clone func(T) T
	order []K
	items map[K]T
}

// Option configures a Store.
type Option[K comparable, T any] func(*Store[K, T])

// WithClone installs a copy function applied to entities on the way in and
// out, so callers never share slices with the stored state.
func WithClone[K comparable, T any](fn func(T) T) Option[K, T] {
	return func(s *Store[K, T]) { s.clone = fn }
}

// New creates an empty Store using key to derive each entity's identity.
func New[K comparable, T any](key func(T) K, opts ...Option[K, T]) *Store[K, T] {
	s := &Store[K, T]{
		key:   key,
		clone: func(v T) T { return v },
		items: make(map[K]T),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KeyOf returns the identity the store would use for v.
func (s *Store[K, T]) KeyOf(v T) K {
	return s.key(v)
}

func (s *Store[K, T]) FindByID(id K) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.clone(v), true
}

func (s *Store[K, T]) ExistsByID(id K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

// Insert adds v. It fails with ErrAlreadyExists when v's identity is taken.
func (s *Store[K, T]) Insert(v T) error {
	id := s.key(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		return fmt.Errorf("insert %v: %w", id, ErrAlreadyExists)
	}
	s.items[id] = s.clone(v)
	s.order = append(s.order, id)
	return nil
}

// Update replaces the entity stored under v's identity. It fails with
// ErrNotFound when nothing is stored there.
func (s *Store[K, T]) Update(v T) error {
	id := s.key(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("update %v: %w", id, ErrNotFound)
	}
	s.items[id] = s.clone(v)
	return nil
}

func (s *Store[K, T]) Delete(id K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("delete %v: %w", id, ErrNotFound)
	}
	delete(s.items, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Filter returns copies of every entity matching pred, in insertion order.
func (s *Store[K, T]) Filter(pred func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []T{}
	for _, id := range s.order {
		v := s.items[id]
		if pred(v) {
			out = append(out, s.clone(v))
		}
	}
	return out
}

func (s *Store[K, T]) All() []T {
	return s.Filter(func(T) bool { return true })
}

func (s *Store[K, T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Reset replaces the whole collection. Entities whose identity repeats an
// earlier one are not stored; their positions in vs are returned together
// with the ErrAlreadyExists failure for each.
func (s *Store[K, T]) Reset(vs []T) map[int]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]T, len(vs))
	s.order = make([]K, 0, len(vs))
	var rejected map[int]error
	for i, v := range vs {
		id := s.key(v)
		if _, ok := s.items[id]; ok {
			if rejected == nil {
				rejected = make(map[int]error)
			}
			rejected[i] = fmt.Errorf("insert %v: %w", id, ErrAlreadyExists)
			continue
		}
		s.items[id] = s.clone(v)
		s.order = append(s.order, id)
	}
	return rejected
}
