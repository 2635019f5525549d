package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ledgergrip/internal/listview"
	"ledgergrip/internal/listview/cache"
)

// MemoryStore is an in-memory source and mutation sink. It can delay and
// fail calls to exercise loading and rollback paths.
type MemoryStore[T cache.Item] struct {
	mu      sync.RWMutex
	items   map[string]T
	order   []string
	seq     int
	assign  func(draft T, seq int) T
	latency time.Duration
	failing error
}

// MemoryOption configures a MemoryStore
type MemoryOption[T cache.Item] func(*MemoryStore[T])

// WithAssign sets how created entities get their server-side fields. It
// receives the draft and a per-store sequence number starting at 1.
func WithAssign[T cache.Item](fn func(draft T, seq int) T) MemoryOption[T] {
	return func(s *MemoryStore[T]) { s.assign = fn }
}

// WithLatency delays every call by d
func WithLatency[T cache.Item](d time.Duration) MemoryOption[T] {
	return func(s *MemoryStore[T]) { s.latency = d }
}

// NewMemoryStore creates a memory store holding items in order
func NewMemoryStore[T cache.Item](items []T, opts ...MemoryOption[T]) *MemoryStore[T] {
	s := &MemoryStore[T]{
		items: make(map[string]T, len(items)),
		order: make([]string, 0, len(items)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, item := range items {
		s.items[item.Key()] = item
		s.order = append(s.order, item.Key())
	}
	return s
}

// FailWith makes every following mutation fail with err; nil clears it
func (s *MemoryStore[T]) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = err
}

func (s *MemoryStore[T]) wait(ctx context.Context) error {
	s.mu.RLock()
	d := s.latency
	s.mu.RUnlock()
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch returns all items in insertion order. The query hint is ignored,
// which is a valid superset.
func (s *MemoryStore[T]) Fetch(ctx context.Context, hints listview.Hints) ([]T, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if hints.Limit > 0 {
		n = min(n, hints.Limit)
	}
	result := make([]T, 0, n)
	for _, key := range s.order[:n] {
		result = append(result, s.items[key])
	}
	return result, nil
}

// Create stores draft under the key produced by the assign hook
func (s *MemoryStore[T]) Create(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return zero, s.failing
	}

	s.seq++
	created := draft
	if s.assign != nil {
		created = s.assign(draft, s.seq)
	}
	if _, exists := s.items[created.Key()]; exists {
		return zero, fmt.Errorf("%w: duplicate key %s", ErrInvalid, created.Key())
	}
	s.items[created.Key()] = created
	s.order = append(s.order, created.Key())
	return created, nil
}

// Update replaces the stored item with the same key
func (s *MemoryStore[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return zero, s.failing
	}
	if _, ok := s.items[item.Key()]; !ok {
		return zero, fmt.Errorf("%s: %w", item.Key(), ErrNotFound)
	}
	s.items[item.Key()] = item
	return item, nil
}

// Delete removes the item with key
func (s *MemoryStore[T]) Delete(ctx context.Context, key string) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return zero, s.failing
	}
	item, ok := s.items[key]
	if !ok {
		return zero, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	delete(s.items, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return item, nil
}

// Len returns the number of stored items
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
