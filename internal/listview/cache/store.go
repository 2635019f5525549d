// Package cache holds the list snapshots shared between views, the
// entity-keyed mutation claims, and the optimistic mutation coordinator.
package cache

import (
	"fmt"
	"sync"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/eventbus"
)

// Item is anything with a stable identity
type Item interface {
	Key() string
}

type entry struct {
	items      any // []T of the resource's element type
	loaded     bool
	version    uint64
	generation uint64
	written    uint64 // generation current at the last local write
}

// Store is the shared, injectable list cache keyed by resource name.
// Views observing the same resource read the same snapshot; writers
// replace snapshots wholesale so readers never see a partial update.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	claims  map[claimKey]chan struct{}
	bus     eventbus.EventBus
}

// NewStore creates a store. bus may be nil; when set, every snapshot
// change is published as a CollectionChangedEvent.
func NewStore(bus eventbus.EventBus) *Store {
	return &Store{
		entries: make(map[string]*entry),
		claims:  make(map[claimKey]chan struct{}),
		bus:     bus,
	}
}

func (s *Store) entry(resource string) *entry {
	e, ok := s.entries[resource]
	if !ok {
		e = &entry{}
		s.entries[resource] = e
	}
	return e
}

// Version returns the snapshot version of a resource, 0 if never written
func (s *Store) Version(resource string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[resource]; ok {
		return e.version
	}
	return 0
}

// BeginFetch starts a new fetch generation for resource and returns it.
// Any fetch started earlier is superseded from now on.
func (s *Store) BeginFetch(resource string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(resource)
	e.generation++
	return e.generation
}

// Current reports whether gen is still the latest fetch generation
func (s *Store) Current(resource string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[resource]
	return ok && e.generation == gen
}

func (s *Store) publish(resource string, version uint64) {
	if s.bus != nil {
		s.bus.Publish(domain.CollectionChangedEvent{Resource: resource, Version: version})
	}
}

func typed[T any](resource string, e *entry) []T {
	if e.items == nil {
		return nil
	}
	items, ok := e.items.([]T)
	if !ok {
		panic(fmt.Sprintf("cache: resource %q holds %T, not %T", resource, e.items, []T(nil)))
	}
	return items
}

// Get returns the current snapshot of resource. The returned slice must
// not be modified. ok is false until the resource was first written.
func Get[T any](s *Store, resource string) (items []T, version uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entries[resource]
	if !exists || !e.loaded {
		return nil, 0, false
	}
	return typed[T](resource, e), e.version, true
}

// Set replaces the snapshot of resource and returns the new version
func Set[T any](s *Store, resource string, items []T) uint64 {
	s.mu.Lock()
	e := s.entry(resource)
	e.items = items
	e.loaded = true
	e.version++
	e.written = e.generation
	version := e.version
	s.mu.Unlock()

	s.publish(resource, version)
	return version
}

// CommitFetch stores the result of fetch generation gen. It fails with
// ErrSuperseded when a newer fetch started, and with ErrModified when
// Set or Update wrote the snapshot after gen began.
func CommitFetch[T any](s *Store, resource string, gen uint64, items []T) (uint64, error) {
	s.mu.Lock()
	e := s.entry(resource)
	switch {
	case e.generation != gen:
		s.mu.Unlock()
		return e.version, ErrSuperseded
	case e.written == gen:
		s.mu.Unlock()
		return e.version, ErrModified
	}
	e.items = items
	e.loaded = true
	e.version++
	version := e.version
	s.mu.Unlock()

	s.publish(resource, version)
	return version, nil
}

// Update atomically derives a new snapshot from the current one. fn gets
// a private copy it may modify and returns the new snapshot.
func Update[T any](s *Store, resource string, fn func([]T) []T) uint64 {
	s.mu.Lock()
	e := s.entry(resource)
	current := typed[T](resource, e)
	next := fn(append(make([]T, 0, len(current)+1), current...))
	e.items = next
	e.loaded = true
	e.version++
	e.written = e.generation
	version := e.version
	s.mu.Unlock()

	s.publish(resource, version)
	return version
}
