package cache

import (
	"context"
	"sync"
)

type claimKey struct {
	resource string
	key      string
}

// TryClaim claims an entity for mutation. It fails with ErrBusy when
// another mutation on the same entity is in flight. The returned release
// function is idempotent.
func (s *Store) TryClaim(resource, key string) (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := claimKey{resource: resource, key: key}
	if _, busy := s.claims[k]; busy {
		return nil, ErrBusy
	}
	return s.claimLocked(k), nil
}

// Claim claims an entity for mutation, waiting for the current holder to
// release it. It returns ctx.Err() if the context ends first.
func (s *Store) Claim(ctx context.Context, resource, key string) (release func(), err error) {
	k := claimKey{resource: resource, key: key}
	for {
		s.mu.Lock()
		done, busy := s.claims[k]
		if !busy {
			release := s.claimLocked(k)
			s.mu.Unlock()
			return release, nil
		}
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Claimed reports whether an entity currently has a mutation in flight
func (s *Store) Claimed(resource, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.claims[claimKey{resource: resource, key: key}]
	return busy
}

func (s *Store) claimLocked(k claimKey) func() {
	done := make(chan struct{})
	s.claims[k] = done

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.claims[k] == done {
				delete(s.claims, k)
			}
			s.mu.Unlock()
			close(done)
		})
	}
}
