package cache

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ledgergrip/internal/domain"
)

// Sink is the server side of a resource's mutations. Each call returns
// the server-confirmed entity.
type Sink[T Item] interface {
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, key string) (T, error)
}

// Coordinator applies optimistic mutations to one resource of a Store.
//
// Every mutation is applied to the snapshot before the server call, then
// confirmed with the server entity or rolled back. Rollback touches only
// the mutated entity, so mutations of other entities running at the same
// time are preserved.
type Coordinator[T Item] struct {
	store    *Store
	resource string
	sink     Sink[T]
	notifier Notifier
	logger   *zap.Logger
	describe func(T) string
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption[T Item] func(*Coordinator[T])

// WithNotifier sets where success and failure messages go
func WithNotifier[T Item](n Notifier) CoordinatorOption[T] {
	return func(c *Coordinator[T]) { c.notifier = n }
}

// WithLogger sets the logger
func WithLogger[T Item](l *zap.Logger) CoordinatorOption[T] {
	return func(c *Coordinator[T]) { c.logger = l }
}

// WithDescribe sets how entities are named in notifications
func WithDescribe[T Item](fn func(T) string) CoordinatorOption[T] {
	return func(c *Coordinator[T]) { c.describe = fn }
}

// NewCoordinator creates a coordinator for resource
func NewCoordinator[T Item](store *Store, resource string, sink Sink[T], opts ...CoordinatorOption[T]) *Coordinator[T] {
	c := &Coordinator[T]{
		store:    store,
		resource: resource,
		sink:     sink,
		notifier: nopNotifier{},
		logger:   zap.NewNop(),
		describe: func(item T) string { return item.Key() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resource returns the resource name the coordinator writes to
func (c *Coordinator[T]) Resource() string { return c.resource }

// Create appends draft to the snapshot, keyed by its provisional key, and
// replaces it with the server entity once confirmed.
func (c *Coordinator[T]) Create(ctx context.Context, draft T) (T, error) {
	tempKey := draft.Key()
	release, err := c.store.TryClaim(c.resource, tempKey)
	if err != nil {
		var zero T
		return zero, err
	}
	defer release()

	Update(c.store, c.resource, func(items []T) []T {
		return append(items, draft)
	})

	created, err := c.sink.Create(ctx, draft)
	if err != nil {
		Update(c.store, c.resource, func(items []T) []T {
			return removeKey(items, tempKey)
		})
		var zero T
		return zero, c.fail(OpCreate, tempKey, draft, err)
	}

	Update(c.store, c.resource, func(items []T) []T {
		// a refetch may already have brought the confirmed entity in
		if created.Key() != tempKey && indexOf(items, created.Key()) >= 0 {
			return removeKey(items, tempKey)
		}
		if i := indexOf(items, tempKey); i >= 0 {
			items[i] = created
			return items
		}
		if indexOf(items, created.Key()) < 0 {
			items = append(items, created)
		}
		return items
	})

	c.logger.Debug("created",
		zap.String("resource", c.resource),
		zap.String("temp_key", tempKey),
		zap.String("key", created.Key()))
	c.notifier.Notify(domain.NotifySuccess, "Created "+c.describe(created))
	return created, nil
}

// Update applies patch to the entity with key, then replaces it by the
// server entity once confirmed. patch runs under the store lock on a copy
// of the current entity.
func (c *Coordinator[T]) Update(ctx context.Context, key string, patch func(T) T) (T, error) {
	var zero T
	release, err := c.store.TryClaim(c.resource, key)
	if err != nil {
		return zero, err
	}
	defer release()

	var (
		previous, patched T
		found             bool
	)
	Update(c.store, c.resource, func(items []T) []T {
		if i := indexOf(items, key); i >= 0 {
			previous, found = items[i], true
			patched = patch(items[i])
			items[i] = patched
		}
		return items
	})
	if !found {
		return zero, ErrNotFound
	}

	updated, err := c.sink.Update(ctx, patched)
	if err != nil {
		Update(c.store, c.resource, func(items []T) []T {
			if i := indexOf(items, key); i >= 0 {
				items[i] = previous
			}
			return items
		})
		return zero, c.fail(OpUpdate, key, previous, err)
	}

	Update(c.store, c.resource, func(items []T) []T {
		if i := indexOf(items, key); i >= 0 {
			items[i] = updated
		}
		return items
	})

	c.logger.Debug("updated", zap.String("resource", c.resource), zap.String("key", key))
	c.notifier.Notify(domain.NotifySuccess, "Updated "+c.describe(updated))
	return updated, nil
}

// Delete removes the entity with key from the snapshot and restores it at
// its old position if the server rejects the delete.
func (c *Coordinator[T]) Delete(ctx context.Context, key string) error {
	release, err := c.store.TryClaim(c.resource, key)
	if err != nil {
		return err
	}
	defer release()

	var (
		previous T
		position = -1
	)
	Update(c.store, c.resource, func(items []T) []T {
		if i := indexOf(items, key); i >= 0 {
			previous, position = items[i], i
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
	if position < 0 {
		return ErrNotFound
	}

	if _, err := c.sink.Delete(ctx, key); err != nil {
		Update(c.store, c.resource, func(items []T) []T {
			if indexOf(items, key) >= 0 {
				return items
			}
			at := min(position, len(items))
			items = append(items, previous)
			copy(items[at+1:], items[at:])
			items[at] = previous
			return items
		})
		return c.fail(OpDelete, key, previous, err)
	}

	c.logger.Debug("deleted", zap.String("resource", c.resource), zap.String("key", key))
	c.notifier.Notify(domain.NotifySuccess, "Deleted "+c.describe(previous))
	return nil
}

func (c *Coordinator[T]) fail(op Op, key string, item T, cause error) error {
	c.logger.Warn("mutation rolled back",
		zap.String("op", string(op)),
		zap.String("resource", c.resource),
		zap.String("key", key),
		zap.Error(cause))
	c.notifier.Notify(domain.NotifyError, fmt.Sprintf("Failed to %s %s: %v", op, c.describe(item), cause))
	return &MutationError{Op: op, Resource: c.resource, Key: key, cause: cause}
}

func indexOf[T Item](items []T, key string) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}

func removeKey[T Item](items []T, key string) []T {
	if i := indexOf(items, key); i >= 0 {
		return append(items[:i], items[i+1:]...)
	}
	return items
}
