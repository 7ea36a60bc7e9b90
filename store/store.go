// Package store holds one in-memory entity collection and routes its mutations through
// a persistence adapter. The collection changes only when the adapter delivers a snapshot.
package store

import (
	"context"
	"errors"
	"sync"

	"fintrack/core/appcontext"
	"fintrack/core/model"
	"fintrack/core/persistence"
)

// ErrDetached is returned by mutations made while no adapter is attached.
var ErrDetached = errors.New("store is not attached to a persistence adapter")

// Store is the collection of one entity kind for the current identity.
type Store[T model.Entity] struct {
	kind     model.Kind
	onChange func()

	mu          sync.RWMutex
	adapter     persistence.Adapter[T]
	unsubscribe func()
	items       []T
	// generation changes on every attach and detach; snapshots from older
	// subscriptions are dropped.
	generation uint64
}

// New returns a detached store. onChange, if not nil, runs after every change of the
// collection, outside the store's lock.
func New[T model.Entity](kind model.Kind, onChange func()) *Store[T] {
	return &Store[T]{kind: kind, onChange: onChange}
}

// Kind returns the entity kind held by the store.
func (s *Store[T]) Kind() model.Kind { return s.kind }

// Attach tears down the current adapter, hydrates from the new adapter's cached
// collection and subscribes to it.
func (s *Store[T]) Attach(ctx context.Context, adapter persistence.Adapter[T]) error {
	logger := appcontext.LoggerFromContext(ctx)
	s.Detach()

	items, err := adapter.Load()
	if err != nil {
		logger.WarnContext(ctx, "Failed to hydrate collection from cache", "kind", s.kind, "error", err)
		items = nil
	}

	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.adapter = adapter
	s.items = items
	s.mu.Unlock()
	s.changed()

	unsubscribe, err := adapter.Subscribe(ctx, func(items []T) {
		if !s.replaceAll(generation, items) {
			logger.WarnContext(ctx, "Dropped snapshot from a closed subscription", "kind", s.kind)
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		unsubscribe()
		return nil
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	logger.DebugContext(ctx, "Attached collection", "kind", s.kind, "mode", adapter.Mode())
	return nil
}

// Detach unsubscribes from the adapter and clears the collection.
func (s *Store[T]) Detach() {
	s.mu.Lock()
	s.generation++
	unsubscribe := s.unsubscribe
	hadItems := len(s.items) > 0
	s.unsubscribe = nil
	s.adapter = nil
	s.items = nil
	s.mu.Unlock()

	// Unsubscribing may wait for an in-flight delivery, which needs the lock.
	if unsubscribe != nil {
		unsubscribe()
	}
	if hadItems {
		s.changed()
	}
}

// Mode reports the attached adapter's mode, or "" when detached.
func (s *Store[T]) Mode() persistence.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.adapter == nil {
		return ""
	}
	return s.adapter.Mode()
}

// Items returns a copy of the collection.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Find returns the record with id.
func (s *Store[T]) Find(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Insert adds records as one mutation.
func (s *Store[T]) Insert(ctx context.Context, records ...T) error {
	adapter, err := s.current()
	if err != nil {
		return err
	}
	return adapter.Mutate(ctx, persistence.OpAdd, records...)
}

// Replace overwrites the record with the same id. Unknown ids are ignored.
func (s *Store[T]) Replace(ctx context.Context, record T) error {
	if _, ok := s.Find(record.EntityID()); !ok {
		return nil
	}
	adapter, err := s.current()
	if err != nil {
		return err
	}
	return adapter.Mutate(ctx, persistence.OpUpdate, record)
}

// Remove deletes the record with id. Unknown ids are ignored.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	record, ok := s.Find(id)
	if !ok {
		return nil
	}
	adapter, err := s.current()
	if err != nil {
		return err
	}
	return adapter.Mutate(ctx, persistence.OpDelete, record)
}

func (s *Store[T]) current() (persistence.Adapter[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.adapter == nil {
		return nil, ErrDetached
	}
	return s.adapter, nil
}

func (s *Store[T]) replaceAll(generation uint64, items []T) bool {
	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		return false
	}
	s.items = append([]T(nil), items...)
	s.mu.Unlock()

	s.changed()
	return true
}

func (s *Store[T]) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
