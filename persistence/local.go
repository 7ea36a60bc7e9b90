package persistence

import (
	"context"
	"fmt"
	"sync"

	"fintrack/core/appcontext"
	"fintrack/core/model"
)

// localAdapter owns the collection in memory and writes it through to the cache after
// every change. Subscribers are notified synchronously.
type localAdapter[T model.Entity] struct {
	key   string
	cache Cache

	mu        sync.Mutex
	items     []T
	loaded    bool
	listeners map[int]func([]T)
	nextID    int
}

func newLocalAdapter[T model.Entity](key string, cache Cache) *localAdapter[T] {
	return &localAdapter[T]{key: key, cache: cache, listeners: make(map[int]func([]T))}
}

func (a *localAdapter[T]) Mode() Mode { return ModeLocal }

func (a *localAdapter[T]) Load() ([]T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return clone(a.items), nil
}

func (a *localAdapter[T]) Subscribe(ctx context.Context, onChange func([]T)) (func(), error) {
	a.mu.Lock()
	if err := a.ensureLoadedLocked(); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	id := a.nextID
	a.nextID++
	a.listeners[id] = onChange
	items := clone(a.items)
	a.mu.Unlock()

	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Subscribed to local collection", "key", a.key)
	onChange(items)

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}, nil
}

func (a *localAdapter[T]) Mutate(ctx context.Context, op Op, records ...T) error {
	a.mu.Lock()
	if err := a.ensureLoadedLocked(); err != nil {
		a.mu.Unlock()
		return err
	}

	next, changed, err := apply(a.items, op, records)
	if err != nil || !changed {
		a.mu.Unlock()
		return err
	}

	raw, err := encode(a.key, next)
	if err == nil {
		err = a.cache.Set(a.key, raw)
	}
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("failed to persist %s: %w", a.key, err)
	}

	a.items = next
	listeners := make([]func([]T), 0, len(a.listeners))
	for _, listener := range a.listeners {
		listeners = append(listeners, listener)
	}
	a.mu.Unlock()

	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Local collection changed",
		"key", a.key, "op", op, "records", len(records), "size", len(next))
	for _, listener := range listeners {
		listener(clone(next))
	}
	return nil
}

func (a *localAdapter[T]) ensureLoadedLocked() error {
	if a.loaded {
		return nil
	}
	raw, _, err := a.cache.Get(a.key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", a.key, err)
	}
	items, err := decode[T](a.key, raw)
	if err != nil {
		return err
	}
	a.items = items
	a.loaded = true
	return nil
}

// apply returns items with op applied and whether anything changed. New records are
// placed ahead of existing ones. Updates and deletes of unknown ids are ignored.
func apply[T model.Entity](items []T, op Op, records []T) ([]T, bool, error) {
	switch op {
	case OpAdd:
		if len(records) == 0 {
			return items, false, nil
		}
		next := make([]T, 0, len(records)+len(items))
		next = append(next, records...)
		return append(next, items...), true, nil
	case OpUpdate:
		next := clone(items)
		changed := false
		for _, record := range records {
			for i := range next {
				if next[i].EntityID() == record.EntityID() {
					next[i] = record
					changed = true
					break
				}
			}
		}
		return next, changed, nil
	case OpDelete:
		drop := make(map[string]struct{}, len(records))
		for _, record := range records {
			drop[record.EntityID()] = struct{}{}
		}
		next := make([]T, 0, len(items))
		for _, item := range items {
			if _, ok := drop[item.EntityID()]; !ok {
				next = append(next, item)
			}
		}
		return next, len(next) != len(items), nil
	default:
		return items, false, unknownOp(op)
	}
}

func clone[T any](items []T) []T {
	return append([]T(nil), items...)
}
