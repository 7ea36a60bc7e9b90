package persistence

import (
	"context"
	"sync"

	"fintrack/core/appcontext"
	"fintrack/core/model"
)

// remoteAdapter forwards mutations to the remote store and mirrors the collection only
// from the store's snapshots. Each snapshot is also written to the user's cache key so
// the next start can hydrate before the subscription delivers.
type remoteAdapter[T model.Entity] struct {
	userID string
	kind   model.Kind
	key    string
	cache  Cache
	remote RemoteStore
}

func (a *remoteAdapter[T]) Mode() Mode { return ModeRemote }

func (a *remoteAdapter[T]) Load() ([]T, error) {
	raw, _, err := a.cache.Get(a.key)
	if err != nil {
		return nil, err
	}
	return decode[T](a.key, raw)
}

func (a *remoteAdapter[T]) Subscribe(ctx context.Context, onChange func([]T)) (func(), error) {
	logger := appcontext.LoggerFromContext(ctx)

	// Deliveries are serialized so a slower, older snapshot never lands after a newer one.
	var mu sync.Mutex
	deliver := func() error {
		mu.Lock()
		defer mu.Unlock()

		var items []T
		if err := a.remote.Snapshot(ctx, a.userID, a.kind, &items); err != nil {
			return SyncError("snapshot", err)
		}
		if raw, err := encode(a.key, items); err != nil {
			logger.WarnContext(ctx, "Failed to encode snapshot for the cache", "key", a.key, "error", err)
		} else if err := a.cache.Set(a.key, raw); err != nil {
			logger.WarnContext(ctx, "Failed to mirror snapshot into the cache", "key", a.key, "error", err)
		}
		onChange(items)
		return nil
	}

	// The stream is opened before the first read so no change falls between the two.
	stop, err := a.remote.Watch(ctx, a.userID, a.kind, func() {
		if err := deliver(); err != nil {
			logger.ErrorContext(ctx, "Failed to refresh collection", "user", a.userID, "kind", a.kind, "error", err)
		}
	})
	if err != nil {
		return nil, SyncError("subscribe", err)
	}

	if err := deliver(); err != nil {
		stop()
		return nil, err
	}

	logger.InfoContext(ctx, "Subscribed to remote collection", "user", a.userID, "kind", a.kind)
	return stop, nil
}

func (a *remoteAdapter[T]) Mutate(ctx context.Context, op Op, records ...T) error {
	if len(records) == 0 {
		return nil
	}

	switch op {
	case OpAdd:
		docs := make([]interface{}, 0, len(records))
		for _, record := range records {
			docs = append(docs, record)
		}
		if err := a.remote.Create(ctx, a.userID, a.kind, docs...); err != nil {
			return SyncError(string(op), err)
		}
	case OpUpdate:
		for _, record := range records {
			if err := a.remote.Replace(ctx, a.userID, a.kind, record.EntityID(), record); err != nil {
				return SyncError(string(op), err)
			}
		}
	case OpDelete:
		for _, record := range records {
			if err := a.remote.Delete(ctx, a.userID, a.kind, record.EntityID()); err != nil {
				return SyncError(string(op), err)
			}
		}
	default:
		return unknownOp(op)
	}

	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Forwarded mutation to remote store",
		"user", a.userID, "kind", a.kind, "op", op, "records", len(records))
	return nil
}
