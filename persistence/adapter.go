// Package persistence chooses where a user's collections live. Without an identity (or
// without a remote store) collections are kept in the local cache; with one they mirror
// the remote realtime store.
package persistence

import (
	"context"

	"fintrack/core/model"
)

// Cache is the synchronous local key/value store.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// RemoteStore is the realtime document store holding one collection per user and kind.
type RemoteStore interface {
	Snapshot(ctx context.Context, userID string, kind model.Kind, results interface{}) error
	Watch(ctx context.Context, userID string, kind model.Kind, onChange func()) (func(), error)
	Create(ctx context.Context, userID string, kind model.Kind, records ...interface{}) error
	Replace(ctx context.Context, userID string, kind model.Kind, id string, record interface{}) error
	Delete(ctx context.Context, userID string, kind model.Kind, id string) error
}

// Mode is the storage strategy of an adapter.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Op is a collection mutation.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Adapter stores one entity collection for one user.
type Adapter[T model.Entity] interface {
	// Mode reports which strategy backs the adapter.
	Mode() Mode
	// Load returns the collection as last persisted in the local cache.
	Load() ([]T, error)
	// Subscribe delivers the full collection now and after every change, until the
	// returned function is called.
	Subscribe(ctx context.Context, onChange func([]T)) (func(), error)
	// Mutate applies op to records. Update and delete match records by id.
	Mutate(ctx context.Context, op Op, records ...T) error
}

// New returns the adapter for userID's collection of kind. The remote store is used only
// when both an identity and a remote store are present.
func New[T model.Entity](userID string, kind model.Kind, cache Cache, remote RemoteStore) Adapter[T] {
	if userID == "" || remote == nil {
		return newLocalAdapter[T](CacheKey(userID, kind), cache)
	}
	return &remoteAdapter[T]{
		userID: userID,
		kind:   kind,
		key:    CacheKey(userID, kind),
		cache:  cache,
		remote: remote,
	}
}
