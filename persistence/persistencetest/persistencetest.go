// Package persistencetest provides in-memory caches and remote stores for tests.
package persistencetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fintrack/core/model"
)

// Cache is an in-memory persistence.Cache.
type Cache struct {
	mu     sync.Mutex
	values map[string]string
	// SetErr, when non-nil, is returned by every Set.
	SetErr error
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{values: make(map[string]string)}
}

// Get implements persistence.Cache.
func (c *Cache) Get(key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok, nil
}

// Set implements persistence.Cache.
func (c *Cache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetErr != nil {
		return c.SetErr
	}
	c.values[key] = value
	return nil
}

type document struct {
	id  string
	raw json.RawMessage
}

// Remote is an in-memory persistence.RemoteStore. Watchers are notified synchronously,
// on the goroutine that made the change.
type Remote struct {
	mu          sync.Mutex
	collections map[string][]document
	watchers    map[string]map[int]func()
	nextWatch   int

	// Err, when non-nil, fails every mutation.
	Err error
	// WatchErr, when non-nil, fails every Watch.
	WatchErr error
}

// NewRemote returns an empty Remote.
func NewRemote() *Remote {
	return &Remote{
		collections: make(map[string][]document),
		watchers:    make(map[string]map[int]func()),
	}
}

func collectionName(userID string, kind model.Kind) string {
	return fmt.Sprintf("%s_%s", kind, userID)
}

// Snapshot implements persistence.RemoteStore.
func (r *Remote) Snapshot(_ context.Context, userID string, kind model.Kind, results interface{}) error {
	r.mu.Lock()
	docs := r.collections[collectionName(userID, kind)]
	raws := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		raws = append(raws, doc.raw)
	}
	r.mu.Unlock()

	data, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, results)
}

// Watch implements persistence.RemoteStore.
func (r *Remote) Watch(_ context.Context, userID string, kind model.Kind, onChange func()) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.WatchErr != nil {
		return nil, r.WatchErr
	}

	name := collectionName(userID, kind)
	if r.watchers[name] == nil {
		r.watchers[name] = make(map[int]func())
	}
	id := r.nextWatch
	r.nextWatch++
	r.watchers[name][id] = onChange

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.watchers[name], id)
	}, nil
}

// Create implements persistence.RemoteStore.
func (r *Remote) Create(_ context.Context, userID string, kind model.Kind, records ...interface{}) error {
	docs := make([]document, 0, len(records))
	for _, record := range records {
		doc, err := toDocument(record)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	name := collectionName(userID, kind)
	return r.change(name, func(existing []document) []document {
		return append(existing, docs...)
	})
}

// Replace implements persistence.RemoteStore.
func (r *Remote) Replace(_ context.Context, userID string, kind model.Kind, id string, record interface{}) error {
	doc, err := toDocument(record)
	if err != nil {
		return err
	}
	return r.change(collectionName(userID, kind), func(existing []document) []document {
		for i := range existing {
			if existing[i].id == id {
				existing[i] = doc
			}
		}
		return existing
	})
}

// Delete implements persistence.RemoteStore.
func (r *Remote) Delete(_ context.Context, userID string, kind model.Kind, id string) error {
	return r.change(collectionName(userID, kind), func(existing []document) []document {
		kept := existing[:0]
		for _, doc := range existing {
			if doc.id != id {
				kept = append(kept, doc)
			}
		}
		return kept
	})
}

// Len returns the number of records stored for userID and kind.
func (r *Remote) Len(userID string, kind model.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.collections[collectionName(userID, kind)])
}

// Watchers returns the number of open watches on userID's collection of kind.
func (r *Remote) Watchers(userID string, kind model.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers[collectionName(userID, kind)])
}

func (r *Remote) change(name string, mutate func([]document) []document) error {
	r.mu.Lock()
	if r.Err != nil {
		r.mu.Unlock()
		return r.Err
	}
	r.collections[name] = mutate(append([]document(nil), r.collections[name]...))
	watchers := make([]func(), 0, len(r.watchers[name]))
	for _, watcher := range r.watchers[name] {
		watchers = append(watchers, watcher)
	}
	r.mu.Unlock()

	for _, watcher := range watchers {
		watcher()
	}
	return nil
}

func toDocument(record interface{}) (document, error) {
	entity, ok := record.(model.Entity)
	if !ok {
		return document{}, fmt.Errorf("record %T has no id", record)
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return document{}, err
	}
	return document{id: entity.EntityID(), raw: raw}, nil
}
