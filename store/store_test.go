package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fintrack/core/model"
	"fintrack/core/persistence"
	"fintrack/core/persistence/persistencetest"
	"fintrack/core/store"

	"github.com/shopspring/decimal"
)

func investment(id, name string, amount int64) model.Investment {
	return model.Investment{
		ID:            id,
		Name:          name,
		Type:          "CDB",
		Amount:        decimal.NewFromInt(amount),
		InitialAmount: decimal.NewFromInt(amount),
	}
}

// fakeAdapter hands out its subscriber so tests can deliver snapshots at will.
type fakeAdapter struct {
	mu           sync.Mutex
	loaded       []model.Investment
	subscriber   func([]model.Investment)
	unsubscribed int
	mutations    []persistence.Op
	mutateErr    error
}

func (f *fakeAdapter) Mode() persistence.Mode { return persistence.ModeRemote }

func (f *fakeAdapter) Load() ([]model.Investment, error) { return f.loaded, nil }

func (f *fakeAdapter) Subscribe(_ context.Context, onChange func([]model.Investment)) (func(), error) {
	f.mu.Lock()
	f.subscriber = onChange
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeAdapter) Mutate(_ context.Context, op persistence.Op, _ ...model.Investment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, op)
	return f.mutateErr
}

func (f *fakeAdapter) deliver(items ...model.Investment) {
	f.mu.Lock()
	subscriber := f.subscriber
	f.mu.Unlock()
	subscriber(items)
}

func TestStore_DetachedMutationsFail(t *testing.T) {
	s := store.New[model.Investment](model.KindInvestments, nil)
	if err := s.Insert(context.Background(), investment("i1", "CDB", 100)); !errors.Is(err, store.ErrDetached) {
		t.Errorf("Expected ErrDetached, got %v", err)
	}
	if s.Mode() != "" {
		t.Errorf("Expected no mode while detached, got %s", s.Mode())
	}
}

func TestStore_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	changes := 0
	s := store.New[model.Investment](model.KindInvestments, func() { changes++ })

	adapter := persistence.New[model.Investment]("", model.KindInvestments, persistencetest.NewCache(), nil)
	if err := s.Attach(ctx, adapter); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := s.Insert(ctx, investment("i1", "CDB", 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if got, ok := s.Find("i1"); !ok || got.Name != "CDB" {
		t.Fatalf("Expected i1 after insert, got %#v", got)
	}

	updated := investment("i1", "CDB Banco", 1100)
	if err := s.Replace(ctx, updated); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if got, _ := s.Find("i1"); !got.Amount.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("Expected amount 1100, got %s", got.Amount)
	}

	if err := s.Remove(ctx, "i1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(s.Items()) != 0 {
		t.Errorf("Expected an empty collection, got %v", s.Items())
	}
	if changes == 0 {
		t.Error("Expected change notifications")
	}
}

func TestStore_UnknownIDsAreNoOps(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{}
	s := store.New[model.Investment](model.KindInvestments, nil)
	if err := s.Attach(ctx, adapter); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := s.Remove(ctx, "missing"); err != nil {
		t.Errorf("Remove failed: %v", err)
	}
	if err := s.Replace(ctx, investment("missing", "x", 1)); err != nil {
		t.Errorf("Replace failed: %v", err)
	}
	if len(adapter.mutations) != 0 {
		t.Errorf("Expected no mutations to reach the adapter, got %v", adapter.mutations)
	}
}

func TestStore_MirrorsOnlyFromSnapshots(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{loaded: []model.Investment{investment("cached", "Cached", 10)}}
	s := store.New[model.Investment](model.KindInvestments, nil)
	if err := s.Attach(ctx, adapter); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if _, ok := s.Find("cached"); !ok {
		t.Fatal("Expected the cached collection after attach")
	}

	if err := s.Insert(ctx, investment("i1", "CDB", 100)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, ok := s.Find("i1"); ok {
		t.Error("Insert must not change the collection before the snapshot arrives")
	}

	adapter.deliver(investment("i1", "CDB", 100))
	items := s.Items()
	if len(items) != 1 || items[0].ID != "i1" {
		t.Errorf("Expected the delivered snapshot, got %v", items)
	}
}

func TestStore_MutationErrorLeavesCollection(t *testing.T) {
	ctx := context.Background()
	adapter := &fakeAdapter{mutateErr: persistence.SyncError("add", errors.New("offline"))}
	s := store.New[model.Investment](model.KindInvestments, nil)
	if err := s.Attach(ctx, adapter); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	adapter.deliver(investment("i1", "CDB", 100))

	if err := s.Remove(ctx, "i1"); !errors.Is(err, persistence.ErrSync) {
		t.Errorf("Expected a sync error, got %v", err)
	}
	if _, ok := s.Find("i1"); !ok {
		t.Error("Expected the collection to be unchanged")
	}
}

func TestStore_StaleSnapshotsAreDropped(t *testing.T) {
	ctx := context.Background()
	first := &fakeAdapter{}
	second := &fakeAdapter{}
	s := store.New[model.Investment](model.KindInvestments, nil)

	if err := s.Attach(ctx, first); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := s.Attach(ctx, second); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if first.unsubscribed != 1 {
		t.Errorf("Expected the first subscription to be closed, got %d", first.unsubscribed)
	}

	first.deliver(investment("old", "Old user", 1))
	if len(s.Items()) != 0 {
		t.Errorf("Expected a stale snapshot to be ignored, got %v", s.Items())
	}

	second.deliver(investment("new", "New user", 1))
	if _, ok := s.Find("new"); !ok {
		t.Error("Expected the current subscription's snapshot")
	}

	s.Detach()
	if len(s.Items()) != 0 || second.unsubscribed != 1 {
		t.Errorf("Expected detach to clear and unsubscribe, got %v / %d", s.Items(), second.unsubscribed)
	}
}
