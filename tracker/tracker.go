// Package tracker is the finance state of one device: the three entity collections of the
// current identity, the category registry and the selected month, plus everything derived
// from them.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/core/aggregate"
	"fintrack/core/appcontext"
	"fintrack/core/category"
	"fintrack/core/identity"
	"fintrack/core/model"
	"fintrack/core/persistence"
	"fintrack/core/store"

	"github.com/google/uuid"
)

// ErrNoCache is returned by New when no local cache is configured.
var ErrNoCache = errors.New("tracker needs a local cache")

// Options configures a Tracker. Only Cache is required.
type Options struct {
	Cache persistence.Cache
	// Remote backs signed-in identities. Without it every identity stays local.
	Remote persistence.RemoteStore
	// Identity announces sign-in and sign-out. Without it the tracker runs as a guest.
	Identity identity.Gate
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to random UUIDs.
	NewID func() string
}

// Tracker owns the finance state. It is safe for concurrent use.
type Tracker struct {
	// ctx scopes the subscriptions opened on identity changes.
	ctx    context.Context
	cache  persistence.Cache
	remote persistence.RemoteStore
	now    func() time.Time
	newID  func() string

	transactions *store.Store[model.Transaction]
	goals        *store.Store[model.Goal]
	investments  *store.Store[model.Investment]

	// switchMu serializes identity re-initialization.
	switchMu     sync.Mutex
	stopIdentity func()
	// attached is set once the collections have been subscribed for some identity.
	attached bool

	mu         sync.RWMutex
	userID     string
	categories *category.Registry
	month      string
}

// New hydrates a tracker from the cache and subscribes to the current identity's
// collections. Subscriptions live until Close or until ctx is done. When a subscription
// fails the tracker is still returned, holding the cached collections, along with the error.
func New(ctx context.Context, opts Options) (*Tracker, error) {
	if opts.Cache == nil {
		return nil, ErrNoCache
	}

	t := &Tracker{
		ctx:    ctx,
		cache:  opts.Cache,
		remote: opts.Remote,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = func() string { return uuid.New().String() }
	}

	t.transactions = store.New[model.Transaction](model.KindTransactions, nil)
	t.goals = store.New[model.Goal](model.KindGoals, nil)
	t.investments = store.New[model.Investment](model.KindInvestments, nil)

	t.categories = t.loadCategories(ctx)
	t.month = t.loadSelectedMonth(ctx)

	if opts.Identity == nil {
		return t, t.SwitchUser(ctx, "")
	}

	// The listener is registered before the first read so a change in between is not lost.
	gate := opts.Identity
	t.stopIdentity = gate.OnChange(func(string) {
		if err := t.followIdentity(t.ctx, gate); err != nil {
			appcontext.LoggerFromContext(t.ctx).ErrorContext(t.ctx, "Failed to switch identity", "error", err)
		}
	})
	err := t.followIdentity(ctx, gate)

	return t, err
}

// SwitchUser tears down every subscription, clears the collections, hydrates them from
// userID's cache namespace and subscribes again. An empty userID is a guest.
func (t *Tracker) SwitchUser(ctx context.Context, userID string) error {
	t.switchMu.Lock()
	defer t.switchMu.Unlock()
	return t.switchUserLocked(ctx, userID)
}

// followIdentity switches to gate's current identity. The identity is read under switchMu,
// so the last switch to run always reflects the latest change.
func (t *Tracker) followIdentity(ctx context.Context, gate identity.Gate) error {
	t.switchMu.Lock()
	defer t.switchMu.Unlock()

	userID := gate.Current()
	if t.attached && userID == t.UserID() {
		return nil
	}
	return t.switchUserLocked(ctx, userID)
}

func (t *Tracker) switchUserLocked(ctx context.Context, userID string) error {
	logger := appcontext.LoggerFromContext(ctx)

	t.transactions.Detach()
	t.goals.Detach()
	t.investments.Detach()

	t.mu.Lock()
	previous := t.userID
	t.userID = userID
	t.mu.Unlock()

	logger.InfoContext(ctx, "Initializing finance state", "user", userID, "previous", previous)

	// Subscriptions outlive this call, so they are scoped to the tracker's context.
	subCtx := appcontext.WithAttrs(appcontext.WithLogger(t.ctx, logger), "user", userID)
	errs := []error{
		t.transactions.Attach(subCtx, persistence.New[model.Transaction](userID, model.KindTransactions, t.cache, t.remote)),
		t.goals.Attach(subCtx, persistence.New[model.Goal](userID, model.KindGoals, t.cache, t.remote)),
		t.investments.Attach(subCtx, persistence.New[model.Investment](userID, model.KindInvestments, t.cache, t.remote)),
	}
	t.attached = true
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to subscribe collections of %q: %w", userID, err)
	}
	return nil
}

// Close stops following the identity and closes every subscription.
func (t *Tracker) Close() {
	t.switchMu.Lock()
	defer t.switchMu.Unlock()

	if t.stopIdentity != nil {
		t.stopIdentity()
		t.stopIdentity = nil
	}
	t.transactions.Detach()
	t.goals.Detach()
	t.investments.Detach()
}

// UserID returns the identity whose collections are loaded ("" for a guest).
func (t *Tracker) UserID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userID
}

// Mode reports whether the collections are local or mirrored from the remote store.
func (t *Tracker) Mode() persistence.Mode {
	return t.transactions.Mode()
}

// SelectedMonth returns the "YYYY-MM" month filter.
func (t *Tracker) SelectedMonth() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.month
}

// Categories returns the registered categories with their colors.
func (t *Tracker) Categories() []category.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.categories.Entries()
}

// SetSelectedMonth changes the month filter.
func (t *Tracker) SetSelectedMonth(ctx context.Context, month string) error {
	if _, err := aggregate.ParseMonth(month); err != nil {
		return err
	}
	t.mu.Lock()
	t.month = month
	t.mu.Unlock()

	t.persistState(ctx)
	return nil
}

// ShiftSelectedMonth moves the month filter by offset months and returns the new month.
func (t *Tracker) ShiftSelectedMonth(ctx context.Context, offset int) (string, error) {
	month, err := aggregate.ShiftMonth(t.SelectedMonth(), offset)
	if err != nil {
		return "", err
	}
	return month, t.SetSelectedMonth(ctx, month)
}

// AddCategory registers name and reports whether it was new.
func (t *Tracker) AddCategory(ctx context.Context, name string) bool {
	t.mu.Lock()
	added := t.categories.Add(name)
	t.mu.Unlock()

	t.persistState(ctx)
	return added
}

func (t *Tracker) loadCategories(ctx context.Context) *category.Registry {
	logger := appcontext.LoggerFromContext(ctx)
	raw, ok, err := t.cache.Get(persistence.CategoriesKey)
	if err != nil || !ok {
		if err != nil {
			logger.WarnContext(ctx, "Failed to read categories, using defaults", "error", err)
		}
		return category.NewRegistry()
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		logger.WarnContext(ctx, "Ignoring malformed cached categories", "error", err)
		return category.NewRegistry()
	}
	return category.NewRegistry(names...)
}

func (t *Tracker) loadSelectedMonth(ctx context.Context) string {
	raw, ok, err := t.cache.Get(persistence.SelectedMonthKey)
	if err == nil && ok {
		if _, err := aggregate.ParseMonth(raw); err == nil {
			return raw
		}
	}
	month := aggregate.MonthKey(t.now())
	appcontext.LoggerFromContext(ctx).DebugContext(ctx, "Selected month not cached, using current month", "month", month)
	return month
}

// persistState writes the categories and the month filter to the cache. Failures are
// logged; the mutation that triggered the write has already happened.
func (t *Tracker) persistState(ctx context.Context) {
	logger := appcontext.LoggerFromContext(ctx)

	t.mu.RLock()
	names := t.categories.Names()
	month := t.month
	t.mu.RUnlock()

	data, err := json.Marshal(names)
	if err == nil {
		err = t.cache.Set(persistence.CategoriesKey, string(data))
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to persist categories", "error", err)
	}
	if err := t.cache.Set(persistence.SelectedMonthKey, month); err != nil {
		logger.WarnContext(ctx, "Failed to persist selected month", "error", err)
	}
}

func (t *Tracker) registerCategory(tx model.Transaction) {
	if tx.Type != model.Expense {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.categories.Add(tx.Category)
}
