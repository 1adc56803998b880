package command

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

// errStore is the injected infrastructure failure used across tests.
var errStore = errors.New("store down")

// ──────────────────────────────────────────────────────────────────────────────
// ledger fake
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	events     []xp.Event
	failAppend bool
	failList   bool
}

func (f *fakeLedger) Append(_ context.Context, event *xp.Event) error {
	if f.failAppend {
		return errStore
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]xp.Event, error) {
	if f.failList {
		return nil, errStore
	}
	out := make([]xp.Event, 0)
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]xp.Event, error) {
	all, err := f.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]xp.Event, 0)
	for _, e := range all {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListRecentByUser(ctx context.Context, userID string, limit int) ([]xp.Event, error) {
	all, err := f.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// aggregate fake
// ──────────────────────────────────────────────────────────────────────────────

type fakeAggregates struct {
	rows map[string]*xp.Aggregate

	failIncrement     bool
	failSetLevel      bool
	failSetMonthly    bool
	failSetMonthlyFor map[string]bool
	failList          bool
}

func newFakeAggregates(users ...string) *fakeAggregates {
	rows := make(map[string]*xp.Aggregate, len(users))
	for _, u := range users {
		rows[u] = &xp.Aggregate{UserID: u, Level: 1, UpdatedAt: time.Now().UTC()}
	}
	return &fakeAggregates{rows: rows}
}

func (f *fakeAggregates) Get(_ context.Context, userID string) (*xp.Aggregate, error) {
	row, ok := f.rows[userID]
	if !ok {
		return nil, xp.ErrUserNotFound
	}
	return row.Clone(), nil
}

func (f *fakeAggregates) Increment(_ context.Context, userID string, amount int) (*xp.Aggregate, error) {
	if f.failIncrement {
		return nil, errStore
	}
	row, ok := f.rows[userID]
	if !ok {
		return nil, xp.ErrUserNotFound
	}
	row.XP += amount
	row.XPMonthly += amount
	row.UpdatedAt = time.Now().UTC()
	return row.Clone(), nil
}

func (f *fakeAggregates) SetLevel(_ context.Context, userID string, level xp.Level) error {
	if f.failSetLevel {
		return errStore
	}
	row, ok := f.rows[userID]
	if !ok {
		return xp.ErrUserNotFound
	}
	row.Level = level
	return nil
}

func (f *fakeAggregates) SetMonthlyXP(_ context.Context, userID string, value int) error {
	if f.failSetMonthly || f.failSetMonthlyFor[userID] {
		return errStore
	}
	row, ok := f.rows[userID]
	if !ok {
		return xp.ErrUserNotFound
	}
	row.XPMonthly = value
	return nil
}

func (f *fakeAggregates) List(_ context.Context) ([]xp.Aggregate, error) {
	if f.failList {
		return nil, errStore
	}
	out := make([]xp.Aggregate, 0, len(f.rows))
	for _, id := range f.sortedIDs() {
		out = append(out, *f.rows[id])
	}
	return out, nil
}

func (f *fakeAggregates) ListUserIDs(_ context.Context) ([]string, error) {
	if f.failList {
		return nil, errStore
	}
	return f.sortedIDs(), nil
}

func (f *fakeAggregates) sortedIDs() []string {
	ids := make([]string, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ──────────────────────────────────────────────────────────────────────────────
// publisher fake
// ──────────────────────────────────────────────────────────────────────────────

type fakePublisher struct {
	published []shared.Event
}

func (f *fakePublisher) Publish(event shared.Event) {
	f.published = append(f.published, event)
}
