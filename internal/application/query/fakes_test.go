package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/community"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

var errStore = errors.New("store down")

// ──────────────────────────────────────────────────────────────────────────────
// aggregate fake (read side only)
// ──────────────────────────────────────────────────────────────────────────────

type fakeAggregates struct {
	rows     []xp.Aggregate
	failList bool
	listCnt  int
}

func (f *fakeAggregates) Get(_ context.Context, userID string) (*xp.Aggregate, error) {
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			return f.rows[i].Clone(), nil
		}
	}
	return nil, xp.ErrUserNotFound
}

func (f *fakeAggregates) Increment(_ context.Context, _ string, _ int) (*xp.Aggregate, error) {
	return nil, errStore
}

func (f *fakeAggregates) SetLevel(_ context.Context, _ string, _ xp.Level) error { return errStore }

func (f *fakeAggregates) SetMonthlyXP(_ context.Context, _ string, _ int) error { return errStore }

func (f *fakeAggregates) List(_ context.Context) ([]xp.Aggregate, error) {
	f.listCnt++
	if f.failList {
		return nil, errStore
	}
	out := make([]xp.Aggregate, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeAggregates) ListUserIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.rows))
	for _, a := range f.rows {
		ids = append(ids, a.UserID)
	}
	sort.Strings(ids)
	return ids, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// ledger fake (read side only)
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	events []xp.Event
}

func (f *fakeLedger) Append(_ context.Context, _ *xp.Event) error { return errStore }

func (f *fakeLedger) ListByUser(_ context.Context, userID string) ([]xp.Event, error) {
	out := make([]xp.Event, 0)
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]xp.Event, error) {
	all, _ := f.ListByUser(ctx, userID)
	out := make([]xp.Event, 0)
	for _, e := range all {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListRecentByUser(ctx context.Context, userID string, limit int) ([]xp.Event, error) {
	all, _ := f.ListByUser(ctx, userID)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// cache fake
// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	entries  map[ranking.Type][]ranking.Entry
	cachedAt time.Time

	failGet bool
	failSet bool
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[ranking.Type][]ranking.Entry)}
}

func (f *fakeCache) Get(_ context.Context, t ranking.Type) ([]ranking.Entry, time.Time, bool, error) {
	if f.failGet {
		return nil, time.Time{}, false, errStore
	}
	entries, ok := f.entries[t]
	if !ok {
		return nil, time.Time{}, false, nil
	}
	return entries, f.cachedAt, true, nil
}

func (f *fakeCache) Set(_ context.Context, t ranking.Type, entries []ranking.Entry) error {
	f.sets++
	if f.failSet {
		return errStore
	}
	f.entries[t] = entries
	if f.cachedAt.IsZero() {
		f.cachedAt = time.Now().UTC()
	}
	return nil
}

func (f *fakeCache) InvalidateAll(_ context.Context) error {
	f.entries = make(map[ranking.Type][]ranking.Entry)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// community fake
// ──────────────────────────────────────────────────────────────────────────────

type fakeQuestions struct {
	questions []community.Question
	votes     []community.VoteCount
	failList  bool
}

func (f *fakeQuestions) ListQuestions(_ context.Context) ([]community.Question, error) {
	if f.failList {
		return nil, errStore
	}
	return f.questions, nil
}

func (f *fakeQuestions) CountVotes(_ context.Context) ([]community.VoteCount, error) {
	if f.failList {
		return nil, errStore
	}
	return f.votes, nil
}
