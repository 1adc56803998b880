package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbita-hub/orbita-learning-hub/internal/domain/xp"
)

func TestGetProfile(t *testing.T) {
	now := time.Now().UTC()
	aggregates := &fakeAggregates{rows: []xp.Aggregate{
		{UserID: "user-1", Name: "Ana", Avatar: "a.png", XP: 300, XPMonthly: 120, Level: 3},
	}}
	ledger := &fakeLedger{events: []xp.Event{
		{ID: "e1", UserID: "user-1", Source: xp.SourceLesson, Amount: 10, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "e2", UserID: "user-1", Source: xp.SourceQuiz, Amount: 20, CreatedAt: now.Add(-time.Hour)},
		{ID: "e3", UserID: "other", Source: xp.SourceQuiz, Amount: 99, CreatedAt: now},
	}}
	handler := NewGetProfileHandler(aggregates, ledger)

	result, err := handler.Handle(context.Background(), GetProfileQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, "Ana", result.Name)
	assert.Equal(t, 300, result.XP)
	assert.Equal(t, 120, result.XPMonthly)
	assert.Equal(t, xp.Level(3), result.Level)
	// Level 4 starts at 500 lifetime XP.
	assert.Equal(t, 500, result.NextLevelAt)

	// Newest first, only this user's events.
	require.Len(t, result.RecentEvents, 2)
	assert.Equal(t, "e2", result.RecentEvents[0].ID)
	assert.Equal(t, "e1", result.RecentEvents[1].ID)
}

func TestGetProfile_RecentLimit(t *testing.T) {
	now := time.Now().UTC()
	events := make([]xp.Event, 0, 15)
	for i := 0; i < 15; i++ {
		events = append(events, xp.Event{
			ID: "e", UserID: "user-1", Source: xp.SourceLesson, Amount: 1,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	aggregates := &fakeAggregates{rows: []xp.Aggregate{{UserID: "user-1", Level: 1}}}
	handler := NewGetProfileHandler(aggregates, &fakeLedger{events: events})

	// Default limit is 10.
	result, err := handler.Handle(context.Background(), GetProfileQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, result.RecentEvents, 10)

	result, err = handler.Handle(context.Background(), GetProfileQuery{UserID: "user-1", RecentLimit: 3})
	require.NoError(t, err)
	assert.Len(t, result.RecentEvents, 3)
}

func TestGetProfile_TopOfTable(t *testing.T) {
	aggregates := &fakeAggregates{rows: []xp.Aggregate{
		{UserID: "user-1", XP: 25000, Level: xp.MaxLevel},
	}}
	handler := NewGetProfileHandler(aggregates, &fakeLedger{})

	result, err := handler.Handle(context.Background(), GetProfileQuery{UserID: "user-1"})
	require.NoError(t, err)
	// No next level beyond the table.
	assert.Zero(t, result.NextLevelAt)
}

func TestGetProfile_UnknownUser(t *testing.T) {
	handler := NewGetProfileHandler(&fakeAggregates{}, &fakeLedger{})

	_, err := handler.Handle(context.Background(), GetProfileQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, xp.ErrUserNotFound)
}

func TestGetProfile_EmptyUserID(t *testing.T) {
	handler := NewGetProfileHandler(&fakeAggregates{}, &fakeLedger{})

	_, err := handler.Handle(context.Background(), GetProfileQuery{})
	assert.ErrorIs(t, err, xp.ErrInvalidUserID)
}
