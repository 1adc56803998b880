package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindow(t *testing.T) {
	from, to := MonthWindow(2026, time.January)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), to)

	// December rolls into the next year.
	from, to = MonthWindow(2026, time.December)
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestCurrentAndPreviousMonth(t *testing.T) {
	now := time.Date(2026, time.March, 15, 8, 0, 0, 0, time.UTC)

	y, m := CurrentMonth(now)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.March, m)

	y, m = PreviousMonth(now)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.February, m)

	// January's previous month is December of the prior year.
	y, m = PreviousMonth(time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.December, m)
}

func TestCurrentMonth_ConvertsToUTC(t *testing.T) {
	// 23:30 on Jan 31 in UTC-3 is already February in UTC.
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2026, time.January, 31, 23, 30, 0, 0, loc)

	y, m := CurrentMonth(now)
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.February, m)
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2026, time.May, 31, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameMonth(a, b))
	assert.False(t, SameMonth(b, c))
}

func TestStartOfNextMonth(t *testing.T) {
	now := time.Date(2026, time.December, 20, 13, 45, 0, 0, time.UTC)
	assert.Equal(t,
		time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		StartOfNextMonth(now),
	)
}
