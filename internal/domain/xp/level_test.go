package xp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor_Thresholds(t *testing.T) {
	assert.Equal(t, Level(1), LevelFor(0))
	assert.Equal(t, Level(1), LevelFor(99))
	assert.Equal(t, Level(2), LevelFor(100))
	assert.Equal(t, Level(2), LevelFor(249))
	assert.Equal(t, Level(3), LevelFor(250))
	assert.Equal(t, Level(4), LevelFor(500))
	assert.Equal(t, Level(5), LevelFor(1000))
	assert.Equal(t, Level(12), LevelFor(20000))
	assert.Equal(t, MaxLevel, LevelFor(1_000_000))
}

func TestLevelFor_NegativeClampsToOne(t *testing.T) {
	assert.Equal(t, Level(1), LevelFor(-1))
	assert.Equal(t, Level(1), LevelFor(-20000))
}

func TestLevelFor_Monotonic(t *testing.T) {
	prev := LevelFor(0)
	for xp := 1; xp <= 25000; xp++ {
		cur := LevelFor(xp)
		assert.GreaterOrEqual(t, cur, prev, "level dropped at xp=%d", xp)
		prev = cur
	}
}

func TestThresholdFor(t *testing.T) {
	assert.Equal(t, 0, ThresholdFor(1))
	assert.Equal(t, 100, ThresholdFor(2))
	assert.Equal(t, 20000, ThresholdFor(12))

	// Outside the table.
	assert.Equal(t, 0, ThresholdFor(0))
	assert.Equal(t, 0, ThresholdFor(13))
}

func TestThresholdFor_RoundTrips(t *testing.T) {
	// Exactly at a threshold you are at that level.
	for level := Level(1); level <= MaxLevel; level++ {
		assert.Equal(t, level, LevelFor(ThresholdFor(level)))
	}
}
