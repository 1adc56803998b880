package xp

// Level is the rank derived from lifetime XP. Levels start at 1.
type Level int

// levelThresholds maps a level to the minimum lifetime XP required for it.
// The table is strictly increasing, which makes LevelFor monotonic.
//
// This is the single copy of the table. The award engine and every sync or
// batch tool must call LevelFor rather than carrying their own thresholds:
// divergent copies are how stored levels drift from stored XP.
var levelThresholds = []int{
	0,     // level 1
	100,   // level 2
	250,   // level 3
	500,   // level 4
	1000,  // level 5
	2000,  // level 6
	3500,  // level 7
	5500,  // level 8
	8000,  // level 9
	11000, // level 10
	15000, // level 11
	20000, // level 12
}

// MaxLevel is the highest level the threshold table defines.
var MaxLevel = Level(len(levelThresholds))

// LevelFor returns the level for a lifetime XP total. Pure and monotonic
// non-decreasing. Negative input clamps to level 1.
func LevelFor(xp int) Level {
	if xp < 0 {
		return 1
	}

	level := Level(1)
	for i, threshold := range levelThresholds {
		if xp < threshold {
			break
		}
		level = Level(i + 1)
	}
	return level
}

// ThresholdFor returns the minimum lifetime XP for a level, or 0 for levels
// outside the table. Used by read surfaces to show progress to next level.
func ThresholdFor(level Level) int {
	if level < 1 || int(level) > len(levelThresholds) {
		return 0
	}
	return levelThresholds[level-1]
}
