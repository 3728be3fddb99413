package models

// Level is the display tier a provider earns from certification points.
type Level string

const (
	LevelBronze   Level = "bronze"
	LevelSilver   Level = "silver"
	LevelGold     Level = "gold"
	LevelPlatinum Level = "platinum"
	LevelDiamond  Level = "diamond"
)

// LevelThreshold is the minimum point balance for a level.
type LevelThreshold struct {
	MinPoints int
	Level     Level
}

// LevelThresholds is ordered from the highest threshold down; the first match wins.
// The Mongo counter pipeline builds its $switch from this table too.
var LevelThresholds = []LevelThreshold{
	{MinPoints: 500, Level: LevelDiamond},
	{MinPoints: 300, Level: LevelPlatinum},
	{MinPoints: 150, Level: LevelGold},
	{MinPoints: 50, Level: LevelSilver},
}

// CalculatedLevel derives the level for a point balance.
func CalculatedLevel(points int) Level {
	for _, t := range LevelThresholds {
		if points >= t.MinPoints {
			return t.Level
		}
	}
	return LevelBronze
}

// Rank orders levels, bronze being 0.
func (l Level) Rank() int {
	switch l {
	case LevelSilver:
		return 1
	case LevelGold:
		return 2
	case LevelPlatinum:
		return 3
	case LevelDiamond:
		return 4
	default:
		return 0
	}
}

func (l Level) Valid() bool {
	switch l {
	case LevelBronze, LevelSilver, LevelGold, LevelPlatinum, LevelDiamond:
		return true
	}
	return false
}

// MinPoints is the smallest balance that earns l.
func (l Level) MinPoints() int {
	for _, t := range LevelThresholds {
		if t.Level == l {
			return t.MinPoints
		}
	}
	return 0
}
