package models

import "testing"

func TestCalculatedLevelBoundaries(t *testing.T) {
	cases := []struct {
		points int
		want   Level
	}{
		{0, LevelBronze},
		{49, LevelBronze},
		{50, LevelSilver},
		{149, LevelSilver},
		{150, LevelGold},
		{299, LevelGold},
		{300, LevelPlatinum},
		{499, LevelPlatinum},
		{500, LevelDiamond},
		{10000, LevelDiamond},
	}
	for _, tc := range cases {
		if got := CalculatedLevel(tc.points); got != tc.want {
			t.Errorf("CalculatedLevel(%d) = %s, want %s", tc.points, got, tc.want)
		}
	}
}

func TestCalculatedLevelIsMonotonic(t *testing.T) {
	prev := CalculatedLevel(0).Rank()
	for p := 1; p <= 600; p++ {
		rank := CalculatedLevel(p).Rank()
		if rank < prev {
			t.Fatalf("level dropped at %d points", p)
		}
		prev = rank
	}
}

func TestLevelMinPointsMatchesThresholds(t *testing.T) {
	for _, l := range []Level{LevelBronze, LevelSilver, LevelGold, LevelPlatinum, LevelDiamond} {
		if got := CalculatedLevel(l.MinPoints()); got != l {
			t.Errorf("CalculatedLevel(%s.MinPoints()) = %s", l, got)
		}
	}
	if Level("wood").Valid() {
		t.Error("unknown level reported valid")
	}
}
