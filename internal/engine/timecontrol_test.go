package engine

import (
	"testing"
	"time"

	"github.com/RenWild/marvin-chess/internal/board"
)

func TestTimeModeSelection(t *testing.T) {
	cases := []struct {
		limits Limits
		want   TimeMode
	}{
		{Limits{Infinite: true}, ModeInfinite},
		{Limits{}, ModeInfinite},
		{Limits{MoveTime: time.Second}, ModeFixedTime},
		{Limits{Time: [2]time.Duration{time.Minute, time.Minute}}, ModeSuddenDeath},
		{Limits{Time: [2]time.Duration{time.Minute, time.Minute}, Inc: [2]time.Duration{time.Second, time.Second}}, ModeFischer},
		{Limits{Time: [2]time.Duration{time.Minute, time.Minute}, MovesToGo: 40}, ModeTournament},
	}
	for i, tc := range cases {
		if got := tc.limits.Mode(board.White); got != tc.want {
			t.Errorf("case %d: mode = %v, want %v", i, got, tc.want)
		}
	}
}

func TestFixedTimeBudget(t *testing.T) {
	var tc TimeControl
	tc.Start(Limits{MoveTime: 100 * time.Millisecond}, board.White, 0)

	if tc.ideal != 100*time.Millisecond || tc.hard != 100*time.Millisecond {
		t.Errorf("fixed time budgets = (%v, %v), want both 100ms", tc.ideal, tc.hard)
	}
	if !tc.CheckTime() {
		t.Error("fresh search already over budget")
	}
}

func TestBudgetNeverExceedsRemainingClock(t *testing.T) {
	var tc TimeControl
	left := 2 * time.Second
	tc.Start(Limits{Time: [2]time.Duration{left, left}}, board.Black, 60)

	if tc.hard > left {
		t.Errorf("hard budget %v exceeds remaining clock %v", tc.hard, left)
	}
	if tc.ideal > tc.hard {
		t.Errorf("ideal %v exceeds hard %v", tc.ideal, tc.hard)
	}
}

func TestInfiniteAllowsIterations(t *testing.T) {
	var tc TimeControl
	tc.Start(Limits{Infinite: true}, board.White, 0)

	if !tc.NewIteration() || !tc.CheckTime() {
		t.Error("infinite mode must never gate the search")
	}
}
