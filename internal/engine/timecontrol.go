package engine

import (
	"time"

	"github.com/RenWild/marvin-chess/internal/board"
)

// TimeMode selects how the clock state maps to a per-move budget.
type TimeMode int

const (
	ModeInfinite TimeMode = iota
	ModeFixedTime
	ModeSuddenDeath
	ModeFischer
	ModeTournament
)

// Limits carries the external constraints of one search.
type Limits struct {
	Time        [2]time.Duration // remaining clock per side
	Inc         [2]time.Duration // increment per move
	MovesToGo   int              // moves until the next time control
	MoveTime    time.Duration    // fixed time per move
	Depth       int              // maximum depth, 0 = unlimited
	Infinite    bool
	Ponder      bool
	SearchMoves []board.Move // restrict the root move set
}

// Mode derives the time control mode from the limits.
func (l *Limits) Mode(us board.Color) TimeMode {
	switch {
	case l.Infinite || (l.MoveTime == 0 && l.Time[us] == 0):
		return ModeInfinite
	case l.MoveTime > 0:
		return ModeFixedTime
	case l.MovesToGo > 0:
		return ModeTournament
	case l.Inc[us] > 0:
		return ModeFischer
	default:
		return ModeSuddenDeath
	}
}

// TimeControl budgets wall clock time for one move: an ideal budget that
// gates new iterations and a hard budget that stops the search outright.
type TimeControl struct {
	mode  TimeMode
	start time.Time
	ideal time.Duration
	hard  time.Duration
}

// Start computes the budgets for the move about to be searched. ply is
// the game ply, used to guess the remaining game length in sudden death.
func (tc *TimeControl) Start(limits Limits, us board.Color, ply int) {
	tc.start = time.Now()
	tc.mode = limits.Mode(us)

	switch tc.mode {
	case ModeInfinite:
		tc.ideal = time.Hour * 24
		tc.hard = time.Hour * 24
		return
	case ModeFixedTime:
		tc.ideal = limits.MoveTime
		tc.hard = limits.MoveTime
		return
	}

	left := limits.Time[us]
	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death and Fischer: assume the game lasts a while
		// longer, tapering as it goes on.
		mtg = clamp(45-ply/4, 12, 45)
	}

	base := left / time.Duration(mtg)
	if tc.mode == ModeFischer {
		base += limits.Inc[us] * 9 / 10
	}
	tc.ideal = base

	tc.hard = tc.ideal * 5
	if ceiling := left * 8 / 10; tc.hard > ceiling {
		tc.hard = ceiling
	}
	if tc.ideal > tc.hard {
		tc.ideal = tc.hard
	}
	if tc.ideal < 5*time.Millisecond {
		tc.ideal = 5 * time.Millisecond
	}
	if tc.hard < 10*time.Millisecond {
		tc.hard = 10 * time.Millisecond
	}
}

// Elapsed returns the wall clock time since the search started.
func (tc *TimeControl) Elapsed() time.Duration {
	return time.Since(tc.start)
}

// NewIteration reports whether enough budget remains to make starting
// another depth worthwhile.
func (tc *TimeControl) NewIteration() bool {
	switch tc.mode {
	case ModeInfinite:
		return true
	case ModeFixedTime:
		return tc.Elapsed() < tc.ideal
	default:
		// A new iteration costs several times the previous one; do not
		// start one that cannot finish.
		return tc.Elapsed() < tc.ideal/2
	}
}

// CheckTime reports whether the search is still within its hard budget.
func (tc *TimeControl) CheckTime() bool {
	return tc.Elapsed() < tc.hard
}
