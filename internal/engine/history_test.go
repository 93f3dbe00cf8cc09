package engine

import (
	"testing"

	"github.com/RenWild/marvin-chess/internal/board"
)

func TestHistoryHalvingOnOverflow(t *testing.T) {
	var ot OrderTables
	m := board.NewMove(board.E2, board.E4)
	other := board.NewMove(board.D2, board.D4)

	for i := 0; i < 3; i++ {
		ot.history[board.White][other.From()][other.To()] = MaxHistoryScore / 2
		ot.history[board.White][m.From()][m.To()] = MaxHistoryScore - 1

		ot.UpdateHistory(board.White, nil, m, 10)

		for from := 0; from < 64; from++ {
			for to := 0; to < 64; to++ {
				if s := ot.history[board.White][from][to]; s > MaxHistoryScore || s < -MaxHistoryScore {
					t.Fatalf("cell [%d][%d] = %d beyond cap after update", from, to, s)
				}
			}
		}
		// The whole table was halved, bystanders included.
		if s := ot.history[board.White][other.From()][other.To()]; s != MaxHistoryScore/4 {
			t.Fatalf("bystander cell = %d, want %d", s, MaxHistoryScore/4)
		}
	}
}

func TestHistoryRewardAndMalus(t *testing.T) {
	var ot OrderTables
	cutoff := board.NewMove(board.E2, board.E4)
	tried := []board.Move{
		board.NewMove(board.D2, board.D4),
		board.NewMove(board.C2, board.C4),
		cutoff,
	}

	ot.UpdateHistory(board.White, tried, cutoff, 5)

	if got := ot.HistoryScore(board.White, cutoff); got != 5 {
		t.Errorf("cutoff move history = %d, want 5", got)
	}
	for _, m := range tried[:2] {
		if got := ot.HistoryScore(board.White, m); got != -5 {
			t.Errorf("tried move %s history = %d, want -5", m, got)
		}
	}
}

func TestKillersAreQuietAndRecent(t *testing.T) {
	var ot OrderTables
	k1 := board.NewMove(board.G1, board.F3)
	k2 := board.NewMove(board.B1, board.C3)
	capture := board.NewCapture(board.E4, board.D5)

	ot.AddKiller(3, capture)
	if ot.killers[3][0] != board.NoMove {
		t.Error("capture stored as killer")
	}

	ot.AddKiller(3, k1)
	ot.AddKiller(3, k2)
	if ot.killers[3][0] != k2 || ot.killers[3][1] != k1 {
		t.Errorf("killers = [%s %s], want [%s %s]", ot.killers[3][0], ot.killers[3][1], k2, k1)
	}

	// Re-adding the most recent killer must not duplicate it.
	ot.AddKiller(3, k2)
	if ot.killers[3][0] != k2 || ot.killers[3][1] != k1 {
		t.Error("re-adding the top killer displaced the second slot")
	}
}

func TestCounterMoves(t *testing.T) {
	var ot OrderTables
	prev := board.NewMove(board.E7, board.E5)
	reply := board.NewMove(board.G1, board.F3)

	ot.AddCounter(board.White, prev, reply)
	if got := ot.Counter(board.White, prev); got != reply {
		t.Errorf("counter = %s, want %s", got, reply)
	}
	if got := ot.Counter(board.White, board.NoMove); got != board.NoMove {
		t.Errorf("counter for no previous move = %s, want none", got)
	}

	// Tactical refutations are not recorded.
	ot.AddCounter(board.White, prev, board.NewCapture(board.F3, board.E5))
	if got := ot.Counter(board.White, prev); got != reply {
		t.Error("capture overwrote the stored counter move")
	}
}
