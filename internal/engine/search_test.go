package engine

import (
	"testing"

	"github.com/RenWild/marvin-chess/internal/board"
	"github.com/RenWild/marvin-chess/internal/tablebase"
)

// newTestWorker builds a single worker searching the given position with
// an infinite clock and a fresh table.
func newTestWorker(t *testing.T, fen string) *Worker {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}

	tt := NewTransTable(8)
	tc := &TimeControl{}
	tc.Start(Limits{Infinite: true}, pos.SideToMove, 0)

	state := newGameState(tt, tc, tablebase.None{})
	state.Root = pos
	state.RootMoves = *pos.LegalMoves()

	w := NewWorker(0, tt)
	w.prepare(state)
	return w
}

func searchFixedDepth(t *testing.T, fen string, depth int) (int, []board.Move) {
	t.Helper()
	eng := New(Options{HashMB: 8, Threads: 1})
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatal(err)
	}

	var last SearchInfo
	eng.OnInfo(func(info SearchInfo) { last = info })

	if _, err := eng.Search(pos, Limits{Depth: depth}); err != nil {
		t.Fatal(err)
	}
	return last.Score, last.PV
}

func TestStartPositionIsBalanced(t *testing.T) {
	score, pv := searchFixedDepth(t, board.StartFEN, 8)

	if score < -50 || score > 50 {
		t.Errorf("start position score = %d, want within [-50, 50]", score)
	}

	if len(pv) == 0 {
		t.Fatal("no PV returned")
	}
	best := pv[0].String()
	switch best {
	case "e2e4", "d2d4", "c2c4", "g1f3":
	default:
		t.Errorf("best move %s not a mainstream opening move", best)
	}
}

func TestBackRankMate(t *testing.T) {
	score, pv := searchFixedDepth(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", 8)

	if score < Checkmate-4 {
		t.Fatalf("score = %d, want a short mate (>= %d)", score, Checkmate-4)
	}

	// The PV must be a legal line ending in checkmate.
	pos, _ := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	for _, m := range pv {
		if !pos.MakeMove(m) {
			t.Fatalf("PV move %s is illegal", m)
		}
	}
	if pos.HasLegalMove() || !pos.InCheck() {
		t.Error("PV does not end in checkmate")
	}
}

func TestStalemateScoresZero(t *testing.T) {
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if pos.LegalMoves().Len() != 0 {
		t.Fatal("position should be stalemate")
	}

	w := newTestWorker(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	for depth := 1; depth <= 4; depth++ {
		score, st := w.search(depth, 1, -Infinite, Infinite, true)
		if st != statusOK || score != 0 {
			t.Errorf("depth %d: stalemate score = %d, want 0", depth, score)
		}
	}
}

func TestRepetitionScoresZero(t *testing.T) {
	w := newTestWorker(t, "4k3/8/8/8/8/8/4R3/4K3 w - - 0 1")

	// Shuffle so the position after the rook's first move recurs once.
	for _, s := range []string{"e2d2", "e8f8", "d2c2", "f8e8", "c2d2"} {
		m, err := w.pos.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		w.pos.MakeMove(m)
	}

	// White is a rook up, yet the repeated position is a draw right now.
	score, st := w.search(4, 1, -Infinite, Infinite, true)
	if st != statusOK || score != 0 {
		t.Errorf("repeated position score = %d, want 0", score)
	}
}

func TestZugzwangNullMoveSafety(t *testing.T) {
	const fen = "6k1/6p1/6K1/8/8/8/8/5Q2 w - - 0 1"

	w := newTestWorker(t, fen)
	withNull, st := w.search(10, 1, -Infinite, Infinite, true)
	if st != statusOK {
		t.Fatal("search stopped unexpectedly")
	}

	w2 := newTestWorker(t, fen)
	withoutNull, st := w2.search(10, 1, -Infinite, Infinite, false)
	if st != statusOK {
		t.Fatal("search stopped unexpectedly")
	}

	if withNull < ForcedMate {
		t.Errorf("null-move search missed the mate: score %d", withNull)
	}
	if withoutNull < ForcedMate {
		t.Errorf("plain search missed the mate: score %d", withoutNull)
	}
	if withNull != withoutNull {
		t.Errorf("null move changed the mate score: %d vs %d", withNull, withoutNull)
	}
}

func TestFiftyMoveBoundary(t *testing.T) {
	w := newTestWorker(t, "4k3/8/8/8/8/8/4R3/4K3 w - - 99 1")

	m, err := w.pos.ParseMove("e2d2")
	if err != nil {
		t.Fatal(err)
	}
	w.pos.MakeMove(m)

	score, st := w.search(6, 1, -Infinite, Infinite, true)
	if st != statusOK || score != 0 {
		t.Errorf("position at the fifty-move boundary scored %d, want 0", score)
	}
}

func TestMateScoreMonotonicity(t *testing.T) {
	mateIn1, _ := searchFixedDepth(t, "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", 6)
	mateIn2, _ := searchFixedDepth(t, "k7/8/8/1K6/8/8/6R1/8 w - - 0 1", 8)

	if mateIn1 <= mateIn2 {
		t.Errorf("mate in 1 (%d) must outscore mate in 2 (%d)", mateIn1, mateIn2)
	}
	if mateIn2 < ForcedMate {
		t.Errorf("mate in 2 not found: score %d", mateIn2)
	}
}

func TestSingleWorkerDeterminism(t *testing.T) {
	const fen = kiwipete
	score1, pv1 := searchFixedDepth(t, fen, 6)
	score2, pv2 := searchFixedDepth(t, fen, 6)

	if score1 != score2 {
		t.Errorf("scores differ across runs: %d vs %d", score1, score2)
	}
	if len(pv1) != len(pv2) {
		t.Fatalf("PV lengths differ: %d vs %d", len(pv1), len(pv2))
	}
	for i := range pv1 {
		if pv1[i] != pv2[i] {
			t.Errorf("PV diverges at %d: %s vs %s", i, pv1[i], pv2[i])
		}
	}
}

func TestStopUnwindLeavesBoardAtRoot(t *testing.T) {
	w := newTestWorker(t, kiwipete)
	key := w.pos.Key

	w.state.stopAll(true)
	_, st := w.search(12, 1, -Infinite, Infinite, true)
	if st != statusStopped {
		t.Fatal("search ignored the stop request")
	}
	if w.pos.Key != key {
		t.Error("stop unwind left moves on the board")
	}
}

func TestQuiescenceTerminates(t *testing.T) {
	// A wild tactical position with long capture chains.
	w := newTestWorker(t, kiwipete)
	score, st := w.qsearch(0, 0, -Infinite, Infinite)
	if st != statusOK {
		t.Fatal("quiescence stopped unexpectedly")
	}
	if score <= -Infinite || score >= Infinite {
		t.Errorf("quiescence score %d outside the score range", score)
	}
}

func TestPVIsLegal(t *testing.T) {
	_, pv := searchFixedDepth(t, kiwipete, 7)
	if len(pv) == 0 {
		t.Fatal("empty PV")
	}

	pos, _ := board.ParseFEN(kiwipete)
	for _, m := range pv {
		if !pos.MakeMove(m) {
			t.Fatalf("PV move %s is illegal", m)
		}
	}
}

func TestSearchMovesRestriction(t *testing.T) {
	eng := New(Options{HashMB: 8, Threads: 1})
	pos := board.NewPosition()

	restrict, err := pos.ParseMove("a2a3")
	if err != nil {
		t.Fatal(err)
	}

	best, err := eng.Search(pos, Limits{Depth: 4, SearchMoves: []board.Move{restrict}})
	if err != nil {
		t.Fatal(err)
	}
	if best != restrict {
		t.Errorf("searchmoves ignored: got %s, want %s", best, restrict)
	}
}

func TestSMPSearchFindsReasonableMove(t *testing.T) {
	eng := New(Options{HashMB: 16, Threads: 4})
	pos := board.NewPosition()

	best, err := eng.Search(pos, Limits{Depth: 7})
	if err != nil {
		t.Fatal(err)
	}

	legal := pos.LegalMoves()
	if !legal.Contains(best) {
		t.Fatalf("SMP search returned illegal move %s", best)
	}
}
