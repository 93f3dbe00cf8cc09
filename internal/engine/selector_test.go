package engine

import (
	"testing"

	"github.com/RenWild/marvin-chess/internal/board"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func collectMoves(mp *MovePicker) []board.Move {
	var moves []board.Move
	for {
		m := mp.Next()
		if m == board.NoMove {
			return moves
		}
		moves = append(moves, m)
	}
}

func TestPickerYieldsEachMoveOnce(t *testing.T) {
	pos, err := board.ParseFEN(kiwipete)
	if err != nil {
		t.Fatal(err)
	}

	var ot OrderTables
	ttMove := board.NewMove(board.E2, board.D3)
	ot.AddKiller(0, board.NewMove(board.A2, board.A3))
	ot.AddKiller(0, board.NewMove(board.G2, board.G3))
	ot.UpdateHistory(board.White, nil, board.NewMove(board.A1, board.D1), 6)

	var mp MovePicker
	mp.Init(pos, &ot, 0, board.NoMove, false, pos.InCheck())
	mp.SetTTMove(ttMove)

	moves := collectMoves(&mp)

	seen := make(map[board.Move]bool)
	for _, m := range moves {
		if seen[m] {
			t.Fatalf("move %s yielded twice", m)
		}
		seen[m] = true
		if !pos.IsPseudoLegal(m) {
			t.Fatalf("move %s not pseudo-legal", m)
		}
	}

	var pseudo board.MoveList
	pos.GenMoves(&pseudo)
	if len(moves) != pseudo.Len() {
		t.Fatalf("picker yielded %d moves, generator has %d", len(moves), pseudo.Len())
	}

	if moves[0] != ttMove {
		t.Errorf("first move = %s, want hash move %s", moves[0], ttMove)
	}
}

func TestPickerPhaseOrder(t *testing.T) {
	// A position with winning, equal and losing captures available.
	pos, err := board.ParseFEN(kiwipete)
	if err != nil {
		t.Fatal(err)
	}

	var ot OrderTables
	killer := board.NewMove(board.A2, board.A3)
	ot.AddKiller(0, killer)

	var mp MovePicker
	mp.Init(pos, &ot, 0, board.NoMove, false, false)

	moves := collectMoves(&mp)

	killerIdx, lastGoodCap, firstQuiet := -1, -1, -1
	for i, m := range moves {
		if m == killer {
			killerIdx = i
		}
		if m.IsCapture() && pos.See(m) >= 0 && i > lastGoodCap {
			lastGoodCap = i
		}
		if !m.IsTactical() && m != killer && firstQuiet < 0 {
			firstQuiet = i
		}
	}

	if killerIdx < 0 {
		t.Fatal("killer never yielded")
	}
	if lastGoodCap >= 0 && killerIdx < lastGoodCap {
		t.Errorf("killer at %d before last good capture at %d", killerIdx, lastGoodCap)
	}
	if firstQuiet >= 0 && killerIdx > firstQuiet {
		t.Errorf("killer at %d after first plain quiet at %d", killerIdx, firstQuiet)
	}
}

func TestPickerQuiescenceEmitsOnlyTactical(t *testing.T) {
	pos, err := board.ParseFEN(kiwipete)
	if err != nil {
		t.Fatal(err)
	}

	var ot OrderTables
	var mp MovePicker
	mp.Init(pos, &ot, 0, board.NoMove, true, false)

	for _, m := range collectMoves(&mp) {
		if !m.IsTactical() {
			t.Errorf("quiescence picker yielded quiet move %s", m)
		}
	}
}

func TestPickerInCheckQuiescenceYieldsEvasions(t *testing.T) {
	// King in check: every pseudo-legal move is an evasion candidate.
	pos, err := board.ParseFEN("rnbqkbnr/ppp1pppp/8/1B1p4/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !pos.InCheck() {
		t.Fatal("test position should be check")
	}

	var ot OrderTables
	var mp MovePicker
	mp.Init(pos, &ot, 0, board.NoMove, true, true)

	moves := collectMoves(&mp)
	var pseudo board.MoveList
	pos.GenMoves(&pseudo)
	if len(moves) != pseudo.Len() {
		t.Errorf("in-check quiescence yielded %d moves, want all %d", len(moves), pseudo.Len())
	}
}
