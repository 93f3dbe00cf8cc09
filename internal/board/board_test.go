package board

import "testing"

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/4R3/4K3 w - - 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
	}
	for _, fen := range fens {
		p, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := p.FEN(); got != fen {
			t.Errorf("round trip %q -> %q", fen, got)
		}
	}
}

func TestFENRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		"9/8/8/8/8/8/8/8 w - - 0 1",
		"8/8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); err == nil {
			t.Errorf("ParseFEN(%q) accepted invalid input", fen)
		}
	}
}

func TestRepetitionDetection(t *testing.T) {
	p, err := ParseFEN("4k3/8/8/8/8/8/4R3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	// The black king starts in check, so the start position cannot recur;
	// the position after the rook's first move recurs instead.
	shuffle := []string{"e2d2", "e8f8", "d2c2", "f8e8", "c2d2"}
	for _, s := range shuffle {
		m, err := p.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		if !p.MakeMove(m) {
			t.Fatalf("move %s rejected", s)
		}
	}
	if !p.IsRepetition() {
		t.Error("position repeated after rook and king shuffle, not detected")
	}

	p.UnmakeMove()
	if p.IsRepetition() {
		t.Error("repetition reported one ply early")
	}
}

func TestNullMoveRoundTrip(t *testing.T) {
	p, err := ParseFEN("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2")
	if err != nil {
		t.Fatal(err)
	}
	key, fen := p.Key, p.FEN()
	p.MakeNullMove()
	if p.SideToMove != Black {
		t.Error("null move did not flip side to move")
	}
	if p.EnPassant != NoSquare {
		t.Error("null move must clear the en passant square")
	}
	if p.Key == key {
		t.Error("null move must change the hash key")
	}
	p.UnmakeNullMove()
	if p.Key != key || p.FEN() != fen {
		t.Errorf("null move round trip broke state: %s", p.FEN())
	}
}

func TestGivesCheck(t *testing.T) {
	cases := []struct {
		fen   string
		move  string
		check bool
	}{
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "a1a8", true},
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "a1b1", false},
		// Discovered check: the bishop opens the rook's file.
		{"4k3/8/8/8/8/4B3/8/4R1K1 w - - 0 1", "e3c5", true},
		// Promotion with check.
		{"6k1/4P3/8/8/8/8/8/4K3 w - - 0 1", "e7e8q", true},
		{"6k1/4P3/8/8/8/8/8/4K3 w - - 0 1", "e7e8n", false},
	}
	for _, tc := range cases {
		p, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		m, err := p.ParseMove(tc.move)
		if err != nil {
			t.Fatalf("%s in %s: %v", tc.move, tc.fen, err)
		}
		if got := p.GivesCheck(m); got != tc.check {
			t.Errorf("GivesCheck(%s) in %s = %v, want %v", tc.move, tc.fen, got, tc.check)
		}
	}
}

func TestIsPseudoLegalRejectsForeignMoves(t *testing.T) {
	p := NewPosition()
	var ml MoveList
	p.GenMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		if !p.IsPseudoLegal(ml.Get(i)) {
			t.Errorf("generated move %s not pseudo-legal", ml.Get(i))
		}
	}

	// Moves recalled from another position must be rejected.
	foreign := []Move{
		NewMove(E4, E5),
		NewCapture(D2, D4),
		NewCastle(E1, G1),
		NewEnPassant(E5, D6),
	}
	for _, m := range foreign {
		if p.IsPseudoLegal(m) {
			t.Errorf("foreign move %s accepted in start position", m)
		}
	}
}

func TestSeeExchanges(t *testing.T) {
	cases := []struct {
		fen  string
		move string
		want int
	}{
		// Free pawn.
		{"4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4d5", 100},
		// Defended pawn taken by a rook loses the exchange.
		{"4k3/8/4p3/3p4/8/8/3R4/4K3 w - - 0 1", "d2d5", 100 - 500},
		// Undefended knight.
		{"4k3/8/8/3n4/8/4N3/8/4K3 w - - 0 1", "e3d5", 325},
	}
	for _, tc := range cases {
		p, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatal(err)
		}
		m, err := p.ParseMove(tc.move)
		if err != nil {
			t.Fatal(err)
		}
		if got := p.See(m); got != tc.want {
			t.Errorf("See(%s) in %s = %d, want %d", tc.move, tc.fen, got, tc.want)
		}
		if !p.SeeGE(m, tc.want) || p.SeeGE(m, tc.want+1) {
			t.Errorf("SeeGE inconsistent with See for %s", tc.move)
		}
	}
}
