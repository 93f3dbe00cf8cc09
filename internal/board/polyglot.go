package board

// Polyglot-style hashing for the opening book. The keys are generated
// from a fixed-seed generator so that book files built with the matching
// tool remain stable across engine versions.

var (
	bookPiece [12][64]uint64
	bookCastle [4]uint64
	bookEpFile [8]uint64
	bookSide   uint64
)

func init() {
	rng := xorshift{state: 0x37B4A4B3F0D1C0D0}
	for pc := 0; pc < 12; pc++ {
		for sq := 0; sq < 64; sq++ {
			bookPiece[pc][sq] = rng.next()
		}
	}
	for i := 0; i < 4; i++ {
		bookCastle[i] = rng.next()
	}
	for f := 0; f < 8; f++ {
		bookEpFile[f] = rng.next()
	}
	bookSide = rng.next()
}

// BookHash computes the opening book key of the position. The en passant
// file is folded in only when a capturing pawn actually stands next to
// the target, per the Polyglot convention.
func (p *Position) BookHash() uint64 {
	var h uint64

	// Book piece order is black pawn first, white king last.
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			kind := int(pt) + 6
			if c == Black {
				kind = int(pt)
			}
			for bb := p.Pieces[c][pt]; bb != 0; {
				h ^= bookPiece[kind][bb.PopLsb()]
			}
		}
	}

	if p.Castling&WhiteKingside != 0 {
		h ^= bookCastle[0]
	}
	if p.Castling&WhiteQueenside != 0 {
		h ^= bookCastle[1]
	}
	if p.Castling&BlackKingside != 0 {
		h ^= bookCastle[2]
	}
	if p.Castling&BlackQueenside != 0 {
		h ^= bookCastle[3]
	}

	if p.EnPassant != NoSquare {
		us := p.SideToMove
		if pawnAttacks[us.Flip()][p.EnPassant]&p.Pieces[us][Pawn] != 0 {
			h ^= bookEpFile[p.EnPassant.File()]
		}
	}

	if p.SideToMove == White {
		h ^= bookSide
	}
	return h
}
