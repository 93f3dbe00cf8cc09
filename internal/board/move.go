package board

import "fmt"

// Move packs a move into 32 bits:
//
//	bits 0-5   from square
//	bits 6-11  to square
//	bits 12-14 promotion piece type (0 = none)
//	bit  15    capture
//	bit  16    en passant
//	bit  17    castle
//
// En passant moves carry both the capture and the en passant flag.
type Move uint32

const NoMove Move = 0

const (
	moveFlagCapture   Move = 1 << 15
	moveFlagEnPassant Move = 1 << 16
	moveFlagCastle    Move = 1 << 17
)

// NewMove builds a quiet move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewCapture builds a capturing move.
func NewCapture(from, to Square) Move {
	return NewMove(from, to) | moveFlagCapture
}

// NewPromotion builds a promotion, optionally capturing.
func NewPromotion(from, to Square, promo PieceType, capture bool) Move {
	m := NewMove(from, to) | Move(promo)<<12
	if capture {
		m |= moveFlagCapture
	}
	return m
}

// NewEnPassant builds an en passant capture.
func NewEnPassant(from, to Square) Move {
	return NewMove(from, to) | moveFlagCapture | moveFlagEnPassant
}

// NewCastle builds a castling move expressed as the king move.
func NewCastle(from, to Square) Move {
	return NewMove(from, to) | moveFlagCastle
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the piece type promoted to, or NoPieceType.
func (m Move) Promotion() PieceType {
	pt := PieceType((m >> 12) & 7)
	if pt == 0 {
		return NoPieceType
	}
	return pt
}

// IsCapture reports whether the move captures, en passant included.
func (m Move) IsCapture() bool {
	return m&moveFlagCapture != 0
}

// IsEnPassant reports whether the move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m&moveFlagEnPassant != 0
}

// IsCastle reports whether the move is castling.
func (m Move) IsCastle() bool {
	return m&moveFlagCastle != 0
}

// IsPromotion reports whether the move promotes.
func (m Move) IsPromotion() bool {
	return m&(7<<12) != 0
}

// IsTactical reports whether the move is a capture or promotion.
func (m Move) IsTactical() bool {
	return m.IsCapture() || m.IsPromotion()
}

// String renders the move in coordinate notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(" nbrq"[m.Promotion()])
	}
	return s
}

// ParseMove converts coordinate notation into the matching legal move of
// the position, returning NoMove if no legal move matches.
func (p *Position) ParseMove(s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("malformed move %q", s)
	}
	from, ok1 := ParseSquare(s[0:2])
	to, ok2 := ParseSquare(s[2:4])
	if !ok1 || !ok2 {
		return NoMove, fmt.Errorf("malformed move %q", s)
	}
	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("bad promotion piece in %q", s)
		}
	}

	var ml MoveList
	p.GenMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if m.IsPromotion() != (promo != NoPieceType) {
			continue
		}
		if m.IsPromotion() && m.Promotion() != promo {
			continue
		}
		if !p.MakeMove(m) {
			continue
		}
		p.UnmakeMove()
		return m, nil
	}
	return NoMove, fmt.Errorf("illegal move %q", s)
}

// MoveList is a fixed capacity list of moves, sized for the densest
// positions known.
type MoveList struct {
	moves [256]Move
	n     int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.n] = m
	ml.n++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.n
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap exchanges two entries.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.n = 0
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.n; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice exposes the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.n]
}
