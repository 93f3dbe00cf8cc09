package board

// Color of a side, White moves first.
type Color uint8

const (
	White Color = iota
	Black
)

// Flip returns the other side.
func (c Color) Flip() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType identifies a kind of piece independent of its color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

// Piece identifies a colored piece. White pieces occupy 0-5, black 6-11.
type Piece uint8

const NoPiece Piece = 12

// MakePiece combines a color and a piece type.
func MakePiece(c Color, pt PieceType) Piece {
	return Piece(uint8(c)*6 + uint8(pt))
}

// Color returns the side the piece belongs to. Undefined for NoPiece.
func (p Piece) Color() Color {
	return Color(p / 6)
}

// Type returns the kind of the piece.
func (p Piece) Type() PieceType {
	if p == NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

var pieceChars = "PNBRQKpnbrqk."

func (p Piece) String() string {
	return string(pieceChars[p])
}

// PieceFromChar converts a FEN piece letter to a Piece.
func PieceFromChar(ch byte) Piece {
	for i := 0; i < 12; i++ {
		if pieceChars[i] == ch {
			return Piece(i)
		}
	}
	return NoPiece
}

// Square indexes the board from A1=0 to H8=63, rank-major.
type Square uint8

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare
)

// SquareOf builds a square from file and rank, both 0-7.
func SquareOf(file, rank int) Square {
	return Square(rank*8 + file)
}

// File returns the file of the square, 0 for the a-file.
func (sq Square) File() int {
	return int(sq & 7)
}

// Rank returns the rank of the square, 0 for the first rank.
func (sq Square) Rank() int {
	return int(sq >> 3)
}

// RelativeRank returns the rank as seen from the given side.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// ParseSquare converts algebraic notation ("e4") to a Square.
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, false
	}
	return SquareOf(int(s[0]-'a'), int(s[1]-'1')), true
}

// CastlingRights is a bitmask of the four castling permissions.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside
	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingside != 0 {
		s += "K"
	}
	if cr&WhiteQueenside != 0 {
		s += "Q"
	}
	if cr&BlackKingside != 0 {
		s += "k"
	}
	if cr&BlackQueenside != 0 {
		s += "q"
	}
	return s
}
