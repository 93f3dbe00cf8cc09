package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a position from Forsyth-Edwards notation.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("fen %q: need at least 4 fields", fen)
	}

	p := &Position{EnPassant: NoSquare, FullMove: 1}
	for sq := range p.Squares {
		p.Squares[sq] = NoPiece
	}

	rank, file := 7, 0
	for i := 0; i < len(fields[0]); i++ {
		ch := fields[0][i]
		switch {
		case ch == '/':
			rank--
			file = 0
			if rank < 0 {
				return nil, fmt.Errorf("fen %q: too many ranks", fen)
			}
		case ch >= '1' && ch <= '8':
			file += int(ch - '0')
		default:
			pc := PieceFromChar(ch)
			if pc == NoPiece || file > 7 {
				return nil, fmt.Errorf("fen %q: bad placement char %q", fen, ch)
			}
			p.putPiece(pc, SquareOf(file, rank))
			file++
		}
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
		p.Key ^= zobristSide
	default:
		return nil, fmt.Errorf("fen %q: bad side to move %q", fen, fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			switch fields[2][i] {
			case 'K':
				p.Castling |= WhiteKingside
			case 'Q':
				p.Castling |= WhiteQueenside
			case 'k':
				p.Castling |= BlackKingside
			case 'q':
				p.Castling |= BlackQueenside
			default:
				return nil, fmt.Errorf("fen %q: bad castling %q", fen, fields[2])
			}
		}
	}
	p.Key ^= zobristCastling[p.Castling]

	if fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return nil, fmt.Errorf("fen %q: bad en passant square %q", fen, fields[3])
		}
		p.EnPassant = sq
		p.Key ^= zobristEpFile[sq.File()]
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("fen %q: bad halfmove clock %q", fen, fields[4])
		}
		p.Fifty = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("fen %q: bad fullmove number %q", fen, fields[5])
		}
		p.FullMove = n
	}

	p.updateCheckers()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("fen %q: %w", fen, err)
	}
	return p, nil
}

// FEN renders the position in Forsyth-Edwards notation.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Squares[SquareOf(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	side := "w"
	if p.SideToMove == Black {
		side = "b"
	}
	return fmt.Sprintf("%s %s %s %s %d %d",
		sb.String(), side, p.Castling, p.EnPassant, p.Fifty, p.FullMove)
}
