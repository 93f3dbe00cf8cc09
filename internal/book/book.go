// Package book reads Polyglot format opening books.
package book

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/RenWild/marvin-chess/internal/board"
)

// Entry is one book move with its weight.
type Entry struct {
	From   board.Square
	To     board.Square
	Promo  board.PieceType
	Weight uint16
}

// Book maps position hashes to candidate moves.
type Book struct {
	entries map[uint64][]Entry
}

// Load reads a Polyglot book file.
func Load(filename string) (*Book, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader reads a Polyglot book. Each record is 16 bytes big-endian:
// key(8), move(2), weight(2), learn(4, ignored).
func LoadReader(r io.Reader) (*Book, error) {
	b := &Book{entries: make(map[uint64][]Entry)}
	var rec [16]byte
	for {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read book: %w", err)
		}
		key := binary.BigEndian.Uint64(rec[0:8])
		move := binary.BigEndian.Uint16(rec[8:10])
		weight := binary.BigEndian.Uint16(rec[10:12])
		b.entries[key] = append(b.entries[key], decodeMove(move, weight))
	}
	return b, nil
}

// decodeMove unpacks the Polyglot move encoding: to in bits 0-5, from in
// bits 6-11, promotion piece in bits 12-14.
func decodeMove(data, weight uint16) Entry {
	e := Entry{
		To:     board.SquareOf(int(data&7), int(data>>3&7)),
		From:   board.SquareOf(int(data>>6&7), int(data>>9&7)),
		Promo:  board.NoPieceType,
		Weight: weight,
	}
	promoTable := [5]board.PieceType{board.NoPieceType, board.Knight, board.Bishop, board.Rook, board.Queen}
	if p := data >> 12 & 7; p >= 1 && p <= 4 {
		e.Promo = promoTable[p]
	}

	// Polyglot encodes castling as king takes own rook.
	switch {
	case e.From == board.E1 && e.To == board.H1:
		e.To = board.G1
	case e.From == board.E1 && e.To == board.A1:
		e.To = board.C1
	case e.From == board.E8 && e.To == board.H8:
		e.To = board.G8
	case e.From == board.E8 && e.To == board.A8:
		e.To = board.C8
	}
	return e
}

// Probe returns a weighted random book move for the position, or NoMove.
// Only moves that are legal in the position are candidates.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}
	entries := b.entries[pos.BookHash()]
	if len(entries) == 0 {
		return board.NoMove, false
	}

	type candidate struct {
		move   board.Move
		weight uint32
	}
	var candidates []candidate
	var total uint32
	for _, e := range entries {
		if m := matchLegal(pos, e); m != board.NoMove {
			w := uint32(e.Weight)
			if w == 0 {
				w = 1
			}
			candidates = append(candidates, candidate{m, w})
			total += w
		}
	}
	if len(candidates) == 0 {
		return board.NoMove, false
	}

	pick := rand.Uint32() % total
	var cumulative uint32
	for _, c := range candidates {
		cumulative += c.weight
		if pick < cumulative {
			return c.move, true
		}
	}
	return candidates[0].move, true
}

// Moves returns all legal book moves for the position, best weight first.
func (b *Book) Moves(pos *board.Position) []board.Move {
	if b == nil {
		return nil
	}
	entries := append([]Entry(nil), b.entries[pos.BookHash()]...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})
	var moves []board.Move
	for _, e := range entries {
		if m := matchLegal(pos, e); m != board.NoMove {
			moves = append(moves, m)
		}
	}
	return moves
}

// matchLegal resolves a book entry against the legal moves so the
// resulting Move carries the right capture, castle and en passant flags.
func matchLegal(pos *board.Position, e Entry) board.Move {
	legal := pos.LegalMoves()
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		if m.From() != e.From || m.To() != e.To {
			continue
		}
		if m.IsPromotion() {
			if m.Promotion() == e.Promo {
				return m
			}
			continue
		}
		if e.Promo == board.NoPieceType {
			return m
		}
	}
	return board.NoMove
}

// Size returns the number of distinct positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
