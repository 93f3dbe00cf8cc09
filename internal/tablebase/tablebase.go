// Package tablebase provides endgame tablebase probing behind a small
// interface. The search only consumes win/draw/loss through ProbeWDL.
// ProbeRoot returns the move the tablebase lists first; distance-to-zero
// is not read.
package tablebase

import "github.com/RenWild/marvin-chess/internal/board"

// WDL is the game theoretic value of a position. Cursed wins and blessed
// losses are reported as draws: under the fifty-move rule that is what
// they are worth.
type WDL int

const (
	Loss WDL = -2
	Draw WDL = 0
	Win  WDL = 2
)

// Prober looks up positions in an endgame tablebase.
type Prober interface {
	// ProbeWDL returns the value of the position, ok=false on a miss.
	ProbeWDL(pos *board.Position) (WDL, bool)

	// ProbeRoot picks the best tablebase move at the root, if known.
	ProbeRoot(pos *board.Position) (board.Move, WDL, bool)

	// MaxPieces is the largest piece count the tablebase covers.
	MaxPieces() int

	// Available reports whether probing can succeed at all.
	Available() bool
}

// None is the prober used when no tablebase is configured.
type None struct{}

func (None) ProbeWDL(*board.Position) (WDL, bool) {
	return Draw, false
}

func (None) ProbeRoot(*board.Position) (board.Move, WDL, bool) {
	return board.NoMove, Draw, false
}

func (None) MaxPieces() int {
	return 0
}

func (None) Available() bool {
	return false
}
