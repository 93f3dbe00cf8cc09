package engine

import "github.com/RenWild/marvin-chess/internal/board"

// Correction history nudges the static evaluation towards what the
// search actually returned for similar positions. Each worker owns one
// table; it is updated when a main search node of depth 2 or more, not
// in check, resolves to an exact score that is not a mate score.

const (
	corrSize     = 1 << 16
	corrMask     = corrSize - 1
	corrMaxValue = 4000
	corrMaxBonus = 256
)

type CorrectionHistory struct {
	table [corrSize]int16
}

func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

func corrIndex(pos *board.Position) int {
	key := pos.PawnKey ^ uint64(pos.SideToMove)
	return int((key ^ key>>20) & corrMask)
}

// Get returns the correction to add to the raw static evaluation.
func (ch *CorrectionHistory) Get(pos *board.Position) int {
	return int(ch.table[corrIndex(pos)]) / 16
}

// Update records the gap between the searched score and the raw static
// evaluation, weighted by depth. A gravity update keeps old signal while
// moving towards the new one.
func (ch *CorrectionHistory) Update(pos *board.Position, searched, static, depth int) {
	if depth < 1 {
		return
	}
	bonus := clamp((searched-static)*depth/8, -corrMaxBonus, corrMaxBonus)

	idx := corrIndex(pos)
	old := int(ch.table[idx])
	ch.table[idx] = int16(clamp(old+(bonus*16-old)/16, -corrMaxValue, corrMaxValue))
}

// Clear wipes the table, for "new game".
func (ch *CorrectionHistory) Clear() {
	for i := range ch.table {
		ch.table[i] = 0
	}
}
