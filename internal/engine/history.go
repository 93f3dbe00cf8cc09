package engine

import "github.com/RenWild/marvin-chess/internal/board"

// MaxHistoryScore caps history cells. When an update pushes any cell past
// the cap the whole table is halved, which decays stale information.
const MaxHistoryScore = 8000

// OrderTables holds the per-worker move ordering heuristics: killer
// moves, butterfly history and counter moves. They are cleared on "new
// game" only and survive between searches within a game.
type OrderTables struct {
	killers  [MaxPly + 2][2]board.Move
	history  [2][64][64]int32
	counters [2][64][64]board.Move
}

// Clear wipes all three tables.
func (ot *OrderTables) Clear() {
	for ply := range ot.killers {
		ot.killers[ply][0] = board.NoMove
		ot.killers[ply][1] = board.NoMove
	}
	for side := 0; side < 2; side++ {
		for from := 0; from < 64; from++ {
			for to := 0; to < 64; to++ {
				ot.history[side][from][to] = 0
				ot.counters[side][from][to] = board.NoMove
			}
		}
	}
}

// AddKiller records a quiet move that produced a beta cutoff at ply.
// Captures never become killers; slot 0 holds the most recent.
func (ot *OrderTables) AddKiller(ply int, m board.Move) {
	if m.IsTactical() {
		return
	}
	if ot.killers[ply][0] == m {
		return
	}
	ot.killers[ply][1] = ot.killers[ply][0]
	ot.killers[ply][0] = m
}

// IsKiller reports whether m is one of the killers at ply.
func (ot *OrderTables) IsKiller(ply int, m board.Move) bool {
	return ot.killers[ply][0] == m || ot.killers[ply][1] == m
}

// HistoryScore returns the butterfly history score of a move.
func (ot *OrderTables) HistoryScore(side board.Color, m board.Move) int {
	return int(ot.history[side][m.From()][m.To()])
}

// UpdateHistory rewards the quiet move that produced a beta cutoff and
// penalises the quiet moves that were searched before it at the same
// node. If any cell leaves the cap the whole table is halved, so no cell
// exceeds the cap once the update returns.
func (ot *OrderTables) UpdateHistory(side board.Color, tried []board.Move, cutoff board.Move, depth int) {
	overflow := false
	bump := func(m board.Move, delta int) {
		cell := &ot.history[side][m.From()][m.To()]
		*cell += int32(delta)
		if *cell > MaxHistoryScore || *cell < -MaxHistoryScore {
			overflow = true
		}
	}

	bump(cutoff, depth)
	for _, m := range tried {
		if m != cutoff {
			bump(m, -depth)
		}
	}

	if overflow {
		for side := 0; side < 2; side++ {
			for from := 0; from < 64; from++ {
				for to := 0; to < 64; to++ {
					ot.history[side][from][to] /= 2
				}
			}
		}
	}
}

// AddCounter records m as the refutation of the opponent's previous move.
func (ot *OrderTables) AddCounter(side board.Color, prev, m board.Move) {
	if prev == board.NoMove || m.IsTactical() {
		return
	}
	ot.counters[side][prev.From()][prev.To()] = m
}

// Counter returns the recorded refutation of the opponent's previous
// move, or NoMove.
func (ot *OrderTables) Counter(side board.Color, prev board.Move) board.Move {
	if prev == board.NoMove {
		return board.NoMove
	}
	return ot.counters[side][prev.From()][prev.To()]
}
