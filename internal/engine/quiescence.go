package engine

import "github.com/RenWild/marvin-chess/internal/board"

// qsearch stabilises the horizon: only captures are searched, plus every
// evasion while in check. Standing pat is allowed when not in check so
// the side to move is never forced into a bad capture.
func (w *Worker) qsearch(ply, qdepth, alpha, beta int) (int, searchStatus) {
	pos := w.pos

	// The entry node at qdepth 0 was already counted by the caller.
	if qdepth < 0 {
		w.nodes.Add(1)
	}

	if st := w.checkup(); st != statusOK {
		return 0, st
	}

	w.pv[ply].n = 0

	if pos.IsRepetition() || pos.Fifty >= 100 {
		return 0, statusOK
	}

	static := w.staticEval()

	if ply >= MaxPly {
		return static, statusOK
	}

	inCheck := pos.InCheck()
	bestScore := -Infinite
	if !inCheck {
		bestScore = static
		if static >= beta {
			return static, statusOK
		}
		if static > alpha {
			alpha = static
		}
	}

	cutoff, ttMove, ttScore := w.tt.Lookup(pos.Key, 0, ply, alpha, beta)
	if cutoff {
		return ttScore, statusOK
	}

	picker := &w.pickers[ply]
	picker.Init(pos, &w.tables, ply, w.prevMove(ply), true, inCheck)
	picker.SetTTMove(ttMove)

	bestMove := board.NoMove
	bound := BoundUpper
	foundMove := false

	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}

		// Captures that lose material are not going to restore the
		// stand-pat score.
		if !inCheck && m.IsCapture() && picker.BadCapturePhase() {
			continue
		}

		if !pos.MakeMove(m) {
			continue
		}
		w.moveStack[ply] = m
		foundMove = true

		child, st := w.qsearch(ply+1, qdepth-1, -beta, -alpha)
		pos.UnmakeMove()
		if st != statusOK {
			return 0, st
		}
		score := -child

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				if score >= beta {
					bound = BoundLower
					break
				}
				alpha = score
				bound = BoundExact
				w.updatePV(ply, m)
			}
		}
	}

	// In check every move was generated, so no legal move means mate.
	if inCheck && !foundMove {
		return -Checkmate + ply, statusOK
	}

	w.tt.Store(pos.Key, bestMove, 0, ply, bestScore, bound)

	return bestScore, statusOK
}
