package engine

import (
	"sort"
	"time"

	"github.com/RenWild/marvin-chess/internal/board"
)

// searchRoot searches the precomputed root move set. Root moves are all
// legal, so no legality filtering happens here. The best move and ponder
// move are published only when the score lands inside the window, since
// only then can it be trusted.
func (w *Worker) searchRoot(depth, alpha, beta int) (int, searchStatus) {
	pos := w.pos

	if st := w.checkup(); st != statusOK {
		return 0, st
	}

	w.pv[0].n = 0
	w.quietsTried[0].Clear()

	_, ttMove, _ := w.tt.Lookup(pos.Key, depth, 0, alpha, beta)
	w.orderRootMoves(ttMove)

	bestScore := -Infinite
	bestMove := ttMove
	bound := BoundUpper
	w.currMoveNumber = 0

	for i := range w.rootMoves {
		m := w.rootMoves[i].move
		w.currMoveNumber++
		w.currMove = m

		pos.MakeMove(m)
		w.moveStack[0] = m

		newDepth := depth
		if pos.InCheck() {
			newDepth++
		}

		child, st := w.search(newDepth-1, 1, -beta, -alpha, true)
		pos.UnmakeMove()
		if st != statusOK {
			return 0, st
		}
		score := -child
		w.rootMoves[i].score = score

		if score <= bestScore {
			continue
		}
		bestScore = score
		bestMove = m

		if score > alpha {
			if score >= beta {
				w.betaCutoff(0, depth, m)
				bound = BoundLower
				break
			}
			bound = BoundExact
			alpha = score
			w.updatePV(0, m)

			w.bestMove = m
			w.ponderMove = board.NoMove
			if w.pv[0].n > 1 {
				w.ponderMove = w.pv[0].moves[1]
			}
			w.state.update(w, score)
		}
	}

	w.tt.Store(pos.Key, bestMove, depth, 0, bestScore, bound)

	return bestScore, statusOK
}

// orderRootMoves sorts the root moves by the previous iteration's scores,
// with the hash move in front.
func (w *Worker) orderRootMoves(ttMove board.Move) {
	sort.SliceStable(w.rootMoves, func(i, j int) bool {
		if w.rootMoves[i].move == ttMove {
			return true
		}
		if w.rootMoves[j].move == ttMove {
			return false
		}
		return w.rootMoves[i].score > w.rootMoves[j].score
	})
}

// findBestMove runs iterative deepening with aspiration windows until a
// stop is honoured or the search runs out of depth or time. Workers
// start at staggered depths to spread their effort over the shared
// transposition table.
func (w *Worker) findBestMove() {
	depth := 1 + w.id%2
	alpha, beta := -Infinite, Infinite
	awindex, bwindex := 0, 0

	for {
		w.depth = depth
		w.seldepth = 0
		if alpha < -Infinite {
			alpha = -Infinite
		}
		if beta > Infinite {
			beta = Infinite
		}

		score, st := w.searchRoot(depth, alpha, beta)
		if st != statusOK {
			break
		}

		// Widen and re-search the failing side only. The checkup defers
		// soft stops while this is being resolved so the final score is
		// never a fail bound.
		if score <= alpha {
			awindex++
			alpha = score - aspirationWindow[awindex]
			w.resolvingRootFail = true
			continue
		}
		if score >= beta {
			bwindex++
			beta = score + aspirationWindow[bwindex]
			w.resolvingRootFail = true
			continue
		}
		w.resolvingRootFail = false

		depth = w.state.completeIteration(w, score)

		if w.state.ExitOnMate && !w.state.pondering.Load() &&
			(score > KnownWin || score < -KnownWin) {
			w.state.stopAll(true)
			break
		}

		awindex, bwindex = 0, 0
		if depth > 5 {
			alpha = score - aspirationWindow[awindex]
			beta = score + aspirationWindow[bwindex]
		} else {
			alpha, beta = -Infinite, Infinite
		}

		if !w.state.tc.NewIteration() {
			w.state.stopAll(false)
			break
		}
		if depth > w.state.SD {
			w.state.stopAll(true)
			break
		}
	}

	// If the search bottomed out while pondering, stall until the
	// ponderhit or stop arrives so bestmove is not sent early.
	for w.id == 0 && w.state.pondering.Load() && !w.state.stop.Load() {
		time.Sleep(time.Millisecond)
	}
}
