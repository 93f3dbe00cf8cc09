package engine

import (
	"sync/atomic"

	"github.com/RenWild/marvin-chess/internal/board"
)

// searchStatus is the sentinel return path that unwinds the recursion
// when a stop is honoured. A stopped frame propagates immediately
// without touching alpha, the PV or the transposition table; undo runs
// on the same return path, so the board is back at the root once the
// unwind reaches findBestMove.
type searchStatus int

const (
	statusOK searchStatus = iota
	statusStopped
)

// Null move pruning configuration.
const (
	nullMoveDepth         = 3
	nullMoveBaseReduction = 2
	nullMoveDivisor       = 6
)

// Margins for reverse futility and futility pruning, indexed by depth.
const futilityDepth = 3

var futilityMargin = [4]int{0, 300, 500, 900}

// Margins for razoring, indexed by depth.
const razoringDepth = 3

var razoringMargin = [4]int{0, 100, 200, 400}

// Aspiration window widening schedule. The final entry keeps the
// re-search window unbounded.
var aspirationWindow = [6]int{25, 50, 100, 200, 400, Infinite}

// Move counts per depth for late move pruning.
const lmpDepth = 6

var lmpCounts = [6]int{0, 5, 10, 20, 35, 55}

// ProbCut configuration.
const (
	probcutDepth  = 5
	probcutMargin = 210
)

// Margins for SEE pruning, indexed by depth.
const seePruneDepth = 5

var seePruneMargin = [5]int{0, -100, -200, -300, -400}

type pvLine struct {
	n     int
	moves [MaxPly + 2]board.Move
}

type rootMove struct {
	move  board.Move
	score int
}

// Worker is one search thread. Everything here is thread local; the
// transposition table and the GameState are the only shared structures
// it touches while searching.
type Worker struct {
	id    int
	state *GameState
	pos   *board.Position

	tt     *TransTable
	eval   *Evaluator
	corr   *CorrectionHistory
	tables OrderTables

	pickers     [MaxPly + 2]MovePicker
	pv          [MaxPly + 2]pvLine
	moveStack   [MaxPly + 2]board.Move
	quietsTried [MaxPly + 2]board.MoveList

	rootMoves []rootMove

	nodes    atomic.Uint64
	depth    int
	seldepth int

	currMove       board.Move
	currMoveNumber int

	bestMove   board.Move
	ponderMove board.Move

	resolvingRootFail bool
}

// NewWorker creates a worker sharing the given transposition table. The
// ordering tables persist between searches until "new game".
func NewWorker(id int, tt *TransTable) *Worker {
	return &Worker{
		id:   id,
		tt:   tt,
		eval: NewEvaluator(),
		corr: NewCorrectionHistory(),
	}
}

// prepare points the worker at a new search: it copies the root position
// (history included, for repetition detection) and the root move set.
func (w *Worker) prepare(state *GameState) {
	w.state = state
	w.pos = state.Root.Copy()

	w.rootMoves = w.rootMoves[:0]
	for i := 0; i < state.RootMoves.Len(); i++ {
		w.rootMoves = append(w.rootMoves, rootMove{move: state.RootMoves.Get(i)})
	}

	w.nodes.Store(0)
	w.depth = 0
	w.seldepth = 0
	w.currMove = board.NoMove
	w.currMoveNumber = 0
	w.bestMove = board.NoMove
	if state.RootMoves.Len() > 0 {
		w.bestMove = state.RootMoves.Get(0)
	}
	w.ponderMove = board.NoMove
	w.resolvingRootFail = false
}

// ClearTables wipes the per-worker heuristics, for "new game".
func (w *Worker) ClearTables() {
	w.tables.Clear()
	w.corr.Clear()
	w.eval.pawns.Clear()
}

// checkup polls the stop protocol every node and the clock every 1024
// nodes. A soft stop is deferred while the worker is widening a failed
// aspiration window; an abort never is.
func (w *Worker) checkup() searchStatus {
	if stop, abort := w.state.shouldStop(); stop {
		if abort || !w.resolvingRootFail {
			return statusStopped
		}
	}
	if w.nodes.Load()&1023 != 0 {
		return statusOK
	}
	if !w.state.tc.CheckTime() {
		w.state.stopAll(false)
		return statusStopped
	}
	return statusOK
}

func (w *Worker) updatePV(ply int, m board.Move) {
	child := &w.pv[ply+1]
	line := &w.pv[ply]
	line.moves[0] = m
	copy(line.moves[1:1+child.n], child.moves[:child.n])
	line.n = child.n + 1
}

func (w *Worker) staticEval() int {
	return w.eval.Evaluate(w.pos) + w.corr.Get(w.pos)
}

func (w *Worker) prevMove(ply int) board.Move {
	if ply == 0 {
		return board.NoMove
	}
	return w.moveStack[ply-1]
}

// search is the main alpha-beta recursion, fail-soft.
func (w *Worker) search(depth, ply, alpha, beta int, tryNull bool) (int, searchStatus) {
	pos := w.pos
	pvNode := beta-alpha > 1

	w.nodes.Add(1)

	inCheck := pos.InCheck()

	if depth <= 0 {
		return w.qsearch(ply, 0, alpha, beta)
	}

	if st := w.checkup(); st != statusOK {
		return 0, st
	}

	if ply > w.seldepth {
		w.seldepth = ply
	}
	if ply >= MaxPly-1 {
		return w.staticEval(), statusOK
	}

	w.pv[ply].n = 0

	if pos.IsRepetition() || pos.Fifty >= 100 {
		return 0, statusOK
	}

	cutoff, ttMove, ttScore := w.tt.Lookup(pos.Key, depth, ply, alpha, beta)
	if cutoff {
		return ttScore, statusOK
	}

	if w.state.ProbeWDL && pos.All.Count() <= w.state.tb.MaxPieces() {
		if wdl, ok := w.state.tb.ProbeWDL(pos); ok {
			switch {
			case wdl > 0:
				return TablebaseWin - ply, statusOK
			case wdl < 0:
				return -TablebaseWin + ply, statusOK
			default:
				return 0, statusOK
			}
		}
	}

	rawEval := w.eval.Evaluate(pos)
	static := rawEval + w.corr.Get(pos)

	// Reverse futility pruning: far enough above beta that a shallow
	// search will not come back down.
	if depth <= futilityDepth && !inCheck && !pvNode &&
		pos.HasNonPawn() && static-futilityMargin[depth] >= beta {
		return static, statusOK
	}

	// Razoring: far below alpha with no hash move to suggest otherwise.
	if depth <= razoringDepth && !inCheck && !pvNode && ttMove == board.NoMove &&
		static+razoringMargin[depth] <= alpha {
		if depth == 1 {
			return w.qsearch(ply, 0, alpha, beta)
		}
		threshold := alpha - razoringMargin[depth]
		score, st := w.qsearch(ply, 0, threshold, threshold+1)
		if st != statusOK {
			return 0, st
		}
		if score <= threshold {
			return score, statusOK
		}
	}

	// Null move pruning. Unsound in zugzwang, hence the non-pawn
	// material requirement.
	if tryNull && !inCheck && depth > nullMoveDepth && pos.HasNonPawn() {
		reduction := nullMoveBaseReduction + depth/nullMoveDivisor
		pos.MakeNullMove()
		w.moveStack[ply] = board.NoMove
		score, st := w.search(depth-reduction-1, ply+1, -beta, -beta+1, false)
		pos.UnmakeNullMove()
		if st != statusOK {
			return 0, st
		}
		score = -score
		if score >= beta {
			// A mate found on the back of a null move is not a forced
			// mate; report beta instead.
			if score >= ForcedMate {
				return beta, statusOK
			}
			return score, statusOK
		}
	}

	// ProbCut: a good capture confirmed by a reduced search to beat beta
	// by a margin is almost certainly a cutoff at full depth too.
	if !pvNode && !inCheck && depth >= probcutDepth && pos.HasNonPawn() {
		threshold := beta + probcutMargin
		picker := &w.pickers[ply]
		picker.Init(pos, &w.tables, ply, w.prevMove(ply), true, false)
		picker.SetTTMove(ttMove)

		for {
			m := picker.Next()
			if m == board.NoMove {
				break
			}
			if !m.IsCapture() || !pos.SeeGE(m, threshold-static) {
				continue
			}
			if !pos.MakeMove(m) {
				continue
			}
			w.moveStack[ply] = m
			score, st := w.search(depth-probcutDepth+1, ply+1, -threshold, -threshold+1, true)
			pos.UnmakeMove()
			if st != statusOK {
				return 0, st
			}
			score = -score
			if score >= threshold {
				return score, statusOK
			}
		}
	}

	// Futility flag: hopeless static score, prune quiet moves below.
	futilityPruning := depth <= futilityDepth && static+futilityMargin[depth] <= alpha

	picker := &w.pickers[ply]
	picker.Init(pos, &w.tables, ply, w.prevMove(ply), false, inCheck)
	picker.SetTTMove(ttMove)

	bestScore := -Infinite
	bestMove := board.NoMove
	bound := BoundUpper
	moveNumber := 0
	foundMove := false
	w.quietsTried[ply].Clear()

	for {
		m := picker.Next()
		if m == board.NoMove {
			break
		}

		pawnPush := pos.IsPawnPush(m)
		killer := w.tables.IsKiller(ply, m)
		hist := w.tables.HistoryScore(pos.SideToMove, m)
		givesCheck := pos.GivesCheck(m)
		tactical := m.IsTactical() || inCheck || givesCheck

		// SEE pruning must look at the position before the move is made.
		seePrune := !pvNode && m != ttMove && !inCheck && !givesCheck &&
			depth < seePruneDepth && !pos.SeeGE(m, seePruneMargin[depth])

		if !pos.MakeMove(m) {
			continue
		}
		moveNumber++
		foundMove = true

		// Futility pruning: skip non-tactical moves, but always search
		// at least one move.
		if futilityPruning && moveNumber > 1 && !tactical {
			pos.UnmakeMove()
			continue
		}

		// Late move pruning: a quietly sorted-late move with no history
		// to its name is almost never the one.
		if !pvNode && depth < lmpDepth && moveNumber > lmpCounts[depth] &&
			moveNumber > 1 && !tactical && !pawnPush && !killer &&
			abs(alpha) < KnownWin && hist == 0 {
			pos.UnmakeMove()
			continue
		}

		if seePrune {
			pos.UnmakeMove()
			continue
		}

		if !m.IsTactical() {
			w.quietsTried[ply].Add(m)
		}
		w.moveStack[ply] = m

		newDepth := depth
		if givesCheck {
			newDepth++
		}

		// Late move reduction.
		reduction := 0
		if moveNumber > 3 && depth > 3 && !tactical {
			reduction = 1
			if moveNumber > 6 {
				reduction = 2
			}
		}

		var score int
		if bestScore == -Infinite {
			child, st := w.search(newDepth-1, ply+1, -beta, -alpha, true)
			if st != statusOK {
				pos.UnmakeMove()
				return 0, st
			}
			score = -child
		} else {
			child, st := w.search(newDepth-reduction-1, ply+1, -alpha-1, -alpha, true)
			if st != statusOK {
				pos.UnmakeMove()
				return 0, st
			}
			score = -child

			if score > alpha && reduction > 0 {
				child, st = w.search(newDepth-1, ply+1, -alpha-1, -alpha, true)
				if st != statusOK {
					pos.UnmakeMove()
					return 0, st
				}
				score = -child
			}
			if pvNode && score > alpha {
				child, st = w.search(newDepth-1, ply+1, -beta, -alpha, true)
				if st != statusOK {
					pos.UnmakeMove()
					return 0, st
				}
				score = -child
			}
		}
		pos.UnmakeMove()

		if score > bestScore {
			bestScore = score
			bestMove = m

			if score > alpha {
				if score >= beta {
					w.betaCutoff(ply, depth, m)
					bound = BoundLower
					break
				}
				bound = BoundExact
				alpha = score
				w.updatePV(ply, m)
			}
		}
	}

	if !foundMove {
		bound = BoundExact
		if inCheck {
			bestScore = -Checkmate + ply
		} else {
			bestScore = 0
		}
	} else if bestScore == -Infinite {
		// Every legal move was pruned away; fail low at alpha.
		bestScore = alpha
	}

	if bound == BoundExact && foundMove && !inCheck && depth >= 2 && !IsMateScore(bestScore) {
		w.corr.Update(pos, bestScore, rawEval, depth)
	}

	w.tt.Store(pos.Key, bestMove, depth, ply, bestScore, bound)

	return bestScore, statusOK
}

// betaCutoff records the ordering heuristics for a refutation: killer,
// counter move and the history reward with a penalty for the quiet moves
// tried before it.
func (w *Worker) betaCutoff(ply, depth int, m board.Move) {
	// A winning capture needs no killer slot.
	if m.IsCapture() && w.pos.SeeGE(m, 0) {
		return
	}
	w.tables.AddKiller(ply, m)
	if m.IsTactical() {
		return
	}
	if prev := w.prevMove(ply); ply >= 1 && prev != board.NoMove {
		w.tables.AddCounter(w.pos.SideToMove, prev, m)
	}
	w.tables.UpdateHistory(w.pos.SideToMove, w.quietsTried[ply].Slice(), m, depth)
}
