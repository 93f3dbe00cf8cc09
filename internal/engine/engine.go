package engine

import (
	"fmt"
	"time"

	"github.com/RenWild/marvin-chess/internal/board"
	"github.com/RenWild/marvin-chess/internal/tablebase"
)

// Engine owns the transposition table and the worker pool and drives
// searches for the protocol layer. Worker heuristic tables survive
// between searches and are wiped on NewGame.
type Engine struct {
	tt      *TransTable
	tc      TimeControl
	workers []*Worker
	threads int

	tb tablebase.Prober

	state  *GameState
	coord  *Coordinator
	limits Limits

	infoFn func(SearchInfo)
}

// Options configures a new engine.
type Options struct {
	HashMB  int
	Threads int
}

// New creates an engine with the given hash size and worker count.
func New(opts Options) *Engine {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	e := &Engine{
		tt:      NewTransTable(opts.HashMB),
		threads: opts.Threads,
		tb:      tablebase.None{},
	}
	e.growWorkers()
	return e
}

func (e *Engine) growWorkers() {
	for len(e.workers) < e.threads {
		e.workers = append(e.workers, NewWorker(len(e.workers), e.tt))
	}
}

// SetThreads changes the worker count for subsequent searches.
func (e *Engine) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	e.threads = n
	e.growWorkers()
}

// SetHash resizes the transposition table, dropping its contents.
func (e *Engine) SetHash(sizeMB int) {
	e.tt.Resize(sizeMB)
}

// SetTablebase installs an endgame tablebase prober.
func (e *Engine) SetTablebase(tb tablebase.Prober) {
	if tb == nil {
		tb = tablebase.None{}
	}
	e.tb = tb
}

// OnInfo installs the per-iteration callback. The driver formats the
// protocol output; the engine only reports raw numbers.
func (e *Engine) OnInfo(fn func(SearchInfo)) {
	e.infoFn = fn
}

// AgeTT starts a new transposition table generation without clearing.
// Search does this itself; the driver may force it between analyses.
func (e *Engine) AgeTT() {
	e.tt.Age()
}

// NewGame clears the transposition table and all worker heuristics.
func (e *Engine) NewGame() {
	e.tt.Clear()
	for _, w := range e.workers {
		w.ClearTables()
	}
}

// Search runs a full search of pos under the given limits and blocks
// until every worker has stopped. The caller can interrupt it from
// another goroutine with Stop.
func (e *Engine) Search(pos *board.Position, limits Limits) (board.Move, error) {
	if err := pos.Validate(); err != nil {
		return board.NoMove, fmt.Errorf("invalid position: %w", err)
	}

	root := pos.Copy()
	rootMoves := rootMoveSet(root, limits.SearchMoves)
	if rootMoves.Len() == 0 {
		return board.NoMove, fmt.Errorf("no legal moves in position %s", root.FEN())
	}

	e.limits = limits
	e.tc.Start(limits, root.SideToMove, root.Ply())
	e.tt.Age()

	state := newGameState(e.tt, &e.tc, e.tb)
	state.Root = root
	state.RootMoves = *rootMoves
	if limits.Depth > 0 {
		state.SD = limits.Depth
	}
	state.ProbeWDL = e.tb.Available()
	state.pondering.Store(limits.Ponder)
	state.infoFn = e.infoFn
	e.state = state

	coord := newCoordinator(state)
	state.nodesFn = coord.nodes
	e.coord = coord

	coord.start(e.threads, e.workers)
	coord.wait()

	state.mu.Lock()
	best := state.bestMove
	state.mu.Unlock()
	if best == board.NoMove {
		// A stopped search still yields a legal move.
		best = rootMoves.Get(0)
	}
	return best, nil
}

func rootMoveSet(pos *board.Position, searchMoves []board.Move) *board.MoveList {
	legal := pos.LegalMoves()
	if len(searchMoves) == 0 {
		return legal
	}
	filtered := &board.MoveList{}
	for i := 0; i < legal.Len(); i++ {
		m := legal.Get(i)
		for _, sm := range searchMoves {
			if m == sm {
				filtered.Add(m)
				break
			}
		}
	}
	if filtered.Len() == 0 {
		return legal
	}
	return filtered
}

// Stop requests all workers to stop. An abort cuts short even an
// in-flight aspiration re-search.
func (e *Engine) Stop(abort bool) {
	if e.state != nil {
		e.state.pondering.Store(false)
		e.state.stopAll(abort)
	}
}

// PonderHit converts a ponder search into a normal one: the clock starts
// now and the workers keep going under it.
func (e *Engine) PonderHit() {
	if e.state == nil {
		return
	}
	limits := e.limits
	limits.Ponder = false
	e.tc.Start(limits, e.state.Root.SideToMove, e.state.Root.Ply())
	e.state.pondering.Store(false)
}

// BestMove returns the best move found so far.
func (e *Engine) BestMove() board.Move {
	if e.state == nil {
		return board.NoMove
	}
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	return e.state.bestMove
}

// PonderMove returns the expected reply, if any.
func (e *Engine) PonderMove() board.Move {
	if e.state == nil {
		return board.NoMove
	}
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	return e.state.ponderMove
}

// CurrentDepth returns the deepest fully completed iteration.
func (e *Engine) CurrentDepth() int {
	if e.state == nil {
		return 0
	}
	return int(e.state.completedDepth.Load())
}

// Seldepth returns the maximum selective depth reached by any worker.
func (e *Engine) Seldepth() int {
	sd := 0
	for _, w := range e.workers {
		if w.seldepth > sd {
			sd = w.seldepth
		}
	}
	return sd
}

// Nodes returns the nodes searched by all workers in the current search.
func (e *Engine) Nodes() uint64 {
	if e.coord == nil {
		return 0
	}
	return e.coord.nodes()
}

// Elapsed returns the wall clock time of the current search.
func (e *Engine) Elapsed() time.Duration {
	return e.tc.Elapsed()
}
