package engine

import "github.com/RenWild/marvin-chess/internal/board"

// Selection phases, in emission order. Each phase generates lazily: a
// node that cuts off on the hash move never generates a single move.
type pickPhase uint8

const (
	phaseTTMove pickPhase = iota
	phaseGenCaptures
	phaseGoodCaptures
	phaseKiller1
	phaseKiller2
	phaseCounter
	phaseGenQuiets
	phaseQuiets
	phaseBadCaptures
	phaseDone
)

// MovePicker yields the pseudo-legal moves of one node, phase by phase.
// Every move is yielded at most once; later phases filter out moves
// already emitted by earlier ones. In quiescence mode only the hash
// move and captures are yielded, unless the side to move is in check, in
// which case every evasion is tried.
type MovePicker struct {
	pos    *board.Position
	tables *OrderTables

	ttMove  board.Move
	killer1 board.Move
	killer2 board.Move
	counter board.Move

	qsearch bool
	inCheck bool
	phase   pickPhase

	caps      board.MoveList
	capScores [256]int
	capNext   int

	badCaps      [64]board.Move
	badCapScores [64]int
	badCapCount  int
	badCapNext   int

	quiets      board.MoveList
	quietScores [256]int
	quietNext   int
}

// Init prepares the picker for a new node. The hash move is set
// separately once the table has been probed.
func (mp *MovePicker) Init(pos *board.Position, tables *OrderTables, ply int, prev board.Move, qsearch, inCheck bool) {
	mp.pos = pos
	mp.tables = tables
	mp.qsearch = qsearch
	mp.inCheck = inCheck
	mp.phase = phaseTTMove
	mp.ttMove = board.NoMove

	mp.killer1 = tables.killers[ply][0]
	mp.killer2 = tables.killers[ply][1]
	mp.counter = tables.Counter(pos.SideToMove, prev)

	mp.caps.Clear()
	mp.capNext = 0
	mp.badCapCount = 0
	mp.badCapNext = 0
	mp.quiets.Clear()
	mp.quietNext = 0
}

// SetTTMove installs the hash move as the first move to try.
func (mp *MovePicker) SetTTMove(m board.Move) {
	mp.ttMove = m
}

// BadCapturePhase reports whether the picker is emitting losing captures.
func (mp *MovePicker) BadCapturePhase() bool {
	return mp.phase == phaseBadCaptures
}

// Next returns the next move, or NoMove when the node is exhausted.
func (mp *MovePicker) Next() board.Move {
	for {
		switch mp.phase {
		case phaseTTMove:
			mp.phase = phaseGenCaptures
			if mp.ttMove != board.NoMove && mp.pos.IsPseudoLegal(mp.ttMove) {
				if !mp.qsearch || mp.inCheck || mp.ttMove.IsTactical() {
					return mp.ttMove
				}
			}

		case phaseGenCaptures:
			mp.generateCaptures()
			mp.phase = phaseGoodCaptures

		case phaseGoodCaptures:
			m := mp.pickCapture()
			if m == board.NoMove {
				if mp.qsearch {
					if mp.inCheck {
						mp.phase = phaseGenQuiets
					} else {
						mp.phase = phaseBadCaptures
					}
				} else {
					mp.phase = phaseKiller1
				}
				continue
			}
			return m

		case phaseKiller1:
			mp.phase = phaseKiller2
			if mp.emittable(mp.killer1) && !mp.killer1.IsTactical() {
				return mp.killer1
			}

		case phaseKiller2:
			mp.phase = phaseCounter
			if mp.killer2 != mp.killer1 && mp.emittable(mp.killer2) && !mp.killer2.IsTactical() {
				return mp.killer2
			}

		case phaseCounter:
			mp.phase = phaseGenQuiets
			m := mp.counter
			if m != mp.killer1 && m != mp.killer2 && mp.emittable(m) && !m.IsTactical() {
				return m
			}

		case phaseGenQuiets:
			mp.generateQuiets()
			mp.phase = phaseQuiets

		case phaseQuiets:
			m := mp.pickQuiet()
			if m == board.NoMove {
				mp.phase = phaseBadCaptures
				continue
			}
			return m

		case phaseBadCaptures:
			if mp.badCapNext >= mp.badCapCount {
				mp.phase = phaseDone
				continue
			}
			// Least losing capture first.
			best := mp.badCapNext
			for i := mp.badCapNext + 1; i < mp.badCapCount; i++ {
				if mp.badCapScores[i] > mp.badCapScores[best] {
					best = i
				}
			}
			mp.badCaps[best], mp.badCaps[mp.badCapNext] = mp.badCaps[mp.badCapNext], mp.badCaps[best]
			mp.badCapScores[best], mp.badCapScores[mp.badCapNext] = mp.badCapScores[mp.badCapNext], mp.badCapScores[best]
			m := mp.badCaps[mp.badCapNext]
			mp.badCapNext++
			return m

		default:
			return board.NoMove
		}
	}
}

// emittable filters moves already emitted or not pseudo-legal here.
func (mp *MovePicker) emittable(m board.Move) bool {
	return m != board.NoMove && m != mp.ttMove && mp.pos.IsPseudoLegal(m)
}

func (mp *MovePicker) generateCaptures() {
	mp.pos.GenCaptures(&mp.caps)
	for i := 0; i < mp.caps.Len(); i++ {
		m := mp.caps.Get(i)
		// SEE first, MVV-LVA as the tie break within equal exchanges.
		see := mp.pos.See(m)
		score := see * 1024
		if m.IsCapture() && !m.IsEnPassant() {
			victim := mp.pos.PieceOn(m.To()).Type()
			attacker := mp.pos.PieceOn(m.From()).Type()
			score += board.SeeValue(victim)/10 - int(attacker)
		}
		mp.capScores[i] = score
	}
}

// pickCapture emits winning and equal captures, diverting losing ones to
// the bad capture list.
func (mp *MovePicker) pickCapture() board.Move {
	for mp.capNext < mp.caps.Len() {
		best := mp.capNext
		for i := mp.capNext + 1; i < mp.caps.Len(); i++ {
			if mp.capScores[i] > mp.capScores[best] {
				best = i
			}
		}
		mp.caps.Swap(mp.capNext, best)
		mp.capScores[mp.capNext], mp.capScores[best] = mp.capScores[best], mp.capScores[mp.capNext]

		m := mp.caps.Get(mp.capNext)
		score := mp.capScores[mp.capNext]
		mp.capNext++

		if m == mp.ttMove {
			continue
		}
		if score < 0 && mp.badCapCount < len(mp.badCaps) {
			mp.badCaps[mp.badCapCount] = m
			mp.badCapScores[mp.badCapCount] = score
			mp.badCapCount++
			continue
		}
		return m
	}
	return board.NoMove
}

func (mp *MovePicker) generateQuiets() {
	mp.pos.GenQuiets(&mp.quiets)
	us := mp.pos.SideToMove
	for i := 0; i < mp.quiets.Len(); i++ {
		mp.quietScores[i] = mp.tables.HistoryScore(us, mp.quiets.Get(i))
	}
}

func (mp *MovePicker) pickQuiet() board.Move {
	for mp.quietNext < mp.quiets.Len() {
		best := mp.quietNext
		for i := mp.quietNext + 1; i < mp.quiets.Len(); i++ {
			if mp.quietScores[i] > mp.quietScores[best] {
				best = i
			}
		}
		mp.quiets.Swap(mp.quietNext, best)
		mp.quietScores[mp.quietNext], mp.quietScores[best] = mp.quietScores[best], mp.quietScores[mp.quietNext]

		m := mp.quiets.Get(mp.quietNext)
		mp.quietNext++

		if m == mp.ttMove {
			continue
		}
		// Killer and counter phases only run in the main search; in-check
		// quiescence reaches the quiet moves without them.
		if !mp.qsearch && (m == mp.killer1 || m == mp.killer2 || m == mp.counter) {
			continue
		}
		return m
	}
	return board.NoMove
}
