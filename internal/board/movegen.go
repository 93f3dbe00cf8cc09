package board

// Pseudo-legal move generation. Legality is settled by MakeMove, which
// refuses moves that leave the mover's king attacked. Castling is the one
// exception: the crossed square is verified here since MakeMove only
// checks the destination.

// GenMoves appends all pseudo-legal moves for the side to move.
func (p *Position) GenMoves(ml *MoveList) {
	p.GenCaptures(ml)
	p.GenQuiets(ml)
}

// GenCaptures appends all pseudo-legal captures and promotions.
func (p *Position) GenCaptures(ml *MoveList) {
	us := p.SideToMove
	them := us.Flip()
	// The enemy king is never a capture target.
	enemies := p.Occupied[them] &^ p.Pieces[them][King]

	up := 8
	if us == Black {
		up = -8
	}

	for bb := p.Pieces[us][Pawn]; bb != 0; {
		from := bb.PopLsb()
		for att := pawnAttacks[us][from] & enemies; att != 0; {
			to := att.PopLsb()
			if to.RelativeRank(us) == 7 {
				addPromotions(ml, from, to, true)
			} else {
				ml.Add(NewCapture(from, to))
			}
		}
		if p.EnPassant != NoSquare && pawnAttacks[us][from].Has(p.EnPassant) {
			ml.Add(NewEnPassant(from, p.EnPassant))
		}
		if from.RelativeRank(us) == 6 {
			to := Square(int(from) + up)
			if !p.All.Has(to) {
				addPromotions(ml, from, to, false)
			}
		}
	}

	for pt := Knight; pt <= King; pt++ {
		for bb := p.Pieces[us][pt]; bb != 0; {
			from := bb.PopLsb()
			for att := PieceAttacks(pt, from, p.All) & enemies; att != 0; {
				ml.Add(NewCapture(from, att.PopLsb()))
			}
		}
	}
}

// GenQuiets appends all pseudo-legal non-captures except promotions.
func (p *Position) GenQuiets(ml *MoveList) {
	us := p.SideToMove

	up := 8
	if us == Black {
		up = -8
	}

	for bb := p.Pieces[us][Pawn]; bb != 0; {
		from := bb.PopLsb()
		rel := from.RelativeRank(us)
		if rel == 6 {
			continue
		}
		to := Square(int(from) + up)
		if p.All.Has(to) {
			continue
		}
		ml.Add(NewMove(from, to))
		if rel == 1 {
			to2 := Square(int(to) + up)
			if !p.All.Has(to2) {
				ml.Add(NewMove(from, to2))
			}
		}
	}

	for pt := Knight; pt <= King; pt++ {
		for bb := p.Pieces[us][pt]; bb != 0; {
			from := bb.PopLsb()
			for att := PieceAttacks(pt, from, p.All) &^ p.All; att != 0; {
				ml.Add(NewMove(from, att.PopLsb()))
			}
		}
	}

	p.genCastles(ml, us)
}

func addPromotions(ml *MoveList, from, to Square, capture bool) {
	ml.Add(NewPromotion(from, to, Queen, capture))
	ml.Add(NewPromotion(from, to, Rook, capture))
	ml.Add(NewPromotion(from, to, Bishop, capture))
	ml.Add(NewPromotion(from, to, Knight, capture))
}

func (p *Position) genCastles(ml *MoveList, us Color) {
	if p.InCheck() {
		return
	}
	them := us.Flip()
	if us == White {
		if p.Castling&WhiteKingside != 0 &&
			p.All&(BB(F1)|BB(G1)) == 0 &&
			!p.isAttacked(F1, them, p.All) {
			ml.Add(NewCastle(E1, G1))
		}
		if p.Castling&WhiteQueenside != 0 &&
			p.All&(BB(D1)|BB(C1)|BB(B1)) == 0 &&
			!p.isAttacked(D1, them, p.All) {
			ml.Add(NewCastle(E1, C1))
		}
	} else {
		if p.Castling&BlackKingside != 0 &&
			p.All&(BB(F8)|BB(G8)) == 0 &&
			!p.isAttacked(F8, them, p.All) {
			ml.Add(NewCastle(E8, G8))
		}
		if p.Castling&BlackQueenside != 0 &&
			p.All&(BB(D8)|BB(C8)|BB(B8)) == 0 &&
			!p.isAttacked(D8, them, p.All) {
			ml.Add(NewCastle(E8, C8))
		}
	}
}

// LegalMoves returns the fully legal moves of the position.
func (p *Position) LegalMoves() *MoveList {
	var pseudo MoveList
	p.GenMoves(&pseudo)

	legal := &MoveList{}
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if p.MakeMove(m) {
			p.UnmakeMove()
			legal.Add(m)
		}
	}
	return legal
}

// HasLegalMove reports whether at least one legal move exists.
func (p *Position) HasLegalMove() bool {
	var pseudo MoveList
	p.GenMoves(&pseudo)
	for i := 0; i < pseudo.Len(); i++ {
		if p.MakeMove(pseudo.Get(i)) {
			p.UnmakeMove()
			return true
		}
	}
	return false
}

// IsPseudoLegal reports whether m is a pseudo-legal move in the current
// position. Moves recalled from the hash table or the killer and counter
// tables were recorded in other positions and must be revalidated.
func (p *Position) IsPseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	us := p.SideToMove
	from, to := m.From(), m.To()
	pc := p.Squares[from]
	if pc == NoPiece || pc.Color() != us {
		return false
	}
	pt := pc.Type()

	if m.IsCastle() {
		if pt != King {
			return false
		}
		var ml MoveList
		p.genCastles(&ml, us)
		return ml.Contains(m)
	}

	if m.IsEnPassant() {
		return pt == Pawn && to == p.EnPassant && p.EnPassant != NoSquare &&
			pawnAttacks[us][from].Has(to)
	}

	target := p.Squares[to]
	if m.IsCapture() {
		if target == NoPiece || target.Color() == us || target.Type() == King {
			return false
		}
	} else if target != NoPiece {
		return false
	}

	if pt == Pawn {
		promoRank := to.RelativeRank(us) == 7
		if promoRank != m.IsPromotion() {
			return false
		}
		if m.IsCapture() {
			return pawnAttacks[us][from].Has(to)
		}
		up := 8
		if us == Black {
			up = -8
		}
		if int(to) == int(from)+up {
			return true
		}
		if int(to) == int(from)+2*up {
			return from.RelativeRank(us) == 1 && !p.All.Has(Square(int(from)+up))
		}
		return false
	}

	if m.IsPromotion() {
		return false
	}
	return PieceAttacks(pt, from, p.All).Has(to)
}

// GivesCheck reports whether m checks the opponent. Ordinary moves are
// resolved with attack tables; promotions, castling and en passant fall
// back to making the move.
func (p *Position) GivesCheck(m Move) bool {
	if m.IsPromotion() || m.IsCastle() || m.IsEnPassant() {
		if !p.MakeMove(m) {
			return false
		}
		chk := p.InCheck()
		p.UnmakeMove()
		return chk
	}

	us := p.SideToMove
	ksq := p.KingSq[us.Flip()]
	from, to := m.From(), m.To()
	pt := p.Squares[from].Type()
	occ := (p.All &^ BB(from)) | BB(to)

	if pt == Pawn {
		if pawnAttacks[us][to].Has(ksq) {
			return true
		}
	} else if PieceAttacks(pt, to, occ).Has(ksq) {
		return true
	}

	// Discovered check by a slider uncovered behind the vacated square.
	rq := (p.Pieces[us][Rook] | p.Pieces[us][Queen]) &^ BB(from)
	bq := (p.Pieces[us][Bishop] | p.Pieces[us][Queen]) &^ BB(from)
	if RookAttacks(ksq, occ)&rq != 0 || BishopAttacks(ksq, occ)&bq != 0 {
		return true
	}
	return false
}
