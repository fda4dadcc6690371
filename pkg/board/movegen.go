package board

// PseudoLegalMoves returns all moves for the side to move that are legal ignoring
// whether the mover's own king ends up in check. Captures, promotions, en passant and
// castling are all included; only king safety is deferred to LegalMoves.
func (p *Position) PseudoLegalMoves() []Move {
	var moves []Move

	moves = p.genPawnMoves(moves)
	moves = p.genOfficerMoves(moves, Knight)
	moves = p.genOfficerMoves(moves, Bishop)
	moves = p.genOfficerMoves(moves, Rook)
	moves = p.genOfficerMoves(moves, Queen)
	moves = p.genOfficerMoves(moves, King)
	moves = p.genCastleMoves(moves)

	return moves
}

// LegalMoves returns the subset of PseudoLegalMoves that do not leave the mover's own
// king in check. It makes and undoes each candidate move against the receiver.
func (p *Position) LegalMoves() []Move {
	side := p.side
	candidates := p.PseudoLegalMoves()

	moves := make([]Move, 0, len(candidates))
	for _, m := range candidates {
		p.MakeMove(m)
		if !p.IsChecked(side) {
			moves = append(moves, m)
		}
		p.UndoMove()
	}
	return moves
}

// IsLegal reports whether m is both pseudo-legal and safe for the mover's king. Used by
// UCI's "position ... moves ..." to validate externally supplied moves.
func (p *Position) IsLegal(m Move) bool {
	for _, c := range p.LegalMoves() {
		if c.Equals(m) {
			return true
		}
	}
	return false
}

func (p *Position) genPawnMoves(moves []Move) []Move {
	c := p.side
	pawns := p.bbPiece[NewPiece(c, Pawn)]
	all := p.Occupied()
	opp := p.Occupancy(c.Other())
	promoRank := PawnPromotionRank(c)

	forward := 8
	if c == Black {
		forward = -8
	}

	// Single and double pushes.
	single := PawnMoveboard(all, c, pawns)
	for bb := single; bb != 0; {
		to := bb.Pop()
		from := to - Square(forward)
		moves = appendPawnMove(moves, from, to, NoPiece, promoRank)
	}

	jumpTargets := PawnMoveboard(all, c, single) & PawnJumpRank(c)
	for bb := jumpTargets; bb != 0; {
		to := bb.Pop()
		from := to - Square(2*forward)
		moves = append(moves, Move{From: from, To: to, Captured: NoPiece, Flag: PawnDoubleStepFlag})
	}

	// Captures, including promotions.
	for bb := pawns; bb != 0; {
		from := bb.Pop()
		targets := PawnCaptureboard(c, BitMask(from)) & opp
		for t := targets; t != 0; {
			to := t.Pop()
			moves = appendPawnMove(moves, from, to, p.board[to], promoRank)
		}

		if ep, ok := p.EnPassant(); ok {
			if PawnCaptureboard(c, BitMask(from))&BitMask(ep) != 0 {
				moves = append(moves, Move{From: from, To: ep, Captured: NewPiece(c.Other(), Pawn), Flag: EnPassantFlag})
			}
		}
	}

	return moves
}

func appendPawnMove(moves []Move, from, to Square, captured Piece, promoRank Bitboard) []Move {
	if promoRank.IsSet(to) {
		for _, k := range []Kind{Queen, Rook, Bishop, Knight} {
			moves = append(moves, Move{From: from, To: to, Captured: captured, Promotion: k})
		}
		return moves
	}
	return append(moves, Move{From: from, To: to, Captured: captured})
}

func (p *Position) genOfficerMoves(moves []Move, k Kind) []Move {
	c := p.side
	own := p.Occupancy(c)
	opp := p.Occupancy(c.Other())
	occ := p.Occupied()

	for bb := p.bbPiece[NewPiece(c, k)]; bb != 0; {
		from := bb.Pop()
		targets := Attackboard(occ, from, k) &^ own
		for t := targets; t != 0; {
			to := t.Pop()
			captured := NoPiece
			if opp.IsSet(to) {
				captured = p.board[to]
			}
			moves = append(moves, Move{From: from, To: to, Captured: captured})
		}
	}
	return moves
}

func (p *Position) genCastleMoves(moves []Move) []Move {
	c := p.side
	occ := p.Occupied()

	if c == White {
		if p.castle.IsAllowed(WhiteKingSideCastle) && occ&(BitMask(F1)|BitMask(G1)) == 0 &&
			!p.IsAttacked(White, E1) && !p.IsAttacked(White, F1) && !p.IsAttacked(White, G1) {
			moves = append(moves, Move{From: E1, To: G1, Captured: NoPiece, Flag: CastleFlag})
		}
		if p.castle.IsAllowed(WhiteQueenSideCastle) && occ&(BitMask(B1)|BitMask(C1)|BitMask(D1)) == 0 &&
			!p.IsAttacked(White, E1) && !p.IsAttacked(White, D1) && !p.IsAttacked(White, C1) {
			moves = append(moves, Move{From: E1, To: C1, Captured: NoPiece, Flag: CastleFlag})
		}
	} else {
		if p.castle.IsAllowed(BlackKingSideCastle) && occ&(BitMask(F8)|BitMask(G8)) == 0 &&
			!p.IsAttacked(Black, E8) && !p.IsAttacked(Black, F8) && !p.IsAttacked(Black, G8) {
			moves = append(moves, Move{From: E8, To: G8, Captured: NoPiece, Flag: CastleFlag})
		}
		if p.castle.IsAllowed(BlackQueenSideCastle) && occ&(BitMask(B8)|BitMask(C8)|BitMask(D8)) == 0 &&
			!p.IsAttacked(Black, E8) && !p.IsAttacked(Black, D8) && !p.IsAttacked(Black, C8) {
			moves = append(moves, Move{From: E8, To: C8, Captured: NoPiece, Flag: CastleFlag})
		}
	}
	return moves
}
