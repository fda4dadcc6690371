package board

// Result represents the result of a finished game. 2 bits.
type Result uint8

const (
	Undecided Result = iota
	WhiteWins
	BlackWins
	Draw
)

func (r Result) String() string {
	switch r {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// IsOver reports whether the position is terminal and, if so, the result: checkmate or
// stalemate (from the absence of legal moves), the fifty-move rule, threefold repetition,
// or insufficient material. legalMoves is the caller's already-computed LegalMoves() for
// the position, since a playout loop generates it anyway and recomputing it here would
// double the per-node move generation cost.
func (p *Position) IsOver(legalMoves []Move) (Result, bool) {
	if len(legalMoves) == 0 {
		if p.IsChecked(p.side) {
			return winnerOf(p.side.Other()), true
		}
		return Draw, true
	}
	if p.fifty > 100 {
		return Draw, true
	}
	if p.RepetitionCount() >= 3 {
		return Draw, true
	}
	if p.IsDrawByMaterial() {
		return Draw, true
	}
	return Undecided, false
}

func winnerOf(c Color) Result {
	if c == White {
		return WhiteWins
	}
	return BlackWins
}

// IsDrawByMaterial reports whether neither side has mating material left: no pawns,
// rooks, or queens on the board, and each side independently has at most one minor
// piece, with no side holding both a knight and a bishop.
func (p *Position) IsDrawByMaterial() bool {
	if p.bbPiece[WP]|p.bbPiece[BP]|p.bbPiece[WR]|p.bbPiece[BR]|p.bbPiece[WQ]|p.bbPiece[BQ] != 0 {
		return false
	}

	wn, wb := p.bbPiece[WN].PopCount(), p.bbPiece[WB].PopCount()
	bn, bb := p.bbPiece[BN].PopCount(), p.bbPiece[BB].PopCount()

	if wn > 1 || wb > 1 || bn > 1 || bb > 1 {
		return false
	}
	if (wn > 0 && wb > 0) || (bn > 0 && bb > 0) {
		return false
	}
	return true
}
