package board

import (
	"fmt"
	"strings"
)

// Placement describes a single piece placement used to construct a Position.
type Placement struct {
	Square Square
	Piece  Piece
}

func (p Placement) String() string {
	return fmt.Sprintf("%v@%v", p.Piece, p.Square)
}

// Undo captures exactly the state MakeMove destroys, so UndoMove can restore it without
// recomputing anything from the move itself: the castling rights, en-passant target and
// fifty-move counter as they stood before the move, plus the incremental hash, so undo is
// a handful of field restores and the inverse of the piece/bitboard edits MakeMove made.
type Undo struct {
	move    Move
	mover   Color
	castle  Castling
	ep      Square
	fifty   int
	hash    ZobristHash
}

// Position is a mutable chess position: piece placement, side to move, castling rights,
// en-passant target, fifty-move counter and full-move number, plus an incremental Zobrist
// hash and the history needed to make and undo moves and detect repetition.
//
// Position is not safe for concurrent use; callers making moves across goroutines (as the
// engine does when it hands a position to a background search) must coordinate externally,
// typically by cloning or by confining a Position to one goroutine at a time.
type Position struct {
	zt *ZobristTable

	board   [NumSquares]Piece
	bbPiece [NumPieces]Bitboard
	bbColor [NumColors]Bitboard
	kingSq  [NumColors]Square

	side      Color
	ep        Square
	fifty     int
	fullmoves int
	castle    Castling
	hash      ZobristHash

	history     []Undo
	repetitions map[ZobristHash]int
}

// NewPosition constructs a position from an explicit piece placement plus game state. It
// validates that exactly one king per side is present and that the side not to move is not
// already in check (an illegal position to have arrived at).
func NewPosition(zt *ZobristTable, placements []Placement, side Color, castle Castling, ep Square, fifty, fullmoves int) (*Position, error) {
	pos := &Position{
		zt:          zt,
		side:        side,
		ep:          ep,
		fifty:       fifty,
		fullmoves:   fullmoves,
		castle:      castle,
		repetitions: map[ZobristHash]int{},
	}
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		pos.board[sq] = NoPiece
	}

	for _, p := range placements {
		if pos.board[p.Square] != NoPiece {
			return nil, fmt.Errorf("duplicate placement: %v", p)
		}
		pos.place(p.Square, p.Piece)
	}

	if pos.bbPiece[WK].PopCount() != 1 || pos.bbPiece[BK].PopCount() != 1 {
		return nil, fmt.Errorf("invalid number of kings")
	}
	pos.kingSq[White] = pos.bbPiece[WK].LSB()
	pos.kingSq[Black] = pos.bbPiece[BK].LSB()

	if KingAttackboard(pos.kingSq[White])&pos.bbPiece[BK] != 0 {
		return nil, fmt.Errorf("kings cannot be adjacent")
	}
	if pos.IsChecked(side.Other()) {
		return nil, fmt.Errorf("side not to move is in check")
	}

	pos.hash = zt.Hash(pos)
	pos.repetitions[pos.hash] = 1

	return pos, nil
}

func (p *Position) place(sq Square, piece Piece) {
	p.board[sq] = piece
	p.bbPiece[piece] |= BitMask(sq)
	p.bbColor[piece.Color()] |= BitMask(sq)
}

func (p *Position) remove(sq Square) Piece {
	piece := p.board[sq]
	p.board[sq] = NoPiece
	p.bbPiece[piece] &^= BitMask(sq)
	p.bbColor[piece.Color()] &^= BitMask(sq)
	return piece
}

// Clone returns an independent copy of p: a search tree node can hold its own position
// and advance it with MakeMove without disturbing any other node's view of the game,
// including the repetition counts inherited from the real game history leading to p.
// The clone starts with an empty undo history; it is a fresh base for future moves, not
// a replica of how p itself was reached.
func (p *Position) Clone() *Position {
	clone := *p
	clone.history = nil
	clone.repetitions = make(map[ZobristHash]int, len(p.repetitions))
	for k, v := range p.repetitions {
		clone.repetitions[k] = v
	}
	return &clone
}

// PieceAt returns the piece on sq, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	return p.board[sq]
}

// IsEmpty reports whether sq has no piece on it.
func (p *Position) IsEmpty(sq Square) bool {
	return p.board[sq] == NoPiece
}

// PieceBitboard returns the bitboard of squares occupied by piece pc.
func (p *Position) PieceBitboard(pc Piece) Bitboard {
	return p.bbPiece[pc]
}

// Occupancy returns the bitboard of squares occupied by c's pieces.
func (p *Position) Occupancy(c Color) Bitboard {
	return p.bbColor[c]
}

// Occupied returns the bitboard of all occupied squares.
func (p *Position) Occupied() Bitboard {
	return p.bbColor[White] | p.bbColor[Black]
}

// Side returns the side to move.
func (p *Position) Side() Color {
	return p.side
}

// Castling returns the current castling rights.
func (p *Position) Castling() Castling {
	return p.castle
}

// EnPassant returns the en-passant target square and whether one is set. For example,
// after 1.e4 the target square is e3, whether or not Black has a pawn on d4 or f4 to use it.
func (p *Position) EnPassant() (Square, bool) {
	return p.ep, p.ep != NoSquare
}

// Fifty returns the half-move count since the last pawn move or capture.
func (p *Position) Fifty() int {
	return p.fifty
}

// FullMoves returns the full-move number, incremented after Black moves.
func (p *Position) FullMoves() int {
	return p.fullmoves
}

// Hash returns the current Zobrist hash.
func (p *Position) Hash() ZobristHash {
	return p.hash
}

// KingSquare returns the square of c's king.
func (p *Position) KingSquare(c Color) Square {
	return p.kingSq[c]
}

// IsAttacked reports whether sq is attacked by c's opponent. Does not account for a pawn's
// en-passant capture, which is not an attack on sq itself.
func (p *Position) IsAttacked(c Color, sq Square) bool {
	opp := c.Other()
	occ := p.Occupied()

	if diag := p.bbPiece[NewPiece(opp, Bishop)] | p.bbPiece[NewPiece(opp, Queen)]; diag != 0 && BishopAttackboard(occ, sq)&diag != 0 {
		return true
	}
	if orth := p.bbPiece[NewPiece(opp, Rook)] | p.bbPiece[NewPiece(opp, Queen)]; orth != 0 && RookAttackboard(occ, sq)&orth != 0 {
		return true
	}
	if knights := p.bbPiece[NewPiece(opp, Knight)]; knights != 0 && KnightAttackboard(sq)&knights != 0 {
		return true
	}
	if kings := p.bbPiece[NewPiece(opp, King)]; kings != 0 && KingAttackboard(sq)&kings != 0 {
		return true
	}
	return PawnCaptureboard(opp, p.bbPiece[NewPiece(opp, Pawn)])&BitMask(sq) != 0
}

// IsChecked reports whether c's king is in check.
func (p *Position) IsChecked(c Color) bool {
	return p.IsAttacked(c, p.kingSq[c])
}

// RepetitionCount returns how many times the current position (by Zobrist hash) has
// occurred so far, including the current occurrence. A threefold repetition draw is
// RepetitionCount() >= 3.
func (p *Position) RepetitionCount() int {
	return p.repetitions[p.hash]
}

// MakeMove applies a pseudo-legal move to the position, updating all incremental state
// (bitboards, castling rights, en-passant target, fifty-move counter, hash, side to move)
// and pushing an Undo record. It does not itself check legality (that a king isn't left in
// check); callers generating pseudo-legal moves must filter with IsChecked after the fact,
// undoing moves that leave the mover's own king attacked.
func (p *Position) MakeMove(m Move) {
	u := Undo{move: m, mover: p.side, castle: p.castle, ep: p.ep, fifty: p.fifty, hash: p.hash}
	p.history = append(p.history, u)

	mover := p.remove(m.From)

	// (1) Resolve and remove the captured piece, if any. En passant captures a pawn not
	// standing on the destination square.
	capSq := m.To
	if m.Flag == EnPassantFlag {
		if p.side == White {
			capSq = m.To - 8
		} else {
			capSq = m.To + 8
		}
	}
	if m.Captured != NoPiece {
		p.remove(capSq)
		p.hash ^= p.zt.PieceKey(m.Captured, capSq)
	}
	p.hash ^= p.zt.PieceKey(mover, m.From)

	// (2) Place the moving piece, promoting if applicable.
	placed := mover
	if m.IsPromotion() {
		placed = NewPiece(p.side, m.Promotion)
	}
	p.place(m.To, placed)
	p.hash ^= p.zt.PieceKey(placed, m.To)

	if mover.Kind() == King {
		p.kingSq[p.side] = m.To
	}

	// (3) Castling also relocates the rook.
	if m.Flag == CastleFlag {
		rookFrom, rookTo := castleRookSquares(m.To)
		rook := p.remove(rookFrom)
		p.place(rookTo, rook)
		p.hash ^= p.zt.PieceKey(rook, rookFrom)
		p.hash ^= p.zt.PieceKey(rook, rookTo)
	}

	// (4) Update castling rights.
	p.hash ^= p.zt.CastleKey(p.castle)
	p.castle &^= castleClear[m.From] | castleClear[m.To]
	p.hash ^= p.zt.CastleKey(p.castle)

	// (5) Update the en-passant target.
	if p.ep != NoSquare {
		p.hash ^= p.zt.EnPassantKey(p.ep)
	}
	if m.Flag == PawnDoubleStepFlag {
		if p.side == White {
			p.ep = m.From + 8
		} else {
			p.ep = m.From - 8
		}
		p.hash ^= p.zt.EnPassantKey(p.ep)
	} else {
		p.ep = NoSquare
	}

	// (6) Fifty-move counter: reset on pawn move or capture.
	if mover.Kind() == Pawn || m.Captured != NoPiece {
		p.fifty = 0
	} else {
		p.fifty++
	}

	// (7) Side to move and full-move number.
	p.side = p.side.Other()
	p.hash ^= p.zt.SideKey()
	if p.side == White {
		p.fullmoves++
	}

	p.repetitions[p.hash]++
}

// UndoMove reverses the most recent MakeMove. It panics if there is no move to undo, which
// indicates a programming error (undo is always paired with a prior make by the caller).
func (p *Position) UndoMove() Move {
	n := len(p.history)
	if n == 0 {
		panic("board: no move to undo")
	}
	u := p.history[n-1]
	p.history = p.history[:n-1]
	m := u.move

	p.repetitions[p.hash]--
	if p.repetitions[p.hash] == 0 {
		delete(p.repetitions, p.hash)
	}

	p.side = u.mover
	if p.side == Black {
		p.fullmoves--
	}

	placed := p.remove(m.To)
	mover := placed
	if m.IsPromotion() {
		mover = NewPiece(p.side, Pawn)
	}
	p.place(m.From, mover)
	if mover.Kind() == King {
		p.kingSq[p.side] = m.From
	}

	if m.Flag == CastleFlag {
		rookFrom, rookTo := castleRookSquares(m.To)
		rook := p.remove(rookTo)
		p.place(rookFrom, rook)
	}

	if m.Captured != NoPiece {
		capSq := m.To
		if m.Flag == EnPassantFlag {
			if p.side == White {
				capSq = m.To - 8
			} else {
				capSq = m.To + 8
			}
		}
		p.place(capSq, m.Captured)
	}

	p.castle = u.castle
	p.ep = u.ep
	p.fifty = u.fifty
	p.hash = u.hash

	return m
}

func castleRookSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	case C8:
		return A8, D8
	default:
		panic("board: invalid castle target square")
	}
}

func (p *Position) String() string {
	var sb strings.Builder
	for r := int(Rank8); r >= int(Rank1); r-- {
		for f := ZeroFile; f < NumFiles; f++ {
			sq := NewSquare(f, Rank(r))
			if piece := p.board[sq]; piece != NoPiece {
				sb.WriteString(piece.String())
			} else {
				sb.WriteRune('-')
			}
		}
		if r != int(Rank1) {
			sb.WriteRune('/')
		}
	}

	ep := "-"
	if p.ep != NoSquare {
		ep = p.ep.String()
	}

	return fmt.Sprintf("%v %v %v(%v) fifty=%v full=%v", sb.String(), p.side, p.castle, ep, p.fifty, p.fullmoves)
}
