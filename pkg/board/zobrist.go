package board

import "math/rand"

// ZobristHash is a position hash based on piece-squares, castling rights, en-passant
// square and side to move. It is intended for 3-fold repetition draw detection and the
// evaluation cache key, and hashes "identical" positions to the same value.
//
// See also: https://research.cs.wisc.edu/techreports/1970/TR88.pdf.
type ZobristHash uint64

// ZobristTable is a pseudo-randomized table for computing a position hash incrementally.
//
// The piece table carries one row beyond the 12 colored pieces, indexed by NoPiece.
// That row's key at a given square doubles as the en-passant key for that square: XORing
// pieces[NoPiece][epSquare] in and out as the en-passant target changes keys that slice
// of state without a second 64-entry table, the same way a real piece's key is XORed in
// and out as it moves.
type ZobristTable struct {
	pieces [NoPiece + 1][NumSquares]ZobristHash
	castle [FullCastingRights + 1]ZobristHash
	side   ZobristHash
}

func NewZobristTable(seed int64) *ZobristTable {
	r := rand.New(rand.NewSource(seed))
	t := &ZobristTable{}

	for p := Piece(0); p <= NoPiece; p++ {
		for sq := ZeroSquare; sq < NumSquares; sq++ {
			t.pieces[p][sq] = ZobristHash(r.Uint64())
		}
	}
	for c := Castling(0); c <= FullCastingRights; c++ {
		t.castle[c] = ZobristHash(r.Uint64())
	}
	t.side = ZobristHash(r.Uint64())

	return t
}

// PieceKey returns the key for piece p standing on sq.
func (z *ZobristTable) PieceKey(p Piece, sq Square) ZobristHash {
	return z.pieces[p][sq]
}

// EnPassantKey returns the key for an en-passant target square.
func (z *ZobristTable) EnPassantKey(sq Square) ZobristHash {
	return z.pieces[NoPiece][sq]
}

// CastleKey returns the key for a given castling rights mask.
func (z *ZobristTable) CastleKey(c Castling) ZobristHash {
	return z.castle[c]
}

// SideKey returns the key XORed in exactly when it is Black to move.
func (z *ZobristTable) SideKey() ZobristHash {
	return z.side
}

// Hash computes the zobrist hash for the given position from scratch. Position
// maintains this incrementally across MakeMove/Undo; Hash exists for construction
// from a FEN and for verifying the incremental value in tests.
func (z *ZobristTable) Hash(pos *Position) ZobristHash {
	var h ZobristHash

	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if p := pos.PieceAt(sq); p != NoPiece {
			h ^= z.PieceKey(p, sq)
		}
	}
	h ^= z.CastleKey(pos.castle)
	if pos.ep != NoSquare {
		h ^= z.EnPassantKey(pos.ep)
	}
	if pos.side == Black {
		h ^= z.side
	}
	return h
}
