package encoder

import "github.com/mcfarljm/dlchess-go/pkg/board"

// Encoder converts a Position to its input state tensor and maps legal moves to
// output policy-tensor coordinates, following the AlphaZero input/output planes.
//
// Version controls which planes are emitted: version 0 omits the en-passant plane
// (21 channels); version >= 1 adds it (22 channels); version >= 2 additionally
// orients the board so the side to move is always "at the bottom".
type Encoder struct {
	Version int
}

// NewEncoder returns an Encoder at the given version.
func NewEncoder(version int) Encoder {
	return Encoder{Version: version}
}

func (e Encoder) hasEnPassantPlane() bool { return e.Version > 0 }
func (e Encoder) orientsBoard() bool      { return e.Version > 1 }

// Channels returns the number of input planes this encoder produces.
func (e Encoder) Channels() int {
	if e.hasEnPassantPlane() {
		return 22
	}
	return 21
}

// orientSquare returns sq unchanged, or its 180-degree rotation (63-sq) if orient
// is true. A vertical+horizontal flip of the whole board is exactly this rotation,
// since sq = file + 8*rank and flipping both coordinates gives (7-file)+8*(7-rank) = 63-sq.
func orientSquare(sq board.Square, orient bool) board.Square {
	if !orient || sq == board.NoSquare {
		return sq
	}
	return 63 - sq
}

func orientBitboard(bb board.Bitboard, orient bool) board.Bitboard {
	if !orient {
		return bb
	}
	var out board.Bitboard
	for b := bb; b != 0; {
		sq := b.Pop()
		out |= board.BitMask(orientSquare(sq, true))
	}
	return out
}

// Encode returns the (Channels(),8,8) input tensor for pos.
func (e Encoder) Encode(pos *board.Position) Tensor {
	orient := e.orientsBoard() && pos.Side() == board.Black

	t := NewTensor(e.Channels(), 8, 8)

	// Planes 0..11: per-piece occupancy, in Piece enum order (WP..WK,BP..BK).
	for pc := board.Piece(0); pc < board.NoPiece; pc++ {
		bb := orientBitboard(pos.PieceBitboard(pc), orient)
		for b := bb; b != 0; {
			sq := b.Pop()
			t.Set(1.0, int(pc), int(sq.Rank()), int(sq.File()))
		}
	}

	// Planes 12/13: one or two prior occurrences of the current position.
	reps := pos.RepetitionCount()
	if reps >= 2 {
		t.FillChannel(12, 1.0)
	}
	if reps >= 3 {
		t.FillChannel(13, 1.0)
	}

	// Plane 14: side to move.
	if pos.Side() == board.Black {
		t.FillChannel(14, 1.0)
	}

	// Plane 15: constant, aids convolutional edge detection.
	t.FillChannel(15, 1.0)

	// Planes 16..19: castling rights, swapped under orientation so "our side"
	// always occupies the first two of the four.
	wkOff, wqOff, bkOff, bqOff := 0, 1, 2, 3
	if orient {
		wkOff, wqOff, bkOff, bqOff = 2, 3, 0, 1
	}
	setCastlePlane(t, 16, wkOff, pos.Castling().IsAllowed(board.WhiteKingSideCastle))
	setCastlePlane(t, 16, wqOff, pos.Castling().IsAllowed(board.WhiteQueenSideCastle))
	setCastlePlane(t, 16, bkOff, pos.Castling().IsAllowed(board.BlackKingSideCastle))
	setCastlePlane(t, 16, bqOff, pos.Castling().IsAllowed(board.BlackQueenSideCastle))

	// Plane 20: fifty-move counter, raw half-move count.
	t.FillChannel(20, float32(pos.Fifty()))

	// Plane 21: one-hot en-passant target square.
	if e.hasEnPassantPlane() {
		if ep, ok := pos.EnPassant(); ok {
			sq := orientSquare(ep, orient)
			t.Set(1.0, 21, int(sq.Rank()), int(sq.File()))
		}
	}

	return t
}

func setCastlePlane(t Tensor, base, offset int, allowed bool) {
	if allowed {
		t.FillChannel(base+offset, 1.0)
	}
}
