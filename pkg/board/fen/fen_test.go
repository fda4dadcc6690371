package fen_test

import (
	"testing"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zt = board.NewZobristTable(1)

func TestDecodeInitial(t *testing.T) {
	pos, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, board.White, pos.Side())
	assert.Equal(t, board.FullCastingRights, pos.Castling())
	_, ok := pos.EnPassant()
	assert.False(t, ok)
	assert.Equal(t, 0, pos.Fifty())
	assert.Equal(t, 1, pos.FullMoves())
	assert.Equal(t, board.WR, pos.PieceAt(board.A1))
	assert.Equal(t, board.BK, pos.PieceAt(board.E8))
}

func TestEncodeRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"8/8/8/8/8/8/8/4K2k w - - 12 34",
	}

	for _, tt := range tests {
		pos, err := fen.Decode(zt, tt)
		require.NoError(t, err, tt)
		assert.Equal(t, tt, fen.Encode(pos), tt)
	}
}

func TestDecodeTolerant(t *testing.T) {
	// Halfmove clock and fullmove number are optional.
	pos, err := fen.Decode(zt, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	require.NoError(t, err)
	assert.Equal(t, 0, pos.Fifty())
	assert.Equal(t, 1, pos.FullMoves())
}

func TestDecodeInvalid(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",              // missing active color / ep
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",          // missing rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBXR w KQkq - 0 1", // invalid piece
		"8/8/8/8/8/8/8/8 w KQkq - 0 1",                             // no kings
	}

	for _, tt := range tests {
		_, err := fen.Decode(zt, tt)
		assert.Error(t, err, tt)
	}
}
