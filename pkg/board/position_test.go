package board_test

import (
	"testing"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zt = board.NewZobristTable(1)

func TestPseudoLegalMoves(t *testing.T) {

	t.Run("pawns", func(t *testing.T) {
		tests := []struct {
			turn      board.Color
			pieces    []board.Placement
			enpassant board.Square
			expected  []board.Move
		}{
			{ // Pawn @ E2,G5
				board.White,
				[]board.Placement{
					{board.E1, board.WK}, {board.E8, board.BK},
					{board.E2, board.WP},
					{board.G5, board.WP},
				},
				board.NoSquare,
				[]board.Move{
					{From: board.E2, To: board.E3},
					{From: board.E2, To: board.E4, Flag: board.PawnDoubleStepFlag},
					{From: board.G5, To: board.G6},
				},
			},
			{ // Pawn @ E2 -- obstructed w/ capture
				board.White,
				[]board.Placement{
					{board.E1, board.WK}, {board.E8, board.BK},
					{board.E2, board.WP},
					{board.D3, board.BN},
					{board.E3, board.BB},
				},
				board.NoSquare,
				[]board.Move{
					{From: board.E2, To: board.D3, Captured: board.BN},
				},
			},
			{ // Pawn @ D7 -- promotion
				board.White,
				[]board.Placement{
					{board.E1, board.WK}, {board.H8, board.BK},
					{board.D7, board.WP},
				},
				board.NoSquare,
				[]board.Move{
					{From: board.D7, To: board.D8, Promotion: board.Queen},
					{From: board.D7, To: board.D8, Promotion: board.Rook},
					{From: board.D7, To: board.D8, Promotion: board.Bishop},
					{From: board.D7, To: board.D8, Promotion: board.Knight},
				},
			},
			{ // Pawn @ C4,E4 -- en passant
				board.Black,
				[]board.Placement{
					{board.E1, board.WK}, {board.E8, board.BK},
					{board.C4, board.BP},
					{board.D4, board.WP},
					{board.E4, board.BP},
				},
				board.D3,
				[]board.Move{
					{From: board.E4, To: board.E3},
					{From: board.C4, To: board.C3},
					{From: board.C4, To: board.D3, Captured: board.WP, Flag: board.EnPassantFlag},
					{From: board.E4, To: board.D3, Captured: board.WP, Flag: board.EnPassantFlag},
				},
			},
		}

		for _, tt := range tests {
			pos, err := board.NewPosition(zt, tt.pieces, tt.turn, 0, tt.enpassant, 0, 1)
			require.NoError(t, err)

			actual := filterByPiece(pos, tt.pieces, board.Pawn)
			assert.ElementsMatch(t, printMoves(tt.expected), printMoves(actual))
		}
	})

	t.Run("castling", func(t *testing.T) {
		tests := []struct {
			turn     board.Color
			pieces   []board.Placement
			castling board.Castling
			expected []board.Move
		}{
			{ // No rights
				board.White,
				[]board.Placement{
					{board.E1, board.WK}, {board.E8, board.BK},
					{board.H1, board.WR}, {board.A1, board.WR},
				},
				0,
				nil,
			},
			{ // Full rights.
				board.White,
				[]board.Placement{
					{board.E1, board.WK}, {board.E8, board.BK},
					{board.H1, board.WR}, {board.A1, board.WR},
				},
				board.FullCastingRights,
				[]board.Move{
					{From: board.E1, To: board.G1, Flag: board.CastleFlag},
					{From: board.E1, To: board.C1, Flag: board.CastleFlag},
				},
			},
			{ // Obstructed king-side.
				board.Black,
				[]board.Placement{
					{board.E1, board.WK}, {board.E8, board.BK},
					{board.H8, board.BR}, {board.G8, board.WB}, {board.A8, board.BR},
				},
				board.FullCastingRights,
				[]board.Move{
					{From: board.E8, To: board.C8, Flag: board.CastleFlag},
				},
			},
		}

		for _, tt := range tests {
			pos, err := board.NewPosition(zt, tt.pieces, tt.turn, tt.castling, board.NoSquare, 0, 1)
			require.NoError(t, err)

			actual := filterMoves(pos.PseudoLegalMoves(), func(m board.Move) bool {
				return m.Flag == board.CastleFlag
			})
			assert.ElementsMatch(t, printMoves(tt.expected), printMoves(actual))
		}
	})
}

func TestMakeUndoMove(t *testing.T) {
	pos, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	before := pos.Hash()
	beforeStr := pos.String()

	moves := pos.LegalMoves()
	require.Len(t, moves, 20)

	for _, m := range moves {
		pos.MakeMove(m)
		undone := pos.UndoMove()
		assert.Equal(t, m, undone)
		assert.Equal(t, before, pos.Hash())
		assert.Equal(t, beforeStr, pos.String())
	}
}

func TestPerft(t *testing.T) {
	tests := []struct {
		fen      string
		depth    int
		expected int
	}{
		{fen.Initial, 1, 20},
		{fen.Initial, 2, 400},
		{fen.Initial, 3, 8902},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", 2, 568},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
	}

	for _, tt := range tests {
		pos, err := fen.Decode(zt, tt.fen)
		require.NoError(t, err)

		assert.Equal(t, tt.expected, board.Perft(pos, tt.depth), "fen=%v depth=%v", tt.fen, tt.depth)
	}
}

func TestMoveGenerationCounts(t *testing.T) {
	tests := []struct {
		fen      string
		expected int
	}{
		{"rnbqkb1r/pp1p1pPp/8/2p1pP2/1P1P4/3P3P/P1P1P3/RNBQKBNR w KQkq e6 0 1", 42},
		{"rnbqkbnr/p1p1p3/3p3p/1p1p4/2P1Pp2/8/PP1P1PpP/RNBQKB1R b KQkq e3 0 1", 42},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 48},
	}

	for _, tt := range tests {
		pos, err := fen.Decode(zt, tt.fen)
		require.NoError(t, err)

		assert.Len(t, pos.LegalMoves(), tt.expected, tt.fen)
	}
}

func TestFiftyMoveBoundary(t *testing.T) {
	pieces := []board.Placement{
		{board.E1, board.WK}, {board.E8, board.BK},
		{board.A1, board.WR}, {board.A8, board.BR},
	}

	at100, err := board.NewPosition(zt, pieces, board.White, 0, board.NoSquare, 100, 1)
	require.NoError(t, err)
	_, over := at100.IsOver(at100.LegalMoves())
	assert.False(t, over)

	at101, err := board.NewPosition(zt, pieces, board.White, 0, board.NoSquare, 101, 1)
	require.NoError(t, err)
	result, over := at101.IsOver(at101.LegalMoves())
	assert.True(t, over)
	assert.Equal(t, board.Draw, result)
}

func TestRepetitionDraw(t *testing.T) {
	pos, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	for i := 0; i < 2; i++ {
		for _, s := range shuffle {
			m, err := board.ParseMove(s)
			require.NoError(t, err)

			resolved := resolveMove(t, pos, m)
			pos.MakeMove(resolved)
		}
	}

	result, over := pos.IsOver(pos.LegalMoves())
	assert.True(t, over)
	assert.Equal(t, board.Draw, result)
	assert.GreaterOrEqual(t, pos.RepetitionCount(), 3)
}

func resolveMove(t *testing.T, pos *board.Position, m board.Move) board.Move {
	for _, c := range pos.LegalMoves() {
		if c.Equals(m) {
			return c
		}
	}
	t.Fatalf("move %v not legal in position %v", m, pos)
	return board.Move{}
}

func filterByPiece(pos *board.Position, placements []board.Placement, k board.Kind) []board.Move {
	var from []board.Square
	for _, p := range placements {
		if p.Piece.IsValid() && p.Piece.Kind() == k {
			from = append(from, p.Square)
		}
	}
	return filterMoves(pos.PseudoLegalMoves(), func(m board.Move) bool {
		for _, sq := range from {
			if m.From == sq {
				return true
			}
		}
		return false
	})
}

func filterMoves(ms []board.Move, fn func(move board.Move) bool) []board.Move {
	var list []board.Move
	for _, m := range ms {
		if fn(m) {
			list = append(list, m)
		}
	}
	return list
}

func printMoves(ms []board.Move) []string {
	var list []string
	for _, m := range ms {
		list = append(list, m.String())
	}
	return list
}
