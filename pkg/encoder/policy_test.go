package encoder_test

import (
	"testing"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/mcfarljm/dlchess-go/pkg/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLegalMovesInjective(t *testing.T) {
	positions := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/p1p1p3/3p3p/1p1p4/2P1Pp2/8/PP1P1PpP/RNBQKB1R b KQkq e3 0 1",
	}
	e := encoder.NewEncoder(1)
	for _, pfen := range positions {
		pos, err := fen.Decode(zt, pfen)
		require.NoError(t, err, pfen)

		coords, err := e.DecodeLegalMoves(pos)
		require.NoError(t, err, pfen)
		assert.Len(t, coords, len(pos.LegalMoves()), pfen)

		seen := map[encoder.Coord]board.Move{}
		for m, c := range coords {
			if other, ok := seen[c]; ok {
				t.Fatalf("%v: moves %v and %v collide at coord %v", pfen, m, other, c)
			}
			seen[c] = m
		}
	}
}

func TestDecodeLegalMovesKnownCoordinates(t *testing.T) {
	pos, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	e := encoder.NewEncoder(0)
	coords, err := e.DecodeLegalMoves(pos)
	require.NoError(t, err)

	// e2e4: a pawn push north by 2, from square e2 (file4,rank1).
	m := board.Move{From: board.E2, To: board.E4, Captured: board.NoPiece, Flag: board.PawnDoubleStepFlag}
	c, ok := coords[m]
	require.True(t, ok)
	assert.Equal(t, 1, c.Plane) // direction 0 (N), amount 2 -> plane 0*7+2-1=1
	assert.Equal(t, int(board.E2.Rank()), c.Rank)
	assert.Equal(t, int(board.E2.File()), c.File)

	// g1f3: knight move, delta = F3-G1.
	knight := board.Move{From: board.G1, To: board.F3, Captured: board.NoPiece}
	kc, ok := coords[knight]
	require.True(t, ok)
	assert.GreaterOrEqual(t, kc.Plane, 56)
	assert.Less(t, kc.Plane, 64)
}

func TestDecodeLegalMovesUnderpromotion(t *testing.T) {
	zt := board.NewZobristTable(1)
	pieces := []board.Placement{
		{board.E1, board.WK}, {board.E8, board.BK},
		{board.A7, board.WP},
	}
	pos, err := board.NewPosition(zt, pieces, board.White, 0, board.NoSquare, 0, 1)
	require.NoError(t, err)

	e := encoder.NewEncoder(0)
	coords, err := e.DecodeLegalMoves(pos)
	require.NoError(t, err)

	knightPromo := board.Move{From: board.A7, To: board.A8, Captured: board.NoPiece, Promotion: board.Knight}
	bishopPromo := board.Move{From: board.A7, To: board.A8, Captured: board.NoPiece, Promotion: board.Bishop}
	rookPromo := board.Move{From: board.A7, To: board.A8, Captured: board.NoPiece, Promotion: board.Rook}
	queenPromo := board.Move{From: board.A7, To: board.A8, Captured: board.NoPiece, Promotion: board.Queen}

	kc, ok := coords[knightPromo]
	require.True(t, ok)
	bc, ok := coords[bishopPromo]
	require.True(t, ok)
	rc, ok := coords[rookPromo]
	require.True(t, ok)
	qc, ok := coords[queenPromo]
	require.True(t, ok)

	assert.GreaterOrEqual(t, kc.Plane, 64)
	assert.Equal(t, kc.Plane+1, bc.Plane)
	assert.Equal(t, kc.Plane+2, rc.Plane)
	// queen promotion uses the regular sliding plane, not an underpromotion plane.
	assert.Less(t, qc.Plane, 64)
}
