package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/mcfarljm/dlchess-go/pkg/engine"
	"github.com/mcfarljm/dlchess-go/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *engine.Engine {
	return engine.New(context.Background(), "test", "tester",
		engine.WithOptions(engine.Options{Hash: 64, Rounds: 10}))
}

func TestNewEngineStartsAtInitialPosition(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", e.Position())
	assert.Equal(t, 0, e.Ply())
	assert.Equal(t, board.White, e.Side())
}

func TestEngineMoveAndTakeBack(t *testing.T) {
	e := newTestEngine()

	require.NoError(t, e.Move(context.Background(), "e2e4"))
	assert.Equal(t, 1, e.Ply())
	assert.Equal(t, board.Black, e.Side())

	require.NoError(t, e.TakeBack(context.Background()))
	assert.Equal(t, 0, e.Ply())
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", e.Position())
}

func TestEngineTakeBackWithNoHistoryErrors(t *testing.T) {
	e := newTestEngine()
	assert.Error(t, e.TakeBack(context.Background()))
}

func TestEngineMoveRejectsIllegalMove(t *testing.T) {
	e := newTestEngine()
	assert.Error(t, e.Move(context.Background(), "e2e5"))
}

func TestEngineAnalyzeRunsToCompletion(t *testing.T) {
	e := newTestEngine()

	out, err := e.Analyze(context.Background())
	require.NoError(t, err)

	select {
	case pv := <-out:
		zt := board.NewZobristTable(0)
		pos, err := fen.Decode(zt, e.Position())
		require.NoError(t, err)

		found := false
		for _, m := range pos.LegalMoves() {
			if m.Equals(pv.BestMove) {
				found = true
				break
			}
		}
		assert.True(t, found, "unexpected best move %v", pv.BestMove)
		assert.Equal(t, 10, pv.Nodes)
	case <-time.After(5 * time.Second):
		t.Fatal("analyze did not complete in time")
	}
}

func TestEngineAnalyzeWhileActiveErrors(t *testing.T) {
	e := engine.New(context.Background(), "test", "tester",
		engine.WithOptions(engine.Options{Hash: 64, Rounds: 1_000_000}))

	_, err := e.Analyze(context.Background())
	require.NoError(t, err)

	_, err = e.Analyze(context.Background())
	assert.Error(t, err)

	_, err = e.Halt(context.Background())
	assert.NoError(t, err)
}

func TestEngineAnalyzeWithOverrideLimitsRounds(t *testing.T) {
	e := newTestEngine()

	out, err := e.Analyze(context.Background(), search.WithNumRounds(1), search.WithNumVisits(0))
	require.NoError(t, err)

	select {
	case pv := <-out:
		assert.Equal(t, 1, pv.Nodes)
	case <-time.After(5 * time.Second):
		t.Fatal("analyze did not complete in time")
	}
}

func TestEngineResetWhileActiveHaltsSearch(t *testing.T) {
	e := engine.New(context.Background(), "test", "tester",
		engine.WithOptions(engine.Options{Hash: 64, Rounds: 1_000_000}))

	_, err := e.Analyze(context.Background())
	require.NoError(t, err)

	require.NoError(t, e.Reset(context.Background(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"))
	assert.Equal(t, 0, e.Ply())
}
