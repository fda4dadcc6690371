package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/board/fen"
	"github.com/mcfarljm/dlchess-go/pkg/encoder"
	"github.com/mcfarljm/dlchess-go/pkg/nn"
	"github.com/mcfarljm/dlchess-go/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

// Options are engine creation/runtime options.
type Options struct {
	// Hash is the evaluation cache capacity, in number of positions. If zero, the
	// engine falls back to a minimal cache.
	Hash uint
	// Rounds is the default playout budget for a search with no time control. Overridden
	// by a search's own options if the caller sets NumRounds/NumVisits/TimeLimit directly.
	Rounds uint
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%v, rounds=%v}", o.Hash, o.Rounds)
}

// Engine encapsulates one game session: current position, evaluation cache, and search
// configuration. It runs at most one search at a time.
type Engine struct {
	name, author string

	eval       nn.Evaluator
	enc        encoder.Encoder
	cache      *nn.Cache
	searchOpts search.Options
	opts       Options
	seed       int64

	mu     sync.Mutex
	zt     *board.ZobristTable
	pos    *board.Position
	ply    int
	active *handle
}

// Option is an engine creation option.
type Option func(*Engine)

// WithEvaluator configures the position evaluator the engine's search drives. Defaults
// to nn.Uniform, a dependency-free baseline, if not set.
func WithEvaluator(eval nn.Evaluator) Option {
	return func(e *Engine) {
		e.eval = eval
	}
}

// WithEncoderVersion configures the board-to-tensor encoding version (see
// encoder.NewEncoder).
func WithEncoderVersion(v int) Option {
	return func(e *Engine) {
		e.enc = encoder.NewEncoder(v)
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithSearchOptions sets the PUCT search options used for every Analyze call.
func WithSearchOptions(opts search.Options) Option {
	return func(e *Engine) {
		e.searchOpts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of the
// default seed of zero.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:       name,
		author:     author,
		eval:       nn.Uniform{},
		enc:        encoder.NewEncoder(2),
		opts:       Options{Hash: 200_000, Rounds: 800},
		searchOpts: search.NewOptions(),
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)
	e.searchOpts.NumRounds = int(e.opts.Rounds)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
	e.cache = nn.NewCache(e.eval, e.enc, int(e.cacheCapacity()), float32(e.searchOpts.PolicySoftmaxTemp), e.searchOpts.DisableUnderpromotion)
}

func (e *Engine) SetRounds(rounds uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Rounds = rounds
	e.searchOpts.NumRounds = int(rounds)
}

// SetNoise toggles Dirichlet root noise for every subsequent Analyze call.
func (e *Engine) SetNoise(add bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.searchOpts = e.searchOpts.With(search.WithNoise(add))
}

func (e *Engine) cacheCapacity() uint {
	if e.opts.Hash == 0 {
		return 1024
	}
	return e.opts.Hash
}

// Position returns the current position in FEN format.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.pos)
}

// Ply returns the number of half-moves played since the last Reset.
func (e *Engine) Ply() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ply
}

// Side returns the side to move.
func (e *Engine) Side() board.Color {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.pos.Side()
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, options=%v", position, e.opts)

	_, _ = e.haltSearchIfActive(ctx)

	pos, err := fen.Decode(e.zt, position)
	if err != nil {
		return err
	}
	e.pos = pos
	e.ply = 0
	e.cache = nn.NewCache(e.eval, e.enc, int(e.cacheCapacity()), float32(e.searchOpts.PolicySoftmaxTemp), e.searchOpts.DisableUnderpromotion)

	logw.Infof(ctx, "New position: %v", e.pos)
	return nil
}

// Move plays the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	for _, m := range e.pos.LegalMoves() {
		if !m.Equals(candidate) {
			continue
		}

		e.pos.MakeMove(m)
		e.ply++

		logw.Infof(ctx, "Move %v", m)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	if e.ply == 0 {
		return fmt.Errorf("no move to take back")
	}

	m := e.pos.UndoMove()
	e.ply--

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze starts a PUCT search of the current position, returning a channel that
// delivers one PV when the search ends (by its own stop conditions, or by an
// intervening Halt); if the search fails, the channel is closed without a PV. opts overrides the engine's default search options for this call
// only (e.g. a UCI "go" command's time/node budget); the engine's own defaults are left
// untouched.
func (e *Engine) Analyze(ctx context.Context, opts ...search.Option) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	effective := e.searchOpts.With(opts...)
	logw.Infof(ctx, "Analyze %v, opt=%v", e.pos, effective)

	s := search.NewSearch(e.cache, e.enc, effective, e.seed)
	cctx, cancel := context.WithCancel(ctx)

	h := &handle{s: s, cancel: cancel, done: make(chan struct{})}
	e.active = h

	pos := e.pos.Clone()
	ply := e.ply
	out := make(chan search.PV, 1)

	go func() {
		defer close(h.done)
		defer close(out)

		pv, err := s.SelectMove(cctx, pos, ply)
		if err != nil {
			logw.Errorf(ctx, "Search failed: %v", err)
			return
		}

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()
		out <- pv
	}()

	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active == nil {
		return search.PV{}, false
	}

	pv := e.active.Halt()
	logw.Infof(ctx, "Search halted: %v", pv)

	e.active = nil
	return pv, true
}

// handle tracks one in-flight Analyze call.
type handle struct {
	s      *search.Search
	cancel context.CancelFunc
	done   chan struct{}

	mu sync.Mutex
	pv search.PV
}

// Halt requests the search stop and blocks until its goroutine has exited, then returns
// the PV it produced (zero value if it errored before completing).
func (h *handle) Halt() search.PV {
	h.s.Halt()
	h.cancel()
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}
