package nn

import (
	"context"
	"math"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/encoder"
)

// Result is the cache-resident, position-specific evaluation: a prior per legal move
// (already restricted to legal moves, softmaxed and renormalized) plus the raw value.
type Result struct {
	Priors map[board.Move]float32
	Value  float32
}

// Cache wraps an Evaluator with a fixed-size FIFO cache keyed on a position's Zobrist
// hash mixed with its repetition count and fifty-move counter: the hash alone does not
// capture those two, but both are part of what the encoder feeds the network, so two
// positions with the same board hash but different fifty-move counts must not share a
// cache entry.
//
// Eviction is oldest-in-first-out rather than least-recently-used, trading hit rate for
// O(1) eviction with no access-time bookkeeping.
type Cache struct {
	eval     Evaluator
	enc      encoder.Encoder
	capacity int

	softmaxTemp           float32
	disableUnderpromotion bool

	entries map[board.ZobristHash]Result
	order   []board.ZobristHash
}

// NewCache builds a cache of the given capacity around eval. A softmaxTemp of 0 is
// treated as 1 (no temperature scaling).
func NewCache(eval Evaluator, enc encoder.Encoder, capacity int, softmaxTemp float32, disableUnderpromotion bool) *Cache {
	if softmaxTemp == 0 {
		softmaxTemp = 1.0
	}
	return &Cache{
		eval:                  eval,
		enc:                   enc,
		capacity:              capacity,
		softmaxTemp:           softmaxTemp,
		disableUnderpromotion: disableUnderpromotion,
		entries:               make(map[board.ZobristHash]Result),
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

func cacheKey(pos *board.Position) board.ZobristHash {
	h := pos.Hash()
	h ^= mixHash(board.ZobristHash(pos.RepetitionCount()))
	h ^= mixHash(board.ZobristHash(pos.Fifty()))
	return h
}

// mixHash scrambles a small integer (repetition count, fifty-move count) before XORing
// it into a position hash, so that the low few bits of those counters don't collide
// trivially with the hash's own low bits.
func mixHash(val board.ZobristHash) board.ZobristHash {
	v := uint64(val)
	return board.ZobristHash(0xfad0d7f2fbb059f1*(v+0xbaad41cdcb839961) + 0x7acec0050bf82f43*((v>>31)+0xd571b3a92b1b2755))
}

// Evaluate returns the cached result for pos if present, else evaluates it, inserts it,
// and evicts the oldest entry if the cache is at capacity. hit reports whether the
// result came from the cache.
func (c *Cache) Evaluate(ctx context.Context, pos *board.Position) (result Result, hit bool, err error) {
	key := cacheKey(pos)
	if r, ok := c.entries[key]; ok {
		return r, true, nil
	}

	state := c.enc.Encode(pos)
	policy, value, err := c.eval.Evaluate(ctx, state)
	if err != nil {
		return Result{}, false, err
	}

	coords, err := c.enc.DecodeLegalMoves(pos)
	if err != nil {
		return Result{}, false, err
	}

	priors := make(map[board.Move]float32, len(coords))
	for m, coord := range coords {
		if c.disableUnderpromotion && isUnderpromotion(m) {
			continue
		}
		priors[m] = policy.At(coord.Plane, coord.Rank, coord.File)
	}
	softmaxInPlace(priors, c.softmaxTemp)

	result = Result{Priors: priors, Value: value}
	c.insert(key, result)
	return result, false, nil
}

func isUnderpromotion(m board.Move) bool {
	return m.IsPromotion() && m.Promotion != board.Queen
}

// softmaxInPlace replaces priors with exp((p-max)/temp), renormalized to sum to 1 over
// the given (already legal-move-restricted) set.
func softmaxInPlace(priors map[board.Move]float32, temp float32) {
	if len(priors) == 0 {
		return
	}

	var max float32 = -math.MaxFloat32
	for _, p := range priors {
		if p > max {
			max = p
		}
	}

	var sum float32
	for m, p := range priors {
		v := float32(math.Exp(float64((p - max) / temp)))
		priors[m] = v
		sum += v
	}
	if sum == 0 {
		return
	}
	for m, p := range priors {
		priors[m] = p / sum
	}
}

func (c *Cache) insert(key board.ZobristHash, r Result) {
	if _, exists := c.entries[key]; exists {
		return
	}
	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = r
	c.order = append(c.order, key)
}
