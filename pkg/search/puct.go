package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mcfarljm/dlchess-go/pkg/board"
	"github.com/mcfarljm/dlchess-go/pkg/encoder"
	"github.com/mcfarljm/dlchess-go/pkg/nn"
	"go.uber.org/atomic"
)

const dirichletWeight = 0.25

// PV summarizes one completed select-move search, in the shape a UCI "info" line needs.
type PV struct {
	BestMove board.Move
	Nodes    int
	Depth    int
	SelDepth int
	Time     time.Duration
	ScoreCp  int
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v seldepth=%v nodes=%v time=%v score=%vcp move=%v", p.Depth, p.SelDepth, p.Nodes, p.Time, p.ScoreCp, p.BestMove)
}

// Search runs a PUCT tree search against a cached Evaluator. SelectMove builds a fresh
// tree on every call: no tree is retained across moves.
type Search struct {
	cache *nn.Cache
	enc   encoder.Encoder
	opts  Options
	rng   *rand.Rand

	collector *encoder.ExperienceCollector

	halt atomic.Bool
}

// NewSearch returns a Search driving cache under opts. seed governs Dirichlet noise and
// proportional move sampling only; ties between equal PUCT scores go to whichever branch
// map iteration reaches first, which the seed does not control.
func NewSearch(cache *nn.Cache, enc encoder.Encoder, opts Options, seed int64) *Search {
	return &Search{cache: cache, enc: enc, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// SetCollector attaches an experience collector: after each SelectMove, the root's
// state and visit-count tensors are recorded as one decision in the collector's
// in-progress episode.
func (s *Search) SetCollector(c *encoder.ExperienceCollector) {
	s.collector = c
}

// Halt requests the running SelectMove call to stop at the next playout boundary.
// SelectMove clears any earlier request when it starts. Idempotent; safe to call from
// another goroutine.
func (s *Search) Halt() {
	s.halt.Store(true)
}

// SelectMove runs playouts from pos until a stop condition fires, then returns the
// chosen move. ply is the number of half-moves already played in the game, used for the
// NumRandomizedMoves cutoff.
func (s *Search) SelectMove(ctx context.Context, pos *board.Position, ply int) (PV, error) {
	s.halt.Store(false)
	start := time.Now()

	root, err := s.createNode(ctx, pos.Clone(), nil, board.Move{}, false)
	if err != nil {
		return PV{}, err
	}
	if root.Terminal || len(root.Branches) == 0 {
		return PV{}, fmt.Errorf("search: no legal moves from root position")
	}

	var maxDepth int
	var cumulativeDepth int64
	rounds := 0

	for {
		depth := 0
		node := root
		move, ok := s.selectBranch(node)
		if !ok {
			break
		}
		depth++

		for {
			child, exists := node.Children[move]
			if !exists {
				break
			}
			node = child
			if node.Terminal {
				break
			}
			move, ok = s.selectBranch(node)
			if !ok {
				break
			}
			depth++
		}
		if depth > maxDepth {
			maxDepth = depth
		}
		cumulativeDepth += int64(depth)

		var value float64
		var recordMove board.Move
		if !node.Terminal {
			childPos := node.Position.Clone()
			childPos.MakeMove(move)
			child, err := s.createNode(ctx, childPos, node, move, true)
			if err != nil {
				return PV{}, err
			}
			value = -child.Value
			recordMove = move
		} else {
			value = node.Value
		}

		for cur := node; cur != nil; cur = cur.Parent {
			if cur.Terminal {
				cur.TotalVisitCount++
			} else {
				cur.RecordVisit(recordMove, value)
			}
			if cur.HasLastMove {
				recordMove = cur.LastMove
			}
			value = -value
		}

		rounds++
		if s.shouldStop(ctx, root, rounds, start) {
			break
		}
	}

	if s.collector != nil {
		s.recordDecision(pos, root)
	}

	best := s.selectBestMove(root, ply)
	avgDepth := 0
	if rounds > 0 {
		avgDepth = int(cumulativeDepth / int64(rounds))
	}

	return PV{
		BestMove: best,
		Nodes:    root.childVisits(),
		Depth:    avgDepth,
		SelDepth: maxDepth,
		Time:     time.Since(start),
		ScoreCp:  valueToCentipawns(root.Branches[best].ExpectedValue(0)),
	}, nil
}

func (s *Search) shouldStop(ctx context.Context, root *Node, rounds int, start time.Time) bool {
	if s.halt.Load() || ctx.Err() != nil {
		return true
	}
	if s.opts.TimeLimit > 0 && time.Since(start) >= s.opts.TimeLimit {
		return true
	}
	if s.opts.NumVisits > 0 && root.childVisits() >= s.opts.NumVisits {
		return true
	}
	if s.opts.NumRounds > 0 && rounds >= s.opts.NumRounds {
		return true
	}
	return false
}

func (s *Search) createNode(ctx context.Context, pos *board.Position, parent *Node, move board.Move, hasMove bool) (*Node, error) {
	result, _, err := s.cache.Evaluate(ctx, pos)
	if err != nil {
		return nil, err
	}

	priors := make(map[board.Move]float64, len(result.Priors))
	for m, p := range result.Priors {
		priors[m] = float64(p)
	}
	if s.opts.AddNoise && parent == nil && len(priors) > 0 {
		s.addDirichletNoise(priors)
	}

	legal := pos.LegalMoves()
	res, terminal := pos.IsOver(legal)
	value := float64(result.Value)
	if terminal {
		value = terminalValue(pos.Side(), res)
	}

	node := newNode(pos, value, priors, parent, move, hasMove, terminal)
	if parent != nil {
		parent.Children[move] = node
	}
	return node, nil
}

// selectBranch returns the highest-PUCT-score branch at node.
func (s *Search) selectBranch(node *Node) (board.Move, bool) {
	if len(node.Branches) == 0 {
		return board.Move{}, false
	}

	fpu := s.fpu(node)
	cpuct := s.cpuct(node.TotalVisitCount)
	sqrtN := math.Sqrt(float64(node.TotalVisitCount))

	var best board.Move
	var bestScore float64
	first := true
	for m, b := range node.Branches {
		score := b.ExpectedValue(fpu) + cpuct*b.Prior*sqrtN/float64(b.VisitCount+1)
		if first || score > bestScore {
			best, bestScore, first = m, score, false
		}
	}
	return best, true
}

func (s *Search) fpu(node *Node) float64 {
	if s.opts.FpuAbsolute {
		return s.opts.FpuValue
	}
	return node.ExpectedValue - s.opts.FpuValue*math.Sqrt(node.visitedPolicy())
}

func (s *Search) cpuct(n int) float64 {
	if s.opts.CpuctFactor != 0 {
		return s.opts.Cpuct + s.opts.CpuctFactor*math.Log((float64(n)+s.opts.CpuctBase)/s.opts.CpuctBase)
	}
	return s.opts.Cpuct
}

// addDirichletNoise mixes Dirichlet(alpha) noise into priors in place, with
// concentration scaled to the branch count following the reference engine.
func (s *Search) addDirichletNoise(priors map[board.Move]float64) {
	n := len(priors)
	alpha := 0.03 * 19.0 * 19.0 / float64(n)
	noise := s.sampleDirichlet(n, alpha)

	i := 0
	for m, p := range priors {
		priors[m] = (1-dirichletWeight)*p + dirichletWeight*noise[i]
		i++
	}
}

// sampleDirichlet draws n iid Gamma(alpha,1) variates and normalizes them to a
// Dirichlet(alpha,...,alpha) sample. math/rand has no gamma distribution built in;
// gammaSample implements the standard Marsaglia-Tsang rejection method.
func (s *Search) sampleDirichlet(n int, alpha float64) []float64 {
	samples := make([]float64, n)
	var sum float64
	for i := range samples {
		samples[i] = s.gammaSample(alpha)
		sum += samples[i]
	}
	if sum == 0 {
		for i := range samples {
			samples[i] = 1.0 / float64(n)
		}
		return samples
	}
	for i := range samples {
		samples[i] /= sum
	}
	return samples
}

func (s *Search) gammaSample(alpha float64) float64 {
	if alpha < 1 {
		u := s.rng.Float64()
		return s.gammaSample(1+alpha) * math.Pow(u, 1/alpha)
	}

	d := alpha - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

func (s *Search) selectBestMove(root *Node, ply int) board.Move {
	if ply < s.opts.NumRandomizedMoves {
		return s.sampleProportional(root)
	}

	var best board.Move
	bestVisits := -1
	for m, b := range root.Branches {
		if b.VisitCount > bestVisits {
			best, bestVisits = m, b.VisitCount
		}
	}
	return best
}

func (s *Search) sampleProportional(root *Node) board.Move {
	total := 0
	for _, b := range root.Branches {
		total += b.VisitCount
	}
	if total == 0 {
		for m := range root.Branches {
			return m
		}
	}

	r := s.rng.Intn(total)
	for m, b := range root.Branches {
		if r < b.VisitCount {
			return m
		}
		r -= b.VisitCount
	}
	for m := range root.Branches {
		return m
	}
	return board.Move{}
}

func (s *Search) recordDecision(rootPos *board.Position, root *Node) {
	state := s.enc.Encode(rootPos)

	coords, err := s.enc.DecodeLegalMoves(rootPos)
	if err != nil {
		return
	}
	counts := make(map[encoder.Coord]int, len(coords))
	for m, c := range coords {
		counts[c] = root.VisitCount(m)
	}
	visits := encoder.VisitCountTensor(counts)

	s.collector.RecordDecision(state, visits)
}
