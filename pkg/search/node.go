// Package search implements a PUCT (policy/value upper confidence tree) move search
// driven by an external neural network evaluator, following the AlphaZero playout
// algorithm: descend by maximum PUCT score, expand one leaf per playout, back up the
// negated value along the path to the root.
package search

import (
	"math"

	"github.com/mcfarljm/dlchess-go/pkg/board"
)

// Branch tracks one move's statistics within its parent Node: how often it has been
// visited during search, and the total value backed up through it.
type Branch struct {
	Prior      float64
	VisitCount int
	TotalValue float64
}

// ExpectedValue returns the branch's running average value (Q), or fpu if the branch
// has never been visited.
func (b *Branch) ExpectedValue(fpu float64) float64 {
	if b.VisitCount == 0 {
		return fpu
	}
	return b.TotalValue / float64(b.VisitCount)
}

// Node is one position in the search tree. Every node owns its own Position, reached by
// cloning its parent's and applying LastMove; the tree is rebuilt from scratch on every
// top-level search, so no reuse or pruning of stale nodes is needed across calls.
type Node struct {
	Position *board.Position

	// Value is the node's own evaluation: the network's value head output, or (for a
	// terminal node) the actual game result from this node's side-to-move perspective.
	Value float64

	// ExpectedValue is the node's running average of backed-up values, seeded at 0 and
	// updated by RecordVisit. TotalVisitCount starts at 1, matching the reference
	// implementation's convention that a freshly created node counts as its own first
	// visit.
	ExpectedValue   float64
	TotalVisitCount int

	Terminal bool

	Parent      *Node
	LastMove    board.Move
	HasLastMove bool

	Children map[board.Move]*Node
	Branches map[board.Move]*Branch
}

// newNode constructs a Node for pos, with one Branch per entry in priors. parent and
// lastMove describe the edge that led here; pass hasLastMove=false for the root.
func newNode(pos *board.Position, value float64, priors map[board.Move]float64, parent *Node, lastMove board.Move, hasLastMove, terminal bool) *Node {
	branches := make(map[board.Move]*Branch, len(priors))
	for m, p := range priors {
		branches[m] = &Branch{Prior: p}
	}

	return &Node{
		Position:        pos,
		Value:           value,
		TotalVisitCount: 1,
		Terminal:        terminal,
		Parent:          parent,
		LastMove:        lastMove,
		HasLastMove:     hasLastMove,
		Children:        make(map[board.Move]*Node),
		Branches:        branches,
	}
}

// RecordVisit updates the node's own running average and the named branch's
// statistics with one playout's backed-up value.
func (n *Node) RecordVisit(m board.Move, value float64) {
	n.ExpectedValue += (value - n.ExpectedValue) / float64(n.TotalVisitCount)
	n.TotalVisitCount++

	b := n.Branches[m]
	b.VisitCount++
	b.TotalValue += value
}

// Prior returns m's prior probability at this node.
func (n *Node) Prior(m board.Move) float64 {
	return n.Branches[m].Prior
}

// VisitCount returns m's visit count at this node, or 0 if m has no branch here.
func (n *Node) VisitCount(m board.Move) int {
	if b, ok := n.Branches[m]; ok {
		return b.VisitCount
	}
	return 0
}

// visitedPolicy sums the prior mass of every branch that has been visited at least
// once, used by the FPU reduction strategy.
func (n *Node) visitedPolicy() float64 {
	var sum float64
	for _, b := range n.Branches {
		if b.VisitCount > 0 {
			sum += b.Prior
		}
	}
	return sum
}

// childVisits sums visit counts across all of the node's branches (excluding the
// node's own self-visit), used as the "nodes searched" count for UCI info lines.
func (n *Node) childVisits() int {
	var sum int
	for _, b := range n.Branches {
		sum += b.VisitCount
	}
	return sum
}

func terminalValue(side board.Color, result board.Result) float64 {
	switch result {
	case board.Draw:
		return 0
	case board.WhiteWins:
		if side == board.White {
			return 1
		}
		return -1
	case board.BlackWins:
		if side == board.Black {
			return 1
		}
		return -1
	default:
		return 0
	}
}

func valueToCentipawns(value float64) int {
	return int(math.Round(111.714640912 * math.Tan(1.5620688421*value)))
}
