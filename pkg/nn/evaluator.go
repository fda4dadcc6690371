// Package nn defines the neural network boundary the search package drives: an
// Evaluator maps an encoded position to a move-policy distribution and a position
// value, without this module knowing anything about the model that produces them.
package nn

import (
	"context"

	"github.com/mcfarljm/dlchess-go/pkg/encoder"
)

// Evaluator produces a policy/value estimate for a position. Implementations may be
// backed by a trained network, a remote inference service, or (for testing and
// dependency-free operation) a fixed baseline such as Uniform.
type Evaluator interface {
	// Evaluate returns the raw network output for pos: a prior for every square of the
	// policy tensor and a scalar value. Callers are responsible for restricting priors
	// to legal moves and renormalizing; see Cache for that wiring.
	Evaluate(ctx context.Context, state encoder.Tensor) (policy encoder.Tensor, value float32, err error)
}

// Uniform is a dependency-free Evaluator: it assigns equal prior mass to every policy
// cell and a value of 0 (a dead-even position), which makes search degrade gracefully
// to pure visit-count-driven exploration when no trained model is available.
type Uniform struct{}

func (Uniform) Evaluate(_ context.Context, state encoder.Tensor) (encoder.Tensor, float32, error) {
	policy := encoder.NewTensor(encoder.PolicyShape[0], encoder.PolicyShape[1], encoder.PolicyShape[2])
	for i := range policy.Data {
		policy.Data[i] = 1.0
	}
	return policy, 0, nil
}
