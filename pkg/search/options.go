package search

import "time"

// Options configures one PUCT search run. The zero value is not usable; construct via
// NewOptions, which fills in the defaults below, then apply Option functions to
// override individual fields.
type Options struct {
	// Cpuct, CpuctFactor, CpuctBase parameterize the exploration term's schedule: a
	// constant cPUCT if CpuctFactor is 0, else cpuct + cpuctFactor*ln((N+cpuctBase)/cpuctBase).
	Cpuct       float64
	CpuctFactor float64
	CpuctBase   float64

	// FpuValue and FpuAbsolute select the Q-value assumed for an unvisited branch: a
	// constant (FpuAbsolute) or a reduction off the parent's own running value (default).
	FpuValue    float64
	FpuAbsolute bool

	// PolicySoftmaxTemp divides move-prior logits before exponentiating, in the
	// evaluation cache.
	PolicySoftmaxTemp float64
	// DisableUnderpromotion drops underpromotion moves from the policy entirely,
	// treating queen promotion as the only promotion the search considers.
	DisableUnderpromotion bool

	// AddNoise mixes Dirichlet noise into the root's priors, for exploration during
	// self-play; NumRandomizedMoves is the ply count below which move selection samples
	// proportional to visit count rather than picking the max.
	AddNoise           bool
	NumRandomizedMoves int

	// NumRounds and NumVisits bound the playout count directly; zero means unbounded
	// (rely on TimeLimit instead). Both may be set; whichever is reached first stops
	// the search.
	NumRounds int
	NumVisits int
	// TimeLimit bounds search by wall-clock duration; zero means unbounded.
	TimeLimit time.Duration
}

// NewOptions returns Options populated with the engine's defaults, tuned against the
// reference implementation's own default flags.
func NewOptions() Options {
	return Options{
		Cpuct:                 1.745,
		CpuctFactor:           3.894,
		CpuctBase:             38739.0,
		FpuValue:              0.33,
		FpuAbsolute:           false,
		PolicySoftmaxTemp:     1.359,
		DisableUnderpromotion: true,
		AddNoise:              false,
		NumRandomizedMoves:    0,
		NumRounds:             800,
	}
}

// Option mutates Options; apply with Options.With.
type Option func(*Options)

// With applies opts to a copy of o and returns the result.
func (o Options) With(opts ...Option) Options {
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func WithCpuct(c, factor, base float64) Option {
	return func(o *Options) {
		o.Cpuct = c
		o.CpuctFactor = factor
		o.CpuctBase = base
	}
}

func WithFpu(value float64, absolute bool) Option {
	return func(o *Options) {
		o.FpuValue = value
		o.FpuAbsolute = absolute
	}
}

func WithNoise(add bool) Option {
	return func(o *Options) {
		o.AddNoise = add
	}
}

func WithNumRandomizedMoves(n int) Option {
	return func(o *Options) {
		o.NumRandomizedMoves = n
	}
}

func WithNumRounds(n int) Option {
	return func(o *Options) {
		o.NumRounds = n
	}
}

func WithNumVisits(n int) Option {
	return func(o *Options) {
		o.NumVisits = n
	}
}

func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) {
		o.TimeLimit = d
	}
}

func WithPolicySoftmaxTemp(t float64) Option {
	return func(o *Options) {
		o.PolicySoftmaxTemp = t
	}
}

func WithDisableUnderpromotion(disable bool) Option {
	return func(o *Options) {
		o.DisableUnderpromotion = disable
	}
}
