// Package timectrl derives a per-move search time budget from the clock state a UCI
// "go" command reports (time left, increment, ply played so far).
package timectrl

import "time"

// MoveOverhead is subtracted from the reported time left before any policy runs, to
// leave margin for engine/GUI communication latency.
const MoveOverhead = 250 * time.Millisecond

// TimeManager derives a search budget from the clock.
type TimeManager interface {
	// Budget returns how long the next search should run. ply is the number of
	// half-moves already played in the game (0 at the start position).
	Budget(timeLeft, increment time.Duration, ply int) time.Duration
}

// Simple is the default policy: a base fraction of the remaining time that grows
// slightly with the game's ply count, plus a share of any increment.
//
//	available = timeLeft - overhead
//	ratio     = increment / timeLeft        (0 if timeLeft is 0)
//	frac      = base + ply*perPly + ratio*incrFactor
//	budget    = min(available, available*frac)
type Simple struct {
	Base       float64 // fraction of available time, e.g. 0.014 for 1.4%.
	PerPly     float64 // additional fraction per ply played.
	IncrFactor float64 // weight applied to increment/timeLeft.
}

// NewSimple returns a Simple policy with the reference constants: 1.4% base,
// 0.049% per ply, 1.5x increment weight.
func NewSimple() Simple {
	return Simple{Base: 0.014, PerPly: 0.00049, IncrFactor: 1.5}
}

func (s Simple) Budget(timeLeft, increment time.Duration, ply int) time.Duration {
	available := timeLeft - MoveOverhead
	if available <= 0 {
		return 0
	}

	var ratio float64
	if timeLeft > 0 {
		ratio = increment.Seconds() / timeLeft.Seconds()
	}
	frac := s.Base + float64(ply)*s.PerPly + ratio*s.IncrFactor

	budget := time.Duration(float64(available) * frac)
	if budget > available {
		budget = available
	}
	return budget
}

// FixedPercentage allocates a constant percentage of the remaining time, ignoring
// ply and increment.
type FixedPercentage struct {
	Percentage float64 // e.g. 5.0 for 5%.
}

// NewFixedPercentage returns a FixedPercentage policy at the given percentage,
// defaulting to 5% if percentage is zero.
func NewFixedPercentage(percentage float64) FixedPercentage {
	if percentage == 0 {
		percentage = 5.0
	}
	return FixedPercentage{Percentage: percentage}
}

func (f FixedPercentage) Budget(timeLeft, increment time.Duration, ply int) time.Duration {
	available := timeLeft - MoveOverhead
	if available <= 0 {
		return 0
	}
	return time.Duration(float64(available) * f.Percentage / 100)
}
