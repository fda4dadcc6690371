package search_test

import (
	"testing"
	"time"

	"github.com/mcfarljm/dlchess-go/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestNewOptionsDefaults(t *testing.T) {
	opt := search.NewOptions()
	assert.Equal(t, 1.745, opt.Cpuct)
	assert.True(t, opt.DisableUnderpromotion)
	assert.False(t, opt.AddNoise)
	assert.Equal(t, 800, opt.NumRounds)
}

func TestOptionsWithOverridesCopy(t *testing.T) {
	base := search.NewOptions()
	derived := base.With(
		search.WithNoise(true),
		search.WithNumRounds(100),
		search.WithTimeLimit(5*time.Second),
	)

	assert.False(t, base.AddNoise)
	assert.Equal(t, 800, base.NumRounds)

	assert.True(t, derived.AddNoise)
	assert.Equal(t, 100, derived.NumRounds)
	assert.Equal(t, 5*time.Second, derived.TimeLimit)
}

func TestWithFpuAbsolute(t *testing.T) {
	opt := search.NewOptions().With(search.WithFpu(0.5, true))
	assert.Equal(t, 0.5, opt.FpuValue)
	assert.True(t, opt.FpuAbsolute)
}
