package encoder_test

import (
	"testing"

	"github.com/mcfarljm/dlchess-go/pkg/encoder"
	"github.com/stretchr/testify/assert"
)

func TestTensorSetAt(t *testing.T) {
	tn := encoder.NewTensor(3, 8, 8)
	tn.Set(1.0, 2, 3, 4)
	assert.Equal(t, float32(1.0), tn.At(2, 3, 4))
	assert.Equal(t, float32(0.0), tn.At(0, 0, 0))
}

func TestTensorFillChannel(t *testing.T) {
	tn := encoder.NewTensor(2, 8, 8)
	tn.FillChannel(1, 5.0)
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			assert.Equal(t, float32(5.0), tn.At(1, r, f))
			assert.Equal(t, float32(0.0), tn.At(0, r, f))
		}
	}
}

func TestTensorStrides(t *testing.T) {
	tn := encoder.NewTensor(73, 8, 8)
	assert.Equal(t, []int{64, 8, 1}, tn.Strides)
	assert.Len(t, tn.Data, 73*8*8)
}
