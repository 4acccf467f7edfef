package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tiny = 1e-13

func TestFloatRounding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(float64) int
		in   []float64
		want []int
	}{
		{
			name: "floor",
			fn:   FloatFloor,
			in:   []float64{tiny, -tiny, 0.5, -0.5, 1 + tiny, 1 - tiny, -1 + tiny, -1 - tiny, 2.99995},
			want: []int{0, 0, 0, -1, 1, 1, -1, -1, 3},
		},
		{
			name: "ceil",
			fn:   FloatCeil,
			in:   []float64{tiny, -tiny, 0.5, -0.5, 1 + tiny, 1 - tiny, -1 + tiny, -1 - tiny, 3.00005},
			want: []int{0, 0, 1, 0, 1, 1, -1, -1, 3},
		},
		{
			name: "abs floor",
			fn:   FloatAbsFloor,
			in:   []float64{tiny, -tiny, 0.5, -0.5, 1 + tiny, 1 - tiny, -1.5, 1.5},
			want: []int{0, 0, 0, 0, 1, 1, -1, 1},
		},
		{
			name: "abs ceil",
			fn:   FloatAbsCeil,
			in:   []float64{tiny, -tiny, 0.5, -0.5, 1 + tiny, 1 - tiny, -1 + tiny, -1 - tiny},
			want: []int{0, 0, 1, -1, 1, 1, -1, -1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for i, x := range tt.in {
				assert.Equal(t, tt.want[i], tt.fn(x), "input %v", x)
			}
		})
	}
}

func TestNanDivide(t *testing.T) {
	t.Parallel()
	assert.True(t, math.IsNaN(NanDivide(1, tiny)))
	assert.Equal(t, 0.0, NanDivide(1, math.NaN()))
	assert.Equal(t, 2.0, NanDivide(4, 2))
}

func TestInfDivide(t *testing.T) {
	t.Parallel()

	inf := math.Inf(1)
	tests := []struct {
		a, b float64
		want float64
	}{
		{inf, 0, inf},
		{10, 0, inf},
		{-inf, 0, -inf},
		{-10, 0, -inf},
		{0, 0, inf},
		{inf, inf, 0},
		{0, inf, 0},
		{inf, tiny, inf},
		{inf, -tiny, -inf},
		{10, tiny, inf},
		{10, -tiny, -inf},
		{-inf, tiny, -inf},
		{-inf, -tiny, inf},
		{-10, tiny, -inf},
		{-10, -tiny, inf},
		{3, 2, 1.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InfDivide(tt.a, tt.b), "InfDivide(%v, %v)", tt.a, tt.b)
	}

	negZero := InfDivide(-inf, inf)
	assert.Equal(t, 0.0, negZero)
	assert.True(t, math.Signbit(negZero), "expected negative zero")
}

func TestToleranceValue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ATOL, Tolerance(0).Value())
	assert.Equal(t, ATOL, Tolerance(-1).Value())
	assert.Equal(t, 1e-3, Tolerance(1e-3).Value())

	loose := Tolerance(0.1)
	assert.Equal(t, 3, loose.Floor(2.95))
	assert.Equal(t, 2, Default.Floor(2.95))
	assert.True(t, loose.Zero(-0.05))
	assert.False(t, Default.Zero(-0.05))
}
