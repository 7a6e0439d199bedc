package op_test

import (
	"testing"

	"github.com/lucasmaystre/goslq/op"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDense_Apply(t *testing.T) {
	a := op.NewDense(mat.NewSymDense(2, []float64{
		2, 1,
		1, 3,
	}))
	require.Equal(t, 2, a.Dims())

	batch := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1,
	})
	out := a.Apply(batch)
	require.InDelta(t, 2, out.At(0, 0), 1e-12)
	require.InDelta(t, 1, out.At(0, 1), 1e-12)
	require.InDelta(t, 1, out.At(1, 0), 1e-12)
	require.InDelta(t, 3, out.At(1, 1), 1e-12)
}

func TestDiagonal_Apply(t *testing.T) {
	a := op.NewDiagonal([]float64{2, 3, 4})
	require.Equal(t, 3, a.Dims())

	batch := mat.NewDense(3, 2, []float64{
		1, 1,
		1, -1,
		1, 2,
	})
	out := a.Apply(batch)
	require.InDelta(t, 2, out.At(0, 0), 1e-12)
	require.InDelta(t, 3, out.At(1, 0), 1e-12)
	require.InDelta(t, 4, out.At(2, 0), 1e-12)
	require.InDelta(t, 2, out.At(0, 1), 1e-12)
	require.InDelta(t, -3, out.At(1, 1), 1e-12)
	require.InDelta(t, 8, out.At(2, 1), 1e-12)
}

func TestDiagonal_CopiesCoefficients(t *testing.T) {
	d := []float64{1, 2}
	a := op.NewDiagonal(d)
	d[0] = 100

	out := a.Apply(mat.NewDense(2, 1, []float64{1, 1}))
	require.InDelta(t, 1, out.At(0, 0), 1e-12)
}

func TestShifted_Apply(t *testing.T) {
	inner := op.NewDiagonal([]float64{1, 2})
	a := op.NewShifted(inner, 0.5)
	require.Equal(t, 2, a.Dims())

	out := a.Apply(mat.NewDense(2, 1, []float64{1, 1}))
	require.InDelta(t, 1.5, out.At(0, 0), 1e-12)
	require.InDelta(t, 2.5, out.At(1, 0), 1e-12)
}
