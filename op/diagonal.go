package op

import (
	"gonum.org/v1/gonum/mat"
)

var (
	diagonal *Diagonal
	_        Operator = diagonal // Check that Diagonal respects the Operator interface.
)

// Diagonal applies a diagonal matrix given by its diagonal entries.
type Diagonal struct {
	d []float64
}

func NewDiagonal(d []float64) *Diagonal {
	out := make([]float64, len(d))
	copy(out, d)
	return &Diagonal{d: out}
}

func (o *Diagonal) Dims() int {
	return len(o.d)
}

func (o *Diagonal) Apply(batch *mat.Dense) *mat.Dense {
	r, c := batch.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, o.d[i]*batch.At(i, j))
		}
	}
	return out
}
