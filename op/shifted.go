package op

import (
	"gonum.org/v1/gonum/mat"
)

var (
	shifted *Shifted
	_       Operator = shifted // Check that Shifted respects the Operator interface.
)

// Shifted wraps another operator and adds a multiple of the identity,
// :math:`A + \sigma I`. This is the usual jitter construction for kernel
// matrices that are positive definite only up to numerical noise.
type Shifted struct {
	inner Operator
	shift float64
}

func NewShifted(inner Operator, shift float64) *Shifted {
	return &Shifted{
		inner: inner,
		shift: shift,
	}
}

func (o *Shifted) Dims() int {
	return o.inner.Dims()
}

func (o *Shifted) Apply(batch *mat.Dense) *mat.Dense {
	r, c := batch.Dims()
	out := o.inner.Apply(batch)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, out.At(i, j)+o.shift*batch.At(i, j))
		}
	}
	return out
}
