package op

import (
	"gonum.org/v1/gonum/mat"
)

var (
	dense *Dense
	_     Operator = dense // Check that Dense respects the Operator interface.
)

// Dense wraps an explicitly stored symmetric matrix.
type Dense struct {
	m *mat.SymDense
}

func NewDense(m *mat.SymDense) *Dense {
	return &Dense{m: m}
}

func (d *Dense) Dims() int {
	return d.m.SymmetricDim()
}

func (d *Dense) Apply(batch *mat.Dense) *mat.Dense {
	r, c := batch.Dims()
	out := mat.NewDense(r, c, nil)
	out.Mul(d.m, batch)
	return out
}
