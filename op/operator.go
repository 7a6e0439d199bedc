package op

import (
	"gonum.org/v1/gonum/mat"
)

// Operator is a matrix-free view of a fixed symmetric positive-definite
// n-by-n matrix A. The matrix itself is never exposed, only its action on
// batches of column vectors.
type Operator interface {
	// Dimension of the underlying matrix, :math:`n`.
	Dims() int

	// Product :math:`A V` for an n-by-p batch of column vectors.
	// Implementations must be deterministic and must not retain or mutate
	// the input batch.
	Apply(batch *mat.Dense) *mat.Dense
}
