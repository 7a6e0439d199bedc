package slq

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// searchValidPrefix finds the largest leading principal submatrix of t
// whose minimum eigenvalue is still above the indefiniteness tolerance.
// The search assumes validity is monotonic in the prefix size, which is
// not guaranteed in general; the narrowing below is kept as-is for parity
// with the reference behavior, since changing it changes output values.
// Never returns less than 1.
func searchValidPrefix(t *mat.SymDense) int {
	left, right := 0, t.SymmetricDim()
	for right-left > 1 {
		mid := (left + right) / 2
		if minEigenvalue(t.SliceSym(0, mid)) < indefiniteTol {
			right = mid - 1
		} else {
			left = mid
		}
	}
	if left < 1 {
		return 1
	}
	return left
}

func minEigenvalue(s mat.Symmetric) float64 {
	var es mat.EigenSym
	if !es.Factorize(s, false) {
		// A block we cannot factorize is not an acceptable prefix.
		return math.Inf(-1)
	}
	return floats.Min(es.Values(nil))
}
