package utils

import (
	"gonum.org/v1/gonum/mat"
)

// Identity Matrix.
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// 2-norm of every column of m.
func ColNorms(m *mat.Dense) []float64 {
	_, c := m.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		out[j] = mat.Norm(m.ColView(j), 2)
	}
	return out
}

// Columnwise dot products, dot(a[:, j], b[:, j]) for every j.
func ColDots(a, b *mat.Dense) []float64 {
	_, c := a.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		out[j] = mat.Dot(a.ColView(j), b.ColView(j))
	}
	return out
}

// Scale every column of m in place, m[:, j] *= s[j].
func ScaleCols(m *mat.Dense, s []float64) {
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			m.Set(i, j, s[j]*m.At(i, j))
		}
	}
}

// Columnwise axpy, dst[:, j] += s[j] * x[:, j].
func AddScaledCols(dst, x *mat.Dense, s []float64) {
	r, c := dst.Dims()
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			dst.Set(i, j, dst.At(i, j)+s[j]*x.At(i, j))
		}
	}
}
