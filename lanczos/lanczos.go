// Package lanczos reduces a matrix-free symmetric operator to small
// tridiagonal form, one tridiagonal matrix per probe vector, using a batched
// Lanczos iteration with full re-orthogonalization.
package lanczos

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasmaystre/goslq/op"
	"github.com/lucasmaystre/goslq/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrShapeMismatch = errors.New("operator output shape mismatch")

const (
	// Added to every residual entry so the recurrence never divides by an
	// exactly zero norm.
	residualEps = 1e-10
	// Coefficients below this magnitude signal Krylov-subspace breakdown.
	breakdownTol = 1e-4
)

// Reduction is the outcome of one batched tridiagonalization.
type Reduction struct {
	// Basis[j] is the n-by-Depth orthonormal Krylov basis grown from probe
	// column j.
	Basis []*mat.Dense
	// Trid[j] is the Depth-by-Depth symmetric tridiagonal restriction of
	// the operator to span(Basis[j]).
	Trid []*mat.SymDense
	// Number of Lanczos steps retained, at most min(maxIter, n).
	Depth int
}

// Reduce runs at most maxIter Lanczos steps for every probe column
// simultaneously. Probes are mutually independent: no intermediate state
// crosses columns, only the breakdown test below is batch-wide.
func Reduce(a op.Operator, probes *mat.Dense, maxIter int) (*Reduction, error) {
	n, p := probes.Dims()
	if maxIter < 1 {
		return nil, fmt.Errorf("lanczos: maxIter must be positive, got %d", maxIter)
	}
	if d := a.Dims(); d != n {
		return nil, fmt.Errorf("lanczos: operator dimension %d does not match probe dimension %d", d, n)
	}
	numIters := maxIter
	if n < numIters {
		numIters = n
	}

	// basis[k] holds the k-th Lanczos vector of every probe as its
	// columns; alphas[k] and betas[k] the matching coefficients.
	basis := make([]*mat.Dense, 0, numIters)
	alphas := make([][]float64, 0, numIters)
	betas := make([][]float64, 0, numIters)

	// u_0 = v / ||v||
	u := mat.DenseCopyOf(probes)
	normalizeCols(u)
	basis = append(basis, u)

	// r_0 = A u_0,  alpha_0 = dot(u_0, r_0)
	r, err := applyChecked(a, u, n, p)
	if err != nil {
		return nil, err
	}
	alpha := utils.ColDots(u, r)

	// resid = r_0 - alpha_0 u_0 + eps
	resid := residual(r, u, alpha)

	alphas = append(alphas, alpha)
	betas = append(betas, utils.ColNorms(resid))

	depth := numIters
	uPrev := u
	for k := 1; k < numIters; k++ {
		// u_k = resid / ||resid||
		normV := utils.ColNorms(resid)
		u = mat.DenseCopyOf(resid)
		utils.ScaleCols(u, reciprocals(normV))

		// Full re-orthogonalization: project u_k against every stored
		// basis vector, not just the last one, u_k -= Q Q^T u_k.
		for _, q := range basis {
			proj := utils.ColDots(q, u)
			floats.Scale(-1, proj)
			utils.AddScaledCols(u, q, proj)
		}
		normalizeCols(u)

		// r_k = A u_k - norm_v u_{k-1}
		r, err = applyChecked(a, u, n, p)
		if err != nil {
			return nil, err
		}
		minusNormV := make([]float64, p)
		copy(minusNormV, normV)
		floats.Scale(-1, minusNormV)
		utils.AddScaledCols(r, uPrev, minusNormV)

		// alpha_k = dot(u_k, r_k),  resid = r_k - alpha_k u_k + eps
		alpha = utils.ColDots(u, r)
		resid = residual(r, u, alpha)

		alphas = append(alphas, alpha)
		betas = append(betas, normV)
		basis = append(basis, u)
		uPrev = u

		// Batch-wide breakdown test: conservatively stop the whole batch,
		// and drop the breakdown step, once every probe's coefficient
		// vanishes.
		if allBelow(normV, breakdownTol) || allBelow(alpha, breakdownTol) {
			depth = k
			break
		}
	}

	return assemble(basis, alphas, betas, n, p, depth), nil
}

func applyChecked(a op.Operator, batch *mat.Dense, n, p int) (*mat.Dense, error) {
	out := a.Apply(batch)
	if r, c := out.Dims(); r != n || c != p {
		return nil, fmt.Errorf("lanczos: %w: got %dx%d, want %dx%d",
			ErrShapeMismatch, r, c, n, p)
	}
	return out, nil
}

// residual returns r - coef * u + eps, columnwise.
func residual(r, u *mat.Dense, coef []float64) *mat.Dense {
	out := mat.DenseCopyOf(r)
	minus := make([]float64, len(coef))
	copy(minus, coef)
	floats.Scale(-1, minus)
	utils.AddScaledCols(out, u, minus)
	rows, cols := out.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, out.At(i, j)+residualEps)
		}
	}
	return out
}

func normalizeCols(m *mat.Dense) {
	utils.ScaleCols(m, reciprocals(utils.ColNorms(m)))
}

func reciprocals(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = 1 / v
	}
	return out
}

func allBelow(s []float64, tol float64) bool {
	for _, v := range s {
		if math.Abs(v) >= tol {
			return false
		}
	}
	return true
}

func assemble(basis []*mat.Dense, alphas, betas [][]float64, n, p, depth int) *Reduction {
	out := &Reduction{
		Basis: make([]*mat.Dense, p),
		Trid:  make([]*mat.SymDense, p),
		Depth: depth,
	}
	for j := 0; j < p; j++ {
		q := mat.NewDense(n, depth, nil)
		for k := 0; k < depth; k++ {
			for i := 0; i < n; i++ {
				q.Set(i, k, basis[k].At(i, j))
			}
		}
		// beta_0 only seeded the residual bookkeeping; the recurrence
		// matrix couples steps k-1 and k through beta_k for k >= 1. With
		// depth 1 this degenerates to the 1x1 matrix [alpha_0].
		t := mat.NewSymDense(depth, nil)
		for k := 0; k < depth; k++ {
			t.SetSym(k, k, alphas[k][j])
			if k > 0 {
				t.SetSym(k-1, k, betas[k][j])
			}
		}
		out.Basis[j] = q
		out.Trid[j] = t
	}
	return out
}
