// Package slq estimates trace functionals tr(f(A)) of a matrix-free
// symmetric positive-definite operator by stochastic Lanczos quadrature:
// random probe vectors are reduced to small tridiagonal matrices whose
// eigenpairs serve as quadrature nodes and weights.
package slq

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/lucasmaystre/goslq/lanczos"
	"github.com/lucasmaystre/goslq/op"
	"github.com/lucasmaystre/goslq/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNonPositive = errors.New("maxIter and numProbes must be positive")
	ErrEigenFailed = errors.New("symmetric eigendecomposition failed")
)

// Default accuracy/runtime knobs.
const (
	DefaultMaxIter   = 15
	DefaultNumProbes = 10
)

const (
	// Eigenvalues of a reduced tridiagonal matrix below this value are
	// floating-point violations of positive semi-definiteness.
	indefiniteTol = -1e-4
	// Added to every quadrature node so functions like log never receive a
	// zero or negative argument from residual numerical error.
	eigenShift = 1.1e-4
)

// Func is a scalar function applied to the operator's spectrum.
type Func func(float64) float64

// Estimator computes stochastic point estimates of tr(f(A)). Estimates are
// inexact by nature: maxIter trades error for runtime, numProbes trades
// variance for runtime.
type Estimator struct {
	maxIter   int
	numProbes int
	workers   int
	rng       *rand.Rand
}

type Option func(*Estimator)

// WithSource fixes the random source used to draw probe vectors.
func WithSource(src rand.Source) Option {
	return func(e *Estimator) {
		e.rng = rand.New(src)
	}
}

// WithWorkers fans the per-probe quadrature out over w goroutines. Probes
// are independent once the shared reduction is done, and contributions are
// summed in probe order, so results do not depend on scheduling.
func WithWorkers(w int) Option {
	return func(e *Estimator) {
		if w > 1 {
			e.workers = w
		}
	}
}

func New(maxIter, numProbes int, opts ...Option) (*Estimator, error) {
	if maxIter < 1 || numProbes < 1 {
		return nil, ErrNonPositive
	}
	e := &Estimator{
		maxIter:   maxIter,
		numProbes: numProbes,
		workers:   1,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate estimates tr(f(A)) for every requested function at once, reusing
// a single batched reduction across all of them.
func (e *Estimator) Evaluate(a op.Operator, funcs ...Func) ([]float64, error) {
	n := a.Dims()
	if n < 1 {
		return nil, fmt.Errorf("slq: operator dimension must be positive, got %d", n)
	}
	results := make([]float64, len(funcs))
	if n == 1 {
		// A 1x1 operator needs no quadrature: read the scalar off directly.
		out := a.Apply(mat.NewDense(1, 1, []float64{1}))
		if r, c := out.Dims(); r != 1 || c != 1 {
			return nil, fmt.Errorf("slq: %w: got %dx%d, want 1x1", lanczos.ErrShapeMismatch, r, c)
		}
		c := math.Abs(out.At(0, 0))
		for i := range results {
			results[i] = c
		}
		return results, nil
	}

	red, err := lanczos.Reduce(a, e.probes(n), e.maxIter)
	if err != nil {
		return nil, err
	}

	contribs := make([][]float64, e.numProbes)
	errs := make([]error, e.numProbes)
	if e.workers > 1 {
		jobs := make(chan int, e.numProbes)
		defer close(jobs)
		var wg sync.WaitGroup
		for w := 0; w < e.workers; w++ {
			go func() {
				for j := range jobs {
					contribs[j], errs[j] = e.quadrature(red.Trid[j], n, funcs)
					wg.Done()
				}
			}()
		}
		for j := 0; j < e.numProbes; j++ {
			wg.Add(1)
			jobs <- j
		}
		wg.Wait()
	} else {
		for j := 0; j < e.numProbes; j++ {
			contribs[j], errs[j] = e.quadrature(red.Trid[j], n, funcs)
		}
	}

	for j := 0; j < e.numProbes; j++ {
		if errs[j] != nil {
			return nil, errs[j]
		}
		floats.Add(results, contribs[j])
	}
	return results, nil
}

// LogDet estimates log det A = tr(log A).
func (e *Estimator) LogDet(a op.Operator) (float64, error) {
	res, err := e.Evaluate(a, math.Log)
	if err != nil {
		return 0, err
	}
	return res[0], nil
}

// TraceInverse estimates tr(A^-1).
func (e *Estimator) TraceInverse(a op.Operator) (float64, error) {
	res, err := e.Evaluate(a, func(x float64) float64 { return 1 / x })
	if err != nil {
		return 0, err
	}
	return res[0], nil
}

// quadrature turns one reduced tridiagonal matrix into per-function
// contributions (n/p) * sum_nodes w^2 f(lambda + shift).
func (e *Estimator) quadrature(t *mat.SymDense, n int, funcs []Func) ([]float64, error) {
	var es mat.EigenSym
	if !es.Factorize(t, true) {
		return nil, ErrEigenFailed
	}
	vals := es.Values(nil)
	if floats.Min(vals) < indefiniteTol {
		// The reduced matrix lost positive semi-definiteness to floating
		// point drift; retreat to the largest acceptable leading block
		// rather than failing.
		k := searchValidPrefix(t)
		if !es.Factorize(t.SliceSym(0, k), true) {
			return nil, ErrEigenFailed
		}
		vals = es.Values(nil)
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	out := make([]float64, len(funcs))
	scale := float64(n) / float64(e.numProbes)
	for node, val := range vals {
		// The first Krylov vector is the unit probe in its own basis, so
		// the squared first eigenvector row is the quadrature weight.
		w := vecs.At(0, node)
		w *= w
		for i, f := range funcs {
			out[i] += scale * w * f(val+eigenShift)
		}
	}
	return out, nil
}

// probes draws numProbes unit-normalized Rademacher vectors of length n.
func (e *Estimator) probes(n int) *mat.Dense {
	v := mat.NewDense(n, e.numProbes, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < e.numProbes; j++ {
			v.Set(i, j, float64(2*e.rng.Intn(2)-1))
		}
	}
	norms := utils.ColNorms(v)
	for i := range norms {
		norms[i] = 1 / norms[i]
	}
	utils.ScaleCols(v, norms)
	return v
}
