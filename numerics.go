package amd

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/mat"
)

// GridKind defines how the control points are spread over the normalized segment.
type GridKind uint8

const (
	// Chebyshev is a Chebyshev-Gauss-Lobatto pseudo-spectral grid.
	Chebyshev GridKind = iota + 1
	// Uniform is an equally spaced grid with finite difference operators.
	Uniform
)

func (k GridKind) String() string {
	switch k {
	case Chebyshev:
		return "chebyshev"
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("grid(%d)", k)
	}
}

// ParseGridKind returns the grid kind from its name.
func ParseGridKind(s string) (GridKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chebyshev", "":
		return Chebyshev, nil
	case "uniform", "linear":
		return Uniform, nil
	default:
		return 0, &ConfigurationError{Field: "solver.grid", Reason: fmt.Sprintf("unknown grid `%s`", s)}
	}
}

// Operators are the control points on [0,1] and the differentiation and integration matrices of a grid.
// They only depend on the grid kind and the number of points, and must not be modified.
type Operators struct {
	Kind GridKind
	X    []float64  // control points, strictly increasing, X[0]=0 and X[N-1]=1
	D    *mat.Dense // d/dx at the control points
	I    *mat.Dense // ∫_0^x at the control points, first row is zero
}

// N returns the number of control points.
func (o *Operators) N() int {
	return len(o.X)
}

// Derivative sets dst to df/dt where t spans `span` over the normalized segment. dst and f must not overlap.
func (o *Operators) Derivative(dst, f []float64, span float64) {
	if len(f) != o.N() || len(dst) != o.N() {
		panic(fmt.Errorf("derivative: expected %d rows, got %d (dst %d)", o.N(), len(f), len(dst)))
	}
	if span == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(o.D, mat.NewVecDense(len(f), f))
	out.ScaleVec(1/span, out)
}

// Integral sets dst to ∫_0^t f dt where t spans `span` over the normalized segment.
func (o *Operators) Integral(dst, f []float64, span float64) {
	if len(f) != o.N() || len(dst) != o.N() {
		panic(fmt.Errorf("integral: expected %d rows, got %d (dst %d)", o.N(), len(f), len(dst)))
	}
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(o.I, mat.NewVecDense(len(f), f))
	out.ScaleVec(span, out)
}

// NewOperators computes the operators of a grid. It panics on an unknown kind or fewer than one point.
func NewOperators(kind GridKind, n int) *Operators {
	if n < 1 {
		panic(fmt.Errorf("grid requires at least one point, got %d", n))
	}
	if n == 1 {
		return &Operators{kind, []float64{0}, mat.NewDense(1, 1, nil), mat.NewDense(1, 1, nil)}
	}
	switch kind {
	case Chebyshev:
		return chebyshev(n)
	case Uniform:
		return uniform(n)
	default:
		panic(fmt.Errorf("unknown grid kind %s", kind))
	}
}

// chebyshev builds the Gauss-Lobatto points mapped onto [0,1], with barycentric differentiation.
func chebyshev(n int) *Operators {
	x := make([]float64, n)
	w := make([]float64, n)
	for j := 0; j < n; j++ {
		x[j] = (1 - math.Cos(float64(j)*math.Pi/float64(n-1))) / 2
		w[j] = 1
		if j%2 == 1 {
			w[j] = -1
		}
		if j == 0 || j == n-1 {
			w[j] /= 2
		}
	}
	// Exact end points.
	x[0], x[n-1] = 0, 1

	D := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		diag := 0.0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dij := (w[j] / w[i]) / (x[i] - x[j])
			D.Set(i, j, dij)
			diag -= dij
		}
		D.Set(i, i, diag)
	}
	return &Operators{Chebyshev, x, D, integrationFromDifferentiation(D)}
}

// integrationFromDifferentiation inverts D on the nodes after the first one, so that the integral is zero at x=0.
func integrationFromDifferentiation(D *mat.Dense) *mat.Dense {
	n, _ := D.Dims()
	var sub mat.Dense
	sub.CloneFrom(D.Slice(1, n, 1, n))
	var inv mat.Dense
	if err := inv.Inverse(&sub); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			panic(fmt.Errorf("integration operator: %s", err))
		}
	}
	I := mat.NewDense(n, n, nil)
	I.Slice(1, n, 1, n).(*mat.Dense).Copy(&inv)
	return I
}

// uniform builds equally spaced points with second order finite differences and a cumulative trapezoid rule.
func uniform(n int) *Operators {
	x := make([]float64, n)
	for j := range x {
		x[j] = float64(j) / float64(n-1)
	}
	x[n-1] = 1
	h := 1 / float64(n-1)
	D := mat.NewDense(n, n, nil)
	if n == 2 {
		D.SetRow(0, []float64{-1 / h, 1 / h})
		D.SetRow(1, []float64{-1 / h, 1 / h})
	} else {
		D.Set(0, 0, -3/(2*h))
		D.Set(0, 1, 4/(2*h))
		D.Set(0, 2, -1/(2*h))
		for i := 1; i < n-1; i++ {
			D.Set(i, i-1, -1/(2*h))
			D.Set(i, i+1, 1/(2*h))
		}
		D.Set(n-1, n-3, 1/(2*h))
		D.Set(n-1, n-2, -4/(2*h))
		D.Set(n-1, n-1, 3/(2*h))
	}
	I := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		for j := 0; j <= i; j++ {
			if j == 0 || j == i {
				I.Set(i, j, h/2)
			} else {
				I.Set(i, j, h)
			}
		}
	}
	return &Operators{Uniform, x, D, I}
}

type operatorKey struct {
	kind GridKind
	n    int
}

// OperatorCache memoizes the operators per grid kind and size. It is safe for concurrent use.
type OperatorCache struct {
	mu  sync.Mutex
	ops *lru.Cache[operatorKey, *Operators]
}

// NewOperatorCache returns a cache holding at most size grids.
func NewOperatorCache(size int) *OperatorCache {
	if size < 1 {
		size = 1
	}
	ops, err := lru.New[operatorKey, *Operators](size)
	if err != nil {
		panic(err)
	}
	return &OperatorCache{ops: ops}
}

// Get returns the operators of the requested grid, computing them on first use.
func (c *OperatorCache) Get(kind GridKind, n int) *Operators {
	key := operatorKey{kind, n}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ops, ok := c.ops.Get(key); ok {
		return ops
	}
	ops := NewOperators(kind, n)
	c.ops.Add(key, ops)
	return ops
}

// Len returns the number of cached grids.
func (c *OperatorCache) Len() int {
	return c.ops.Len()
}
