package amd

import (
	"fmt"
	"math"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResidualFunc computes the residuals of a state from its unknowns.
type ResidualFunc func(st *State) error

// SolveStats summarizes a converged solve.
type SolveStats struct {
	Iterations   int
	Evaluations  int
	ResidualNorm float64
}

// Solver is a damped Newton solver with a forward finite difference Jacobian.
// It is deterministic: the residuals are evaluated sequentially and nothing is random.
type Solver struct {
	settings SolverSettings
	logger   kitlog.Logger
	metrics  *Metrics
}

// NewSolver returns a new solver. The logger and the metrics may be nil.
func NewSolver(s SolverSettings, logger kitlog.Logger, metrics *Metrics) *Solver {
	return &Solver{s, orNop(logger), metrics}
}

// Solve drives the residuals of the state below tolerance by updating its unknowns.
// On success, the state holds the converged unknowns and the conditions computed from them.
func (s *Solver) Solve(tag string, st *State, f ResidualFunc) (SolveStats, error) {
	stats := SolveStats{}
	nx, nr := st.Unknowns.Len(), st.Residuals.Len()
	if nx == 0 || nx != nr {
		return stats, &ConfigurationError{Field: tag, Reason: fmt.Sprintf("%d unknowns for %d residuals", nx, nr)}
	}
	lo, hi := st.Unknowns.Bounds()

	eval := func(x []float64) ([]float64, error) {
		stats.Evaluations++
		if s.metrics != nil {
			s.metrics.Evaluations.Inc()
		}
		st.Unknowns.Unpack(x)
		if err := f(st); err != nil {
			return nil, err
		}
		return st.Residuals.Pack(), nil
	}
	fail := func(r []float64, singular bool, reason string) error {
		idx, largest := maxAbs(r)
		group, node := st.Residuals.Locate(idx)
		return &ConvergenceError{
			Segment:      tag,
			Iterations:   stats.Iterations,
			ResidualNorm: floats.Norm(r, 2),
			Component:    group,
			Node:         node,
			Largest:      largest,
			Singular:     singular,
			Reason:       reason,
		}
	}

	x := st.Unknowns.Pack()
	r, err := eval(x)
	if err != nil {
		return stats, err
	}
	J := mat.NewDense(nr, nx, nil)
	dx := mat.NewVecDense(nx, nil)
	trial := make([]float64, nx)
	for {
		rNorm := floats.Norm(r, 2)
		stats.ResidualNorm = rNorm
		if _, largest := maxAbs(r); math.Abs(largest) < s.settings.Tolerance {
			level.Debug(s.logger).Log("subsys", "solver", "segment", tag, "status", "converged", "iterations", stats.Iterations, "|R|", rNorm)
			s.observe(stats)
			return stats, nil
		}
		if math.IsNaN(rNorm) || math.IsInf(rNorm, 0) {
			return stats, fail(r, false, "non finite residual")
		}
		if stats.Iterations >= s.settings.MaxIterations {
			return stats, fail(r, false, "iteration limit")
		}
		stats.Iterations++

		// Jacobian, one perturbed evaluation per unknown.
		var jacErr error
		fd.Jacobian(J, func(y, xp []float64) {
			if jacErr != nil {
				return
			}
			ry, err := eval(xp)
			if err != nil {
				jacErr = err
				return
			}
			copy(y, ry)
		}, x, &fd.JacobianSettings{
			Formula:     fd.Forward,
			OriginValue: r,
			Step:        s.settings.Step,
		})
		if jacErr != nil {
			return stats, jacErr
		}

		var lu mat.LU
		lu.Factorize(J)
		if cond := lu.Cond(); math.IsInf(cond, 1) || math.IsNaN(cond) || cond > s.settings.MaxCondition {
			// Leave the state consistent with the last accepted unknowns.
			if _, err := eval(x); err != nil {
				return stats, err
			}
			return stats, fail(r, true, fmt.Sprintf("singular jacobian (condition %.3e)", cond))
		}
		if err := lu.SolveVecTo(dx, false, mat.NewVecDense(nr, r)); err != nil {
			if _, cond := err.(mat.Condition); !cond {
				return stats, err
			}
		}

		// Damped step, clipped to the bounds, halved until the residual norm decreases.
		accepted := false
		λ := 1.0
		for h := 0; h <= s.settings.MaxHalvings; h++ {
			for i := range trial {
				trial[i] = clip(x[i]-λ*dx.AtVec(i), lo[i], hi[i])
			}
			rt, err := eval(trial)
			if err != nil {
				return stats, err
			}
			if floats.Norm(rt, 2) < rNorm {
				copy(x, trial)
				r = rt
				accepted = true
				break
			}
			λ /= 2
		}
		level.Debug(s.logger).Log("subsys", "solver", "segment", tag, "iteration", stats.Iterations, "|R|", floats.Norm(r, 2), "λ", λ, "accepted", accepted)
		if !accepted {
			if _, err := eval(x); err != nil {
				return stats, err
			}
			return stats, fail(r, false, fmt.Sprintf("no decrease after %d step halvings", s.settings.MaxHalvings))
		}
	}
}

func (s *Solver) observe(stats SolveStats) {
	if s.metrics != nil {
		s.metrics.Iterations.Observe(float64(stats.Iterations))
	}
}
