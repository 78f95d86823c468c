package aero

import (
	"math"

	"github.com/ChristopherRabotin/amd"
)

// Polar is a linear lift curve with a parabolic drag polar: CL = CL0 + CLα α, CD = CD0 + K CL².
type Polar struct {
	CL0, CLAlpha float64
	CD0, K       float64
}

// NewPolar returns the parabolic polar of a vehicle: the slope and the induced factor of its main wing.
func NewPolar(v *amd.Vehicle, cd0 float64) (*Polar, error) {
	main, err := v.MainWing()
	if err != nil {
		return nil, err
	}
	e := main.SpanEfficiency
	if e <= 0 {
		e = 0.8
	}
	return &Polar{
		CLAlpha: LiftSlope(*main, 0) * main.ReferenceArea / v.ReferenceArea,
		CD0:     cd0,
		K:       1 / (math.Pi * main.AspectRatio * e),
	}, nil
}

// Evaluate implements the amd.Aerodynamics interface.
func (p *Polar) Evaluate(cond *amd.Conditions, _ *amd.Vehicle) (amd.AeroResult, error) {
	α := cond.Scalar(amd.CondAngleOfAttack)
	n := len(α)
	res := amd.AeroResult{CL: make([]float64, n), CD: make([]float64, n)}
	res.Breakdown.ParasiteTotal = make([]float64, n)
	res.Breakdown.Induced = make([]float64, n)
	for i := range α {
		cl := p.CL0 + p.CLAlpha*α[i]
		res.CL[i] = cl
		res.Breakdown.ParasiteTotal[i] = p.CD0
		res.Breakdown.Induced[i] = p.K * cl * cl
		res.CD[i] = p.CD0 + p.K*cl*cl
	}
	res.Breakdown.Total = res.CD
	return res, nil
}

// Constant returns the same coefficients whatever the flight condition.
type Constant struct {
	CL, CD float64
}

// Evaluate implements the amd.Aerodynamics interface.
func (c Constant) Evaluate(cond *amd.Conditions, _ *amd.Vehicle) (amd.AeroResult, error) {
	n := cond.Rows()
	res := amd.AeroResult{CL: make([]float64, n), CD: make([]float64, n)}
	for i := 0; i < n; i++ {
		res.CL[i] = c.CL
		res.CD[i] = c.CD
	}
	res.Breakdown.Total = res.CD
	return res, nil
}

// Names under which the models are registered.
const (
	FidelityZeroName = "fidelity_zero"
	PolarName        = "polar"
)

// Register adds the fidelity zero model and a parabolic polar (CD0 = 0.025) to the registry.
func Register(r *amd.Registry) error {
	if err := r.RegisterAerodynamics(FidelityZeroName, func(v *amd.Vehicle) (amd.Aerodynamics, error) {
		return NewFidelityZero(v, DefaultSettings())
	}); err != nil {
		return err
	}
	return r.RegisterAerodynamics(PolarName, func(v *amd.Vehicle) (amd.Aerodynamics, error) {
		return NewPolar(v, 0.025)
	})
}
