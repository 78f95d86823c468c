package amd

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// PolarPoint is the flight condition of a drag polar sweep.
type PolarPoint struct {
	Altitude float64 // m
	AirSpeed float64 // m/s
	DeltaISA float64 // K
}

// Polar is the drag polar of one configuration.
type Polar struct {
	Config string
	Alpha  []float64 // rad
	CL     []float64
	CD     []float64
}

// LiftToDrag returns the maximum lift to drag ratio and the angle of attack where it occurs.
func (p Polar) LiftToDrag() (ld, alpha float64) {
	ld = math.Inf(-1)
	for i := range p.Alpha {
		if p.CD[i] <= 0 {
			continue
		}
		if r := p.CL[i] / p.CD[i]; r > ld {
			ld, alpha = r, p.Alpha[i]
		}
	}
	return
}

// DragPolar evaluates the aerodynamics of one configuration at each angle of attack.
func DragPolar(an *Analyses, pt PolarPoint, alphas []float64) (Polar, error) {
	if err := an.Validate(); err != nil {
		return Polar{}, err
	}
	if len(alphas) == 0 {
		return Polar{}, &ConfigurationError{Field: "alphas", Reason: "at least one angle of attack is required"}
	}
	v, err := an.Config.Vehicle()
	if err != nil {
		return Polar{}, err
	}
	n := len(alphas)
	cond := NewConditions(n)
	alt := filled(n, pt.Altitude)
	cond.SetScalar(CondAltitude, alt)
	atmo, err := an.Atmosphere.Compute(alt, pt.DeltaISA)
	if err != nil {
		return Polar{}, err
	}
	setAtmosphere(cond, atmo)
	mach := make([]float64, n)
	q := make([]float64, n)
	re := make([]float64, n)
	for i := range mach {
		mach[i] = pt.AirSpeed / atmo.SpeedOfSound[i]
		q[i] = 0.5 * atmo.Density[i] * pt.AirSpeed * pt.AirSpeed
		re[i] = atmo.Density[i] * pt.AirSpeed / atmo.Viscosity[i]
	}
	cond.SetScalar(CondAirSpeed, filled(n, pt.AirSpeed))
	cond.SetScalar(CondMach, mach)
	cond.SetScalar(CondDynamicPressure, q)
	cond.SetScalar(CondReynolds, re)
	cond.SetScalar(CondAngleOfAttack, alphas)
	res, err := an.Aerodynamics.Evaluate(cond, v)
	if err != nil {
		return Polar{}, fmt.Errorf("%s: %w", an.Config.Tag, err)
	}
	return Polar{an.Config.Tag, append([]float64(nil), alphas...), res.CL, res.CD}, nil
}

// DragPolars evaluates the drag polar of several configurations concurrently. The polars are sorted by configuration.
func DragPolars(ctx context.Context, analyses []*Analyses, pt PolarPoint, alphas []float64) ([]Polar, error) {
	polars := make([]Polar, len(analyses))
	g, gCtx := errgroup.WithContext(ctx)
	for i, an := range analyses {
		i, an := i, an
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := DragPolar(an, pt, alphas)
			if err != nil {
				return err
			}
			polars[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(polars, func(i, j int) bool { return polars[i].Config < polars[j].Config })
	return polars, nil
}
