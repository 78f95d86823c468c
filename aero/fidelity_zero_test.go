package aero_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ChristopherRabotin/amd"
	"github.com/ChristopherRabotin/amd/aero"
	"github.com/ChristopherRabotin/amd/vehicles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// p2006t returns the finalized vehicle of a P2006T configuration.
func p2006t(t *testing.T, tag string) *amd.Vehicle {
	t.Helper()
	set, err := vehicles.Configs(vehicles.P2006T())
	require.NoError(t, err)
	require.NoError(t, set.FinalizeAll())
	cfg, err := set.Get(tag)
	require.NoError(t, err)
	v, err := cfg.Vehicle()
	require.NoError(t, err)
	return v
}

// flight returns the conditions of a level flight at sea level.
func flight(n int, alpha, mach float64) *amd.Conditions {
	cond := amd.NewConditions(n)
	fill := func(name string, val float64) {
		v := make([]float64, n)
		for i := range v {
			v[i] = val
		}
		cond.SetScalar(name, v)
	}
	fill(amd.CondAngleOfAttack, alpha)
	fill(amd.CondMach, mach)
	fill(amd.CondTemperature, 288.15)
	// ρ a / μ at sea level
	fill(amd.CondReynolds, mach*1.225*340.294/1.7894e-5)
	return cond
}

func TestSkinFriction(t *testing.T) {
	cf, kc, kr := aero.SkinFriction(1e7, 0, 288.15)
	assert.InDelta(t, 0.455/math.Pow(7, 2.58), cf, 1e-15)
	assert.Equal(t, 1.0, kc)
	assert.Equal(t, 1.0, kr)

	cfc, kc, kr := aero.SkinFriction(1e7, 0.5, 288.15)
	assert.Less(t, kc, 1.0, "compressibility lowers the skin friction")
	assert.Greater(t, kr, 1.0, "the reference temperature lowers the Reynolds number")
	assert.Less(t, cfc, cf)
	T := 288.15
	td := T * (1 + 0.035*0.25 + 0.45*0.178*0.25)
	rd := 1e7 * math.Pow(T/td, 2.5) * (td + 216) / (T + 216)
	assert.Less(t, rd, 1e7)
	assert.InDelta(t, T/td, kc, 1e-12)
	assert.InDelta(t, math.Pow(7/math.Log10(rd), 2.58), kr, 1e-12)

	cf, kc, kr = aero.SkinFriction(0, 0.2, 288.15)
	assert.Zero(t, cf)
	assert.Equal(t, 1.0, kc)
	assert.Equal(t, 1.0, kr)
}

func TestLiftSlope(t *testing.T) {
	w := amd.Wing{AspectRatio: 8}
	assert.InDelta(t, 2*math.Pi*8/(2+math.Sqrt(68)), aero.LiftSlope(w, 0), 1e-12)
	assert.Greater(t, aero.LiftSlope(w, 0.5), aero.LiftSlope(w, 0), "Prandtl-Glauert")
	swept := w
	swept.Sweep = amd.Deg2rad(30)
	assert.Less(t, aero.LiftSlope(swept, 0), aero.LiftSlope(w, 0))
	assert.Less(t, aero.LiftSlope(amd.Wing{AspectRatio: 1000}, 0), 2*math.Pi)

	assert.Zero(t, aero.FlapLift(amd.Wing{Flaps: amd.Flaps{Chord: 0.2, SpanEnd: 0.7}}))
	flapped := amd.Wing{Flaps: amd.Flaps{Chord: 0.2, SpanStart: 0.1, SpanEnd: 0.7, Angle: amd.Deg2rad(30)}}
	assert.InDelta(t, 0.9*0.2*0.6*2*math.Pi*amd.Deg2rad(30), aero.FlapLift(flapped), 1e-12)
}

func TestFidelityZero(t *testing.T) {
	v := p2006t(t, vehicles.ConfigCruise)
	fz, err := aero.NewFidelityZero(v, aero.DefaultSettings())
	require.NoError(t, err)

	comps := fz.Parasite(0.2, 0.2*1.225*340.294/1.7894e-5, 288.15)
	// Three wings, one fuselage and the nacelles.
	require.Len(t, comps, 5)
	parasite := 0.0
	for _, c := range comps {
		assert.Greater(t, c.FormFactor, 1.0, c.Tag)
		assert.Greater(t, c.Coefficient, 0.0, c.Tag)
		parasite += c.Coefficient
	}
	assert.Equal(t, "internal_combustion_propeller", comps[4].Tag)
	assert.InDelta(t, 2*v.Propulsors[0].WettedArea, comps[4].WettedArea, 1e-12, "both nacelles")
	assert.True(t, parasite > 0.01 && parasite < 0.05, "CD0 of %f", parasite)

	cond := flight(3, amd.Deg2rad(4), 0.2)
	res, err := fz.Evaluate(cond, v)
	require.NoError(t, err)
	require.Len(t, res.CL, 3)
	main, _ := v.MainWing()
	expCL := 0.0
	for _, w := range v.Wings {
		if !w.Vertical {
			expCL += w.ReferenceArea / v.ReferenceArea * w.DynamicPressureRatio * aero.LiftSlope(w, 0.2) * (amd.Deg2rad(4) + w.TwistRoot)
		}
	}
	for i := range res.CL {
		assert.InDelta(t, expCL, res.CL[i], 1e-12)
		assert.InDelta(t, parasite, res.Breakdown.ParasiteTotal[i], 1e-12)
		assert.InDelta(t, expCL*expCL/(math.Pi*main.AspectRatio*main.SpanEfficiency), res.Breakdown.Induced[i], 1e-12)
		assert.Zero(t, res.Breakdown.Compressible[i], "no drag rise at M=0.2")
		assert.Zero(t, res.Breakdown.Miscellaneous[i], "flaps up")
		assert.InDelta(t, res.Breakdown.Total[i], res.CD[i], 1e-15)
	}
	assert.Len(t, res.Breakdown.Parasite, 5)

	// Drag rise close to Mach one.
	res, err = fz.Evaluate(flight(1, 0, 0.85), v)
	require.NoError(t, err)
	assert.Greater(t, res.Breakdown.Compressible[0], 0.0)

	_, err = fz.Evaluate(flight(2, 0, 1.2), v)
	assert.Error(t, err, "supersonic")
	_, err = fz.Evaluate(flight(2, math.NaN(), 0.2), v)
	assert.Error(t, err)
}

func TestFidelityZeroFlaps(t *testing.T) {
	cruise := p2006t(t, vehicles.ConfigCruise)
	landing := p2006t(t, vehicles.ConfigLanding)
	fzc, err := aero.NewFidelityZero(cruise, aero.DefaultSettings())
	require.NoError(t, err)
	fzl, err := aero.NewFidelityZero(landing, aero.DefaultSettings())
	require.NoError(t, err)

	rc, err := fzc.Evaluate(flight(1, amd.Deg2rad(2), 0.15), cruise)
	require.NoError(t, err)
	rl, err := fzl.Evaluate(flight(1, amd.Deg2rad(2), 0.15), landing)
	require.NoError(t, err)

	main, _ := landing.MainWing()
	assert.InDelta(t, aero.FlapLift(*main), rl.CL[0]-rc.CL[0], 1e-12)
	flapped := (main.Flaps.SpanEnd - main.Flaps.SpanStart) * main.ReferenceArea / landing.ReferenceArea
	assert.InDelta(t, 0.0023*flapped*40, rl.Breakdown.Miscellaneous[0], 1e-9)

	s := aero.DefaultSettings()
	s.MaxLiftCoefficient = 1.2
	s.DragIncrement = 0.01
	clipped, err := aero.NewFidelityZero(landing, s)
	require.NoError(t, err)
	res, err := clipped.Evaluate(flight(1, amd.Deg2rad(15), 0.15), landing)
	require.NoError(t, err)
	assert.Equal(t, 1.2, res.CL[0])
	assert.InDelta(t, rl.Breakdown.Miscellaneous[0]+0.01, res.Breakdown.Miscellaneous[0], 1e-12)
}

func TestFidelityZeroInvalid(t *testing.T) {
	v := p2006t(t, vehicles.ConfigCruise)
	v.Wings[0].AspectRatio = 0
	_, err := aero.NewFidelityZero(v, aero.DefaultSettings())
	var cfgErr *amd.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "wings.main_wing.aspect_ratio", cfgErr.Field)

	v.Wings = nil
	_, err = aero.NewFidelityZero(v, aero.DefaultSettings())
	assert.Error(t, err)
}

func TestPolar(t *testing.T) {
	v := p2006t(t, vehicles.ConfigCruise)
	p, err := aero.NewPolar(v, 0.025)
	require.NoError(t, err)
	main, _ := v.MainWing()
	assert.InDelta(t, aero.LiftSlope(*main, 0), p.CLAlpha, 1e-12)
	assert.InDelta(t, 1/(math.Pi*8.8*0.965), p.K, 1e-12)

	cond := amd.NewConditions(3)
	cond.SetScalar(amd.CondAngleOfAttack, []float64{0, 0.05, 0.1})
	res, err := p.Evaluate(cond, v)
	require.NoError(t, err)
	for i, α := range []float64{0, 0.05, 0.1} {
		cl := p.CLAlpha * α
		assert.InDelta(t, cl, res.CL[i], 1e-12)
		assert.InDelta(t, 0.025+p.K*cl*cl, res.CD[i], 1e-12)
	}
	assert.Equal(t, res.CD, res.Breakdown.Total)

	res, err = aero.Constant{CL: 0.5, CD: 0.03}.Evaluate(amd.NewConditions(2), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, res.CL)
	assert.Equal(t, []float64{0.03, 0.03}, res.CD)
}

func TestRegister(t *testing.T) {
	r := amd.NewRegistry()
	require.NoError(t, aero.Register(r))
	names, _, _ := r.Names()
	assert.Equal(t, []string{aero.FidelityZeroName, aero.PolarName}, names)
	assert.Error(t, aero.Register(r), "registered twice")
}

func TestParasiteReport(t *testing.T) {
	fz, err := aero.NewFidelityZero(p2006t(t, vehicles.ConfigCruise), aero.DefaultSettings())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, aero.WriteParasiteReport(&buf, fz, aero.ReportMach, aero.ReportReynolds, aero.ReportTemperature))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Creation date (UTC)"), out)
	for _, tag := range []string{"main_wing", "horizontal_stabilizer", "vertical_stabilizer", "fuselage", "total"} {
		assert.Contains(t, out, tag)
	}
}
