// Package aero provides the aerodynamics models of the mission solver.
package aero

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/amd"
)

// Settings tune the fidelity zero model.
type Settings struct {
	DragIncrement       float64 // added to the total drag coefficient
	OswaldFactor        float64 // overrides the span efficiency of the main wing when positive
	KornFactor          float64 // airfoil technology factor of the Korn equation
	MaxLiftCoefficient  float64 // lift coefficients are clipped to ±this value, zero disables clipping
	FlapDragCoefficient float64 // ΔCD per degree of flap per unit of flapped area ratio
}

// DefaultSettings returns the settings used for general aviation aircraft.
func DefaultSettings() Settings {
	return Settings{KornFactor: 0.87, FlapDragCoefficient: 0.0023}
}

// ParasiteComponent is the parasite drag build up of one component.
type ParasiteComponent struct {
	Tag                   string
	WettedArea            float64
	ReferenceLength       float64
	ReynoldsNumber        float64
	SkinFriction          float64
	CompressibilityFactor float64
	ReynoldsFactor        float64
	FormFactor            float64
	Coefficient           float64 // normalized by the vehicle reference area
}

// FidelityZero is a component build up: lifting line slope with flaps, flat plate parasite drag with form
// factors, induced drag and Korn-Lock compressibility drag.
type FidelityZero struct {
	Settings Settings
	sref     float64
	main     amd.Wing
	wings    []amd.Wing
	fuselage []amd.Fuselage
	nacelles []amd.Propulsor
}

// NewFidelityZero returns the fidelity zero model of a finalized vehicle.
func NewFidelityZero(v *amd.Vehicle, s Settings) (*FidelityZero, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	main, err := v.MainWing()
	if err != nil {
		return nil, err
	}
	if main.AspectRatio <= 0 {
		return nil, &amd.ConfigurationError{Field: "wings." + main.Tag + ".aspect_ratio", Reason: "must be positive"}
	}
	return &FidelityZero{s, v.ReferenceArea, *main, v.Wings, v.Fuselages, v.Propulsors}, nil
}

// LiftSlope returns the lift curve slope per radian of a wing (DATCOM), normalized by its own area.
func LiftSlope(w amd.Wing, mach float64) float64 {
	β2 := 1 - math.Min(mach, 0.95)*math.Min(mach, 0.95)
	A := w.AspectRatio
	tanΛ := math.Tan(w.Sweep)
	return 2 * math.Pi * A / (2 + math.Sqrt(A*A*β2*(1+tanΛ*tanΛ/β2)+4))
}

// FlapLift returns the lift coefficient increment of deployed flaps, normalized by the wing area.
func FlapLift(w amd.Wing) float64 {
	if w.Flaps.Angle == 0 {
		return 0
	}
	span := math.Max(0, w.Flaps.SpanEnd-w.Flaps.SpanStart)
	return 0.9 * w.Flaps.Chord * span * 2 * math.Pi * w.Flaps.Angle
}

// SkinFriction returns the compressible turbulent flat plate skin friction, along with the compressibility and
// Reynolds corrections applied to the incompressible value.
func SkinFriction(re, mach, temperature float64) (cf, kComp, kReyn float64) {
	if re <= 1 {
		return 0, 1, 1
	}
	cfInc := 0.455 / math.Pow(math.Log10(re), 2.58)
	tw := temperature * (1 + 0.178*mach*mach)
	td := temperature * (1 + 0.035*mach*mach + 0.45*(tw/temperature-1))
	kComp = temperature / td
	// Reynolds number at the reference temperature, Sutherland viscosity.
	rd := re * math.Pow(temperature/td, 2.5) * ((td + 216) / (temperature + 216))
	kReyn = math.Pow(math.Log10(re)/math.Log10(rd), 2.58)
	return cfInc * kComp * kReyn, kComp, kReyn
}

// wingFormFactor accounts for thickness and sweep.
func wingFormFactor(w amd.Wing, mach float64) float64 {
	const C = 1.1
	cΛ := math.Cos(w.Sweep)
	tc := w.ThicknessToChord
	return 1 + 2*C*tc*cΛ*cΛ/math.Sqrt(1-mach*mach*cΛ*cΛ) + C*C*cΛ*cΛ*tc*tc*(1+5*cΛ*cΛ)/(2*(1-math.Pow(mach*cΛ, 2)))
}

// Parasite returns the parasite drag build up at one flight condition, where re is per unit length.
func (a *FidelityZero) Parasite(mach, re, temperature float64) []ParasiteComponent {
	var comps []ParasiteComponent
	for _, w := range a.wings {
		l := w.MeanAerodynamicChord
		cf, kc, kr := SkinFriction(re*l, mach, temperature)
		ff := wingFormFactor(w, mach)
		comps = append(comps, ParasiteComponent{w.Tag, w.WettedArea, l, re * l, cf, kc, kr, ff, cf * ff * w.WettedArea / a.sref})
	}
	for _, f := range a.fuselage {
		l := f.LengthTotal
		cf, kc, kr := SkinFriction(re*l, mach, temperature)
		fineness := l / f.EffectiveDiameter
		ff := 1 + 60/math.Pow(fineness, 3) + fineness/400
		comps = append(comps, ParasiteComponent{f.Tag, f.WettedArea, l, re * l, cf, kc, kr, ff, cf * ff * f.WettedArea / a.sref})
	}
	for _, p := range a.nacelles {
		if p.NacelleDiameter <= 0 || p.EngineLength <= 0 {
			continue
		}
		l := p.EngineLength
		cf, kc, kr := SkinFriction(re*l, mach, temperature)
		ff := 1 + 0.35/(l/p.NacelleDiameter)
		n := float64(max(p.NumberOfEngines, 1))
		comps = append(comps, ParasiteComponent{p.Tag, p.WettedArea * n, l, re * l, cf, kc, kr, ff, n * cf * ff * p.WettedArea / a.sref})
	}
	return comps
}

// Evaluate implements the amd.Aerodynamics interface.
func (a *FidelityZero) Evaluate(cond *amd.Conditions, v *amd.Vehicle) (amd.AeroResult, error) {
	n := cond.Rows()
	α := cond.Scalar(amd.CondAngleOfAttack)
	mach := cond.Scalar(amd.CondMach)
	re := cond.Scalar(amd.CondReynolds)
	temp := cond.Scalar(amd.CondTemperature)

	res := amd.AeroResult{
		CL: make([]float64, n),
		CD: make([]float64, n),
		Breakdown: amd.DragBreakdown{
			Parasite:      make(map[string][]float64),
			ParasiteTotal: make([]float64, n),
			Induced:       make([]float64, n),
			Compressible:  make([]float64, n),
			Miscellaneous: make([]float64, n),
			Total:         make([]float64, n),
		},
	}
	e := a.main.SpanEfficiency
	if a.Settings.OswaldFactor > 0 {
		e = a.Settings.OswaldFactor
	}
	for i := 0; i < n; i++ {
		if mach[i] >= 1 || temp[i] <= 0 || math.IsNaN(α[i]) {
			return amd.AeroResult{}, fmt.Errorf("fidelity zero: invalid flight condition at node %d (M=%.3f, T=%.1f K, α=%f)", i, mach[i], temp[i], α[i])
		}
		// Lift
		cl := 0.0
		for _, w := range a.wings {
			if w.Vertical {
				continue
			}
			ratio := w.ReferenceArea / a.sref * w.DynamicPressureRatio
			cl += ratio * (LiftSlope(w, mach[i])*(α[i]+w.TwistRoot) + FlapLift(w))
		}
		if m := a.Settings.MaxLiftCoefficient; m > 0 {
			cl = math.Max(-m, math.Min(m, cl))
		}
		res.CL[i] = cl

		// Drag
		for _, comp := range a.Parasite(mach[i], re[i], temp[i]) {
			if _, ok := res.Breakdown.Parasite[comp.Tag]; !ok {
				res.Breakdown.Parasite[comp.Tag] = make([]float64, n)
			}
			res.Breakdown.Parasite[comp.Tag][i] = comp.Coefficient
			res.Breakdown.ParasiteTotal[i] += comp.Coefficient
		}
		res.Breakdown.Induced[i] = cl * cl / (math.Pi * a.main.AspectRatio * e)
		res.Breakdown.Compressible[i] = a.compressibility(mach[i], cl)
		res.Breakdown.Miscellaneous[i] = a.flapDrag() + a.Settings.DragIncrement
		cd := res.Breakdown.ParasiteTotal[i] + res.Breakdown.Induced[i] + res.Breakdown.Compressible[i] + res.Breakdown.Miscellaneous[i]
		res.Breakdown.Total[i] = cd
		res.CD[i] = cd
	}
	return res, nil
}

// compressibility is the Lock drag rise above the Korn critical Mach number of the main wing.
func (a *FidelityZero) compressibility(mach, cl float64) float64 {
	cΛ := math.Cos(a.main.Sweep)
	mdd := a.Settings.KornFactor/cΛ - a.main.ThicknessToChord/(cΛ*cΛ) - math.Abs(cl)/(10*cΛ*cΛ*cΛ)
	mcr := mdd - math.Cbrt(0.1/80)
	if mach <= mcr {
		return 0
	}
	return 20 * math.Pow(mach-mcr, 4)
}

// flapDrag is the drag of the deployed flaps of every wing.
func (a *FidelityZero) flapDrag() float64 {
	cd := 0.0
	for _, w := range a.wings {
		if w.Flaps.Angle == 0 {
			continue
		}
		flapped := math.Max(0, w.Flaps.SpanEnd-w.Flaps.SpanStart) * w.ReferenceArea / a.sref
		cd += a.Settings.FlapDragCoefficient * flapped * math.Abs(w.Flaps.Angle) * 180 / math.Pi
	}
	return cd
}
