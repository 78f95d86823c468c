// Package weights estimates the weight breakdown of a vehicle.
package weights

import (
	"math"

	"github.com/ChristopherRabotin/amd"
)

// PassengerMass is the standard mass of a passenger with baggage, in kg.
const PassengerMass = 88.45

// Imperial units of the statistical equations, from the unit table.
var (
	lb   = amd.MustBase(1, "lb")
	ft   = amd.MustBase(1, "ft")
	psf  = amd.MustBase(1, "psf")
	hp   = amd.MustBase(1, "hp")
	inch = amd.MustBase(1, "in")
)

// GeneralAviation is the Raymer statistical weight estimation of light aircraft. The equations are in
// imperial units, the breakdown is returned in kg. The vehicle mass rate is the fuel flow of its network.
type GeneralAviation struct {
	amd.FuelFlowMassRate
	// CruiseDynamicPressure is the design cruise dynamic pressure in Pa.
	CruiseDynamicPressure float64
	// LandingLoadFactor is the ultimate landing load factor of the gear.
	LandingLoadFactor float64
}

// NewGeneralAviation returns the model with its usual settings.
func NewGeneralAviation() *GeneralAviation {
	return &GeneralAviation{CruiseDynamicPressure: 3000, LandingLoadFactor: 4.5}
}

func cos2(Λ float64) float64 {
	c := math.Cos(Λ)
	return c * c
}

// Wing returns the mass of a lifting surface in kg.
func (g *GeneralAviation) Wing(w amd.Wing, v *amd.Vehicle) float64 {
	Nz := ultimateLoad(v)
	Wdg := v.MassProperties.MaxTakeoff / lb
	q := g.CruiseDynamicPressure / psf
	S := w.ReferenceArea / (ft * ft)
	λ := math.Max(w.Taper, 0.01)
	tc := 100 * w.ThicknessToChord / math.Cos(w.Sweep)
	A := w.AspectRatio / cos2(w.Sweep)
	Wfw := math.Max(v.MassProperties.MaxFuel, 1) / lb
	W := 0.036 * math.Pow(S, 0.758) * math.Pow(Wfw, 0.0035) * math.Pow(A, 0.6) * math.Pow(q, 0.006) *
		math.Pow(λ, 0.04) * math.Pow(tc, -0.3) * math.Pow(Nz*Wdg, 0.49)
	return W * lb
}

// HorizontalTail returns the mass of a horizontal tail in kg.
func (g *GeneralAviation) HorizontalTail(w amd.Wing, v *amd.Vehicle) float64 {
	Nz := ultimateLoad(v)
	Wdg := v.MassProperties.MaxTakeoff / lb
	q := g.CruiseDynamicPressure / psf
	S := w.ReferenceArea / (ft * ft)
	λ := math.Max(w.Taper, 0.01)
	tc := 100 * w.ThicknessToChord / math.Cos(w.Sweep)
	A := w.AspectRatio / cos2(w.Sweep)
	W := 0.016 * math.Pow(Nz*Wdg, 0.414) * math.Pow(q, 0.168) * math.Pow(S, 0.896) * math.Pow(tc, -0.12) *
		math.Pow(A, 0.043) * math.Pow(λ, -0.02)
	return W * lb
}

// VerticalTail returns the mass of a conventional vertical tail in kg.
func (g *GeneralAviation) VerticalTail(w amd.Wing, v *amd.Vehicle) float64 {
	Nz := ultimateLoad(v)
	Wdg := v.MassProperties.MaxTakeoff / lb
	q := g.CruiseDynamicPressure / psf
	S := w.ReferenceArea / (ft * ft)
	λ := math.Max(w.Taper, 0.01)
	tc := 100 * w.ThicknessToChord / math.Cos(w.Sweep)
	A := w.AspectRatio / cos2(w.Sweep)
	W := 0.073 * math.Pow(Nz*Wdg, 0.376) * math.Pow(q, 0.122) * math.Pow(S, 0.873) * math.Pow(tc, -0.49) *
		math.Pow(A, 0.357) * math.Pow(λ, 0.039)
	return W * lb
}

// Fuselage returns the mass of an unpressurized fuselage in kg.
func (g *GeneralAviation) Fuselage(f amd.Fuselage, v *amd.Vehicle) float64 {
	Nz := ultimateLoad(v)
	Wdg := v.MassProperties.MaxTakeoff / lb
	q := g.CruiseDynamicPressure / psf
	S := f.WettedArea / (ft * ft)
	Lt := math.Max(f.LengthTail, 0.5*f.LengthTotal) / ft
	fineness := f.LengthTotal / f.EffectiveDiameter
	W := 0.052 * math.Pow(S, 1.086) * math.Pow(Nz*Wdg, 0.177) * math.Pow(Lt, -0.051) * math.Pow(fineness, -0.072) * math.Pow(q, 0.241)
	return W * lb
}

// LandingGear returns the mass of the main and the nose gear in kg.
func (g *GeneralAviation) LandingGear(v *amd.Vehicle) (main, nose float64) {
	Wl := v.MassProperties.Landing
	if Wl <= 0 {
		Wl = v.MassProperties.MaxTakeoff
	}
	NlWl := g.LandingLoadFactor * Wl / lb
	Lm := v.LandingGear.MainStrutLength / inch
	Ln := v.LandingGear.NoseStrutLength / inch
	main = 0.095 * math.Pow(NlWl, 0.768) * math.Pow(Lm/12, 0.409) * lb
	nose = 0.125 * math.Pow(NlWl, 0.566) * math.Pow(Ln/12, 0.845) * lb
	return
}

// Engines returns the installed mass of the engines of a propulsor in kg. The dry weight is estimated from the
// power to weight ratio of light piston engines.
func (g *GeneralAviation) Engines(p amd.Propulsor) float64 {
	dry := p.Engine.SeaLevelPower / hp / 0.7
	return float64(p.NumberOfEngines) * 2.575 * math.Pow(dry, 0.922) * lb
}

func ultimateLoad(v *amd.Vehicle) float64 {
	if v.Envelope.UltimateLoad > 0 {
		return v.Envelope.UltimateLoad
	}
	return 5.7
}

// Evaluate implements the amd.Weights interface. The systems absorb the difference between the operating empty
// mass and the estimated structures and propulsion. The payload is limited by the zero fuel mass, and the fuel
// is what remains of the takeoff mass.
func (g *GeneralAviation) Evaluate(v *amd.Vehicle) (amd.WeightBreakdown, error) {
	var b amd.WeightBreakdown
	if v.MassProperties.MaxTakeoff <= 0 {
		return b, &amd.ConfigurationError{Field: "mass_properties.max_takeoff", Reason: "must be positive"}
	}
	main, err := v.MainWing()
	if err != nil {
		return b, err
	}
	for _, w := range v.Wings {
		var m float64
		switch {
		case w.Vertical:
			m = g.VerticalTail(w, v)
		case w.Tag == main.Tag:
			m = g.Wing(w, v)
		default:
			m = g.HorizontalTail(w, v)
		}
		b.Structures = append(b.Structures, amd.Component{Name: "wings." + w.Tag, Mass: m})
	}
	for _, f := range v.Fuselages {
		b.Structures = append(b.Structures, amd.Component{Name: "fuselages." + f.Tag, Mass: g.Fuselage(f, v)})
	}
	mainGear, noseGear := g.LandingGear(v)
	b.Structures = append(b.Structures,
		amd.Component{Name: "landing_gear.main", Mass: mainGear},
		amd.Component{Name: "landing_gear.nose", Mass: noseGear})
	for _, p := range v.Propulsors {
		b.Propulsion += g.Engines(p)
	}

	b.Empty = v.MassProperties.OperatingEmpty
	if b.Empty <= 0 {
		b.Empty = b.StructuralMass() + b.Propulsion
	}
	b.Systems = math.Max(0, b.Empty-b.StructuralMass()-b.Propulsion)

	b.Payload = float64(v.Passengers)*PassengerMass + v.MassProperties.Cargo
	if mzf := v.MassProperties.MaxZeroFuel; mzf > 0 {
		b.Payload = math.Min(b.Payload, math.Max(0, mzf-b.Empty))
	}
	b.ZeroFuel = b.Empty + b.Payload
	b.Takeoff = v.MassProperties.Takeoff
	if b.Takeoff <= 0 {
		b.Takeoff = v.MassProperties.MaxTakeoff
	}
	b.Fuel = math.Max(0, b.Takeoff-b.ZeroFuel)
	return b, nil
}

// Name under which the model is registered.
const GeneralAviationName = "general_aviation"

// Register adds the weights models to the registry.
func Register(r *amd.Registry) error {
	return r.RegisterWeights(GeneralAviationName, func() amd.Weights { return NewGeneralAviation() })
}
