// Package vehicles provides ready to fly vehicles, their configurations and missions.
package vehicles

import (
	"math"

	"github.com/ChristopherRabotin/amd"
	"github.com/ChristopherRabotin/amd/aero"
	"github.com/ChristopherRabotin/amd/propulsion"
	"github.com/ChristopherRabotin/amd/weights"
)

var (
	deg = func(v float64) float64 { return amd.MustBase(v, "deg") }
	rpm = func(v float64) float64 { return amd.MustBase(v, "rpm") }
)

// P2006T returns the Tecnam P2006T light twin.
func P2006T() *amd.Vehicle {
	v := &amd.Vehicle{
		Tag: "Tecnam_P2006T",
		MassProperties: amd.MassProperties{
			MaxTakeoff:     1230,
			Takeoff:        1230,
			OperatingEmpty: 819,
			MaxZeroFuel:    1145,
			Cargo:          80,
		},
		Envelope:      amd.Envelope{UltimateLoad: 5.7, LimitLoad: 3.8},
		ReferenceArea: 14.8,
		Passengers:    4,
		LandingGear: amd.LandingGear{
			MainTireDiameter: 0.423,
			NoseTireDiameter: 0.3625,
			MainStrutLength:  0.4833,
			NoseStrutLength:  0.3625,
			MainUnits:        2,
			NoseUnits:        1,
		},
	}

	main := amd.Wing{
		Tag:                  "main_wing",
		AspectRatio:          8.8,
		ThicknessToChord:     0.15,
		Taper:                0.621,
		SpanEfficiency:       0.965,
		Span:                 11.4,
		RootChord:            1.45,
		TipChord:             0.90,
		MeanAerodynamicChord: 1.34,
		ReferenceArea:        14.8,
		Dihedral:             deg(1),
		DynamicPressureRatio: 1,
		Origin:               [3]float64{2.986, 0, 1.077},
		Symmetric:            true,
		HighLift:             true,
		Flaps:                amd.Flaps{Type: "single_slotted", Chord: 0.2, SpanStart: 0.1053, SpanEnd: 0.6842},
	}
	horizontal := amd.Wing{
		Tag:                  "horizontal_stabilizer",
		AspectRatio:          4.193,
		ThicknessToChord:     0.12,
		Taper:                1,
		SpanEfficiency:       0.733,
		Span:                 3.3,
		RootChord:            0.787,
		TipChord:             0.787,
		ReferenceArea:        2.5971,
		ExposedArea:          4,
		WettedArea:           4,
		DynamicPressureRatio: 0.9,
		Origin:               [3]float64{7.789, 0, 0.3314},
		Symmetric:            true,
	}
	vertical := amd.Wing{
		Tag:                  "vertical_stabilizer",
		AspectRatio:          1.407,
		Sweep:                deg(38.75),
		ThicknessToChord:     0.12,
		Taper:                0.2856,
		Span:                 1.574,
		RootChord:            1.74,
		TipChord:             0.497,
		ReferenceArea:        1.761,
		DynamicPressureRatio: 1,
		Origin:               [3]float64{7.25, 0, 0.497},
		Vertical:             true,
	}
	v.Wings = []amd.Wing{main, horizontal, vertical}

	v.Fuselages = []amd.Fuselage{{
		Tag:                "fuselage",
		NumberCoachSeats:   v.Passengers,
		SeatsAbreast:       2,
		SeatPitch:          0.995,
		FinenessNose:       1.27,
		FinenessTail:       3.423,
		LengthNose:         1.16,
		LengthTail:         3.977,
		LengthCabin:        2.653,
		LengthTotal:        7.79,
		Width:              1.22,
		HeightMaximum:      1.41,
		EffectiveDiameter:  1.315,
		SideProjectedArea:  7.46,
		WettedArea:         25,
		FrontProjectedArea: 1.54,
	}}

	nacelle := Nacelle{Diameter: 0.58, Length: 1.74}
	v.Propulsors = []amd.Propulsor{{
		Tag:             "internal_combustion_propeller",
		Kind:            propulsion.ICEPropellerKind,
		NumberOfEngines: 2,
		EngineLength:    nacelle.Length,
		NacelleDiameter: nacelle.Diameter,
		RatedSpeed:      rpm(2400),
		WettedArea:      nacelle.WettedArea(),
		Engine: amd.Engine{
			SeaLevelPower: 73078.58,
			Speed:         rpm(5800),
			BSFC:          0.38,
		},
		Propeller: amd.Propeller{
			Blades:      2,
			TipRadius:   0.89,
			HubRadius:   0.124,
			DesignCl:    0.8,
			DesignPower: 74000,
		},
	}}
	return v
}

// Nacelle is the cylinder wrapping an engine.
type Nacelle struct {
	Diameter, Length float64
}

// WettedArea of the nacelle, including a 10% allowance for the inlets and the spinner.
func (n Nacelle) WettedArea() float64 {
	return 1.1 * math.Pi * n.Diameter * n.Length
}

// Configuration tags of the P2006T.
const (
	ConfigBase              = "base"
	ConfigCruise            = "cruise"
	ConfigTakeoff           = "takeoff"
	ConfigCutback           = "cutback"
	ConfigLanding           = "landing"
	ConfigShortFieldTakeoff = "short_field_takeoff"
)

// Configs returns the configurations of a vehicle: flaps up for cruise, deployed otherwise.
func Configs(v *amd.Vehicle) (*amd.ConfigSet, error) {
	main, err := v.MainWing()
	if err != nil {
		return nil, err
	}
	flaps := "wings." + main.Tag + ".flaps.angle"
	base := amd.NewConfig(ConfigBase, v)
	set := amd.NewConfigSet()
	if err := set.Add(base); err != nil {
		return nil, err
	}
	for _, c := range []struct {
		tag   string
		flaps float64
	}{
		{ConfigCruise, 0},
		{ConfigTakeoff, 30},
		{ConfigCutback, 30},
		{ConfigLanding, 40},
		{ConfigShortFieldTakeoff, 30},
	} {
		cfg := amd.Derive(c.tag, base)
		if c.flaps != 0 {
			if err := cfg.Set(flaps, deg(c.flaps)); err != nil {
				return nil, err
			}
			if err := cfg.Set("max_lift_coefficient_factor", 1); err != nil {
				return nil, err
			}
		}
		if err := set.Add(cfg); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// SimpleSizing sets the zero fuel mass and the wing areas on the base configuration, and the landing mass of
// the landing configuration.
func SimpleSizing(set *amd.ConfigSet) error {
	base, err := set.Get(ConfigBase)
	if err != nil {
		return err
	}
	if err := base.PullBase(); err != nil {
		return err
	}
	v, err := base.Current()
	if err != nil {
		return err
	}
	v.MassProperties.MaxZeroFuel = 0.9 * v.MassProperties.MaxTakeoff
	for i := range v.Wings {
		w := &v.Wings[i]
		w.WettedArea = 2 * w.ReferenceArea
		w.ExposedArea = 0.8 * w.WettedArea
		w.AffectedArea = 0.6 * w.WettedArea
	}
	takeoff := v.MassProperties.Takeoff
	if err := base.StoreDiff(); err != nil {
		return err
	}

	landing, err := set.Get(ConfigLanding)
	if err != nil {
		return err
	}
	if err := landing.PullBase(); err != nil {
		return err
	}
	lv, err := landing.Current()
	if err != nil {
		return err
	}
	lv.MassProperties.Landing = 0.85 * takeoff
	return landing.StoreDiff()
}

// NewRegistry returns a registry with every model of this module.
func NewRegistry() (*amd.Registry, error) {
	r := amd.NewRegistry()
	for _, register := range []func(*amd.Registry) error{aero.Register, propulsion.Register, weights.Register} {
		if err := register(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Analyses builds the analyses of every configuration of a set, finalizing them.
func Analyses(r *amd.Registry, set *amd.ConfigSet, aeroName string) (map[string]*amd.Analyses, error) {
	out := make(map[string]*amd.Analyses)
	for _, tag := range set.Tags() {
		cfg, err := set.Get(tag)
		if err != nil {
			return nil, err
		}
		an, err := r.Analyses(cfg, aeroName, weights.GeneralAviationName, amd.NewUS1976())
		if err != nil {
			return nil, err
		}
		out[tag] = an
	}
	return out, nil
}
