package amd

import (
	"fmt"
	"sort"
	"strings"
)

// MassProperties are the vehicle level masses, in kg.
type MassProperties struct {
	MaxTakeoff     float64 `yaml:"max_takeoff"`
	Takeoff        float64 `yaml:"takeoff"`
	OperatingEmpty float64 `yaml:"operating_empty"`
	MaxZeroFuel    float64 `yaml:"max_zero_fuel"`
	Cargo          float64 `yaml:"cargo"`
	Landing        float64 `yaml:"landing"`
	MaxPayload     float64 `yaml:"max_payload"`
	MaxFuel        float64 `yaml:"max_fuel"`
}

// Envelope are the load factors of the vehicle.
type Envelope struct {
	UltimateLoad float64 `yaml:"ultimate_load"`
	LimitLoad    float64 `yaml:"limit_load"`
}

// LandingGear is only used for weight estimation.
type LandingGear struct {
	MainTireDiameter float64 `yaml:"main_tire_diameter"`
	NoseTireDiameter float64 `yaml:"nose_tire_diameter"`
	MainStrutLength  float64 `yaml:"main_strut_length"`
	NoseStrutLength  float64 `yaml:"nose_strut_length"`
	MainUnits        int     `yaml:"main_units"`
	NoseUnits        int     `yaml:"nose_units"`
	Retractable      bool    `yaml:"retractable"`
}

// Flaps of a wing. The angle is in radians.
type Flaps struct {
	Type      string  `yaml:"type,omitempty"`
	Chord     float64 `yaml:"chord"` // fraction of the wing chord
	SpanStart float64 `yaml:"span_start"`
	SpanEnd   float64 `yaml:"span_end"`
	Angle     float64 `yaml:"angle"`
}

// Wing is a lifting surface. Lengths in m, areas in m^2, angles in radians.
type Wing struct {
	Tag                  string     `yaml:"tag"`
	AspectRatio          float64    `yaml:"aspect_ratio"`
	Sweep                float64    `yaml:"sweep_quarter_chord"`
	ThicknessToChord     float64    `yaml:"thickness_to_chord"`
	Taper                float64    `yaml:"taper"`
	SpanEfficiency       float64    `yaml:"span_efficiency"`
	Span                 float64    `yaml:"span_projected"`
	RootChord            float64    `yaml:"chord_root"`
	TipChord             float64    `yaml:"chord_tip"`
	MeanAerodynamicChord float64    `yaml:"chord_mean_aerodynamic"`
	ReferenceArea        float64    `yaml:"area_reference"`
	WettedArea           float64    `yaml:"area_wetted"`
	ExposedArea          float64    `yaml:"area_exposed"`
	AffectedArea         float64    `yaml:"area_affected"`
	TwistRoot            float64    `yaml:"twist_root"`
	TwistTip             float64    `yaml:"twist_tip"`
	Dihedral             float64    `yaml:"dihedral"`
	DynamicPressureRatio float64    `yaml:"dynamic_pressure_ratio"`
	Origin               [3]float64 `yaml:"origin,flow"`
	Vertical             bool       `yaml:"vertical"`
	Symmetric            bool       `yaml:"symmetric"`
	HighLift             bool       `yaml:"high_lift"`
	Flaps                Flaps      `yaml:"flaps"`
}

// Fuselage geometry. Lengths in m, areas in m^2, pressure in Pa.
type Fuselage struct {
	Tag                  string  `yaml:"tag"`
	NumberCoachSeats     int     `yaml:"number_coach_seats"`
	SeatsAbreast         int     `yaml:"seats_abreast"`
	SeatPitch            float64 `yaml:"seat_pitch"`
	FinenessNose         float64 `yaml:"fineness_nose"`
	FinenessTail         float64 `yaml:"fineness_tail"`
	LengthNose           float64 `yaml:"length_nose"`
	LengthTail           float64 `yaml:"length_tail"`
	LengthCabin          float64 `yaml:"length_cabin"`
	LengthTotal          float64 `yaml:"length_total"`
	Width                float64 `yaml:"width"`
	HeightMaximum        float64 `yaml:"height_maximum"`
	EffectiveDiameter    float64 `yaml:"effective_diameter"`
	SideProjectedArea    float64 `yaml:"area_side_projected"`
	WettedArea           float64 `yaml:"area_wetted"`
	FrontProjectedArea   float64 `yaml:"area_front_projected"`
	DifferentialPressure float64 `yaml:"differential_pressure"`
}

// Engine is an internal combustion engine. Power in W, speed in rad/s, BSFC in lb/hp/hr as usually quoted.
type Engine struct {
	SeaLevelPower    float64 `yaml:"sea_level_power"`
	FlatRateAltitude float64 `yaml:"flat_rate_altitude"`
	Speed            float64 `yaml:"speed"`
	BSFC             float64 `yaml:"bsfc"`
}

// Propeller geometry and design point.
type Propeller struct {
	Blades      int     `yaml:"blades"`
	TipRadius   float64 `yaml:"tip_radius"`
	HubRadius   float64 `yaml:"hub_radius"`
	DesignCl    float64 `yaml:"design_cl"`
	DesignPower float64 `yaml:"design_power"`
	// MaxEfficiency is the asymptotic efficiency at high advance ratio.
	MaxEfficiency float64 `yaml:"max_efficiency"`
}

// Diameter returns the propeller diameter.
func (p Propeller) Diameter() float64 {
	return 2 * p.TipRadius
}

// Propulsor is a propulsion network with its nacelles.
type Propulsor struct {
	Tag             string    `yaml:"tag"`
	Kind            string    `yaml:"kind"` // registry name of the network
	NumberOfEngines int       `yaml:"number_of_engines"`
	EngineLength    float64   `yaml:"engine_length"`
	NacelleDiameter float64   `yaml:"nacelle_diameter"`
	ThrustAngle     float64   `yaml:"thrust_angle"`
	RatedSpeed      float64   `yaml:"rated_speed"` // rad/s
	WettedArea      float64   `yaml:"area_wetted"`
	Engine          Engine    `yaml:"engine"`
	Propeller       Propeller `yaml:"propeller"`
}

// Vehicle is the typed description of an aircraft.
type Vehicle struct {
	Tag                      string         `yaml:"tag"`
	MassProperties           MassProperties `yaml:"mass_properties"`
	Envelope                 Envelope       `yaml:"envelope"`
	ReferenceArea            float64        `yaml:"reference_area"`
	Passengers               int            `yaml:"passengers"`
	MaxLiftCoefficientFactor float64        `yaml:"max_lift_coefficient_factor"`
	LandingGear              LandingGear    `yaml:"landing_gear"`
	Wings                    []Wing         `yaml:"wings"`
	Fuselages                []Fuselage     `yaml:"fuselages"`
	Propulsors               []Propulsor    `yaml:"propulsors"`
}

// Wing returns the wing with this tag.
func (v *Vehicle) Wing(tag string) (*Wing, error) {
	for i := range v.Wings {
		if v.Wings[i].Tag == tag {
			return &v.Wings[i], nil
		}
	}
	return nil, &ConfigurationError{Field: "wings." + tag, Reason: "no such wing"}
}

// MainWing returns the largest non vertical wing.
func (v *Vehicle) MainWing() (*Wing, error) {
	var main *Wing
	for i := range v.Wings {
		w := &v.Wings[i]
		if w.Vertical {
			continue
		}
		if main == nil || w.ReferenceArea > main.ReferenceArea {
			main = w
		}
	}
	if main == nil {
		return nil, &ConfigurationError{Field: "wings", Reason: "vehicle has no main wing"}
	}
	return main, nil
}

// Propulsor returns the propulsor with this tag.
func (v *Vehicle) Propulsor(tag string) (*Propulsor, error) {
	for i := range v.Propulsors {
		if v.Propulsors[i].Tag == tag {
			return &v.Propulsors[i], nil
		}
	}
	return nil, &ConfigurationError{Field: "propulsors." + tag, Reason: "no such propulsor"}
}

// Validate checks the attributes every analysis requires.
func (v *Vehicle) Validate() error {
	switch {
	case v.Tag == "":
		return &ConfigurationError{Field: "tag", Reason: "missing"}
	case v.ReferenceArea <= 0:
		return &ConfigurationError{Field: "reference_area", Reason: "must be positive"}
	case v.MassProperties.Takeoff <= 0:
		return &ConfigurationError{Field: "mass_properties.takeoff", Reason: "must be positive"}
	}
	if _, err := v.MainWing(); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, tag := range v.componentTags() {
		if tag == "" {
			return &ConfigurationError{Field: "tag", Reason: "component without tag"}
		}
		if seen[tag] {
			return &ConfigurationError{Field: tag, Reason: "duplicate component tag"}
		}
		seen[tag] = true
	}
	return nil
}

func (v *Vehicle) componentTags() []string {
	var tags []string
	for _, w := range v.Wings {
		tags = append(tags, "wings."+w.Tag)
	}
	for _, f := range v.Fuselages {
		tags = append(tags, "fuselages."+f.Tag)
	}
	for _, p := range v.Propulsors {
		tags = append(tags, "propulsors."+p.Tag)
	}
	return tags
}

/* Attribute paths. The configuration tree only knows about these. */

var vehiclePaths = map[string]func(*Vehicle) *float64{
	"mass_properties.max_takeoff":     func(v *Vehicle) *float64 { return &v.MassProperties.MaxTakeoff },
	"mass_properties.takeoff":         func(v *Vehicle) *float64 { return &v.MassProperties.Takeoff },
	"mass_properties.operating_empty": func(v *Vehicle) *float64 { return &v.MassProperties.OperatingEmpty },
	"mass_properties.max_zero_fuel":   func(v *Vehicle) *float64 { return &v.MassProperties.MaxZeroFuel },
	"mass_properties.cargo":           func(v *Vehicle) *float64 { return &v.MassProperties.Cargo },
	"mass_properties.landing":         func(v *Vehicle) *float64 { return &v.MassProperties.Landing },
	"mass_properties.max_payload":     func(v *Vehicle) *float64 { return &v.MassProperties.MaxPayload },
	"mass_properties.max_fuel":        func(v *Vehicle) *float64 { return &v.MassProperties.MaxFuel },
	"envelope.ultimate_load":          func(v *Vehicle) *float64 { return &v.Envelope.UltimateLoad },
	"envelope.limit_load":             func(v *Vehicle) *float64 { return &v.Envelope.LimitLoad },
	"reference_area":                  func(v *Vehicle) *float64 { return &v.ReferenceArea },
	"max_lift_coefficient_factor":     func(v *Vehicle) *float64 { return &v.MaxLiftCoefficientFactor },
	"landing_gear.main_tire_diameter": func(v *Vehicle) *float64 { return &v.LandingGear.MainTireDiameter },
	"landing_gear.nose_tire_diameter": func(v *Vehicle) *float64 { return &v.LandingGear.NoseTireDiameter },
	"landing_gear.main_strut_length":  func(v *Vehicle) *float64 { return &v.LandingGear.MainStrutLength },
	"landing_gear.nose_strut_length":  func(v *Vehicle) *float64 { return &v.LandingGear.NoseStrutLength },
}

var wingPaths = map[string]func(*Wing) *float64{
	"aspect_ratio":            func(w *Wing) *float64 { return &w.AspectRatio },
	"sweeps.quarter_chord":    func(w *Wing) *float64 { return &w.Sweep },
	"thickness_to_chord":      func(w *Wing) *float64 { return &w.ThicknessToChord },
	"taper":                   func(w *Wing) *float64 { return &w.Taper },
	"span_efficiency":         func(w *Wing) *float64 { return &w.SpanEfficiency },
	"spans.projected":         func(w *Wing) *float64 { return &w.Span },
	"chords.root":             func(w *Wing) *float64 { return &w.RootChord },
	"chords.tip":              func(w *Wing) *float64 { return &w.TipChord },
	"chords.mean_aerodynamic": func(w *Wing) *float64 { return &w.MeanAerodynamicChord },
	"areas.reference":         func(w *Wing) *float64 { return &w.ReferenceArea },
	"areas.wetted":            func(w *Wing) *float64 { return &w.WettedArea },
	"areas.exposed":           func(w *Wing) *float64 { return &w.ExposedArea },
	"areas.affected":          func(w *Wing) *float64 { return &w.AffectedArea },
	"twists.root":             func(w *Wing) *float64 { return &w.TwistRoot },
	"twists.tip":              func(w *Wing) *float64 { return &w.TwistTip },
	"dihedral":                func(w *Wing) *float64 { return &w.Dihedral },
	"dynamic_pressure_ratio":  func(w *Wing) *float64 { return &w.DynamicPressureRatio },
	"flaps.angle":             func(w *Wing) *float64 { return &w.Flaps.Angle },
	"flaps.chord":             func(w *Wing) *float64 { return &w.Flaps.Chord },
	"flaps.span_start":        func(w *Wing) *float64 { return &w.Flaps.SpanStart },
	"flaps.span_end":          func(w *Wing) *float64 { return &w.Flaps.SpanEnd },
}

var fuselagePaths = map[string]func(*Fuselage) *float64{
	"seat_pitch":            func(f *Fuselage) *float64 { return &f.SeatPitch },
	"fineness.nose":         func(f *Fuselage) *float64 { return &f.FinenessNose },
	"fineness.tail":         func(f *Fuselage) *float64 { return &f.FinenessTail },
	"lengths.nose":          func(f *Fuselage) *float64 { return &f.LengthNose },
	"lengths.tail":          func(f *Fuselage) *float64 { return &f.LengthTail },
	"lengths.cabin":         func(f *Fuselage) *float64 { return &f.LengthCabin },
	"lengths.total":         func(f *Fuselage) *float64 { return &f.LengthTotal },
	"width":                 func(f *Fuselage) *float64 { return &f.Width },
	"heights.maximum":       func(f *Fuselage) *float64 { return &f.HeightMaximum },
	"effective_diameter":    func(f *Fuselage) *float64 { return &f.EffectiveDiameter },
	"areas.side_projected":  func(f *Fuselage) *float64 { return &f.SideProjectedArea },
	"areas.wetted":          func(f *Fuselage) *float64 { return &f.WettedArea },
	"areas.front_projected": func(f *Fuselage) *float64 { return &f.FrontProjectedArea },
	"differential_pressure": func(f *Fuselage) *float64 { return &f.DifferentialPressure },
}

var propulsorPaths = map[string]func(*Propulsor) *float64{
	"engine_length":             func(p *Propulsor) *float64 { return &p.EngineLength },
	"nacelle_diameter":          func(p *Propulsor) *float64 { return &p.NacelleDiameter },
	"thrust_angle":              func(p *Propulsor) *float64 { return &p.ThrustAngle },
	"rated_speed":               func(p *Propulsor) *float64 { return &p.RatedSpeed },
	"areas.wetted":              func(p *Propulsor) *float64 { return &p.WettedArea },
	"engine.sea_level_power":    func(p *Propulsor) *float64 { return &p.Engine.SeaLevelPower },
	"engine.flat_rate_altitude": func(p *Propulsor) *float64 { return &p.Engine.FlatRateAltitude },
	"engine.speed":              func(p *Propulsor) *float64 { return &p.Engine.Speed },
	"engine.bsfc":               func(p *Propulsor) *float64 { return &p.Engine.BSFC },
	"propeller.tip_radius":      func(p *Propulsor) *float64 { return &p.Propeller.TipRadius },
	"propeller.hub_radius":      func(p *Propulsor) *float64 { return &p.Propeller.HubRadius },
	"propeller.design_power":    func(p *Propulsor) *float64 { return &p.Propeller.DesignPower },
	"propeller.max_efficiency":  func(p *Propulsor) *float64 { return &p.Propeller.MaxEfficiency },
}

// Field returns a pointer to the attribute at path, e.g. `wings.main_wing.flaps.angle`.
func (v *Vehicle) Field(path string) (*float64, error) {
	if get, ok := vehiclePaths[path]; ok {
		return get(v), nil
	}
	parts := strings.SplitN(path, ".", 3)
	if len(parts) == 3 {
		group, tag, attr := parts[0], parts[1], parts[2]
		switch group {
		case "wings":
			if get, ok := wingPaths[attr]; ok {
				for i := range v.Wings {
					if v.Wings[i].Tag == tag {
						return get(&v.Wings[i]), nil
					}
				}
				return nil, &ConfigurationError{Field: path, Reason: fmt.Sprintf("no wing `%s`", tag)}
			}
		case "fuselages":
			if get, ok := fuselagePaths[attr]; ok {
				for i := range v.Fuselages {
					if v.Fuselages[i].Tag == tag {
						return get(&v.Fuselages[i]), nil
					}
				}
				return nil, &ConfigurationError{Field: path, Reason: fmt.Sprintf("no fuselage `%s`", tag)}
			}
		case "propulsors":
			if get, ok := propulsorPaths[attr]; ok {
				for i := range v.Propulsors {
					if v.Propulsors[i].Tag == tag {
						return get(&v.Propulsors[i]), nil
					}
				}
				return nil, &ConfigurationError{Field: path, Reason: fmt.Sprintf("no propulsor `%s`", tag)}
			}
		}
	}
	return nil, &ConfigurationError{Field: path, Reason: "unknown attribute path"}
}

// Paths returns every attribute path of this vehicle, sorted.
func (v *Vehicle) Paths() []string {
	var paths []string
	for p := range vehiclePaths {
		paths = append(paths, p)
	}
	for _, w := range v.Wings {
		for attr := range wingPaths {
			paths = append(paths, "wings."+w.Tag+"."+attr)
		}
	}
	for _, f := range v.Fuselages {
		for attr := range fuselagePaths {
			paths = append(paths, "fuselages."+f.Tag+"."+attr)
		}
	}
	for _, p := range v.Propulsors {
		for attr := range propulsorPaths {
			paths = append(paths, "propulsors."+p.Tag+"."+attr)
		}
	}
	sort.Strings(paths)
	return paths
}
