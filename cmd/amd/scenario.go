package main

import (
	"fmt"
	"time"

	"github.com/ChristopherRabotin/amd"
	kitlog "github.com/go-kit/log"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// scenario is a mission described in a TOML file.
type scenario struct {
	mission  *amd.Mission
	set      *amd.ConfigSet
	analyses map[string]*amd.Analyses
	export   amd.ExportConfig
}

// quantity reads a key such as `altitude = "3000 ft"` in SI base. Bare numbers are taken as SI already.
func quantity(v *viper.Viper, key string) (float64, error) {
	raw := v.GetString(key)
	q, err := amd.ParseQuantity(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return q.Base()
}

// optionalQuantity returns nil when the key is not set.
func optionalQuantity(v *viper.Viper, key string) (*float64, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	val, err := quantity(v, key)
	if err != nil {
		return nil, err
	}
	return &val, nil
}

// readJDEorTime reads a date either as a Julian date or as a time string.
func readJDEorTime(v *viper.Viper, key string) (dt time.Time) {
	if !v.IsSet(key) {
		return time.Now().UTC()
	}
	if jde := v.GetFloat64(key); jde != 0 {
		return julian.JDToTime(jde)
	}
	return v.GetTime(key)
}

// loadScenario builds the mission of a scenario file.
func loadScenario(v *viper.Viper, settings amd.Settings, logger kitlog.Logger) (*scenario, error) {
	if vehicle := v.GetString("vehicle.name"); vehicle != "p2006t" {
		return nil, &amd.ConfigurationError{Field: "vehicle.name", Reason: fmt.Sprintf("unknown vehicle `%s`", vehicle)}
	}
	v.SetDefault("vehicle.aerodynamics", "fidelity_zero")
	v.SetDefault("mission.airport_altitude", "0 m")
	set, analyses, err := p2006t(v.GetString("vehicle.aerodynamics"))
	if err != nil {
		return nil, err
	}

	airportAlt, err := quantity(v, "mission.airport_altitude")
	if err != nil {
		return nil, err
	}
	solver := settings.Solver
	if v.IsSet("mission.nodes") {
		solver.Nodes = v.GetInt("mission.nodes")
	}
	mission := amd.NewMission(v.GetString("mission.name"), amd.Airport{Altitude: airportAlt, DeltaISA: v.GetFloat64("mission.delta_isa")}, solver, logger)
	mission.Epoch = readJDEorTime(v, "mission.start")
	mission.Cache = amd.NewOperatorCache(settings.OperatorCacheSize)
	if v.IsSet("mission.initial_mass") {
		if mission.InitialMass, err = quantity(v, "mission.initial_mass"); err != nil {
			return nil, err
		}
	}

	for segNo := 0; v.IsSet(fmt.Sprintf("segments.%d", segNo)); segNo++ {
		seg, err := readSegment(v, fmt.Sprintf("segments.%d", segNo), analyses)
		if err != nil {
			return nil, err
		}
		mission.Append(seg)
	}
	if len(mission.Segments) == 0 {
		return nil, &amd.ConfigurationError{Field: "segments", Reason: "no segment defined (expected [segments.0])"}
	}

	return &scenario{
		mission:  mission,
		set:      set,
		analyses: analyses,
		export: amd.ExportConfig{
			Filename:  v.GetString("export.filename"),
			OutputDir: settings.OutputDir,
			AsCSV:     v.GetBool("export.csv"),
			Archive:   v.GetBool("export.archive"),
			JSON:      v.GetBool("export.json"),
			Timestamp: v.GetBool("export.timestamp"),
		},
	}, nil
}

func readSegment(v *viper.Viper, key string, analyses map[string]*amd.Analyses) (amd.Segment, error) {
	get := func(name string) (float64, error) { return quantity(v, key+"."+name) }
	config := v.GetString(key + ".config")
	an, ok := analyses[config]
	if !ok {
		return nil, &amd.ConfigurationError{Field: key + ".config", Reason: fmt.Sprintf("unknown configuration `%s`", config)}
	}
	base := amd.SegmentBase{Name: v.GetString(key + ".tag"), Analysis: an, Points: v.GetInt(key + ".nodes")}
	if v.IsSet(key + ".rpm") {
		rpm, err := get("rpm")
		if err != nil {
			return nil, err
		}
		base.RPM = rpm
	}
	speed, err := get("air_speed")
	if err != nil {
		return nil, err
	}
	switch kind := v.GetString(key + ".kind"); kind {
	case amd.KindCruise.String():
		alt, err := optionalQuantity(v, key+".altitude")
		if err != nil {
			return nil, err
		}
		dist, err := get("distance")
		if err != nil {
			return nil, err
		}
		return &amd.Cruise{SegmentBase: base, Altitude: alt, AirSpeed: speed, Distance: dist}, nil
	case amd.KindClimb.String(), amd.KindDescent.String():
		start, err := optionalQuantity(v, key+".altitude_start")
		if err != nil {
			return nil, err
		}
		end, err := get("altitude_end")
		if err != nil {
			return nil, err
		}
		rate, err := get("rate")
		if err != nil {
			return nil, err
		}
		if kind == amd.KindClimb.String() {
			return &amd.Climb{SegmentBase: base, AltitudeStart: start, AltitudeEnd: end, AirSpeed: speed, ClimbRate: rate}, nil
		}
		return &amd.Descent{SegmentBase: base, AltitudeStart: start, AltitudeEnd: end, AirSpeed: speed, DescentRate: rate}, nil
	case amd.KindSinglePoint.String():
		alt, err := optionalQuantity(v, key+".altitude")
		if err != nil {
			return nil, err
		}
		rate := 0.0
		if v.IsSet(key + ".rate") {
			if rate, err = get("rate"); err != nil {
				return nil, err
			}
		}
		return &amd.SinglePoint{SegmentBase: base, Altitude: alt, AirSpeed: speed, ClimbRate: rate}, nil
	default:
		return nil, &amd.ConfigurationError{Field: key + ".kind", Reason: fmt.Sprintf("unknown segment kind `%s`", kind)}
	}
}
