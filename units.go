package amd

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

/* All the numerical code works in SI base units. Conversions only happen at the boundary. */

// Unit defines how a named unit maps onto the SI base: base = value*Factor + Offset.
type Unit struct {
	Name      string
	Dimension string
	Factor    float64
	Offset    float64
}

const (
	lbm     = 0.45359237
	foot    = 0.3048
	inch    = 0.0254
	nmi     = 1852.0
	hp      = 745.69987158227022
	lbf     = lbm * 9.80665
	hour    = 3600.0
	rpmToRs = 2 * math.Pi / 60
)

var unitTable = map[string]Unit{
	// length
	"m":     {"m", "length", 1, 0},
	"meter": {"meter", "length", 1, 0},
	"km":    {"km", "length", 1e3, 0},
	"cm":    {"cm", "length", 1e-2, 0},
	"mm":    {"mm", "length", 1e-3, 0},
	"ft":    {"ft", "length", foot, 0},
	"feet":  {"feet", "length", foot, 0},
	"in":    {"in", "length", inch, 0},
	"nmi":   {"nmi", "length", nmi, 0},
	"mi":    {"mi", "length", 1609.344, 0},
	"m**2":  {"m**2", "area", 1, 0},
	"ft**2": {"ft**2", "area", foot * foot, 0},
	"in**2": {"in**2", "area", inch * inch, 0},
	"m**3":  {"m**3", "volume", 1, 0},
	"l":     {"l", "volume", 1e-3, 0},
	"gal":   {"gal", "volume", 3.785411784e-3, 0},

	// mass
	"kg":    {"kg", "mass", 1, 0},
	"g":     {"g", "mass", 1e-3, 0},
	"lb":    {"lb", "mass", lbm, 0},
	"slug":  {"slug", "mass", 14.593902937, 0},
	"tonne": {"tonne", "mass", 1e3, 0},

	// time
	"s":   {"s", "time", 1, 0},
	"min": {"min", "time", 60, 0},
	"hr":  {"hr", "time", hour, 0},
	"h":   {"h", "time", hour, 0},

	// angles
	"rad":   {"rad", "angle", 1, 0},
	"deg":   {"deg", "angle", math.Pi / 180, 0},
	"rpm":   {"rpm", "angular velocity", rpmToRs, 0},
	"rad/s": {"rad/s", "angular velocity", 1, 0},

	// speed
	"m/s":    {"m/s", "speed", 1, 0},
	"km/h":   {"km/h", "speed", 1e3 / hour, 0},
	"kts":    {"kts", "speed", nmi / hour, 0},
	"knots":  {"knots", "speed", nmi / hour, 0},
	"mph":    {"mph", "speed", 1609.344 / hour, 0},
	"ft/s":   {"ft/s", "speed", foot, 0},
	"ft/min": {"ft/min", "speed", foot / 60, 0},
	"fpm":    {"fpm", "speed", foot / 60, 0},

	// force, power, pressure
	"N":   {"N", "force", 1, 0},
	"kN":  {"kN", "force", 1e3, 0},
	"lbf": {"lbf", "force", lbf, 0},
	"W":   {"W", "power", 1, 0},
	"kW":  {"kW", "power", 1e3, 0},
	"hp":  {"hp", "power", hp, 0},
	"Pa":  {"Pa", "pressure", 1, 0},
	"kPa": {"kPa", "pressure", 1e3, 0},
	"psi": {"psi", "pressure", lbf / (inch * inch), 0},
	"psf": {"psf", "pressure", lbf / (foot * foot), 0},
	"atm": {"atm", "pressure", 101325, 0},

	// temperature
	"K":    {"K", "temperature", 1, 0},
	"degC": {"degC", "temperature", 1, 273.15},
	"degF": {"degF", "temperature", 5. / 9, 273.15 - 32*5./9},
	"degR": {"degR", "temperature", 5. / 9, 0},

	// fuel consumption
	"kg/s":      {"kg/s", "mass flow", 1, 0},
	"lb/hr":     {"lb/hr", "mass flow", lbm / hour, 0},
	"kg/J":      {"kg/J", "specific fuel consumption", 1, 0},
	"lb/hp/hr":  {"lb/hp/hr", "specific fuel consumption", lbm / (hp * hour), 0},
	"lb/lbf/hr": {"lb/lbf/hr", "thrust specific fuel consumption", lbm / (lbf * hour), 0},

	// dimensionless
	"1":       {"1", "dimensionless", 1, 0},
	"percent": {"percent", "dimensionless", 1e-2, 0},
}

// LookupUnit returns the unit definition of the provided name.
func LookupUnit(name string) (Unit, error) {
	u, ok := unitTable[name]
	if !ok {
		return Unit{}, &ConfigurationError{Field: "unit", Reason: fmt.Sprintf("unknown unit `%s`", name)}
	}
	return u, nil
}

// Units returns the sorted list of known unit names.
func Units() []string {
	names := make([]string, 0, len(unitTable))
	for name := range unitTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToBase converts a value expressed in the provided unit into SI base.
func ToBase(value float64, unit string) (float64, error) {
	u, err := LookupUnit(unit)
	if err != nil {
		return 0, err
	}
	return value*u.Factor + u.Offset, nil
}

// FromBase converts an SI base value into the provided unit.
func FromBase(value float64, unit string) (float64, error) {
	u, err := LookupUnit(unit)
	if err != nil {
		return 0, err
	}
	return (value - u.Offset) / u.Factor, nil
}

// MustBase is like ToBase but panics on an unknown unit. Meant for vehicle definitions in code.
func MustBase(value float64, unit string) float64 {
	v, err := ToBase(value, unit)
	if err != nil {
		panic(err)
	}
	return v
}

// Quantity is a value tagged with its unit. It only lives at the I/O boundary.
type Quantity struct {
	Value float64
	Unit  string
}

// Base returns the quantity in SI base.
func (q Quantity) Base() (float64, error) {
	return ToBase(q.Value, q.Unit)
}

// In converts the quantity into another unit of the same dimension.
func (q Quantity) In(unit string) (Quantity, error) {
	from, err := LookupUnit(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	to, err := LookupUnit(unit)
	if err != nil {
		return Quantity{}, err
	}
	if from.Dimension != to.Dimension {
		return Quantity{}, &ConfigurationError{Field: "unit", Reason: fmt.Sprintf("cannot convert %s (%s) to %s (%s)", from.Name, from.Dimension, to.Name, to.Dimension)}
	}
	base := q.Value*from.Factor + from.Offset
	return Quantity{(base - to.Offset) / to.Factor, unit}, nil
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit
}

// ParseQuantity parses strings such as "500 nmi" or "3.5deg". A bare number is dimensionless.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, &ConfigurationError{Field: "quantity", Reason: "empty string"}
	}
	split := len(s)
	for i, r := range s {
		if !strings.ContainsRune("0123456789.+-eE", r) {
			split = i
			break
		}
		// An `e` followed by a letter starts the unit (e.g. "1e").
		if (r == 'e' || r == 'E') && i+1 < len(s) && !strings.ContainsRune("0123456789+-", rune(s[i+1])) {
			split = i
			break
		}
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(s[:split]), 64)
	if err != nil {
		return Quantity{}, &ConfigurationError{Field: "quantity", Reason: fmt.Sprintf("invalid value in `%s`", s), Err: err}
	}
	unit := strings.TrimSpace(s[split:])
	if unit == "" {
		unit = "1"
	}
	if _, err := LookupUnit(unit); err != nil {
		return Quantity{}, err
	}
	return Quantity{value, unit}, nil
}
