package amd

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Condition names. Vectors have three columns (x forward along track, y, z up), everything else one.
const (
	CondTime              = "frames.inertial.time"
	CondPosition          = "frames.inertial.position_vector"
	CondVelocity          = "frames.inertial.velocity_vector"
	CondAcceleration      = "frames.inertial.acceleration_vector"
	CondGravityForce      = "frames.inertial.gravity_force_vector"
	CondTotalForce        = "frames.inertial.total_force_vector"
	CondThrustForce       = "frames.inertial.thrust_force_vector"
	CondAeroForce         = "frames.inertial.aerodynamic_force_vector"
	CondBodyThrust        = "frames.body.thrust_force_vector"
	CondBodyAngle         = "frames.body.pitch_angle"
	CondFlightPathAngle   = "frames.wind.flight_path_angle"
	CondLift              = "frames.wind.lift_force"
	CondDrag              = "frames.wind.drag_force"
	CondAltitude          = "freestream.altitude"
	CondAirSpeed          = "freestream.velocity"
	CondDensity           = "freestream.density"
	CondPressure          = "freestream.pressure"
	CondTemperature       = "freestream.temperature"
	CondSpeedOfSound      = "freestream.speed_of_sound"
	CondViscosity         = "freestream.dynamic_viscosity"
	CondMach              = "freestream.mach_number"
	CondDynamicPressure   = "freestream.dynamic_pressure"
	CondReynolds          = "freestream.reynolds_number" // per unit length
	CondGravity           = "freestream.gravity"
	CondAngleOfAttack     = "aerodynamics.angle_of_attack"
	CondLiftCoefficient   = "aerodynamics.lift_coefficient"
	CondDragCoefficient   = "aerodynamics.drag_coefficient"
	CondDragParasite      = "aerodynamics.drag_breakdown.parasite"
	CondDragInduced       = "aerodynamics.drag_breakdown.induced"
	CondDragCompressible  = "aerodynamics.drag_breakdown.compressible"
	CondDragMiscellaneous = "aerodynamics.drag_breakdown.miscellaneous"
	CondThrottle          = "propulsion.throttle"
	CondRPM               = "propulsion.rpm" // shaft speed in rad/s
	CondPitchCommand      = "propulsion.pitch_command"
	CondEngineTorque      = "propulsion.engine_torque"
	CondPropellerTorque   = "propulsion.propeller_torque"
	CondPower             = "propulsion.power"
	CondPowerCoefficient  = "propulsion.propeller_power_coefficient"
	CondFuelFlow          = "propulsion.fuel_flow_rate"
	CondMassRate          = "weights.vehicle_mass_rate"
	CondMass              = "weights.total_mass"
)

// Conditions maps condition names to N×k matrices, all sharing the same number of rows.
type Conditions struct {
	n    int
	data map[string]*mat.Dense
}

// NewConditions returns an empty set of conditions with n rows.
func NewConditions(n int) *Conditions {
	if n < 1 {
		panic(fmt.Errorf("conditions require at least one row, got %d", n))
	}
	return &Conditions{n, make(map[string]*mat.Dense)}
}

// Rows returns the number of nodes.
func (c *Conditions) Rows() int {
	return c.n
}

// Has returns whether this condition exists.
func (c *Conditions) Has(name string) bool {
	_, ok := c.data[name]
	return ok
}

// Get returns the matrix of a condition.
func (c *Conditions) Get(name string) (*mat.Dense, bool) {
	m, ok := c.data[name]
	return m, ok
}

// Set stores a matrix as a condition. It panics if the rows do not match.
func (c *Conditions) Set(name string, m *mat.Dense) {
	if r, _ := m.Dims(); r != c.n {
		panic(fmt.Errorf("condition %s has %d rows instead of %d", name, r, c.n))
	}
	c.data[name] = m
}

// Ensure returns the condition, creating it zeroed with the requested columns if missing.
func (c *Conditions) Ensure(name string, cols int) *mat.Dense {
	if m, ok := c.data[name]; ok {
		if _, k := m.Dims(); k != cols {
			panic(fmt.Errorf("condition %s has %d columns instead of %d", name, k, cols))
		}
		return m
	}
	m := mat.NewDense(c.n, cols, nil)
	c.data[name] = m
	return m
}

// Column returns a copy of the requested column of a condition, or zeros if it does not exist.
func (c *Conditions) Column(name string, col int) []float64 {
	m, ok := c.data[name]
	if !ok {
		return make([]float64, c.n)
	}
	return mat.Col(nil, col, m)
}

// Scalar returns a copy of the single column condition.
func (c *Conditions) Scalar(name string) []float64 {
	return c.Column(name, 0)
}

// SetScalar sets a single column condition.
func (c *Conditions) SetScalar(name string, v []float64) {
	if len(v) != c.n {
		panic(fmt.Errorf("condition %s has %d rows instead of %d", name, len(v), c.n))
	}
	c.Ensure(name, 1).SetCol(0, v)
}

// SetColumn sets one column of a vector condition.
func (c *Conditions) SetColumn(name string, cols, col int, v []float64) {
	if len(v) != c.n {
		panic(fmt.Errorf("condition %s has %d rows instead of %d", name, len(v), c.n))
	}
	c.Ensure(name, cols).SetCol(col, v)
}

// Names returns the sorted condition names.
func (c *Conditions) Names() []string {
	names := make([]string, 0, len(c.data))
	for name := range c.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Row returns the values of every condition at node i.
func (c *Conditions) Row(i int) map[string][]float64 {
	row := make(map[string][]float64, len(c.data))
	for name, m := range c.data {
		row[name] = mat.Row(nil, i, m)
	}
	return row
}

// Clone returns a deep copy of these conditions.
func (c *Conditions) Clone() *Conditions {
	clone := NewConditions(c.n)
	for name, m := range c.data {
		clone.data[name] = mat.DenseCopyOf(m)
	}
	return clone
}

// Seed is the row of conditions handed over from one segment to the next.
type Seed struct {
	Time     float64
	Mass     float64
	Altitude float64
	Position [3]float64
}

// Variables is an ordered set of named per-node arrays with optional bounds.
type Variables struct {
	n      int
	names  []string
	values map[string][]float64
	lower  map[string]float64
	upper  map[string]float64
}

// NewVariables returns an empty set of variables of n rows.
func NewVariables(n int) *Variables {
	return &Variables{n: n, values: make(map[string][]float64), lower: make(map[string]float64), upper: make(map[string]float64)}
}

// Declare adds a variable, filled with the initial value, bounded by [lower, upper].
func (v *Variables) Declare(name string, initial, lower, upper float64) {
	if _, ok := v.values[name]; ok {
		panic(fmt.Errorf("variable %s declared twice", name))
	}
	v.names = append(v.names, name)
	v.values[name] = filled(v.n, clip(initial, lower, upper))
	v.lower[name] = lower
	v.upper[name] = upper
}

// Names returns the variable names in declaration order.
func (v *Variables) Names() []string {
	return append([]string(nil), v.names...)
}

// Get returns the values of a variable. The returned slice must not be modified.
func (v *Variables) Get(name string) ([]float64, bool) {
	vals, ok := v.values[name]
	return vals, ok
}

// Set copies values into a declared variable.
func (v *Variables) Set(name string, vals []float64) {
	dst, ok := v.values[name]
	if !ok {
		panic(fmt.Errorf("variable %s was never declared", name))
	}
	if len(vals) != v.n {
		panic(fmt.Errorf("variable %s has %d rows instead of %d", name, len(vals), v.n))
	}
	copy(dst, vals)
}

// Len returns the total number of values.
func (v *Variables) Len() int {
	return v.n * len(v.names)
}

// Pack copies all the values into one vector, variable after variable.
func (v *Variables) Pack() []float64 {
	x := make([]float64, 0, v.Len())
	for _, name := range v.names {
		x = append(x, v.values[name]...)
	}
	return x
}

// Unpack is the inverse of Pack.
func (v *Variables) Unpack(x []float64) {
	if len(x) != v.Len() {
		panic(fmt.Errorf("expected %d values, got %d", v.Len(), len(x)))
	}
	for i, name := range v.names {
		copy(v.values[name], x[i*v.n:(i+1)*v.n])
	}
}

// Bounds returns the packed lower and upper bounds.
func (v *Variables) Bounds() (lo, hi []float64) {
	lo = make([]float64, 0, v.Len())
	hi = make([]float64, 0, v.Len())
	for _, name := range v.names {
		for i := 0; i < v.n; i++ {
			lo = append(lo, v.lower[name])
			hi = append(hi, v.upper[name])
		}
	}
	return
}

// Locate returns the variable name and the node of a packed index.
func (v *Variables) Locate(idx int) (string, int) {
	return v.names[idx/v.n], idx % v.n
}

// Snapshot returns a copy of all the values.
func (v *Variables) Snapshot() map[string][]float64 {
	snap := make(map[string][]float64, len(v.values))
	for name, vals := range v.values {
		snap[name] = append([]float64(nil), vals...)
	}
	return snap
}

// State is the numerical state of one segment: its grid, conditions, unknowns and residuals.
type State struct {
	Numerics   *Operators
	Duration   float64 // physical span of the normalized segment, in seconds
	Conditions *Conditions
	Unknowns   *Variables
	Residuals  *Variables
	Initial    Seed
}

// NewState returns a zeroed state over the provided grid.
func NewState(ops *Operators) *State {
	n := ops.N()
	return &State{
		Numerics:   ops,
		Conditions: NewConditions(n),
		Unknowns:   NewVariables(n),
		Residuals:  NewVariables(n),
	}
}

// N returns the number of nodes.
func (s *State) N() int {
	return s.Numerics.N()
}

// Times returns the physical time at each node.
func (s *State) Times() []float64 {
	t := make([]float64, s.N())
	for i, x := range s.Numerics.X {
		t[i] = s.Initial.Time + x*s.Duration
	}
	return t
}

// Terminal returns the last row, which seeds the next segment.
func (s *State) Terminal() Seed {
	return seedAt(s.Conditions, s.N()-1)
}

// Distance returns the along track distance flown in this segment.
func (s *State) Distance() float64 {
	x := s.Conditions.Column(CondPosition, 0)
	return math.Abs(x[len(x)-1] - x[0])
}
