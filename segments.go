package amd

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// SegmentKind is the closed set of segment variants.
type SegmentKind uint8

const (
	// KindCruise is a constant speed, constant altitude leg over a distance.
	KindCruise SegmentKind = iota + 1
	// KindClimb is a constant speed, constant rate climb.
	KindClimb
	// KindDescent is a constant speed, constant rate descent.
	KindDescent
	// KindSinglePoint is a single trimmed equilibrium point.
	KindSinglePoint
)

func (k SegmentKind) String() string {
	switch k {
	case KindCruise:
		return "cruise"
	case KindClimb:
		return "climb"
	case KindDescent:
		return "descent"
	case KindSinglePoint:
		return "single_point"
	default:
		return fmt.Sprintf("segment(%d)", k)
	}
}

// Unknown and residual group names common to every segment.
const (
	UnknownThrottle  = "throttle"
	UnknownBodyAngle = "body_angle"
	ResidualForcesX  = "forces_x"
	ResidualForcesZ  = "forces_z"
)

// Segment is one leg of a mission.
type Segment interface {
	Tag() string
	Kind() SegmentKind
	Analyses() *Analyses
	// Nodes returns the number of control points, zero for the solver default.
	Nodes() int
	// Validate checks the boundary conditions.
	Validate() error
	// Initialize sets the kinematics of the segment from the previous terminal row.
	Initialize(st *State, seed Seed) error
	// SetupUnknowns declares the unknowns and residual groups.
	SetupUnknowns(st *State)
	// ComputeResiduals writes the segment residuals once all the conditions are computed.
	ComputeResiduals(st *State)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SegmentBase holds what every segment variant shares.
type SegmentBase struct {
	Name     string    `validate:"required"`
	Analysis *Analyses `validate:"required"`
	Points   int       `validate:"gte=0"` // zero uses the solver default
	RPM      float64   `validate:"gte=0"` // shaft speed in rad/s, zero lets the network use its rated speed
}

// Tag implements the Segment interface.
func (b *SegmentBase) Tag() string {
	return b.Name
}

// Analyses implements the Segment interface.
func (b *SegmentBase) Analyses() *Analyses {
	return b.Analysis
}

// Nodes implements the Segment interface.
func (b *SegmentBase) Nodes() int {
	return b.Points
}

// SetupUnknowns declares the throttle and body angle at each node, balanced by the forces along x and z.
// Networks with their own unknowns add them after.
func (b *SegmentBase) SetupUnknowns(st *State) {
	st.Unknowns.Declare(UnknownThrottle, 0.5, 0, 1)
	st.Unknowns.Declare(UnknownBodyAngle, 3*deg2rad, -math.Pi/2, math.Pi/2)
	st.Residuals.Declare(ResidualForcesX, 0, math.Inf(-1), math.Inf(1))
	st.Residuals.Declare(ResidualForcesZ, 0, math.Inf(-1), math.Inf(1))
	if nu, ok := b.Analysis.Network.(NetworkUnknowns); ok {
		for _, spec := range nu.Unknowns() {
			st.Unknowns.Declare(spec.Name, spec.Initial, spec.Lower, spec.Upper)
			for _, group := range spec.ResidualGroups {
				st.Residuals.Declare(group, 0, math.Inf(-1), math.Inf(1))
			}
		}
	}
}

// ComputeResiduals implements the Segment interface: net force minus mass times acceleration, per unit initial weight.
func (b *SegmentBase) ComputeResiduals(st *State) {
	forceBalance(st)
}

func forceBalance(st *State) {
	c := st.Conditions
	m := c.Scalar(CondMass)
	w0 := st.Initial.Mass * StandardGravity
	rx := make([]float64, st.N())
	rz := make([]float64, st.N())
	fx, fz := c.Column(CondTotalForce, 0), c.Column(CondTotalForce, 2)
	ax, az := c.Column(CondAcceleration, 0), c.Column(CondAcceleration, 2)
	for i := range rx {
		rx[i] = (fx[i] - m[i]*ax[i]) / w0
		rz[i] = (fz[i] - m[i]*az[i]) / w0
	}
	st.Residuals.Set(ResidualForcesX, rx)
	st.Residuals.Set(ResidualForcesZ, rz)
}

// check validates the struct tags of a segment and its analyses.
func (b *SegmentBase) check(seg interface{}) error {
	if err := validate.Struct(seg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigurationError{Field: b.Name + "." + fe.Field(), Reason: fmt.Sprintf("fails `%s` constraint (%v)", fe.Tag(), fe.Value())}
		}
		return &ConfigurationError{Field: b.Name, Reason: "invalid segment", Err: err}
	}
	return b.Analysis.Validate()
}

// fly writes the kinematics of a segment: time, altitude, position and velocity at each node.
func (b *SegmentBase) fly(st *State, seed Seed, duration, h0, dh, vx, vz float64) {
	n := st.N()
	x := st.Numerics.X
	st.Initial = seed
	st.Duration = duration
	t := make([]float64, n)
	alt := make([]float64, n)
	px := make([]float64, n)
	for i := range x {
		t[i] = seed.Time + x[i]*duration
		alt[i] = h0 + x[i]*dh
		px[i] = seed.Position[0] + vx*x[i]*duration
	}
	c := st.Conditions
	c.SetScalar(CondTime, t)
	c.SetScalar(CondAltitude, alt)
	c.SetColumn(CondPosition, 3, 0, px)
	c.SetColumn(CondPosition, 3, 1, filled(n, seed.Position[1]))
	c.SetColumn(CondPosition, 3, 2, alt)
	c.SetColumn(CondVelocity, 3, 0, filled(n, vx))
	c.SetColumn(CondVelocity, 3, 1, make([]float64, n))
	c.SetColumn(CondVelocity, 3, 2, filled(n, vz))
	if b.RPM > 0 {
		c.SetScalar(CondRPM, filled(n, b.RPM))
	}
	mass := filled(n, seed.Mass)
	c.SetScalar(CondMass, mass)
}

func startAltitude(explicit *float64, seed Seed) float64 {
	if explicit != nil {
		return *explicit
	}
	return seed.Altitude
}

// Cruise flies a distance at constant speed and altitude.
type Cruise struct {
	SegmentBase
	Altitude *float64 `validate:"omitempty,gte=-2000"` // nil continues at the previous altitude
	AirSpeed float64  `validate:"gt=0"`
	Distance float64  `validate:"gt=0"`
}

// Kind implements the Segment interface.
func (s *Cruise) Kind() SegmentKind {
	return KindCruise
}

// Validate implements the Segment interface.
func (s *Cruise) Validate() error {
	return s.check(s)
}

// Initialize implements the Segment interface.
func (s *Cruise) Initialize(st *State, seed Seed) error {
	s.fly(st, seed, s.Distance/s.AirSpeed, startAltitude(s.Altitude, seed), 0, s.AirSpeed, 0)
	return nil
}

// Climb flies from one altitude to another at constant air speed and climb rate.
type Climb struct {
	SegmentBase
	AltitudeStart *float64 `validate:"omitempty,gte=-2000"` // nil starts at the previous altitude
	AltitudeEnd   float64  `validate:"gte=-2000"`
	AirSpeed      float64  `validate:"gt=0"`
	ClimbRate     float64  `validate:"gt=0,ltfield=AirSpeed"`
}

// Kind implements the Segment interface.
func (s *Climb) Kind() SegmentKind {
	return KindClimb
}

// Validate implements the Segment interface.
func (s *Climb) Validate() error {
	if err := s.check(s); err != nil {
		return err
	}
	if s.AltitudeStart != nil && *s.AltitudeStart >= s.AltitudeEnd {
		return &ConfigurationError{Field: s.Name + ".AltitudeEnd", Reason: "a climb must end above its start"}
	}
	return nil
}

// Initialize implements the Segment interface.
func (s *Climb) Initialize(st *State, seed Seed) error {
	h0 := startAltitude(s.AltitudeStart, seed)
	dh := s.AltitudeEnd - h0
	if dh <= 0 {
		return &ConfigurationError{Field: s.Name + ".AltitudeEnd", Reason: fmt.Sprintf("climb from %.1f m to %.1f m", h0, s.AltitudeEnd)}
	}
	γ := math.Asin(s.ClimbRate / s.AirSpeed)
	s.fly(st, seed, dh/s.ClimbRate, h0, dh, s.AirSpeed*math.Cos(γ), s.ClimbRate)
	return nil
}

// Descent flies from one altitude down to another at constant air speed and descent rate.
type Descent struct {
	SegmentBase
	AltitudeStart *float64 `validate:"omitempty,gte=-2000"` // nil starts at the previous altitude
	AltitudeEnd   float64  `validate:"gte=-2000"`
	AirSpeed      float64  `validate:"gt=0"`
	DescentRate   float64  `validate:"gt=0,ltfield=AirSpeed"`
}

// Kind implements the Segment interface.
func (s *Descent) Kind() SegmentKind {
	return KindDescent
}

// Validate implements the Segment interface.
func (s *Descent) Validate() error {
	if err := s.check(s); err != nil {
		return err
	}
	if s.AltitudeStart != nil && *s.AltitudeStart <= s.AltitudeEnd {
		return &ConfigurationError{Field: s.Name + ".AltitudeEnd", Reason: "a descent must end below its start"}
	}
	return nil
}

// Initialize implements the Segment interface.
func (s *Descent) Initialize(st *State, seed Seed) error {
	h0 := startAltitude(s.AltitudeStart, seed)
	dh := h0 - s.AltitudeEnd
	if dh <= 0 {
		return &ConfigurationError{Field: s.Name + ".AltitudeEnd", Reason: fmt.Sprintf("descent from %.1f m to %.1f m", h0, s.AltitudeEnd)}
	}
	γ := math.Asin(s.DescentRate / s.AirSpeed)
	s.fly(st, seed, dh/s.DescentRate, h0, -dh, s.AirSpeed*math.Cos(γ), -s.DescentRate)
	return nil
}

// SinglePoint trims the vehicle at one flight condition. Nothing is integrated.
type SinglePoint struct {
	SegmentBase
	Altitude  *float64 `validate:"omitempty,gte=-2000"`
	AirSpeed  float64  `validate:"gt=0"`
	ClimbRate float64  // negative when descending
}

// Kind implements the Segment interface.
func (s *SinglePoint) Kind() SegmentKind {
	return KindSinglePoint
}

// Nodes implements the Segment interface: a single point, always.
func (s *SinglePoint) Nodes() int {
	return 1
}

// Validate implements the Segment interface.
func (s *SinglePoint) Validate() error {
	if err := s.check(s); err != nil {
		return err
	}
	if math.Abs(s.ClimbRate) >= s.AirSpeed {
		return &ConfigurationError{Field: s.Name + ".ClimbRate", Reason: "must be smaller than the air speed"}
	}
	return nil
}

// Initialize implements the Segment interface.
func (s *SinglePoint) Initialize(st *State, seed Seed) error {
	γ := math.Asin(s.ClimbRate / s.AirSpeed)
	s.fly(st, seed, 0, startAltitude(s.Altitude, seed), 0, s.AirSpeed*math.Cos(γ), s.ClimbRate)
	return nil
}
