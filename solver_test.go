package amd

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// linearAero is a parabolic polar with a linear lift curve.
type linearAero struct {
	cl0, clAlpha, cd0, k float64
}

func (a linearAero) Evaluate(cond *Conditions, _ *Vehicle) (AeroResult, error) {
	α := cond.Scalar(CondAngleOfAttack)
	res := AeroResult{CL: make([]float64, len(α)), CD: make([]float64, len(α))}
	res.Breakdown.Induced = make([]float64, len(α))
	for i := range α {
		cl := a.cl0 + a.clAlpha*α[i]
		res.Breakdown.Induced[i] = a.k * cl * cl
		res.CL[i] = cl
		res.CD[i] = a.cd0 + res.Breakdown.Induced[i]
	}
	return res, nil
}

// fixedThrust pushes along the body x axis, proportionally to the throttle.
type fixedThrust struct {
	maxThrust float64 // N
	tsfc      float64 // kg/(N s)
}

func (p fixedThrust) Evaluate(cond *Conditions) (PropulsionResult, error) {
	throttle := cond.Scalar(CondThrottle)
	n := len(throttle)
	res := PropulsionResult{Thrust: mat.NewDense(n, 3, nil), FuelFlow: make([]float64, n)}
	for i, η := range throttle {
		f := η * p.maxThrust
		res.Thrust.Set(i, 0, f)
		res.FuelFlow[i] = p.tsfc * f
	}
	return res, nil
}

type fuelOnly struct {
	FuelFlowMassRate
}

func (fuelOnly) Evaluate(v *Vehicle) (WeightBreakdown, error) {
	return WeightBreakdown{Takeoff: v.MassProperties.Takeoff}, nil
}

func testVehicle() *Vehicle {
	return &Vehicle{
		Tag:            "test",
		ReferenceArea:  10,
		MassProperties: MassProperties{MaxTakeoff: 1100, Takeoff: 1000, OperatingEmpty: 700},
		Wings: []Wing{
			{Tag: "main_wing", AspectRatio: 8, ReferenceArea: 10, RootChord: 1.3, Taper: 0.8},
			{Tag: "horizontal_stabilizer", AspectRatio: 4, ReferenceArea: 2},
		},
		Fuselages:  []Fuselage{{Tag: "fuselage", LengthTotal: 7, Width: 1.2, HeightMaximum: 1.4}},
		Propulsors: []Propulsor{{Tag: "engine", Kind: "fixed_thrust", NumberOfEngines: 1}},
	}
}

var testPolar = linearAero{cl0: 0.2, clAlpha: 5, cd0: 0.025, k: 0.045}

func testAnalyses(t *testing.T, tag string, net Network) *Analyses {
	cfg := NewConfig(tag, testVehicle())
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalizing %s: %s", tag, err)
	}
	return &Analyses{Config: cfg, Aerodynamics: testPolar, Network: net, Weights: fuelOnly{}, Atmosphere: NewUS1976()}
}

func setupSegment(t *testing.T, seg Segment, n int, seed Seed) (*State, *Composer) {
	st := NewState(NewOperators(Chebyshev, n))
	if err := seg.Initialize(st, seed); err != nil {
		t.Fatalf("initialize: %s", err)
	}
	seg.SetupUnknowns(st)
	comp, err := NewComposer(seg, 0)
	if err != nil {
		t.Fatalf("composer: %s", err)
	}
	return st, comp
}

func TestComposerIsPure(t *testing.T) {
	an := testAnalyses(t, "cruise", fixedThrust{2000, 8e-6})
	seg := &Cruise{SegmentBase: SegmentBase{Name: "cruise", Analysis: an}, Altitude: Float64(1000), AirSpeed: 60, Distance: 50e3}
	st, comp := setupSegment(t, seg, 8, Seed{Mass: 1000})
	if err := comp.Evaluate(st); err != nil {
		t.Fatal(err)
	}
	first := st.Residuals.Pack()
	x := st.Unknowns.Pack()

	// Evaluate elsewhere, then come back.
	moved := append([]float64(nil), x...)
	floats.AddConst(0.1, moved)
	st.Unknowns.Unpack(moved)
	if err := comp.Evaluate(st); err != nil {
		t.Fatal(err)
	}
	if floats.Equal(first, st.Residuals.Pack()) {
		t.Fatal("residuals do not depend on the unknowns")
	}
	st.Unknowns.Unpack(x)
	if err := comp.Evaluate(st); err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(first, st.Residuals.Pack()) {
		t.Fatalf("same unknowns, different residuals:\n%v\n%v", first, st.Residuals.Pack())
	}
	for _, name := range []string{CondDensity, CondMach, CondLift, CondDrag, CondMass, CondTotalForce, CondAcceleration, CondDragInduced} {
		if !st.Conditions.Has(name) {
			t.Fatalf("condition %s was not computed", name)
		}
	}
	if acc := st.Conditions.Column(CondAcceleration, 0); floats.Norm(acc, math.Inf(1)) > 1e-9 {
		t.Fatalf("constant speed cruise has an acceleration: %v", acc)
	}
}

func TestSolverCruise(t *testing.T) {
	an := testAnalyses(t, "cruise", fixedThrust{2000, 0})
	seg := &Cruise{SegmentBase: SegmentBase{Name: "cruise", Analysis: an}, Altitude: Float64(0), AirSpeed: 60, Distance: 20e3}
	st, comp := setupSegment(t, seg, 6, Seed{Mass: 1000})
	stats, err := NewSolver(DefaultSolverSettings(), nil, nil).Solve(seg.Tag(), st, comp.Evaluate)
	if err != nil {
		t.Fatalf("solve: %s", err)
	}
	if stats.Iterations == 0 || stats.Iterations > 10 {
		t.Fatalf("unexpected number of iterations: %d", stats.Iterations)
	}
	if stats.Evaluations <= stats.Iterations*st.Unknowns.Len() {
		t.Fatalf("expected a finite difference jacobian per iteration, got %d evaluations", stats.Evaluations)
	}
	if _, largest := maxAbs(st.Residuals.Pack()); math.Abs(largest) >= 1e-6 {
		t.Fatalf("residual %g above tolerance", largest)
	}
	c := st.Conditions
	w := 1000 * StandardGravity
	lift, drag := c.Scalar(CondLift), c.Scalar(CondDrag)
	thrust := c.Column(CondBodyThrust, 0)
	θ := c.Scalar(CondBodyAngle)
	throttle := c.Scalar(CondThrottle)
	for i := range lift {
		if !scalar.EqualWithinAbs(thrust[i]*math.Cos(θ[i]), drag[i], 1e-5*w) {
			t.Fatalf("node %d: thrust %f does not balance drag %f", i, thrust[i]*math.Cos(θ[i]), drag[i])
		}
		if !scalar.EqualWithinAbs(lift[i]+thrust[i]*math.Sin(θ[i]), w, 1e-5*w) {
			t.Fatalf("node %d: lift %f does not balance weight %f", i, lift[i], w)
		}
		if throttle[i] <= 0 || throttle[i] >= 1 {
			t.Fatalf("node %d: throttle %f out of (0, 1)", i, throttle[i])
		}
	}
	// Without fuel burn every node is the same equilibrium.
	if math.Abs(θ[0]-θ[len(θ)-1]) > 1e-6 {
		t.Fatalf("body angle varies along the segment: %v", θ)
	}
	if α := Rad2deg(c.Scalar(CondAngleOfAttack)[0]); α < 2 || α > 4 {
		t.Fatalf("angle of attack %.2f deg is unexpected", α)
	}
}

// constantAero has the same coefficients whatever the angle of attack.
type constantAero struct {
	cl, cd float64
}

func (a constantAero) Evaluate(cond *Conditions, _ *Vehicle) (AeroResult, error) {
	n := len(cond.Scalar(CondAngleOfAttack))
	res := AeroResult{CL: make([]float64, n), CD: make([]float64, n)}
	for i := 0; i < n; i++ {
		res.CL[i], res.CD[i] = a.cl, a.cd
	}
	return res, nil
}

func TestSolverCruiseThrottle(t *testing.T) {
	const maxThrust, cd = 2000., 0.04
	w := 1000 * StandardGravity
	an := testAnalyses(t, "cruise", fixedThrust{maxThrust, 0})
	// Lift carries the weight at 60 m/s at sea level.
	an.Aerodynamics = constantAero{cl: w / (0.5 * 1.225 * 60 * 60 * 10), cd: cd}
	seg := &Cruise{SegmentBase: SegmentBase{Name: "cruise", Analysis: an}, Altitude: Float64(0), AirSpeed: 60, Distance: 20e3}
	st, comp := setupSegment(t, seg, 5, Seed{Mass: 1000})
	settings := DefaultSolverSettings()
	settings.Tolerance = 1e-10
	stats, err := NewSolver(settings, nil, nil).Solve(seg.Tag(), st, comp.Evaluate)
	if err != nil {
		t.Fatalf("solve: %s", err)
	}
	if stats.Iterations >= 50 {
		t.Fatalf("%d iterations for a constant polar", stats.Iterations)
	}
	c := st.Conditions
	q := c.Scalar(CondDynamicPressure)
	θ := c.Scalar(CondBodyAngle)
	throttle := c.Scalar(CondThrottle)
	for i := range throttle {
		if math.Abs(θ[i]) > 1e-3 {
			t.Fatalf("node %d: body angle %f with the weight carried by lift", i, θ[i])
		}
		if exp := q[i] * 10 * cd / (maxThrust * math.Cos(θ[i])); !scalar.EqualWithinAbs(throttle[i], exp, 1e-6) {
			t.Fatalf("node %d: throttle %.9f, expected %.9f", i, throttle[i], exp)
		}
	}
}

func TestSolverSinglePoint(t *testing.T) {
	an := testAnalyses(t, "cruise", fixedThrust{2000, 8e-6})
	seg := &SinglePoint{SegmentBase: SegmentBase{Name: "point", Analysis: an}, Altitude: Float64(500), AirSpeed: 55, ClimbRate: 2}
	st, comp := setupSegment(t, seg, seg.Nodes(), Seed{Mass: 950})
	if _, err := NewSolver(DefaultSolverSettings(), nil, nil).Solve(seg.Tag(), st, comp.Evaluate); err != nil {
		t.Fatalf("solve: %s", err)
	}
	if st.Duration != 0 || st.N() != 1 {
		t.Fatalf("single point spans %f s over %d nodes", st.Duration, st.N())
	}
	if m := st.Conditions.Scalar(CondMass)[0]; m != 950 {
		t.Fatalf("single point burnt fuel: %f", m)
	}
	if γ := st.Conditions.Scalar(CondFlightPathAngle)[0]; !scalar.EqualWithinAbs(γ, math.Asin(2./55), 1e-12) {
		t.Fatalf("flight path angle %f", γ)
	}
}

func TestSolverSaturation(t *testing.T) {
	// Far less thrust than drag.
	an := testAnalyses(t, "cruise", fixedThrust{300, 0})
	seg := &Cruise{SegmentBase: SegmentBase{Name: "weak", Analysis: an}, Altitude: Float64(0), AirSpeed: 60, Distance: 20e3}
	st, comp := setupSegment(t, seg, 4, Seed{Mass: 1000})
	_, err := NewSolver(DefaultSolverSettings(), nil, nil).Solve(seg.Tag(), st, comp.Evaluate)
	var ce *ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a convergence error, got %v", err)
	}
	if ce.Segment != "weak" || ce.Component != ResidualForcesX || ce.Largest >= 0 {
		t.Fatalf("unexpected convergence error: %s", ce)
	}
	if ce.Node < 0 || ce.Node >= 4 {
		t.Fatalf("node %d out of the grid", ce.Node)
	}
	lo, hi := st.Unknowns.Bounds()
	for i, x := range st.Unknowns.Pack() {
		if x < lo[i] || x > hi[i] {
			t.Fatalf("unknown %d left its bounds: %f", i, x)
		}
	}
	if throttle, _ := st.Unknowns.Get(UnknownThrottle); !floats.Equal(throttle, filled(4, 1)) {
		t.Fatalf("throttle should be saturated: %v", throttle)
	}
}

func TestSolverSingular(t *testing.T) {
	// The throttle has no effect at all.
	an := testAnalyses(t, "cruise", fixedThrust{0, 0})
	seg := &Cruise{SegmentBase: SegmentBase{Name: "glider", Analysis: an}, Altitude: Float64(0), AirSpeed: 60, Distance: 20e3}
	st, comp := setupSegment(t, seg, 3, Seed{Mass: 1000})
	_, err := NewSolver(DefaultSolverSettings(), nil, nil).Solve(seg.Tag(), st, comp.Evaluate)
	var ce *ConvergenceError
	if !errors.As(err, &ce) || !ce.Singular {
		t.Fatalf("expected a singular jacobian, got %v", err)
	}
	if ce.Iterations != 1 {
		t.Fatalf("singular on iteration %d", ce.Iterations)
	}
}

func TestSolverIterationLimit(t *testing.T) {
	an := testAnalyses(t, "cruise", fixedThrust{2000, 8e-6})
	seg := &Cruise{SegmentBase: SegmentBase{Name: "cruise", Analysis: an}, Altitude: Float64(0), AirSpeed: 60, Distance: 20e3}
	st, comp := setupSegment(t, seg, 4, Seed{Mass: 1000})
	settings := DefaultSolverSettings()
	settings.MaxIterations = 1
	settings.Tolerance = 1e-300
	_, err := NewSolver(settings, nil, nil).Solve(seg.Tag(), st, comp.Evaluate)
	var ce *ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a convergence error, got %v", err)
	}
	if ce.Iterations != 1 || ce.Singular {
		t.Fatalf("unexpected convergence error: %+v", ce)
	}
}

func TestSolverShapes(t *testing.T) {
	st := NewState(NewOperators(Uniform, 3))
	st.Unknowns.Declare("a", 0, -1, 1)
	_, err := NewSolver(DefaultSolverSettings(), nil, nil).Solve("bad", st, func(*State) error { return nil })
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected a configuration error for 3 unknowns and 0 residuals, got %v", err)
	}
}

func TestSolverScalar(t *testing.T) {
	// x^3 = 8 on each node, with a residual function which does not involve the conditions.
	st := NewState(NewOperators(Uniform, 2))
	st.Unknowns.Declare("x", 1, -10, 10)
	st.Residuals.Declare("cube", 0, math.Inf(-1), math.Inf(1))
	f := func(st *State) error {
		x, _ := st.Unknowns.Get("x")
		r := make([]float64, len(x))
		for i := range x {
			r[i] = x[i]*x[i]*x[i] - 8
		}
		st.Residuals.Set("cube", r)
		return nil
	}
	stats, err := NewSolver(DefaultSolverSettings(), nil, nil).Solve("cube", st, f)
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := st.Unknowns.Get("x"); !floats.EqualApprox(x, []float64{2, 2}, 1e-6) {
		t.Fatalf("x=%v after %d iterations", x, stats.Iterations)
	}
}
