package amd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Composer evaluates every subsystem of a segment over the whole grid at once, and writes the residuals.
// It keeps no state between evaluations: identical unknowns yield identical residuals.
type Composer struct {
	segment  Segment
	deltaISA float64
	vehicle  *Vehicle
}

// NewComposer returns the composer of a segment flown in an atmosphere offset by deltaISA kelvins.
func NewComposer(seg Segment, deltaISA float64) (*Composer, error) {
	an := seg.Analyses()
	if err := an.Validate(); err != nil {
		return nil, err
	}
	v, err := an.Config.Vehicle()
	if err != nil {
		return nil, err
	}
	return &Composer{seg, deltaISA, v}, nil
}

// Evaluate computes the conditions from the current unknowns of the state, and then the residuals.
func (c *Composer) Evaluate(st *State) error {
	an := c.segment.Analyses()
	cond := st.Conditions
	n := st.N()

	// Unknowns
	throttle, _ := st.Unknowns.Get(UnknownThrottle)
	cond.SetScalar(CondThrottle, throttle)
	θ, _ := st.Unknowns.Get(UnknownBodyAngle)
	cond.SetScalar(CondBodyAngle, θ)
	nu, hasUnknowns := an.Network.(NetworkUnknowns)
	if hasUnknowns {
		nu.Unpack(st)
	}

	// Atmosphere and freestream
	atmo, err := an.Atmosphere.Compute(cond.Scalar(CondAltitude), c.deltaISA)
	if err != nil {
		return fmt.Errorf("atmosphere: %w", err)
	}
	setAtmosphere(cond, atmo)

	vx, vy, vz := cond.Column(CondVelocity, 0), cond.Column(CondVelocity, 1), cond.Column(CondVelocity, 2)
	speed := make([]float64, n)
	mach := make([]float64, n)
	q := make([]float64, n)
	re := make([]float64, n)
	γ := make([]float64, n)
	α := make([]float64, n)
	for i := 0; i < n; i++ {
		speed[i] = norm([]float64{vx[i], vy[i], vz[i]})
		mach[i] = speed[i] / atmo.SpeedOfSound[i]
		q[i] = 0.5 * atmo.Density[i] * speed[i] * speed[i]
		re[i] = atmo.Density[i] * speed[i] / atmo.Viscosity[i]
		γ[i] = math.Atan2(vz[i], vx[i])
		α[i] = θ[i] - γ[i]
	}
	cond.SetScalar(CondAirSpeed, speed)
	cond.SetScalar(CondMach, mach)
	cond.SetScalar(CondDynamicPressure, q)
	cond.SetScalar(CondReynolds, re)
	cond.SetScalar(CondGravity, filled(n, StandardGravity))
	cond.SetScalar(CondFlightPathAngle, γ)
	cond.SetScalar(CondAngleOfAttack, α)

	// Aerodynamics
	aero, err := an.Aerodynamics.Evaluate(cond, c.vehicle)
	if err != nil {
		return fmt.Errorf("aerodynamics: %w", err)
	}
	cond.SetScalar(CondLiftCoefficient, aero.CL)
	cond.SetScalar(CondDragCoefficient, aero.CD)
	setIfPresent(cond, CondDragParasite, aero.Breakdown.ParasiteTotal)
	setIfPresent(cond, CondDragInduced, aero.Breakdown.Induced)
	setIfPresent(cond, CondDragCompressible, aero.Breakdown.Compressible)
	setIfPresent(cond, CondDragMiscellaneous, aero.Breakdown.Miscellaneous)
	lift := make([]float64, n)
	drag := make([]float64, n)
	for i := 0; i < n; i++ {
		lift[i] = q[i] * c.vehicle.ReferenceArea * aero.CL[i]
		drag[i] = q[i] * c.vehicle.ReferenceArea * aero.CD[i]
	}
	cond.SetScalar(CondLift, lift)
	cond.SetScalar(CondDrag, drag)

	// Propulsion
	prop, err := an.Network.Evaluate(cond)
	if err != nil {
		return fmt.Errorf("propulsion: %w", err)
	}
	cond.Set(CondBodyThrust, mat.DenseCopyOf(prop.Thrust))
	setIfPresent(cond, CondEngineTorque, prop.Torque)
	setIfPresent(cond, CondPower, prop.Power)
	cond.SetScalar(CondFuelFlow, prop.FuelFlow)

	// Weights
	mdot := an.Weights.MassRate(cond)
	cond.SetScalar(CondMassRate, mdot)
	burnt := make([]float64, n)
	st.Numerics.Integral(burnt, mdot, st.Duration)
	mass := make([]float64, n)
	for i := range mass {
		mass[i] = st.Initial.Mass - burnt[i]
	}
	cond.SetScalar(CondMass, mass)

	// Forces in the inertial frame (x forward, z up). The body frame has z down.
	thrust := cond.Ensure(CondThrustForce, 3)
	aeroF := cond.Ensure(CondAeroForce, 3)
	grav := cond.Ensure(CondGravityForce, 3)
	total := cond.Ensure(CondTotalForce, 3)
	for i := 0; i < n; i++ {
		bx, bz := prop.Thrust.At(i, 0), prop.Thrust.At(i, 2)
		sθ, cθ := math.Sincos(θ[i])
		sγ, cγ := math.Sincos(γ[i])
		thrust.SetRow(i, []float64{bx*cθ + bz*sθ, prop.Thrust.At(i, 1), bx*sθ - bz*cθ})
		aeroF.SetRow(i, []float64{-drag[i]*cγ - lift[i]*sγ, 0, -drag[i]*sγ + lift[i]*cγ})
		grav.SetRow(i, []float64{0, 0, -mass[i] * StandardGravity})
		for k := 0; k < 3; k++ {
			total.Set(i, k, thrust.At(i, k)+aeroF.At(i, k)+grav.At(i, k))
		}
	}

	// Acceleration implied by the trajectory
	acc := make([]float64, n)
	for k := 0; k < 3; k++ {
		st.Numerics.Derivative(acc, cond.Column(CondVelocity, k), st.Duration)
		cond.SetColumn(CondAcceleration, 3, k, acc)
	}

	c.segment.ComputeResiduals(st)
	if hasUnknowns {
		nu.Residuals(st)
	}
	return nil
}

func setAtmosphere(cond *Conditions, atmo AtmosphereData) {
	cond.SetScalar(CondPressure, atmo.Pressure)
	cond.SetScalar(CondTemperature, atmo.Temperature)
	cond.SetScalar(CondDensity, atmo.Density)
	cond.SetScalar(CondSpeedOfSound, atmo.SpeedOfSound)
	cond.SetScalar(CondViscosity, atmo.Viscosity)
}

func setIfPresent(cond *Conditions, name string, v []float64) {
	if v != nil {
		cond.SetScalar(name, v)
	}
}
