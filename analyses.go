package amd

import (
	"gonum.org/v1/gonum/mat"
)

// DragBreakdown details the drag coefficient at each node, normalized by the vehicle reference area.
type DragBreakdown struct {
	Parasite      map[string][]float64 // per component tag
	ParasiteTotal []float64
	Induced       []float64
	Compressible  []float64
	Miscellaneous []float64
	Total         []float64
}

// AeroResult is what the aerodynamics return for one evaluation.
type AeroResult struct {
	CL        []float64
	CD        []float64
	Breakdown DragBreakdown
}

// Aerodynamics computes lift and drag coefficients from the freestream conditions and the angle of attack.
type Aerodynamics interface {
	Evaluate(cond *Conditions, v *Vehicle) (AeroResult, error)
}

// PropulsionResult is what a network returns for one evaluation.
type PropulsionResult struct {
	Thrust   *mat.Dense // N×3, body frame (x forward, z down)
	Torque   []float64
	FuelFlow []float64 // kg/s
	Power    []float64
}

// Network computes the propulsion outputs from the throttle and freestream conditions.
type Network interface {
	Evaluate(cond *Conditions) (PropulsionResult, error)
}

// UnknownSpec declares an unknown, its initial guess and its bounds.
type UnknownSpec struct {
	Name           string
	Initial        float64
	Lower, Upper   float64
	ResidualGroups []string
}

// NetworkUnknowns is implemented by networks which add their own unknowns and residuals to the solve.
type NetworkUnknowns interface {
	Unknowns() []UnknownSpec
	// Unpack copies the network unknowns into the conditions, before evaluation.
	Unpack(st *State)
	// Residuals writes the network residual groups, after evaluation.
	Residuals(st *State)
}

// Component is one line of a weight breakdown.
type Component struct {
	Name string
	Mass float64
}

// WeightBreakdown is the mass of each part of a vehicle, in kg.
type WeightBreakdown struct {
	Structures []Component
	Propulsion float64
	Systems    float64
	Empty      float64
	Payload    float64
	Fuel       float64
	ZeroFuel   float64
	Takeoff    float64
}

// StructuralMass returns the sum of the structural components.
func (b WeightBreakdown) StructuralMass() float64 {
	m := 0.0
	for _, c := range b.Structures {
		m += c.Mass
	}
	return m
}

// Weights estimates the vehicle weight breakdown, and the vehicle mass rate during a segment.
type Weights interface {
	Evaluate(v *Vehicle) (WeightBreakdown, error)
	MassRate(cond *Conditions) []float64
}

// Analyses bundles the collaborators used by the segments flown in one configuration.
type Analyses struct {
	Config       *Config
	Aerodynamics Aerodynamics
	Network      Network
	Weights      Weights
	Atmosphere   Atmosphere
}

// Validate checks that every collaborator is set and that the configuration is finalized.
func (a *Analyses) Validate() error {
	switch {
	case a == nil:
		return &ConfigurationError{Field: "analyses", Reason: "missing"}
	case a.Config == nil:
		return &ConfigurationError{Field: "analyses.config", Reason: "missing"}
	case !a.Config.Finalized():
		return &ConfigurationError{Field: "analyses.config", Reason: "config `" + a.Config.Tag + "` must be finalized"}
	case a.Aerodynamics == nil:
		return &ConfigurationError{Field: "analyses.aerodynamics", Reason: "missing"}
	case a.Network == nil:
		return &ConfigurationError{Field: "analyses.network", Reason: "missing"}
	case a.Weights == nil:
		return &ConfigurationError{Field: "analyses.weights", Reason: "missing"}
	case a.Atmosphere == nil:
		return &ConfigurationError{Field: "analyses.atmosphere", Reason: "missing"}
	}
	return nil
}

// FuelFlowMassRate is the mass rate of a vehicle which only burns fuel.
type FuelFlowMassRate struct{}

// MassRate returns the fuel flow of the network.
func (FuelFlowMassRate) MassRate(cond *Conditions) []float64 {
	return cond.Scalar(CondFuelFlow)
}
