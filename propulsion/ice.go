// Package propulsion provides the propulsion networks of the mission solver.
package propulsion

import (
	"fmt"
	"math"

	"github.com/ChristopherRabotin/amd"
	"gonum.org/v1/gonum/mat"
)

// ICEPropellerKind is the registry name of the ICEPropeller network.
const ICEPropellerKind = "internal_combustion_propeller_pitch"

// Unknown and residual group of the ICEPropeller network.
const (
	UnknownPowerCoefficient = "propeller_power_coefficient"
	ResidualNetwork         = "network"
)

// ICEPropeller is a piston engine driving a variable pitch propeller at a fixed shaft speed.
// The throttle sets the engine power and the pitch command. The propeller power coefficient is solved
// for such that the propeller absorbs the engine torque.
type ICEPropeller struct {
	Propulsor amd.Propulsor
	atmo      amd.Atmosphere
	sfc       float64 // kg/J
	diameter  float64
}

// NewICEPropeller returns the network of a propulsor.
func NewICEPropeller(p amd.Propulsor, atmo amd.Atmosphere) (*ICEPropeller, error) {
	field := func(name string) string { return "propulsors." + p.Tag + "." + name }
	switch {
	case atmo == nil:
		return nil, &amd.ConfigurationError{Field: field("atmosphere"), Reason: "missing"}
	case p.NumberOfEngines < 1:
		return nil, &amd.ConfigurationError{Field: field("number_of_engines"), Reason: "must be at least one"}
	case p.Engine.SeaLevelPower <= 0:
		return nil, &amd.ConfigurationError{Field: field("engine.sea_level_power"), Reason: "must be positive"}
	case p.Engine.BSFC <= 0:
		return nil, &amd.ConfigurationError{Field: field("engine.bsfc"), Reason: "must be positive"}
	case p.RatedSpeed <= 0:
		return nil, &amd.ConfigurationError{Field: field("rated_speed"), Reason: "must be positive"}
	case p.Propeller.TipRadius <= 0:
		return nil, &amd.ConfigurationError{Field: field("propeller.tip_radius"), Reason: "must be positive"}
	}
	if p.Propeller.MaxEfficiency <= 0 || p.Propeller.MaxEfficiency > 1 {
		return nil, &amd.ConfigurationError{Field: field("propeller.max_efficiency"), Reason: fmt.Sprintf("%f is not in (0, 1]", p.Propeller.MaxEfficiency)}
	}
	return &ICEPropeller{p, atmo, amd.MustBase(p.Engine.BSFC, "lb/hp/hr"), p.Propeller.Diameter()}, nil
}

// AvailablePower returns the shaft power of one engine at full throttle (Gagg and Ferrar). Below the flat rating
// altitude, the engine delivers its sea level power.
func (n *ICEPropeller) AvailablePower(altitudes []float64) ([]float64, error) {
	virtual := make([]float64, len(altitudes))
	for i, h := range altitudes {
		virtual[i] = math.Max(0, h-n.Propulsor.Engine.FlatRateAltitude)
	}
	atmo, err := n.atmo.Compute(virtual, 0)
	if err != nil {
		return nil, err
	}
	power := make([]float64, len(altitudes))
	for i, ρ := range atmo.Density {
		σ := ρ / amd.SeaLevelDensity
		power[i] = math.Max(0, n.Propulsor.Engine.SeaLevelPower*(σ-0.117)/0.883)
	}
	return power, nil
}

// RatedTorque is the torque of one engine at sea level and rated speed, used to scale the residual.
func (n *ICEPropeller) RatedTorque() float64 {
	return n.Propulsor.Engine.SeaLevelPower / n.Propulsor.RatedSpeed
}

// speed returns the shaft speed at each node: the rpm condition when the segment sets one, the rated speed otherwise.
func (n *ICEPropeller) speed(cond *amd.Conditions) []float64 {
	if cond.Has(amd.CondRPM) {
		return cond.Scalar(amd.CondRPM)
	}
	ω := make([]float64, cond.Rows())
	for i := range ω {
		ω[i] = n.Propulsor.RatedSpeed
	}
	return ω
}

// Efficiency returns the propeller efficiency at an advance ratio.
func (n *ICEPropeller) Efficiency(J float64) float64 {
	return n.Propulsor.Propeller.MaxEfficiency * (1 - math.Exp(-3*J))
}

// Evaluate implements the amd.Network interface.
func (n *ICEPropeller) Evaluate(cond *amd.Conditions) (amd.PropulsionResult, error) {
	rows := cond.Rows()
	avail, err := n.AvailablePower(cond.Scalar(amd.CondAltitude))
	if err != nil {
		return amd.PropulsionResult{}, fmt.Errorf("%s: %w", n.Propulsor.Tag, err)
	}
	throttle := cond.Scalar(amd.CondThrottle)
	ω := n.speed(cond)
	ρ := cond.Scalar(amd.CondDensity)
	V := cond.Scalar(amd.CondAirSpeed)
	cp := cond.Scalar(amd.CondPowerCoefficient)
	engines := float64(n.Propulsor.NumberOfEngines)
	sτ, cτ := math.Sincos(n.Propulsor.ThrustAngle)

	res := amd.PropulsionResult{
		Thrust:   mat.NewDense(rows, 3, nil),
		Torque:   make([]float64, rows),
		FuelFlow: make([]float64, rows),
		Power:    make([]float64, rows),
	}
	propTorque := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if ω[i] <= 0 {
			return amd.PropulsionResult{}, fmt.Errorf("%s: shaft speed must be positive, got %f rad/s at node %d", n.Propulsor.Tag, ω[i], i)
		}
		P := throttle[i] * avail[i]
		res.Power[i] = P * engines
		res.Torque[i] = P / ω[i]
		res.FuelFlow[i] = P * n.sfc * engines

		rps := ω[i] / (2 * math.Pi)
		pProp := cp[i] * ρ[i] * rps * rps * rps * math.Pow(n.diameter, 5)
		propTorque[i] = pProp / ω[i]
		F := 0.0
		if V[i] > 0 {
			F = n.Efficiency(V[i]/(rps*n.diameter)) * pProp / V[i]
		}
		res.Thrust.SetRow(i, []float64{engines * F * cτ, 0, -engines * F * sτ})
	}
	cond.SetScalar(amd.CondPropellerTorque, propTorque)
	cond.SetScalar(amd.CondPitchCommand, throttle)
	cond.SetScalar(amd.CondRPM, ω)
	return res, nil
}

// Unknowns implements the amd.NetworkUnknowns interface.
func (n *ICEPropeller) Unknowns() []amd.UnknownSpec {
	return []amd.UnknownSpec{{Name: UnknownPowerCoefficient, Initial: 0.02, Lower: 0, Upper: 1, ResidualGroups: []string{ResidualNetwork}}}
}

// Unpack implements the amd.NetworkUnknowns interface.
func (n *ICEPropeller) Unpack(st *amd.State) {
	cp, _ := st.Unknowns.Get(UnknownPowerCoefficient)
	st.Conditions.SetScalar(amd.CondPowerCoefficient, cp)
}

// Residuals implements the amd.NetworkUnknowns interface: engine torque minus propeller torque, per unit rated torque.
func (n *ICEPropeller) Residuals(st *amd.State) {
	qe := st.Conditions.Scalar(amd.CondEngineTorque)
	qp := st.Conditions.Scalar(amd.CondPropellerTorque)
	qr := n.RatedTorque()
	r := make([]float64, len(qe))
	for i := range r {
		r[i] = (qe[i] - qp[i]) / qr
	}
	st.Residuals.Set(ResidualNetwork, r)
}
