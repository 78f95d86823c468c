package propulsion

import (
	"math"

	"github.com/ChristopherRabotin/amd"
	"gonum.org/v1/gonum/mat"
)

// LinearThrust delivers a thrust proportional to the throttle, with a constant thrust specific fuel consumption.
// The throttle is clipped to [0, 1], so the thrust saturates at MaxThrust.
type LinearThrust struct {
	MaxThrust   float64 // N
	TSFC        float64 // kg/(N s)
	ThrustAngle float64 // rad
}

// Evaluate implements the amd.Network interface.
func (l LinearThrust) Evaluate(cond *amd.Conditions) (amd.PropulsionResult, error) {
	n := cond.Rows()
	throttle := cond.Scalar(amd.CondThrottle)
	sτ, cτ := math.Sincos(l.ThrustAngle)
	res := amd.PropulsionResult{
		Thrust:   mat.NewDense(n, 3, nil),
		FuelFlow: make([]float64, n),
	}
	for i, η := range throttle {
		F := l.MaxThrust * math.Max(0, math.Min(1, η))
		res.Thrust.SetRow(i, []float64{F * cτ, 0, -F * sτ})
		res.FuelFlow[i] = l.TSFC * F
	}
	return res, nil
}

// Register adds the networks which can be built from a propulsor description.
func Register(r *amd.Registry) error {
	return r.RegisterNetwork(ICEPropellerKind, func(p amd.Propulsor, atmo amd.Atmosphere) (amd.Network, error) {
		return NewICEPropeller(p, atmo)
	})
}
