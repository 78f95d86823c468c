package propulsion_test

import (
	"math"
	"testing"

	"github.com/ChristopherRabotin/amd"
	"github.com/ChristopherRabotin/amd/propulsion"
	"github.com/ChristopherRabotin/amd/vehicles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func twin() amd.Propulsor {
	p := vehicles.P2006T().Propulsors[0]
	p.Propeller.MaxEfficiency = 0.8
	return p
}

func TestICEPropellerValidation(t *testing.T) {
	atmo := amd.NewUS1976()
	_, err := propulsion.NewICEPropeller(twin(), atmo)
	require.NoError(t, err)

	for field, edit := range map[string]func(p *amd.Propulsor){
		"number_of_engines":        func(p *amd.Propulsor) { p.NumberOfEngines = 0 },
		"engine.sea_level_power":   func(p *amd.Propulsor) { p.Engine.SeaLevelPower = -1 },
		"engine.bsfc":              func(p *amd.Propulsor) { p.Engine.BSFC = 0 },
		"rated_speed":              func(p *amd.Propulsor) { p.RatedSpeed = 0 },
		"propeller.tip_radius":     func(p *amd.Propulsor) { p.Propeller.TipRadius = 0 },
		"propeller.max_efficiency": func(p *amd.Propulsor) { p.Propeller.MaxEfficiency = 1.2 },
	} {
		p := twin()
		edit(&p)
		_, err := propulsion.NewICEPropeller(p, atmo)
		var cfgErr *amd.ConfigurationError
		if assert.ErrorAs(t, err, &cfgErr, field) {
			assert.Equal(t, "propulsors.internal_combustion_propeller."+field, cfgErr.Field)
		}
	}
	_, err = propulsion.NewICEPropeller(twin(), nil)
	assert.Error(t, err, "no atmosphere")
}

func TestAvailablePower(t *testing.T) {
	ice, err := propulsion.NewICEPropeller(twin(), amd.NewUS1976())
	require.NoError(t, err)
	power, err := ice.AvailablePower([]float64{0, 1000, 3000})
	require.NoError(t, err)
	assert.InEpsilon(t, 73078.58, power[0], 1e-4)
	assert.Greater(t, power[0], power[1])
	assert.Greater(t, power[1], power[2])

	p := twin()
	p.Engine.FlatRateAltitude = 1500
	flat, err := propulsion.NewICEPropeller(p, amd.NewUS1976())
	require.NoError(t, err)
	power, err = flat.AvailablePower([]float64{0, 1500, 2500})
	require.NoError(t, err)
	assert.Equal(t, power[0], power[1], "flat rated")
	sl, _ := ice.AvailablePower([]float64{1000})
	assert.InDelta(t, sl[0], power[2], 1e-9, "lapse above the flat rating altitude")

	_, err = ice.AvailablePower([]float64{1e6})
	assert.Error(t, err)
}

func TestICEPropellerEvaluate(t *testing.T) {
	ice, err := propulsion.NewICEPropeller(twin(), amd.NewUS1976())
	require.NoError(t, err)
	assert.InDelta(t, 73078.58/amd.MustBase(2400, "rpm"), ice.RatedTorque(), 1e-9)
	assert.Zero(t, ice.Efficiency(0))
	assert.InDelta(t, 0.8, ice.Efficiency(10), 1e-9)

	ω := amd.MustBase(2700, "rpm")
	cond := amd.NewConditions(2)
	cond.SetScalar(amd.CondAltitude, []float64{0, 0})
	cond.SetScalar(amd.CondThrottle, []float64{0.5, 1})
	cond.SetScalar(amd.CondDensity, []float64{1.225, 1.225})
	cond.SetScalar(amd.CondAirSpeed, []float64{70, 0})
	cond.SetScalar(amd.CondPowerCoefficient, []float64{0.05, 0.05})
	cond.SetScalar(amd.CondRPM, []float64{ω, ω})
	res, err := ice.Evaluate(cond)
	require.NoError(t, err)

	avail, _ := ice.AvailablePower([]float64{0})
	sfc := amd.MustBase(0.38, "lb/hp/hr")
	for i, η := range []float64{0.5, 1} {
		P := η * avail[0]
		assert.InDelta(t, 2*P, res.Power[i], 1e-9)
		assert.InDelta(t, P/ω, res.Torque[i], 1e-9, "per engine")
		assert.InDelta(t, 2*P*sfc, res.FuelFlow[i], 1e-12)
	}
	assert.Greater(t, res.Thrust.At(0, 0), 0.0)
	assert.Zero(t, res.Thrust.At(0, 2), "no thrust angle")
	assert.Zero(t, res.Thrust.At(1, 0), "no thrust at rest")
	assert.Equal(t, []float64{0.5, 1}, cond.Scalar(amd.CondPitchCommand))

	rps := ω / (2 * math.Pi)
	D := 2 * 0.89
	pProp := 0.05 * 1.225 * rps * rps * rps * math.Pow(D, 5)
	assert.InDelta(t, pProp/ω, cond.Scalar(amd.CondPropellerTorque)[0], 1e-9)
	J := 70 / (rps * D)
	assert.InDelta(t, 2*ice.Efficiency(J)*pProp/70, res.Thrust.At(0, 0), 1e-9)

	// Without an rpm condition, the shaft turns at the rated speed.
	cond = amd.NewConditions(1)
	cond.SetScalar(amd.CondThrottle, []float64{1})
	cond.SetScalar(amd.CondDensity, []float64{1.225})
	cond.SetScalar(amd.CondAirSpeed, []float64{50})
	cond.SetScalar(amd.CondPowerCoefficient, []float64{0.05})
	_, err = ice.Evaluate(cond)
	require.NoError(t, err)
	assert.Equal(t, []float64{amd.MustBase(2400, "rpm")}, cond.Scalar(amd.CondRPM))

	cond.SetScalar(amd.CondRPM, []float64{0})
	_, err = ice.Evaluate(cond)
	assert.Error(t, err)
}

func TestICEPropellerTorqueBalance(t *testing.T) {
	ice, err := propulsion.NewICEPropeller(twin(), amd.NewUS1976())
	require.NoError(t, err)
	require.Len(t, ice.Unknowns(), 1)
	u := ice.Unknowns()[0]
	assert.Equal(t, propulsion.UnknownPowerCoefficient, u.Name)
	assert.Equal(t, []string{propulsion.ResidualNetwork}, u.ResidualGroups)

	st := amd.NewState(amd.NewOperators(amd.Chebyshev, 3))
	st.Unknowns.Declare(u.Name, u.Initial, u.Lower, u.Upper)
	st.Residuals.Declare(propulsion.ResidualNetwork, 0, math.Inf(-1), math.Inf(1))
	ice.Unpack(st)
	assert.Equal(t, []float64{0.02, 0.02, 0.02}, st.Conditions.Scalar(amd.CondPowerCoefficient))

	ω := amd.MustBase(2700, "rpm")
	cond := st.Conditions
	cond.SetScalar(amd.CondAltitude, []float64{0, 500, 1000})
	cond.SetScalar(amd.CondThrottle, []float64{0.6, 0.6, 0.6})
	cond.SetScalar(amd.CondDensity, []float64{1.225, 1.167, 1.112})
	cond.SetScalar(amd.CondAirSpeed, []float64{65, 65, 65})
	cond.SetScalar(amd.CondRPM, []float64{ω, ω, ω})

	// The power coefficient which absorbs the engine torque zeroes the residual.
	avail, _ := ice.AvailablePower(cond.Scalar(amd.CondAltitude))
	rps := ω / (2 * math.Pi)
	cp := make([]float64, 3)
	for i, ρ := range cond.Scalar(amd.CondDensity) {
		cp[i] = 0.6 * avail[i] / (ρ * rps * rps * rps * math.Pow(1.78, 5))
	}
	st.Unknowns.Set(u.Name, cp)
	ice.Unpack(st)
	res, err := ice.Evaluate(cond)
	require.NoError(t, err)
	cond.SetScalar(amd.CondEngineTorque, res.Torque)
	ice.Residuals(st)
	r, ok := st.Residuals.Get(propulsion.ResidualNetwork)
	require.True(t, ok)
	for i := range r {
		assert.InDelta(t, 0, r[i], 1e-9)
	}

	// Too much pitch: the propeller absorbs more than the engine delivers.
	for i := range cp {
		cp[i] *= 1.5
	}
	st.Unknowns.Set(u.Name, cp)
	ice.Unpack(st)
	_, err = ice.Evaluate(cond)
	require.NoError(t, err)
	ice.Residuals(st)
	r, _ = st.Residuals.Get(propulsion.ResidualNetwork)
	for i := range r {
		assert.Less(t, r[i], 0.0)
	}
}

func TestLinearThrust(t *testing.T) {
	l := propulsion.LinearThrust{MaxThrust: 2000, TSFC: 1e-5, ThrustAngle: amd.Deg2rad(3)}
	cond := amd.NewConditions(3)
	cond.SetScalar(amd.CondThrottle, []float64{-0.2, 0.5, 1.4})
	res, err := l.Evaluate(cond)
	require.NoError(t, err)
	s, c := math.Sincos(amd.Deg2rad(3))
	exp := mat.NewDense(3, 3, []float64{
		0, 0, 0,
		1000 * c, 0, -1000 * s,
		2000 * c, 0, -2000 * s,
	})
	assert.True(t, mat.EqualApprox(exp, res.Thrust, 1e-9), "saturated thrust:\n%v", mat.Formatted(res.Thrust))
	assert.InDeltaSlice(t, []float64{0, 0.01, 0.02}, res.FuelFlow, 1e-15)
}

func TestRegister(t *testing.T) {
	r := amd.NewRegistry()
	require.NoError(t, propulsion.Register(r))
	_, networks, _ := r.Names()
	assert.Equal(t, []string{propulsion.ICEPropellerKind}, networks)
	assert.Error(t, propulsion.Register(r))
}
