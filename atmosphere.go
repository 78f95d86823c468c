package amd

import (
	"fmt"
	"math"
)

const (
	// GasConstant is the specific gas constant of dry air, J/(kg K).
	GasConstant = 287.0531
	// SeaLevelDensity of the standard atmosphere in kg/m^3.
	SeaLevelDensity = 1.225
	earthRadius     = 6356766.0 // used for geopotential altitude
	heatRatio       = 1.4
)

// AtmosphereData are the freestream properties at each requested altitude.
type AtmosphereData struct {
	Pressure     []float64
	Temperature  []float64
	Density      []float64
	SpeedOfSound []float64
	Viscosity    []float64
}

// Atmosphere returns the freestream properties at geometric altitudes, with a temperature offset.
type Atmosphere interface {
	Compute(altitudes []float64, deltaISA float64) (AtmosphereData, error)
}

// layer of the US Standard Atmosphere 1976: base geopotential altitude (m), lapse rate (K/m).
type layer struct {
	h0, lapse float64
}

var us1976Layers = []layer{
	{0, -0.0065},
	{11000, 0},
	{20000, 0.001},
	{32000, 0.0028},
	{47000, 0},
	{51000, -0.0028},
	{71000, -0.002},
	{84852, 0},
}

// US1976 is the US Standard Atmosphere 1976, from -2 km to 86 km.
type US1976 struct {
	t0, p0 []float64 // base temperature and pressure of each layer
}

// NewUS1976 returns the standard atmosphere.
func NewUS1976() *US1976 {
	a := &US1976{t0: make([]float64, len(us1976Layers)), p0: make([]float64, len(us1976Layers))}
	a.t0[0], a.p0[0] = 288.15, 101325
	for i := 1; i < len(us1976Layers); i++ {
		prev := us1976Layers[i-1]
		a.t0[i], a.p0[i] = layerState(a.t0[i-1], a.p0[i-1], prev.lapse, us1976Layers[i].h0-prev.h0)
	}
	return a
}

// layerState returns the temperature and pressure dh above the base of a layer.
func layerState(t0, p0, lapse, dh float64) (float64, float64) {
	g := StandardGravity
	if lapse == 0 {
		return t0, p0 * math.Exp(-g*dh/(GasConstant*t0))
	}
	t := t0 + lapse*dh
	return t, p0 * math.Pow(t/t0, -g/(lapse*GasConstant))
}

// Compute implements the Atmosphere interface.
func (a *US1976) Compute(altitudes []float64, deltaISA float64) (AtmosphereData, error) {
	n := len(altitudes)
	d := AtmosphereData{make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)}
	for i, z := range altitudes {
		if z < -2000 || z > 86000 || math.IsNaN(z) {
			return AtmosphereData{}, fmt.Errorf("altitude %.1f m is outside of the standard atmosphere", z)
		}
		h := earthRadius * z / (earthRadius + z)
		l := 0
		for l+1 < len(us1976Layers) && h >= us1976Layers[l+1].h0 {
			l++
		}
		t, p := layerState(a.t0[l], a.p0[l], us1976Layers[l].lapse, h-us1976Layers[l].h0)
		t += deltaISA
		if t <= 0 {
			return AtmosphereData{}, fmt.Errorf("temperature offset %.1f K yields a non physical temperature", deltaISA)
		}
		d.Pressure[i] = p
		d.Temperature[i] = t
		d.Density[i] = p / (GasConstant * t)
		d.SpeedOfSound[i] = math.Sqrt(heatRatio * GasConstant * t)
		d.Viscosity[i] = sutherland(t)
	}
	return d, nil
}

// sutherland returns the dynamic viscosity of air in Pa s.
func sutherland(t float64) float64 {
	return 1.458e-6 * math.Pow(t, 1.5) / (t + 110.4)
}
