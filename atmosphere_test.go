package amd

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestUS1976(t *testing.T) {
	atmo := NewUS1976()
	// Reference values of the 1976 tables.
	alts := []float64{0, 1000, 3048, 11000, 20000, 32000}
	expT := []float64{288.15, 281.651, 268.348, 216.774, 216.65, 228.49}
	expP := []float64{101325, 89874.6, 69681.7, 22699.9, 5529.3, 889.06}
	expRho := []float64{1.225, 1.11164, 0.904637, 0.364801, 0.0889097, 0.013555}
	d, err := atmo.Compute(alts, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, z := range alts {
		if !scalar.EqualWithinRel(d.Temperature[i], expT[i], 1e-4) {
			t.Errorf("T(%.0f m) = %f K instead of %f K", z, d.Temperature[i], expT[i])
		}
		if !scalar.EqualWithinRel(d.Pressure[i], expP[i], 1e-3) {
			t.Errorf("p(%.0f m) = %f Pa instead of %f Pa", z, d.Pressure[i], expP[i])
		}
		if !scalar.EqualWithinRel(d.Density[i], expRho[i], 1e-3) {
			t.Errorf("rho(%.0f m) = %f kg/m3 instead of %f kg/m3", z, d.Density[i], expRho[i])
		}
	}
	if !scalar.EqualWithinAbs(d.SpeedOfSound[0], 340.294, 1e-2) {
		t.Fatalf("sea level speed of sound %f m/s", d.SpeedOfSound[0])
	}
	if !scalar.EqualWithinRel(d.Viscosity[0], 1.7894e-5, 1e-3) {
		t.Fatalf("sea level viscosity %g Pa s", d.Viscosity[0])
	}
}

func TestUS1976Offset(t *testing.T) {
	atmo := NewUS1976()
	std, _ := atmo.Compute([]float64{2000}, 0)
	hot, err := atmo.Compute([]float64{2000}, 20)
	if err != nil {
		t.Fatal(err)
	}
	if hot.Pressure[0] != std.Pressure[0] {
		t.Fatal("a temperature offset changes the pressure")
	}
	if !scalar.EqualWithinAbs(hot.Temperature[0]-std.Temperature[0], 20, 1e-12) {
		t.Fatal("the offset was not applied")
	}
	if hot.Density[0] >= std.Density[0] || hot.SpeedOfSound[0] <= std.SpeedOfSound[0] {
		t.Fatal("hot air must be thinner and faster")
	}
	if _, err := atmo.Compute([]float64{0}, -300); err == nil {
		t.Fatal("accepted a negative absolute temperature")
	}
	for _, z := range []float64{-2500, 90e3} {
		if _, err := atmo.Compute([]float64{0, z}, 0); err == nil {
			t.Fatalf("accepted an altitude of %f m", z)
		}
	}
	if d, err := atmo.Compute(nil, 0); err != nil || len(d.Density) != 0 {
		t.Fatal("no altitude should yield no data")
	}
}
