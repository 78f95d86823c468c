package aero

import (
	"fmt"
	"io"
	"time"

	"github.com/ChristopherRabotin/amd"
)

// Reference flight condition of the parasite drag report.
const (
	ReportMach        = 0.3
	ReportReynolds    = 12e6 // per meter
	ReportTemperature = 288.15
)

// WriteParasiteReport writes the parasite drag build up of each component at one flight condition.
func WriteParasiteReport(w io.Writer, a *FidelityZero, mach, re, temperature float64) error {
	title := fmt.Sprintf("Parasite drag build up at M=%.3f, Re=%.3g /m, T=%.2f K", mach, re, temperature)
	if err := amd.WriteHeader(w, title, time.Now()); err != nil {
		return err
	}
	fmt.Fprintf(w, "%-28s %10s %10s %12s %10s %8s %8s %8s %10s\n", "component", "Swet (m2)", "Lref (m)", "Re", "Cf", "k_comp", "k_reyn", "FF", "CDp")
	total := 0.0
	for _, c := range a.Parasite(mach, re, temperature) {
		total += c.Coefficient
		fmt.Fprintf(w, "%-28s %10.3f %10.3f %12.4g %10.6f %8.4f %8.4f %8.4f %10.6f\n",
			c.Tag, c.WettedArea, c.ReferenceLength, c.ReynoldsNumber, c.SkinFriction, c.CompressibilityFactor, c.ReynoldsFactor, c.FormFactor, c.Coefficient)
	}
	_, err := fmt.Fprintf(w, "%-28s %10s %10s %12s %10s %8s %8s %8s %10.6f\n", "total", "", "", "", "", "", "", "", total)
	return err
}
