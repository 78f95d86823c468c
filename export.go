package amd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ExportConfig configures the exporting of the mission results.
type ExportConfig struct {
	Filename  string
	OutputDir string
	AsCSV     bool // one CSV file per segment
	Archive   bool // msgpack + zstd archive of every condition
	JSON      bool
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.Archive && !c.JSON
}

// path returns the output file name, stamped with the current time if requested.
func (c ExportConfig) path(prefix, suffix string) string {
	name := prefix + "-" + c.Filename
	if c.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	dir := c.OutputDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+suffix)
}

// Export writes the results as requested, and returns the names of the files written.
func Export(conf ExportConfig, res *Results) ([]string, error) {
	var files []string
	create := func(name string, write func(io.Writer) error) error {
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := write(f); err != nil {
			return err
		}
		files = append(files, name)
		return f.Close()
	}
	if conf.AsCSV {
		for _, sr := range res.Segments() {
			if err := create(conf.path("segment", "-"+sr.Tag+".csv"), func(w io.Writer) error {
				return WriteSegmentCSV(w, res.Epoch, sr)
			}); err != nil {
				return files, err
			}
		}
		if err := create(conf.path("mission", ".txt"), func(w io.Writer) error {
			return WriteMissionReport(w, res)
		}); err != nil {
			return files, err
		}
	}
	if conf.JSON {
		if err := create(conf.path("results", ".json"), func(w io.Writer) error {
			data, err := res.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}); err != nil {
			return files, err
		}
	}
	if conf.Archive {
		if err := create(conf.path("results", ArchiveExtension), func(w io.Writer) error {
			return WriteArchive(w, res)
		}); err != nil {
			return files, err
		}
	}
	return files, nil
}

// WriteHeader writes the comment header shared by every report.
func WriteHeader(w io.Writer, title string, epoch time.Time) error {
	_, err := fmt.Fprintf(w, `# Creation date (UTC): %s
# %s
#   Epoch (UTC): %s (JD %.6f)
`, time.Now().UTC(), title, epoch.UTC(), julian.TimeToJD(epoch))
	return err
}

// segmentColumns are exported as CSV, in this order.
var segmentColumns = []struct {
	name, cond string
	col        int
}{
	{"altitude (m)", CondAltitude, 0},
	{"distance (m)", CondPosition, 0},
	{"air speed (m/s)", CondAirSpeed, 0},
	{"mach", CondMach, 0},
	{"body angle (deg)", CondBodyAngle, 0},
	{"angle of attack (deg)", CondAngleOfAttack, 0},
	{"CL", CondLiftCoefficient, 0},
	{"CD", CondDragCoefficient, 0},
	{"throttle", CondThrottle, 0},
	{"thrust (N)", CondThrustForce, 0},
	{"drag (N)", CondDrag, 0},
	{"fuel flow (kg/s)", CondFuelFlow, 0},
	{"mass (kg)", CondMass, 0},
}

// WriteSegmentCSV writes the main conditions of a segment, one row per node. Time is a Julian date.
func WriteSegmentCSV(w io.Writer, epoch time.Time, sr *SegmentResult) error {
	if err := WriteHeader(w, fmt.Sprintf("Segment %s (%s) flown in configuration %s. Angles are in degrees.", sr.Tag, sr.Kind, sr.Config), epoch); err != nil {
		return err
	}
	c := sr.Conditions
	fmt.Fprint(w, "jd,time (s)")
	cols := make([][]float64, len(segmentColumns))
	for i, col := range segmentColumns {
		fmt.Fprintf(w, ",%s", col.name)
		cols[i] = c.Column(col.cond, col.col)
		if col.cond == CondBodyAngle || col.cond == CondAngleOfAttack {
			for j := range cols[i] {
				cols[i][j] = Rad2deg(cols[i][j])
			}
		}
	}
	t := c.Scalar(CondTime)
	for i := 0; i < c.Rows(); i++ {
		dt := epoch.Add(time.Duration(t[i] * float64(time.Second)))
		fmt.Fprintf(w, "\n%.8f,%.3f", julian.TimeToJD(dt), t[i])
		for _, col := range cols {
			fmt.Fprintf(w, ",%.6g", col[i])
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteMissionReport writes the breakdown of a mission, one line per segment.
func WriteMissionReport(w io.Writer, res *Results) error {
	if err := WriteHeader(w, fmt.Sprintf("Mission %s, run %s", res.Mission, res.RunID), res.Epoch); err != nil {
		return err
	}
	fmt.Fprintf(w, "%-20s %-12s %-20s %10s %12s %10s %10s %10s %6s\n", "segment", "kind", "config", "time (min)", "dist (nmi)", "m0 (kg)", "m1 (kg)", "fuel (kg)", "iter")
	for _, sr := range res.Segments() {
		start, end := sr.Start(), sr.End()
		dist, _ := FromBase(sr.Distance, "nmi")
		fmt.Fprintf(w, "%-20s %-12s %-20s %10.2f %12.2f %10.2f %10.2f %10.3f %6d\n", sr.Tag, sr.Kind, sr.Config, sr.Duration/60, dist, start.Mass, end.Mass, sr.Fuel(), sr.Stats.Iterations)
	}
	end, ok := res.Terminal()
	if !ok {
		_, err := fmt.Fprintln(w, "# no segment converged")
		return err
	}
	_, err := fmt.Fprintf(w, "# total time %.2f min, total fuel %.3f kg, final mass %.2f kg\n", end.Time/60, res.Fuel(), end.Mass)
	return err
}

// WriteWeightReport writes a weight breakdown.
func WriteWeightReport(w io.Writer, vehicle string, b WeightBreakdown) error {
	if err := WriteHeader(w, "Weight breakdown of "+vehicle+". Masses are in kg.", time.Now()); err != nil {
		return err
	}
	structures := append([]Component(nil), b.Structures...)
	sort.SliceStable(structures, func(i, j int) bool { return structures[i].Mass > structures[j].Mass })
	for _, c := range structures {
		fmt.Fprintf(w, "%-36s %10.2f\n", c.Name, c.Mass)
	}
	for _, line := range []Component{
		{"structures", b.StructuralMass()},
		{"propulsion", b.Propulsion},
		{"systems", b.Systems},
		{"operating empty", b.Empty},
		{"payload", b.Payload},
		{"zero fuel", b.ZeroFuel},
		{"fuel", b.Fuel},
		{"takeoff", b.Takeoff},
	} {
		if _, err := fmt.Fprintf(w, "%-36s %10.2f\n", line.Name, line.Mass); err != nil {
			return err
		}
	}
	return nil
}
