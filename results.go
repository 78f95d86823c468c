package amd

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/iancoleman/orderedmap"
)

// SegmentResult holds the converged conditions of one segment.
type SegmentResult struct {
	Tag        string
	Kind       SegmentKind
	Config     string
	Conditions *Conditions
	Unknowns   map[string][]float64
	Residuals  map[string][]float64
	Stats      SolveStats
	Duration   float64 // s
	Distance   float64 // m
}

// Start returns the first row of the segment.
func (r *SegmentResult) Start() Seed {
	return seedAt(r.Conditions, 0)
}

// End returns the terminal row of the segment.
func (r *SegmentResult) End() Seed {
	return seedAt(r.Conditions, r.Conditions.Rows()-1)
}

// Fuel returns the mass burnt during the segment.
func (r *SegmentResult) Fuel() float64 {
	return r.Start().Mass - r.End().Mass
}

func seedAt(c *Conditions, i int) Seed {
	s := Seed{
		Time:     c.Scalar(CondTime)[i],
		Mass:     c.Scalar(CondMass)[i],
		Altitude: c.Scalar(CondAltitude)[i],
	}
	for k := 0; k < 3; k++ {
		s.Position[k] = c.Column(CondPosition, k)[i]
	}
	return s
}

// Results are the segment results of a mission, in mission order.
type Results struct {
	Mission  string
	RunID    uuid.UUID
	Epoch    time.Time
	segments *orderedmap.OrderedMap
}

// NewResults returns empty results.
func NewResults(mission string, runID uuid.UUID, epoch time.Time) *Results {
	return &Results{mission, runID, epoch, orderedmap.New()}
}

// Append adds the result of a segment. Tags are unique within a mission.
func (r *Results) Append(sr *SegmentResult) {
	r.segments.Set(sr.Tag, sr)
}

// Segment returns the result of the segment with this tag.
func (r *Results) Segment(tag string) (*SegmentResult, bool) {
	sr, ok := r.segments.Get(tag)
	if !ok {
		return nil, false
	}
	return sr.(*SegmentResult), true
}

// Segments returns the segment results in mission order.
func (r *Results) Segments() []*SegmentResult {
	keys := r.segments.Keys()
	out := make([]*SegmentResult, len(keys))
	for i, k := range keys {
		sr, _ := r.segments.Get(k)
		out[i] = sr.(*SegmentResult)
	}
	return out
}

// Tags returns the segment tags in mission order.
func (r *Results) Tags() []string {
	return r.segments.Keys()
}

// Len returns the number of converged segments.
func (r *Results) Len() int {
	return len(r.segments.Keys())
}

// Terminal returns the last row of the last segment.
func (r *Results) Terminal() (Seed, bool) {
	segs := r.Segments()
	if len(segs) == 0 {
		return Seed{}, false
	}
	return segs[len(segs)-1].End(), true
}

// Fuel returns the fuel burnt over all the segments.
func (r *Results) Fuel() float64 {
	fuel := 0.0
	for _, sr := range r.Segments() {
		fuel += sr.Fuel()
	}
	return fuel
}

// MarshalJSON exports the segments in mission order, each condition as a list of rows.
func (r *Results) MarshalJSON() ([]byte, error) {
	segs := orderedmap.New()
	for _, sr := range r.Segments() {
		seg := orderedmap.New()
		seg.Set("kind", sr.Kind.String())
		seg.Set("config", sr.Config)
		seg.Set("iterations", sr.Stats.Iterations)
		seg.Set("residual_norm", sr.Stats.ResidualNorm)
		seg.Set("duration", sr.Duration)
		seg.Set("distance", sr.Distance)
		conds := orderedmap.New()
		for _, name := range sr.Conditions.Names() {
			m, _ := sr.Conditions.Get(name)
			rows, cols := m.Dims()
			vals := make([][]float64, rows)
			for i := range vals {
				vals[i] = make([]float64, cols)
				for j := range vals[i] {
					vals[i][j] = m.At(i, j)
				}
			}
			conds.Set(name, vals)
		}
		seg.Set("conditions", conds)
		segs.Set(sr.Tag, seg)
	}
	out := orderedmap.New()
	out.Set("mission", r.Mission)
	out.Set("run_id", r.RunID.String())
	out.Set("epoch", r.Epoch.UTC().Format(time.RFC3339))
	out.Set("segments", segs)
	return json.Marshal(out)
}
