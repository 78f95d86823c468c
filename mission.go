package amd

import (
	"fmt"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

/* Handles the sequential evaluation of the mission segments. */

// Airport is the shared context of a mission.
type Airport struct {
	Altitude float64 // m
	DeltaISA float64 // K
}

// Mission is an ordered list of segments flown one after the other.
type Mission struct {
	Tag         string
	Airport     Airport
	Segments    []Segment
	InitialMass float64   // kg, zero uses the takeoff mass of the first segment configuration
	Epoch       time.Time // start of the mission, only used in reports
	Settings    SolverSettings
	Cache       *OperatorCache
	Metrics     *Metrics
	logger      kitlog.Logger
}

// NewMission returns a mission without segments. The logger may be nil.
func NewMission(tag string, airport Airport, settings SolverSettings, logger kitlog.Logger) *Mission {
	return &Mission{
		Tag:      tag,
		Airport:  airport,
		Epoch:    time.Now().UTC(),
		Settings: settings,
		Cache:    NewOperatorCache(DefaultSettings().OperatorCacheSize),
		logger:   kitlog.With(orNop(logger), "subsys", "mission", "mission", tag),
	}
}

// Append adds segments at the end of the mission.
func (m *Mission) Append(segs ...Segment) {
	m.Segments = append(m.Segments, segs...)
}

// initialSeed returns the conditions at the start of the first segment.
func (m *Mission) initialSeed() (Seed, error) {
	seed := Seed{Altitude: m.Airport.Altitude, Mass: m.InitialMass}
	seed.Position[2] = m.Airport.Altitude
	if seed.Mass > 0 {
		return seed, nil
	}
	an := m.Segments[0].Analyses()
	if an == nil || an.Config == nil {
		return seed, &ConfigurationError{Field: m.Segments[0].Tag(), Reason: "no configuration to read the takeoff mass from"}
	}
	mass, err := an.Config.Get("mass_properties.takeoff")
	if err != nil {
		return seed, err
	}
	if mass <= 0 {
		return seed, &ConfigurationError{Field: "mass_properties.takeoff", Reason: "must be positive"}
	}
	seed.Mass = mass
	return seed, nil
}

// Evaluate solves each segment in order, seeding each one with the terminal row of the previous one.
// A failing segment aborts the evaluation with a *MissionError holding the results converged so far.
func (m *Mission) Evaluate() (*Results, error) {
	runID := uuid.New()
	logger := kitlog.With(m.logger, "run", runID.String())
	results := NewResults(m.Tag, runID, m.Epoch)
	abort := func(i int, tag string, err error) (*Results, error) {
		level.Error(logger).Log("segment", tag, "index", i, "err", err)
		return results, &MissionError{Mission: m.Tag, Segment: tag, Index: i, Err: err, Partial: results}
	}
	if err := m.Settings.Validate(); err != nil {
		return abort(0, "", err)
	}
	if len(m.Segments) == 0 {
		return abort(0, "", &ConfigurationError{Field: m.Tag, Reason: "mission has no segments"})
	}
	tags := make(map[string]bool)
	for i, seg := range m.Segments {
		if err := seg.Validate(); err != nil {
			return abort(i, seg.Tag(), err)
		}
		if tags[seg.Tag()] {
			return abort(i, seg.Tag(), &ConfigurationError{Field: seg.Tag(), Reason: "duplicate segment tag"})
		}
		tags[seg.Tag()] = true
	}
	seed, err := m.initialSeed()
	if err != nil {
		return abort(0, m.Segments[0].Tag(), err)
	}
	if m.Cache == nil {
		m.Cache = NewOperatorCache(DefaultSettings().OperatorCacheSize)
	}
	solver := NewSolver(m.Settings, logger, m.Metrics)

	level.Info(logger).Log("status", "started", "segments", len(m.Segments), "mass(kg)", seed.Mass, "altitude(m)", seed.Altitude)
	start := time.Now()
	for i, seg := range m.Segments {
		sr, err := m.solveSegment(seg, seed, solver)
		if err != nil {
			m.Metrics.segment(seg.Kind(), "failed")
			return abort(i, seg.Tag(), err)
		}
		m.Metrics.segment(seg.Kind(), "converged")
		results.Append(sr)
		seed = sr.End()
		level.Info(logger).Log("segment", seg.Tag(), "kind", seg.Kind(), "iterations", sr.Stats.Iterations, "duration(min)", sr.Duration/60, "fuel(kg)", sr.Fuel(), "|R|", sr.Stats.ResidualNorm)
	}
	level.Info(logger).Log("status", "finished", "wall", time.Since(start), "fuel(kg)", results.Fuel(), "time(min)", seed.Time/60)
	return results, nil
}

// solveSegment sets up the state of a segment from the seed, and solves it.
func (m *Mission) solveSegment(seg Segment, seed Seed, solver *Solver) (*SegmentResult, error) {
	n := seg.Nodes()
	if n == 0 {
		n = m.Settings.Nodes
	}
	st := NewState(m.Cache.Get(m.Settings.Grid, n))
	if err := seg.Initialize(st, seed); err != nil {
		return nil, err
	}
	seg.SetupUnknowns(st)
	comp, err := NewComposer(seg, m.Airport.DeltaISA)
	if err != nil {
		return nil, err
	}
	stats, err := solver.Solve(seg.Tag(), st, comp.Evaluate)
	if err != nil {
		return nil, err
	}
	if got := st.Conditions.Rows(); got != n {
		panic(fmt.Errorf("segment %s changed its number of nodes from %d to %d", seg.Tag(), n, got))
	}
	return &SegmentResult{
		Tag:        seg.Tag(),
		Kind:       seg.Kind(),
		Config:     seg.Analyses().Config.Tag,
		Conditions: st.Conditions.Clone(),
		Unknowns:   st.Unknowns.Snapshot(),
		Residuals:  st.Residuals.Snapshot(),
		Stats:      stats,
		Duration:   st.Duration,
		Distance:   st.Distance(),
	}, nil
}
