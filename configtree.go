package amd

import (
	"fmt"
	"math"
	"sort"

	"github.com/brunoga/deep"
	"github.com/iancoleman/orderedmap"
)

// Config is a named configuration of a vehicle. The root configuration owns the vehicle, all others
// only store their overrides relative to their base.
type Config struct {
	Tag       string
	base      *Config
	vehicle   *Vehicle           // root only
	overrides map[string]float64 // derived only
	snapshot  *Vehicle           // base as of the last PullBase
	current   *Vehicle           // snapshot with the overrides applied, editable until StoreDiff
	finalized bool
	resolved  *Vehicle
}

// NewConfig returns the root configuration of a vehicle. The vehicle is copied.
func NewConfig(tag string, v *Vehicle) *Config {
	return &Config{Tag: tag, vehicle: deep.MustCopy(v)}
}

// Derive returns a new configuration without any override.
func Derive(tag string, base *Config) *Config {
	return &Config{Tag: tag, base: base, overrides: make(map[string]float64)}
}

// Base returns the parent configuration, nil for the root.
func (c *Config) Base() *Config {
	return c.base
}

// Finalized returns whether this config is read only.
func (c *Config) Finalized() bool {
	return c.finalized
}

// Depth returns the number of ancestors.
func (c *Config) Depth() int {
	d := 0
	for b := c.base; b != nil; b = b.base {
		d++
	}
	return d
}

// Get returns the override if present, otherwise the value of the base.
func (c *Config) Get(path string) (float64, error) {
	if c.finalized {
		ptr, err := c.resolved.Field(path)
		if err != nil {
			return 0, err
		}
		return *ptr, nil
	}
	if c.base == nil {
		ptr, err := c.vehicle.Field(path)
		if err != nil {
			return 0, err
		}
		return *ptr, nil
	}
	if val, ok := c.overrides[path]; ok {
		return val, nil
	}
	return c.base.Get(path)
}

// Set records an override (or writes the vehicle of a root config).
func (c *Config) Set(path string, value float64) error {
	if c.finalized {
		return &ImmutableConfigError{Config: c.Tag, Path: path, Op: "set"}
	}
	if c.base == nil {
		ptr, err := c.vehicle.Field(path)
		if err != nil {
			return err
		}
		*ptr = value
	} else {
		// Validate the path against the vehicle this config describes.
		v, err := c.base.resolve()
		if err != nil {
			return err
		}
		if _, err := v.Field(path); err != nil {
			return err
		}
		c.overrides[path] = value
	}
	if c.current != nil {
		ptr, err := c.current.Field(path)
		if err != nil {
			return err
		}
		*ptr = value
	}
	return nil
}

// Unset removes an override.
func (c *Config) Unset(path string) error {
	if c.finalized {
		return &ImmutableConfigError{Config: c.Tag, Path: path, Op: "unset"}
	}
	delete(c.overrides, path)
	return nil
}

// Overrides returns a copy of the overrides.
func (c *Config) Overrides() map[string]float64 {
	o := make(map[string]float64, len(c.overrides))
	for k, v := range c.overrides {
		o[k] = v
	}
	return o
}

// PullBase refreshes the current view from the base and the overrides.
func (c *Config) PullBase() error {
	if c.finalized {
		return &ImmutableConfigError{Config: c.Tag, Op: "pull base"}
	}
	var err error
	if c.base == nil {
		c.snapshot = deep.MustCopy(c.vehicle)
	} else if c.snapshot, err = c.base.resolve(); err != nil {
		return err
	}
	c.current = deep.MustCopy(c.snapshot)
	for path, val := range c.overrides {
		ptr, err := c.current.Field(path)
		if err != nil {
			return err
		}
		*ptr = val
	}
	return nil
}

// Current returns the pulled view, which may be edited directly until StoreDiff.
func (c *Config) Current() (*Vehicle, error) {
	if c.finalized {
		return nil, &ImmutableConfigError{Config: c.Tag, Op: "edit"}
	}
	if c.current == nil {
		return nil, &ConfigurationError{Field: c.Tag, Reason: "PullBase must be called before editing"}
	}
	return c.current, nil
}

// StoreDiff keeps as overrides only the attributes of the current view which differ from the pulled base.
func (c *Config) StoreDiff() error {
	if c.finalized {
		return &ImmutableConfigError{Config: c.Tag, Op: "store diff"}
	}
	if c.current == nil {
		return &ConfigurationError{Field: c.Tag, Reason: "PullBase must be called before StoreDiff"}
	}
	if c.base == nil {
		c.vehicle = c.current
	} else {
		overrides := make(map[string]float64)
		for _, path := range c.current.Paths() {
			cur, err := c.current.Field(path)
			if err != nil {
				return err
			}
			was, err := c.snapshot.Field(path)
			if err != nil {
				return err
			}
			if !sameValue(*cur, *was) {
				overrides[path] = *cur
			}
		}
		c.overrides = overrides
	}
	c.snapshot, c.current = nil, nil
	return nil
}

func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Finalize freezes the configuration after its ancestors, and computes the derived geometry.
func (c *Config) Finalize() error {
	if c.finalized {
		return nil
	}
	if c.base != nil {
		if err := c.base.Finalize(); err != nil {
			return err
		}
	}
	v, err := c.raw()
	if err != nil {
		return err
	}
	computeDerived(v)
	if err := v.Validate(); err != nil {
		return err
	}
	c.resolved = v
	c.snapshot, c.current = nil, nil
	c.finalized = true
	return nil
}

// Vehicle returns the resolved vehicle. The finalized vehicle is shared and must not be modified.
func (c *Config) Vehicle() (*Vehicle, error) {
	if c.finalized {
		return c.resolved, nil
	}
	return c.resolve()
}

// resolve returns a fresh copy of the vehicle with every override of the chain applied. A finalized config
// answers with its frozen vehicle, derived geometry included.
func (c *Config) resolve() (*Vehicle, error) {
	if c.finalized {
		return deep.Copy(c.resolved)
	}
	return c.raw()
}

// raw applies the overrides of the chain to the root vehicle, without any derived geometry, so that the
// derived values of a config follow its own overrides.
func (c *Config) raw() (*Vehicle, error) {
	if c.base == nil {
		return deep.Copy(c.vehicle)
	}
	v, err := c.base.raw()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(c.overrides))
	for path := range c.overrides {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		ptr, err := v.Field(path)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", c.Tag, err)
		}
		*ptr = c.overrides[path]
	}
	return v, nil
}

// computeDerived fills in the geometry which was left unset.
func computeDerived(v *Vehicle) {
	for i := range v.Wings {
		w := &v.Wings[i]
		if w.WettedArea == 0 {
			w.WettedArea = 2 * w.ReferenceArea
		}
		if w.ExposedArea == 0 {
			w.ExposedArea = 0.8 * w.WettedArea
		}
		if w.AffectedArea == 0 {
			w.AffectedArea = 0.6 * w.WettedArea
		}
		if w.MeanAerodynamicChord == 0 && w.RootChord > 0 {
			λ := w.Taper
			w.MeanAerodynamicChord = w.RootChord * 2 / 3 * (1 + λ + λ*λ) / (1 + λ)
		}
		if w.SpanEfficiency == 0 {
			w.SpanEfficiency = 0.9
		}
		if w.DynamicPressureRatio == 0 {
			w.DynamicPressureRatio = 1
		}
	}
	for i := range v.Fuselages {
		f := &v.Fuselages[i]
		if f.EffectiveDiameter == 0 {
			f.EffectiveDiameter = (f.Width + f.HeightMaximum) / 2
		}
		if f.WettedArea == 0 && f.LengthTotal > 0 {
			f.WettedArea = 0.75 * math.Pi * f.EffectiveDiameter * f.LengthTotal
		}
	}
	for i := range v.Propulsors {
		p := &v.Propulsors[i]
		if p.WettedArea == 0 {
			p.WettedArea = 1.1 * math.Pi * p.NacelleDiameter * p.EngineLength
		}
		if p.Propeller.MaxEfficiency == 0 {
			p.Propeller.MaxEfficiency = 0.8
		}
	}
	if v.MaxLiftCoefficientFactor == 0 {
		v.MaxLiftCoefficientFactor = 1
	}
}

// ConfigSet is an ordered collection of configurations, keyed by tag.
type ConfigSet struct {
	configs *orderedmap.OrderedMap
}

// NewConfigSet returns an empty set.
func NewConfigSet() *ConfigSet {
	return &ConfigSet{orderedmap.New()}
}

// Add appends a configuration. Tags must be unique.
func (s *ConfigSet) Add(c *Config) error {
	if _, exists := s.configs.Get(c.Tag); exists {
		return &ConfigurationError{Field: c.Tag, Reason: "duplicate configuration tag"}
	}
	s.configs.Set(c.Tag, c)
	return nil
}

// Get returns the configuration with this tag.
func (s *ConfigSet) Get(tag string) (*Config, error) {
	c, ok := s.configs.Get(tag)
	if !ok {
		return nil, &ConfigurationError{Field: tag, Reason: "no such configuration"}
	}
	return c.(*Config), nil
}

// Tags returns the tags in insertion order.
func (s *ConfigSet) Tags() []string {
	return s.configs.Keys()
}

// FinalizeAll finalizes every configuration, in insertion order.
func (s *ConfigSet) FinalizeAll() error {
	for _, tag := range s.configs.Keys() {
		c, _ := s.Get(tag)
		if err := c.Finalize(); err != nil {
			return fmt.Errorf("finalizing %s: %w", tag, err)
		}
	}
	return nil
}
