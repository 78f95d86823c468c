package amd

import (
	"fmt"
	"sort"
)

// AeroFactory builds an aerodynamics model for a finalized vehicle.
type AeroFactory func(v *Vehicle) (Aerodynamics, error)

// NetworkFactory builds the network of a propulsor.
type NetworkFactory func(p Propulsor, atmo Atmosphere) (Network, error)

// WeightsFactory builds a weights model.
type WeightsFactory func() Weights

// Registry holds the named collaborator implementations. It is built at startup and passed around.
type Registry struct {
	aero     map[string]AeroFactory
	networks map[string]NetworkFactory
	weights  map[string]WeightsFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{make(map[string]AeroFactory), make(map[string]NetworkFactory), make(map[string]WeightsFactory)}
}

// RegisterAerodynamics adds an aerodynamics model.
func (r *Registry) RegisterAerodynamics(name string, f AeroFactory) error {
	if _, dup := r.aero[name]; dup {
		return &ConfigurationError{Field: name, Reason: "aerodynamics already registered"}
	}
	r.aero[name] = f
	return nil
}

// RegisterNetwork adds a propulsion network kind.
func (r *Registry) RegisterNetwork(kind string, f NetworkFactory) error {
	if _, dup := r.networks[kind]; dup {
		return &ConfigurationError{Field: kind, Reason: "network already registered"}
	}
	r.networks[kind] = f
	return nil
}

// RegisterWeights adds a weights model.
func (r *Registry) RegisterWeights(name string, f WeightsFactory) error {
	if _, dup := r.weights[name]; dup {
		return &ConfigurationError{Field: name, Reason: "weights already registered"}
	}
	r.weights[name] = f
	return nil
}

// Names returns the registered names of each kind of collaborator.
func (r *Registry) Names() (aero, networks, weights []string) {
	for name := range r.aero {
		aero = append(aero, name)
	}
	for name := range r.networks {
		networks = append(networks, name)
	}
	for name := range r.weights {
		weights = append(weights, name)
	}
	sort.Strings(aero)
	sort.Strings(networks)
	sort.Strings(weights)
	return
}

// Analyses builds the collaborators of a configuration, which is finalized if needed.
// The network kind is read from the single propulsor of the vehicle.
func (r *Registry) Analyses(cfg *Config, aeroName, weightsName string, atmo Atmosphere) (*Analyses, error) {
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	v, _ := cfg.Vehicle()
	aeroF, ok := r.aero[aeroName]
	if !ok {
		return nil, &ConfigurationError{Field: "aerodynamics", Reason: fmt.Sprintf("`%s` is not registered", aeroName)}
	}
	weightsF, ok := r.weights[weightsName]
	if !ok {
		return nil, &ConfigurationError{Field: "weights", Reason: fmt.Sprintf("`%s` is not registered", weightsName)}
	}
	if len(v.Propulsors) != 1 {
		return nil, &ConfigurationError{Field: "propulsors", Reason: fmt.Sprintf("expected exactly one propulsor, got %d", len(v.Propulsors))}
	}
	p := v.Propulsors[0]
	netF, ok := r.networks[p.Kind]
	if !ok {
		return nil, &ConfigurationError{Field: "propulsors." + p.Tag + ".kind", Reason: fmt.Sprintf("network `%s` is not registered", p.Kind)}
	}
	if atmo == nil {
		atmo = NewUS1976()
	}
	aero, err := aeroF(v)
	if err != nil {
		return nil, err
	}
	network, err := netF(p, atmo)
	if err != nil {
		return nil, err
	}
	return &Analyses{Config: cfg, Aerodynamics: aero, Network: network, Weights: weightsF(), Atmosphere: atmo}, nil
}
