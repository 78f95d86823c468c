package amd

import (
	"io"

	"gopkg.in/yaml.v3"
)

// WriteGeometry writes the resolved vehicle of a configuration as YAML.
func WriteGeometry(w io.Writer, cfg *Config) error {
	v, err := cfg.Vehicle()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// ReadGeometry reads a vehicle written by WriteGeometry. Unknown fields are an error.
func ReadGeometry(r io.Reader) (*Vehicle, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var v Vehicle
	if err := dec.Decode(&v); err != nil {
		return nil, &ConfigurationError{Field: "geometry", Reason: "invalid vehicle description", Err: err}
	}
	return &v, nil
}
