package amd

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned for invalid units, missing attributes or malformed segment boundary conditions.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Field != "" {
		b.WriteString(" on `" + e.Field + "`")
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ImmutableConfigError is returned when writing to a finalized configuration.
type ImmutableConfigError struct {
	Config string
	Path   string
	Op     string
}

func (e *ImmutableConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config `%s` is finalized: cannot %s `%s`", e.Config, e.Op, e.Path)
	}
	return fmt.Sprintf("config `%s` is finalized: cannot %s", e.Config, e.Op)
}

// ConvergenceError is returned when the solver cannot drive the residuals of a segment below tolerance.
type ConvergenceError struct {
	Segment      string
	Iterations   int
	ResidualNorm float64 // L2 norm of the last residual vector
	Component    string  // residual group holding the largest residual
	Node         int     // node of the largest residual
	Largest      float64
	Singular     bool
	Reason       string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("segment `%s` did not converge after %d iterations (%s): |R|=%.6e, largest %s[%d]=%.6e", e.Segment, e.Iterations, e.Reason, e.ResidualNorm, e.Component, e.Node, e.Largest)
}

// MissionError wraps a segment failure with the results of the segments which converged before it.
type MissionError struct {
	Mission string
	Segment string
	Index   int
	Err     error
	Partial *Results
}

func (e *MissionError) Error() string {
	return fmt.Sprintf("mission `%s` aborted at segment #%d `%s`: %s", e.Mission, e.Index, e.Segment, e.Err)
}

func (e *MissionError) Unwrap() error {
	return e.Err
}
