package amd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigEnv is the environment variable naming the directory holding `conf.toml`.
	ConfigEnv = "AMD_CONFIG"
	// DefaultNodes is the default number of control points per segment.
	DefaultNodes = 16
)

// SolverSettings defines the numerical settings of the segment solver.
type SolverSettings struct {
	Tolerance     float64  // convergence when every |residual| is below this
	MaxIterations int      // Newton iteration cap
	MaxHalvings   int      // step halvings before declaring a failed line search
	Step          float64  // finite difference step
	MaxCondition  float64  // Jacobians with a larger condition number are deemed singular
	Nodes         int      // control points per segment unless the segment says otherwise
	Grid          GridKind // discretization kind
}

// DefaultSolverSettings returns the default solver settings.
func DefaultSolverSettings() SolverSettings {
	return SolverSettings{
		Tolerance:     1e-6,
		MaxIterations: 50,
		MaxHalvings:   10,
		Step:          1e-7,
		MaxCondition:  1e14,
		Nodes:         DefaultNodes,
		Grid:          Chebyshev,
	}
}

// Validate returns an error if the settings cannot drive a solve.
func (s SolverSettings) Validate() error {
	switch {
	case s.Tolerance <= 0:
		return &ConfigurationError{Field: "solver.tolerance", Reason: "must be positive"}
	case s.MaxIterations < 1:
		return &ConfigurationError{Field: "solver.max_iterations", Reason: "must be at least 1"}
	case s.MaxHalvings < 0:
		return &ConfigurationError{Field: "solver.max_halvings", Reason: "must be non negative"}
	case s.Step <= 0:
		return &ConfigurationError{Field: "solver.step", Reason: "must be positive"}
	case s.MaxCondition <= 1:
		return &ConfigurationError{Field: "solver.max_condition", Reason: "must be larger than one"}
	case s.Nodes < 1:
		return &ConfigurationError{Field: "solver.nodes", Reason: "must be at least 1"}
	}
	return nil
}

// Settings is the full amd configuration.
type Settings struct {
	Solver            SolverSettings
	Log               LogSettings
	OutputDir         string
	OperatorCacheSize int
}

// DefaultSettings returns the settings used when no configuration file is found.
func DefaultSettings() Settings {
	return Settings{
		Solver:            DefaultSolverSettings(),
		Log:               LogSettings{Level: "info"},
		OutputDir:         ".",
		OperatorCacheSize: 32,
	}
}

// LoadSettings reads `conf.toml` (or any viper supported format) from the directory in $AMD_CONFIG.
// Without that variable, the defaults are returned.
func LoadSettings() (Settings, error) {
	confPath := os.Getenv(ConfigEnv)
	if confPath == "" {
		return DefaultSettings(), nil
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Settings{}, &ConfigurationError{Field: ConfigEnv, Reason: fmt.Sprintf("%s/conf.toml not found", confPath)}
		}
		return Settings{}, &ConfigurationError{Field: ConfigEnv, Reason: "could not read configuration", Err: err}
	}
	return SettingsFromViper(v)
}

// SettingsFromViper extracts the settings from a viper instance. Missing keys take their default value.
func SettingsFromViper(v *viper.Viper) (Settings, error) {
	def := DefaultSettings()
	v.SetDefault("solver.tolerance", def.Solver.Tolerance)
	v.SetDefault("solver.max_iterations", def.Solver.MaxIterations)
	v.SetDefault("solver.max_halvings", def.Solver.MaxHalvings)
	v.SetDefault("solver.step", def.Solver.Step)
	v.SetDefault("solver.max_condition", def.Solver.MaxCondition)
	v.SetDefault("solver.nodes", def.Solver.Nodes)
	v.SetDefault("solver.grid", def.Solver.Grid.String())
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("general.output_path", def.OutputDir)
	v.SetDefault("general.operator_cache", def.OperatorCacheSize)

	grid, err := ParseGridKind(v.GetString("solver.grid"))
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		Solver: SolverSettings{
			Tolerance:     v.GetFloat64("solver.tolerance"),
			MaxIterations: v.GetInt("solver.max_iterations"),
			MaxHalvings:   v.GetInt("solver.max_halvings"),
			Step:          v.GetFloat64("solver.step"),
			MaxCondition:  v.GetFloat64("solver.max_condition"),
			Nodes:         v.GetInt("solver.nodes"),
			Grid:          grid,
		},
		Log: LogSettings{
			Level:      strings.ToLower(v.GetString("log.level")),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			Compress:   v.GetBool("log.compress"),
		},
		OutputDir:         v.GetString("general.output_path"),
		OperatorCacheSize: v.GetInt("general.operator_cache"),
	}
	if err := s.Solver.Validate(); err != nil {
		return Settings{}, err
	}
	if s.OperatorCacheSize < 1 {
		return Settings{}, &ConfigurationError{Field: "general.operator_cache", Reason: "must be at least 1"}
	}
	return s, nil
}
