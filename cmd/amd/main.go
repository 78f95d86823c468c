package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChristopherRabotin/amd"
	"github.com/ChristopherRabotin/amd/aero"
	"github.com/ChristopherRabotin/amd/vehicles"
	"github.com/ChristopherRabotin/amd/weights"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose   bool
	metrics   bool
	aeroModel string

	rootCmd = &cobra.Command{
		Use:           "amd",
		Short:         "Aircraft mission design: solves mission segments of a vehicle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	evaluateCmd = &cobra.Command{
		Use:   "evaluate <scenario.toml>",
		Short: "Solve every segment of a mission scenario and export the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvaluate,
	}
	polarCmd = &cobra.Command{
		Use:   "polar",
		Short: "Print the drag polar of each P2006T configuration",
		Args:  cobra.NoArgs,
		RunE:  runPolar,
	}
	geometryCmd = &cobra.Command{
		Use:   "geometry <config>",
		Short: "Print the resolved geometry of a P2006T configuration, with its weight and parasite drag breakdown",
		Args:  cobra.ExactArgs(1),
		RunE:  runGeometry,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at the debug level")
	evaluateCmd.Flags().BoolVar(&metrics, "metrics", false, "print the solver metrics after the evaluation")
	polarCmd.Flags().StringVar(&aeroModel, "aero", aero.FidelityZeroName, "aerodynamics model")
	polarCmd.Flags().Float64("altitude", 0, "altitude in m")
	polarCmd.Flags().Float64("speed", 72, "air speed in m/s")
	rootCmd.AddCommand(evaluateCmd, polarCmd, geometryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "amd: %s\n", err)
		os.Exit(1)
	}
}

// setup loads the settings from $AMD_CONFIG and returns the logger.
func setup() (amd.Settings, kitlog.Logger, error) {
	settings, err := amd.LoadSettings()
	if err != nil {
		return settings, nil, err
	}
	if verbose {
		settings.Log.Level = "debug"
	}
	return settings, amd.NewLogger(settings.Log, os.Stderr), nil
}

// report writes the summary of the segments which were solved. An evaluation error takes precedence over a
// report error, which is then only logged.
func report(w io.Writer, res *amd.Results, evalErr error, logger kitlog.Logger) error {
	if res != nil {
		if err := amd.WriteMissionReport(w, res); err != nil {
			if evalErr == nil {
				return fmt.Errorf("mission report: %w", err)
			}
			level.Error(logger).Log("subsys", "report", "err", err)
		}
	}
	return evalErr
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	settings, logger, err := setup()
	if err != nil {
		return err
	}
	v := viper.New()
	name := filepath.Base(args[0])
	v.AddConfigPath(filepath.Dir(args[0]))
	v.SetConfigName(strings.TrimSuffix(name, filepath.Ext(name)))
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	sc, err := loadScenario(v, settings, logger)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	sc.mission.Metrics = amd.NewMetrics(reg)

	res, err := sc.mission.Evaluate()
	if err := report(cmd.OutOrStdout(), res, err, logger); err != nil {
		return err
	}
	if !sc.export.IsUseless() {
		files, err := amd.Export(sc.export, res)
		if err != nil {
			return err
		}
		for _, f := range files {
			level.Info(logger).Log("subsys", "export", "file", f)
		}
	}
	if metrics {
		return printMetrics(cmd, reg)
	}
	return nil
}

func printMetrics(cmd *cobra.Command, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(out, "%s{%s} count=%d sum=%g\n", mf.GetName(), strings.Join(labels, ","), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

// p2006t returns the sized configurations of the P2006T with their analyses.
func p2006t(aeroName string) (*amd.ConfigSet, map[string]*amd.Analyses, error) {
	set, err := vehicles.Configs(vehicles.P2006T())
	if err != nil {
		return nil, nil, err
	}
	if err := vehicles.SimpleSizing(set); err != nil {
		return nil, nil, err
	}
	registry, err := vehicles.NewRegistry()
	if err != nil {
		return nil, nil, err
	}
	an, err := vehicles.Analyses(registry, set, aeroName)
	return set, an, err
}

func runPolar(cmd *cobra.Command, _ []string) error {
	if _, _, err := setup(); err != nil {
		return err
	}
	alt, _ := cmd.Flags().GetFloat64("altitude")
	speed, _ := cmd.Flags().GetFloat64("speed")
	set, an, err := p2006t(aeroModel)
	if err != nil {
		return err
	}
	var all []*amd.Analyses
	for _, tag := range set.Tags() {
		all = append(all, an[tag])
	}
	alphas := make([]float64, 0, 17)
	for α := -4.0; α <= 12; α++ {
		alphas = append(alphas, amd.Deg2rad(α))
	}
	polars, err := amd.DragPolars(context.Background(), all, amd.PolarPoint{Altitude: alt, AirSpeed: speed}, alphas)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range polars {
		ld, α := p.LiftToDrag()
		fmt.Fprintf(out, "# %s: max L/D %.2f at %.1f deg\n", p.Config, ld, amd.Rad2deg(α))
		for i := range p.Alpha {
			fmt.Fprintf(out, "%6.1f %8.4f %8.5f\n", amd.Rad2deg(p.Alpha[i]), p.CL[i], p.CD[i])
		}
	}
	return nil
}

func runGeometry(cmd *cobra.Command, args []string) error {
	if _, _, err := setup(); err != nil {
		return err
	}
	set, an, err := p2006t(aero.FidelityZeroName)
	if err != nil {
		return err
	}
	cfg, err := set.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := amd.WriteGeometry(out, cfg); err != nil {
		return err
	}
	v, err := cfg.Vehicle()
	if err != nil {
		return err
	}
	breakdown, err := weights.NewGeneralAviation().Evaluate(v)
	if err != nil {
		return err
	}
	if err := amd.WriteWeightReport(out, v.Tag, breakdown); err != nil {
		return err
	}
	if fz, ok := an[args[0]].Aerodynamics.(*aero.FidelityZero); ok {
		return aero.WriteParasiteReport(out, fz, aero.ReportMach, aero.ReportReynolds, aero.ReportTemperature)
	}
	return nil
}
