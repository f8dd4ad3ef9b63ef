// Command uasn-demo wires a localization scenario together and runs
// it: a YAML file describes the volume and the fleet, flags and
// environment variables override the simulation parameters, and the
// result is a per-sensor report of resolved positions.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rfsouza/uasn/pkg/uasn/core"
	"github.com/rfsouza/uasn/pkg/uasn/definition"
	"github.com/rfsouza/uasn/pkg/uasn/geom"
	"github.com/rfsouza/uasn/pkg/uasn/types"
)

var rootCmd = &cobra.Command{
	Use:   "uasn-demo <scenario.yaml>",
	Short: "Run an underwater acoustic localization scenario",
	Long: `uasn-demo loads a scenario file describing a simulation volume and a
fleet of anchor and sensor nodes, runs the selected localization
protocol on the discrete-event acoustic kernel, and reports every
sensor's resolved position against its true one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.Float64("horizon", 60, "simulated seconds to run")
	flags.Int64("seed", 1, "random seed")
	flags.Bool("verbose", false, "log every broadcast and delivery")
	flags.Bool("debug", false, "enable debug logging")
	flags.Float64("loss", -1, "override packet-drop probability (0..1)")
	flags.Float64("range", -1, "override acoustic range in metres")
	flags.Float64("snapshot", 0, "log a snapshot line every N simulated seconds")

	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix("UASN")
	viper.AutomaticEnv()
}

func run(scenarioPath string) error {
	scenario, err := LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	params, err := types.NewParams(func(p *types.Params) {
		if loss := viper.GetFloat64("loss"); loss >= 0 {
			p.SimLoss = loss
		}
		if rng := viper.GetFloat64("range"); rng > 0 {
			p.SimRange = rng
		}
	})
	if err != nil {
		return err
	}

	logger := definition.NewDefaultLogger()
	logger.ToggleDebug(viper.GetBool("debug"))
	registry := prometheus.NewRegistry()
	metrics := definition.NewMetrics(registry)

	env := core.New(scenario.Volume.MaxX, scenario.Volume.MaxY, scenario.Volume.DimZ, params, viper.GetInt64("seed"), logger, metrics)
	reports, err := scenario.Build(env, params)
	if err != nil {
		return err
	}

	horizon := viper.GetFloat64("horizon")
	logger.Infof("running %q for %.1fs with %d nodes", scenarioPath, horizon, len(env.Nodes()))
	stats := env.Run(horizon, core.RunOptions{
		Verbose:          viper.GetBool("verbose"),
		SnapshotInterval: viper.GetFloat64("snapshot"),
	})
	logger.Infof("done: %d ticks, %d broadcasts, %d deliveries, %d drops",
		stats.Ticks, stats.Broadcasts, stats.Deliveries, stats.Drops)

	localized := 0
	for _, r := range reports {
		truth := r.node.Position()
		estimate, ok := r.estimate()
		if !ok {
			logger.Warnf("%s: no position resolved", r.node.Name())
			continue
		}
		localized++
		logger.Infof("%s: resolved (%.2f, %.2f, %.2f), error %.2fm",
			r.node.Name(), estimate.X, estimate.Y, estimate.Z, geom.Distance(estimate, truth))
	}
	logger.Infof("%d/%d sensors localized", localized, len(reports))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
