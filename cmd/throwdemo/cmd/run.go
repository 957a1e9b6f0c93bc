package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	throwctx "github.com/xgx-io/xgx-throwctx"
	"github.com/xgx-io/xgx-throwctx/config"
	"github.com/xgx-io/xgx-throwctx/throwprom"
	"github.com/xgx-io/xgx-throwctx/throwslog"
)

var (
	runScenarios []string
	runMetrics   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scenarios and print their log lines",
	Long: `Run one or more scenarios (default: all) and print one JSON log line per
logged error. With --metrics the capture counters are printed afterwards.

Examples:
  throwdemo run
  throwdemo run --scenario outer,popped
  throwdemo run --config throwctx.toml --metrics`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVarP(&runScenarios, "scenario", "s", nil,
		"scenarios to run ("+strings.Join(scenarioNames(), ", ")+")")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false,
		"print capture metrics after the run")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("loading config", err)
		return err
	}
	if runMetrics {
		cfg.Metrics.Enabled = true
	}
	var debug io.Writer
	if verbose {
		debug = cmd.ErrOrStderr()
	}
	return runScenariosTo(cmd.Context(), cmd.OutOrStdout(), debug, cfg, runScenarios)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// runScenariosTo runs names (all when empty) on a private hub configured from
// cfg and writes JSON log lines to out. debug, when set, receives internal
// capture diagnostics.
func runScenariosTo(ctx context.Context, out, debug io.Writer, cfg *config.Config, names []string) error {
	if len(names) == 0 {
		names = scenarioNames()
	}
	for _, n := range names {
		if _, ok := scenarios[n]; !ok {
			return fmt.Errorf("unknown scenario %q (have %s)", n, strings.Join(scenarioNames(), ", "))
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := cfg.Options()
	if debug != nil {
		opts = append(opts, throwctx.WithLogger(slog.New(slog.NewTextHandler(debug, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	var (
		metrics *throwprom.Metrics
		reg     *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		metrics = throwprom.NewMetrics(cfg.Metrics.Namespace)
		reg = prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return err
		}
		opts = append(opts, throwctx.WithObserver(metrics.Observer()))
	}
	hub := throwctx.NewHub(opts...)

	base := slog.NewJSONHandler(out, &slog.HandlerOptions{ReplaceAttr: dropTime})
	logger := slog.New(throwslog.NewHandler(base, &throwslog.Options{Hub: hub}))

	for _, n := range names {
		scenarios[n](ctx, hub, logger.With("scenario", n))
	}

	if reg != nil {
		return printMetrics(out, reg)
	}
	return nil
}

// dropTime keeps the output stable across runs.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

func printMetrics(out io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			value := m.GetCounter().GetValue() + m.GetGauge().GetValue()
			fmt.Fprintf(out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}
	return nil
}
