package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tebeka/atexit"

	"github.com/queue-sim/queue-sim/sim"
	"github.com/queue-sim/queue-sim/sim/runner"
	"github.com/queue-sim/queue-sim/sim/store"
	"github.com/queue-sim/queue-sim/sim/trace"
)

var (
	// CLI flags for the queueing model
	arrivalRate   float64 // λ, arrivals per unit time
	serviceRate   float64 // μ, completions per unit time per server
	servers       int     // number of parallel servers
	model         string  // service distribution: exponential|uniform|normal or MMC|MGC|MNC
	stopRule      string  // cdf or uniform-sum
	stopThreshold float64 // 0 selects the rule's default
	seed          int64   // master seed
	maxCustomers  int     // cap on customers per run (0 = until the stop rule fires)

	// CLI flags for the run driver
	logLevel     string // Log verbosity level
	scenarioPath string // optional YAML scenario file
	dbPath       string // SQLite export path ("" = disabled, "auto" = generated name)
	traceLevel   string // assignment trace verbosity
	showTable    bool   // print the per-customer table

	// CLI flags for replications
	replications int
	parallelism  int
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "qsim",
	Short: "Discrete-event simulator for M/M/c, M/G/c and M/N/c queues",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		logrus.SetOutput(cmd.ErrOrStderr())

		if scenarioPath != "" {
			sc, err := LoadScenario(scenarioPath)
			if err != nil {
				return err
			}
			applyScenario(cmd.Flags(), sc)
			logrus.Infof("Loaded scenario %s", scenarioPath)
		}
		return nil
	},
}

// simConfig assembles the engine configuration from the current flag values.
func simConfig() sim.SimulationConfig {
	return sim.SimulationConfig{
		ArrivalRate:         arrivalRate,
		ServiceRate:         serviceRate,
		Servers:             servers,
		ServiceDistribution: model,
		StopRule:            sim.StopRule(stopRule),
		StopThreshold:       stopThreshold,
	}
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation until the stop rule fires",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !trace.IsValidTraceLevel(traceLevel) {
			return fmt.Errorf("unknown trace level %q", traceLevel)
		}

		cfg := simConfig()
		engine := sim.NewEngine(sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemEngine))
		if err := engine.Configure(cfg); err != nil {
			return err
		}
		cfg = engine.Config()

		logrus.Infof("Starting simulation: λ=%v μ=%v servers=%d model=%s stop=%s@%v seed=%d",
			cfg.ArrivalRate, cfg.ServiceRate, cfg.Servers, cfg.ServiceDistribution, cfg.StopRule, cfg.StopThreshold, seed)

		opts := runner.Options{MaxCustomers: maxCustomers}
		var recorder *store.SQLiteRecorder
		if dbPath != "" {
			path := dbPath
			if path == "auto" {
				path = ""
			}
			var err error
			recorder, err = store.NewSQLiteRecorder(path)
			if err != nil {
				return err
			}
			atexit.Register(func() {
				if err := recorder.Close(); err != nil {
					logrus.Errorf("closing %s: %v", recorder.Path(), err)
				}
			})
			if err := recorder.BeginRun(cfg, seed); err != nil {
				return err
			}
			opts.Recorder = recorder
			logrus.Infof("Recording run %s to %s", recorder.RunID(), recorder.Path())
		}

		st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		if st.Config.Enabled() {
			opts.Trace = st
		}

		startTime := time.Now()
		res, err := runner.Run(cmd.Context(), engine, opts)
		if err != nil {
			return err
		}
		logrus.Infof("Simulated %d customers in %s", res.Steps, time.Since(startTime))

		out := cmd.OutOrStdout()
		if showTable {
			PrintCustomers(out, res.Customers)
		}
		fmt.Fprintf(out, "Simulation stopped at CP %.6f (final arrival ≈ %.6f)\n", res.CumulativeProbability, engine.Clock())
		res.Summary.Print(out)
		if opts.Trace != nil {
			PrintTraceSummary(out, trace.Summarize(st))
		}

		if recorder != nil {
			if err := recorder.Finish(res.Summary); err != nil {
				return err
			}
		}
		logrus.Info("Simulation complete.")
		return nil
	},
}

// replicateCmd runs independent replications of the same model
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replications concurrently and average their summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		results, agg, err := runner.Replicate(cmd.Context(), runner.ReplicationConfig{
			Sim:          simConfig(),
			Replications: replications,
			Seed:         seed,
			Parallelism:  parallelism,
			MaxCustomers: maxCustomers,
		})
		if err != nil {
			return err
		}
		PrintReplications(cmd.OutOrStdout(), results, agg)
		return nil
	},
}

// Execute runs the CLI root command and exits through atexit so that
// registered recorders are flushed.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

// registerModelFlags binds the queueing model flags shared by run and replicate.
func registerModelFlags(fs *pflag.FlagSet) {
	fs.Float64Var(&arrivalRate, "lambda", 1.0, "Arrival rate λ (customers per unit time)")
	fs.Float64Var(&serviceRate, "mu", 1.5, "Service rate μ per server (customers per unit time)")
	fs.IntVar(&servers, "servers", 1, "Number of parallel servers")
	fs.StringVar(&model, "model", "exponential", "Service distribution: exponential|uniform|normal (or MMC|MGC|MNC)")
	fs.StringVar(&stopRule, "stop-rule", string(sim.StopRuleCDF), "Stop rule: cdf or uniform-sum")
	fs.Float64Var(&stopThreshold, "threshold", 0, "Stop threshold (0 = rule default: 0.999999 for cdf, 1 for uniform-sum)")
	fs.Int64Var(&seed, "seed", 42, "Seed for the random source")
	fs.IntVar(&maxCustomers, "max-customers", 0, "Stop after this many customers (0 = no cap)")
	fs.StringVar(&scenarioPath, "config", "", "YAML scenario file; explicitly set flags take precedence")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerModelFlags(runCmd.Flags())
	runCmd.Flags().StringVar(&dbPath, "db", "", "Export customers to this SQLite file (\"auto\" picks a unique name)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelNone), "Trace level (none, assignments)")
	runCmd.Flags().BoolVar(&showTable, "table", true, "Print the per-customer table")

	registerModelFlags(replicateCmd.Flags())
	replicateCmd.Flags().IntVar(&replications, "replications", 10, "Number of independent replications")
	replicateCmd.Flags().IntVar(&parallelism, "parallelism", 0, "Max concurrent replications (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.SilenceUsage = true
	rootCmd.SetErr(os.Stderr)
}
