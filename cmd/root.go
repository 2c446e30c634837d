package cmd

import (
	"bytes"
	"context"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags for the run command
	configPath   string   // YAML run configuration
	logLevel     string   // Log verbosity level
	seed         int64    // Seed for spawn positions and synthetic jitter
	synthetic    bool     // Model frame time instead of measuring it
	tty          bool     // Draw the world to the terminal
	chartPath    string   // HTML chart output
	historyPath  string   // SQLite run history
	reportPath   string   // Report file output
	maxFrames    int      // Frame cap (0 = unbounded)
	initialStep  int      // Entities added per growth step
	windowSize   int      // Frame deltas per fps evaluation
	profileNames []string // Profiles to run, in order
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "capbench",
	Short: "Adaptive entity-capacity benchmark",
}

// runCmd executes the benchmark using the layered configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the capacity benchmark",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg, err := loadRunConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}
		applyRunFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var screen tcell.Screen
		var logs bytes.Buffer
		if tty {
			screen, err = openScreen(ctx, stop)
			if err != nil {
				logrus.Fatalf("Failed to open terminal: %v", err)
			}
			// Logs would tear the drawn frame; replay them after the screen closes.
			logrus.SetOutput(&logs)
		}

		_, _, err = runBenchmark(ctx, cfg, screen, os.Stdout)
		if screen != nil {
			screen.Fini()
			logrus.SetOutput(os.Stderr)
			_, _ = logs.WriteTo(os.Stderr)
		}
		if err != nil {
			logrus.Fatalf("Benchmark did not finish: %v", err)
		}
		logrus.Info("Benchmark complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// applyRunFlags overrides cfg with every flag the user set explicitly, so
// flag defaults never clobber file or environment values.
func applyRunFlags(cmd *cobra.Command, cfg *RunConfig) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("synthetic") {
		cfg.Host.Synthetic = synthetic
	}
	if flags.Changed("chart") {
		cfg.Chart = chartPath
	}
	if flags.Changed("history") {
		cfg.History = historyPath
	}
	if flags.Changed("report") {
		cfg.Benchmark.ReportPath = reportPath
	}
	if flags.Changed("max-frames") {
		cfg.Host.MaxFrames = maxFrames
	}
	if flags.Changed("initial-step") {
		cfg.Benchmark.InitialStep = initialStep
	}
	if flags.Changed("window") {
		cfg.Benchmark.WindowSize = windowSize
	}
	if flags.Changed("profiles") {
		cfg.Benchmark.Profiles = append([]string(nil), profileNames...)
	}
}

// openScreen initialises the terminal and cancels the run on Ctrl-C, Esc or q,
// which tcell captures before they reach the signal handler.
func openScreen(ctx context.Context, cancel context.CancelFunc) (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil || ctx.Err() != nil {
				return
			}
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			if key.Key() == tcell.KeyCtrlC || key.Key() == tcell.KeyEscape || key.Rune() == 'q' {
				cancel()
				return
			}
		}
	}()
	return screen, nil
}

// init sets up CLI flags and subcommands
func init() {
	defaults := defaultRunConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for spawn positions and synthetic frame jitter")
	runCmd.Flags().BoolVar(&synthetic, "synthetic", false, "Model frame time from the population instead of measuring it")
	runCmd.Flags().BoolVar(&tty, "tty", false, "Draw the world to the terminal while running")
	runCmd.Flags().StringVar(&chartPath, "chart", "", "Write an HTML chart of all evaluations to this file")
	runCmd.Flags().StringVar(&historyPath, "history", "", "Append the finished run to this SQLite database")
	runCmd.Flags().StringVar(&reportPath, "report", defaults.Benchmark.ReportPath, "Report file (empty disables)")
	runCmd.Flags().IntVar(&maxFrames, "max-frames", 0, "Abort after this many frames (0 = unbounded)")
	runCmd.Flags().IntVar(&initialStep, "initial-step", defaults.Benchmark.InitialStep, "Entities added per growth step")
	runCmd.Flags().IntVar(&windowSize, "window", defaults.Benchmark.WindowSize, "Frame deltas per fps evaluation")
	runCmd.Flags().StringSliceVar(&profileNames, "profiles", defaults.Benchmark.Profiles, "Comma-separated profiles, in run order")

	historyCmd.Flags().StringVar(&historyDB, "db", "capbench.db", "SQLite history database")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to list (0 = all)")
	historyCmd.Flags().Int64Var(&historyRunID, "run", 0, "Show one run with its evaluation summary")
	historyCmd.Flags().StringVar(&importPath, "import", "", "Import a report file as a new run")
	historyCmd.Flags().StringVar(&historyLogLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}
