package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/anstrom/nmapcycle/internal/config"
	"github.com/anstrom/nmapcycle/internal/cycle"
	"github.com/anstrom/nmapcycle/internal/logging"
	"github.com/anstrom/nmapcycle/internal/metrics"
	"github.com/anstrom/nmapcycle/internal/output"
	"github.com/anstrom/nmapcycle/internal/scanning"
	"github.com/anstrom/nmapcycle/internal/tui"
)

const shutdownTimeout = 10 * time.Second

var runPlain bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the scan cycle controller",
	Long: `Open the scan cycle controller. By default an interactive form is shown
with the target, the interval in seconds, a checklist of scan modes and
Start/Stop buttons above a live log.

With --plain the controller reads commands from standard input instead:
start, stop, status, set, modes, help and quit.`,
	Example: `  nmapcycle run
  nmapcycle run --target 192.168.1.10 --interval 600 --modes -sS,-A
  nmapcycle run --plain --modes -sT`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("target", "", "Target host to scan")
	runCmd.Flags().Int("interval", 0, "Seconds between invocations")
	runCmd.Flags().StringSlice("modes", nil, "Comma-separated scan modes to preselect (e.g. -sS,-A)")
	runCmd.Flags().String("tool", "", "Scanner executable")
	runCmd.Flags().String("output-dir", "", "Directory for scan output files")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Use the line-oriented console instead of the interactive form")

	bindFlags(runCmd.Flags(), map[string]string{
		"scan.target":     "target",
		"scan.interval":   "interval",
		"scan.modes":      "modes",
		"scan.tool":       "tool",
		"scan.output_dir": "output-dir",
	})
}

// bindFlags binds each config key to the named flag of fs.
func bindFlags(fs *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			logging.Error("Failed to bind flag", "flag", name, "key", key, "error", err)
		}
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal shows the status lines; logs go to a file unless configured.
	logger := initLogging(config.DefaultRunLogFile)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runController(ctx, cfg, logger, cmd.InOrStdin(), cmd.OutOrStdout(), runPlain)
	logging.Info("Exiting", "interrupted", ctx.Err() != nil)
	return err
}

// runController wires the scheduler to a control surface and runs until the
// surface quits or ctx is cancelled. The running cycle is interrupted on exit.
func runController(ctx context.Context, cfg *config.Config, logger *logging.Logger, in io.Reader, out io.Writer, plain bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pm := metrics.NewPrometheusMetrics()
	queue := output.NewQueue()
	sink := output.Tee(queue, output.NewLogSink(logger))

	invoker := scanning.NewExecInvoker(cfg.Scan.Tool, cfg.Scan.OutputDir, logger)
	sched := cycle.New(ctx, invoker, cfg.Scan.OutputDir,
		cycle.WithMetrics(pm),
		cycle.WithLogger(logger))

	if _, err := scanning.Preflight(ctx, cfg.Scan.Tool); err != nil {
		logger.Warn("Scanner preflight failed", "tool", cfg.Scan.Tool, "error", err)
		queue.AddLine(fmt.Sprintf("Warning: %s not found, every scan will fail until it is installed", cfg.Scan.Tool))
	}

	logger.Info("Controller started",
		"plain", plain,
		"tool", cfg.Scan.Tool,
		"output_dir", cfg.Scan.OutputDir,
		"metrics", cfg.Metrics.Enabled)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return pm.StartTextfileUpdates(gctx, cfg.Metrics.Textfile, cfg.Metrics.FlushInterval)
		})
	}

	if plain {
		con := newConsole(sched, sink, pm, cfg.Scan)
		g.Go(func() error {
			return printLines(gctx, queue, out)
		})
		g.Go(func() error {
			defer cancel()
			return con.run(gctx, in)
		})
	} else {
		g.Go(func() error {
			defer cancel()
			return tui.Run(gctx, sched, queue, tui.Options{
				Target:   cfg.Scan.Target,
				Interval: cfg.Scan.Interval,
				Modes:    scanning.KnownModes,
				Selected: cfg.Scan.Modes,
				Sink:     sink,
			})
		})
	}

	err := g.Wait()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer waitCancel()
	if werr := sched.Wait(waitCtx); werr != nil {
		logger.WithError(werr).Warn("Scan worker did not exit in time")
	}

	if plain {
		for _, line := range queue.Drain() {
			fmt.Fprintln(out, line)
		}
	}
	queue.Close()

	if cfg.Metrics.Enabled {
		if merr := pm.WriteTextfile(cfg.Metrics.Textfile); merr != nil {
			logger.WithError(merr).Warn("Failed to write metrics textfile", "path", cfg.Metrics.Textfile)
		}
	}

	logger.Info("Controller stopped")
	return err
}

// printLines copies status lines from the queue to out until ctx is done.
func printLines(ctx context.Context, queue *output.Queue, out io.Writer) error {
	for {
		lines, err := queue.Next(ctx)
		if err != nil {
			return nil
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	}
}
