// Package cli provides the command-line interface for nmapcycle.
// It implements the Cobra-based command tree: the interactive and plain
// scan cycle controllers, mode listing, tool checks and config management.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anstrom/nmapcycle/internal/config"
	"github.com/anstrom/nmapcycle/internal/errors"
	"github.com/anstrom/nmapcycle/internal/logging"
)

const envPrefix = "NMAPCYCLE"

var (
	cfgFile string
	verbose bool
)

// Build information - these will be set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nmapcycle",
	Short: "Cycle nmap scan modes against a target",
	Long: `nmapcycle repeatedly runs nmap against one target, cycling through a
selected set of scan modes with a fixed pause between invocations, until it
is told to stop. Each invocation writes its normal-format output to a
timestamped file; progress is shown as a live log.`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./nmapcycle.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind verbose flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("nmapcycle")
	}

	// NMAPCYCLE_SCAN_TARGET overrides scan.target, and so on.
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setConfigDefaults(config.Default())

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config file %s: %v\n", cfgFile, err)
	}

	initLogging("stderr")
}

// setConfigDefaults registers every key so env variables and flags bind to it.
func setConfigDefaults(d *config.Config) {
	viper.SetDefault("scan.tool", d.Scan.Tool)
	viper.SetDefault("scan.output_dir", d.Scan.OutputDir)
	viper.SetDefault("scan.target", d.Scan.Target)
	viper.SetDefault("scan.interval", d.Scan.Interval)
	viper.SetDefault("scan.modes", d.Scan.Modes)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)
	viper.SetDefault("logging.output", d.Logging.Output)

	viper.SetDefault("metrics.enabled", d.Metrics.Enabled)
	viper.SetDefault("metrics.textfile", d.Metrics.Textfile)
	viper.SetDefault("metrics.flush_interval", d.Metrics.FlushInterval)
}

// loadConfig returns the effective configuration: defaults, then the config
// file, then NMAPCYCLE_* variables, then flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getVersion returns the version string.
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)
}

// SetVersion sets the version information (called from main).
func SetVersion(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
	rootCmd.Version = getVersion()
}

// initLogging installs the default logger, writing to defaultOutput unless
// the configuration names an output.
func initLogging(defaultOutput string) *logging.Logger {
	cfg, err := loadConfig()
	if err != nil {
		logger := logging.NewDefault()
		logging.SetDefault(logger)
		return logger
	}

	logConfig := cfg.LoggingFor(defaultOutput)
	if verbose {
		logConfig.Level = logging.LevelDebug
	}

	logger, err := logging.New(logConfig)
	if err != nil {
		logger = logging.NewDefault()
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	logging.SetDefault(logger)

	if verbose {
		logging.Debug("Structured logging initialized", "level", logConfig.Level, "format", logConfig.Format, "output", logConfig.Output)
	}
	return logger
}
