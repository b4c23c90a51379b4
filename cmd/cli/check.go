package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anstrom/nmapcycle/internal/config"
	"github.com/anstrom/nmapcycle/internal/scanning"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configuration and that the scanner can be found",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := checkConfigFile(out, viper.ConfigFileUsed()); err != nil {
		return err
	}
	fmt.Fprintln(out, "Configuration: ok")

	path, err := scanning.Preflight(cmd.Context(), cfg.Scan.Tool)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Scanner: %s\n", path)

	if info, err := os.Stat(cfg.Scan.OutputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", cfg.Scan.OutputDir)
	}
	fmt.Fprintf(out, "Output directory: %s\n", cfg.Scan.OutputDir)
	return nil
}

// checkConfigFile validates the file on its own, without environment or flag
// overrides, so a bad value in the file is reported even when overridden.
func checkConfigFile(out io.Writer, path string) error {
	if path == "" {
		fmt.Fprintln(out, "Config file: none (defaults)")
		return nil
	}
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	fmt.Fprintf(out, "Config file: %s\n", path)
	return nil
}
