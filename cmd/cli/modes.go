package cli

import (
	"github.com/spf13/cobra"
)

// modesCmd represents the modes command
var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the scan modes offered by the controller",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		writeModesTable(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
