// Package cli wires the carbonledger commands: calculation runs over a
// classified-element feed, and material database utilities.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/greenbim/carbonledger/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root cobra command for the carbonledger CLI.
// It wires up logging in PersistentPreRun and registers the calculate and
// database subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:     "carbonledger",
		Short:   "Embodied-carbon calculation engine",
		Long:    "carbonledger: compute embodied CO2 for classified building elements against a materials reference database",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			result := setupLogging(cmd)
			logResult = result
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default ~/.carbonledger/config.yaml)")
	cmd.AddCommand(newCalculateCmd(), newDatabaseCmd())

	return cmd
}

const rootCmdExample = `  # Calculate a report from classified elements
  carbonledger calculate --elements elements.json --database materials.yaml

  # Human-readable summary instead of the JSON report
  carbonledger calculate --elements elements.json --database materials.yaml --output summary

  # Write the report to a file, labelled with the source model
  carbonledger calculate --elements elements.json --database materials.yaml \
    --source-label office-tower.ifc --out report.json

  # Validate a material database
  carbonledger database validate --database materials.yaml`
