package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/greenbim/carbonledger/internal/engine"
	"github.com/greenbim/carbonledger/internal/ingest"
	"github.com/greenbim/carbonledger/internal/logging"
	"github.com/greenbim/carbonledger/internal/materials"
)

// Output format names for the calculate command.
const (
	outputJSON    = "json"
	outputSummary = "summary"
)

// calculateParams holds the parameters for the calculate command execution.
type calculateParams struct {
	elementsPath string
	databasePath string
	sourceLabel  string
	output       string
	outPath      string
	concurrency  int
}

// newCalculateCmd creates the "calculate" subcommand.
//
// Registered flags:
//   - --elements: path to the classified-element feed JSON (required)
//   - --database: path to the material database (JSON or YAML); falls back
//     to database.path from the config file
//   - --source-label: source model label for report metadata (defaults to
//     the feed's own source_file, then the feed filename)
//   - --output: json (the full report) or summary (human-readable)
//   - --out: write the output to a file instead of stdout
//   - --concurrency: parallel element-calculation workers (0 = config
//     default, 1 = sequential)
func newCalculateCmd() *cobra.Command {
	var params calculateParams

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate embodied CO2 for a classified-element feed",
		Long: `Calculate mass and embodied CO2 for every classified building element,
aggregate per material category, and emit the full report.

Every element ends up either in detailed_results or in skipped_elements with
an explicit reason; per-element data problems never fail the run. The command
fails only on structural problems: an unreadable or malformed database or
feed, or a database version outside the configured constraint.`,
		Example: calculateExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeCalculate(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.elementsPath, "elements", "",
		"Path to classified-element feed JSON (required)")
	cmd.Flags().StringVar(&params.databasePath, "database", "",
		"Path to material database (JSON or YAML)")
	cmd.Flags().StringVar(&params.sourceLabel, "source-label", "",
		"Source model label for report metadata")
	cmd.Flags().StringVar(&params.output, "output", outputJSON,
		"Output format: json or summary")
	cmd.Flags().StringVar(&params.outPath, "out", "",
		"Write output to this file instead of stdout")
	cmd.Flags().IntVar(&params.concurrency, "concurrency", 0,
		"Parallel calculation workers (0 = config default)")
	_ = cmd.MarkFlagRequired("elements")

	return cmd
}

const calculateExample = `  # Full JSON report to stdout
  carbonledger calculate --elements elements.json --database materials.yaml

  # Terminal summary
  carbonledger calculate --elements elements.json --database materials.yaml --output summary

  # Report to file with eight calculation workers
  carbonledger calculate --elements elements.json --database materials.json \
    --out report.json --concurrency 8`

// executeCalculate runs the calculation for the "calculate" command: it
// loads and version-checks the database, loads and validates the element
// feed, runs the engine, and renders the chosen output format.
func executeCalculate(cmd *cobra.Command, params calculateParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := configFromCmd(cmd)

	if params.output != outputJSON && params.output != outputSummary {
		return fmt.Errorf("unknown output format %q (expected %s or %s)",
			params.output, outputJSON, outputSummary)
	}

	databasePath := params.databasePath
	if databasePath == "" {
		databasePath = cfg.Database.Path
	}
	if databasePath == "" {
		return errors.New("no material database: pass --database or set database.path in config")
	}

	db, err := materials.LoadDatabase(ctx, databasePath)
	if err != nil {
		return err
	}
	if err := db.CheckVersion(cfg.Database.MinVersion); err != nil {
		return err
	}

	batch, err := ingest.LoadElements(ctx, params.elementsPath)
	if err != nil {
		return err
	}

	sourceLabel := params.sourceLabel
	if sourceLabel == "" {
		sourceLabel = batch.SourceFile
	}
	if sourceLabel == "" {
		sourceLabel = filepath.Base(params.elementsPath)
	}

	concurrency := params.concurrency
	if concurrency == 0 {
		concurrency = cfg.Engine.Concurrency
	}

	eng, err := engine.New(db, engine.WithConcurrency(concurrency))
	if err != nil {
		return err
	}

	report, err := eng.Run(ctx, engine.RunInput{
		SourceFile: sourceLabel,
		Elements:   batch.Elements,
	})
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if params.outPath != "" {
		file, createErr := os.Create(params.outPath)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				log.Warn().
					Ctx(ctx).
					Err(closeErr).
					Str("out_path", params.outPath).
					Msg("failed to close output file")
			}
		}()
		out = file
	}

	if params.output == outputSummary {
		return engine.RenderSummary(out, report)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
