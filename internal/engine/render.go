package engine

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for number formatting.
// English locale keeps thousand separators consistent across machines.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// tabwriterPadding is the minimum padding between summary table columns.
const tabwriterPadding = 2

// formatFloat renders a float with fixed precision and thousand separators,
// e.g. formatFloat(12345.678, 2) -> "12,345.68".
func formatFloat(v float64, precision int) string {
	formatted := strconv.FormatFloat(v, 'f', precision, 64)
	intPart, frac, _ := strings.Cut(formatted, ".")

	negative := strings.HasPrefix(intPart, "-")
	n, err := strconv.ParseInt(strings.TrimPrefix(intPart, "-"), 10, 64)
	if err != nil {
		return formatted
	}

	grouped := printer.Sprintf("%d", n)
	if negative {
		grouped = "-" + grouped
	}
	if frac == "" {
		return grouped
	}
	return grouped + "." + frac
}

// RenderSummary writes a human-readable run summary: metadata, totals, the
// category breakdown, and a skip count. The JSON report remains the
// canonical output; this rendering is for terminal use.
func RenderSummary(w io.Writer, report *Report) error {
	meta := report.Metadata
	summary := report.Summary

	header := fmt.Sprintf("Embodied Carbon Report: %s\n", meta.SourceFile)
	if meta.SourceFile == "" {
		header = "Embodied Carbon Report\n"
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	database := meta.DatabaseSource
	if meta.DatabaseVersion != "" {
		database = strings.TrimSpace(database + " v" + meta.DatabaseVersion)
	}
	if database != "" {
		if _, err := fmt.Fprintf(w, "Database: %s\n", database); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Run: %s (%s)\n\n", meta.RunID, meta.CalculationDate); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w,
		"SUMMARY\n"+
			"  Elements:     %d (calculated %d, skipped %d)\n"+
			"  Completeness: %.1f%%\n"+
			"  Total mass:   %s kg\n"+
			"  Total CO2:    %s kg CO2e\n\n",
		summary.TotalElements, summary.Calculated, summary.Skipped,
		summary.CompletenessPct,
		formatFloat(summary.TotalMassKg, 2),
		formatFloat(summary.TotalCO2Kg, 2),
	); err != nil {
		return err
	}

	if len(report.ByCategory) > 0 {
		if _, err := io.WriteString(w, "BY CATEGORY\n"); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
		fmt.Fprintln(tw, "  CATEGORY\tCOUNT\tCO2 (KG)\tMASS (KG)\tSHARE")
		for _, cat := range report.ByCategory {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%.1f%%\n",
				cat.Category, cat.Count,
				formatFloat(cat.CO2Kg, 2),
				formatFloat(cat.MassKg, 2),
				cat.Percentage)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if summary.Skipped > 0 {
		if _, err := fmt.Fprintf(w, "\n%d element(s) skipped; see skipped_elements in the JSON report.\n",
			summary.Skipped); err != nil {
			return err
		}
	}

	return nil
}
