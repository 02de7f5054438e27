// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/internal/parquet"
	"github.com/Dhyanesh27/evotrack/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints an extraction report using the configured format.
func (ow *OutWriter) WriteReport(report *schema.ExtractionReport, cfg *contract.Config) error {
	return printReport(report, cfg)
}

// WriteActivity prints an activity time series using the configured format.
func (ow *OutWriter) WriteActivity(result *schema.AnalyticsResult, cfg *contract.Config) error {
	return printActivity(result, cfg)
}

// WriteAuthors prints per-author totals using the configured format.
func (ow *OutWriter) WriteAuthors(result *schema.AnalyticsResult, cfg *contract.Config) error {
	return printAuthors(result, cfg)
}

// WriteChurn prints the churn trend using the configured format.
func (ow *OutWriter) WriteChurn(result *schema.AnalyticsResult, cfg *contract.Config) error {
	return printChurn(result, cfg)
}

// WriteStoreStatus prints store status using the configured format.
func (ow *OutWriter) WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	fmt.Printf("Backend:       %s\n", status.Backend)
	fmt.Printf("Repositories:  %d\n", status.Repositories)
	fmt.Printf("Commits:       %d\n", status.Commits)
	fmt.Printf("Identities:    %d\n", status.Identities)
	fmt.Printf("Cache entries: %d\n", status.CacheEntries)
	if !status.LastUpdated.IsZero() {
		fmt.Printf("Last updated:  %s\n", status.LastUpdated.Format(contract.DateTimeFormat))
	}
	return nil
}

// writeWithFile handles the common pattern of opening a file, writing to
// it, and cleaning up.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder with consistent indentation.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader creates a CSV writer, writes a header, then rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return writeRows(csvWriter)
}

// terminalWidth returns the configured or detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// writeParquet dispatches parquet export for an analytics result.
func writeParquet(result *schema.AnalyticsResult, cfg *contract.Config) error {
	return parquet.WriteAnalytics(result, cfg.OutputFile)
}
