package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"
)

// printReport outputs an extraction report, dispatching on the output format.
func printReport(report *schema.ExtractionReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report)
		}, "Wrote report")
	}
}

// writeReportText writes the human-readable summary counters.
func writeReportText(w io.Writer, report *schema.ExtractionReport) error {
	status := contract.OkColor.Sprint("completed")
	if report.Cancelled {
		status = contract.WarnColor.Sprint("cancelled")
	}
	if _, err := fmt.Fprintf(w, "Extraction of %s %s in %v\n", report.RepoID, status, report.Elapsed.Round(contract.DurationPrecision)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  Commits read:      %d\n", report.CommitsRead); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  Commits persisted: %d\n", report.CommitsPersisted); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  Commits skipped:   %d\n", report.CommitsSkipped); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  New identities:    %d\n", report.NewIdentities); err != nil {
		return err
	}
	if report.Truncated {
		if _, err := fmt.Fprintf(w, "  %s\n", contract.WarnColor.Sprint("History is shallow; older commits were not reachable")); err != nil {
			return err
		}
	}
	for _, warning := range report.Warnings {
		if _, err := fmt.Fprintf(w, "  %s %s\n", contract.WarnColor.Sprint("warning:"), warning); err != nil {
			return err
		}
	}
	return nil
}

// writeReportCSV writes the report counters as a single CSV record.
func writeReportCSV(w io.Writer, report *schema.ExtractionReport) error {
	header := []string{
		"repo_id",
		"commits_read",
		"commits_persisted",
		"commits_skipped",
		"new_identities",
		"truncated",
		"cancelled",
		"elapsed_seconds",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		rec := []string{
			report.RepoID,
			strconv.Itoa(report.CommitsRead),
			strconv.Itoa(report.CommitsPersisted),
			strconv.Itoa(report.CommitsSkipped),
			strconv.Itoa(report.NewIdentities),
			strconv.FormatBool(report.Truncated),
			strconv.FormatBool(report.Cancelled),
			strconv.FormatFloat(report.Elapsed.Seconds(), 'f', 3, 64),
		}
		return cw.Write(rec)
	})
}
