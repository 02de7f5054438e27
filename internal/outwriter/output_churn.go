package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Dhyanesh27/evotrack/internal/contract"
	"github.com/Dhyanesh27/evotrack/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// printChurn outputs the churn trend, dispatching on the output format.
func printChurn(result *schema.AnalyticsResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChurnCSV(w, result.Churn)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(result, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChurnTable(w, result)
		}, "Wrote table")
	}
}

// writeChurnTable generates the human-readable churn trend with the
// rolling sum alongside each bucket.
func writeChurnTable(w io.Writer, result *schema.AnalyticsResult) error {
	trend := result.Churn
	if trend == nil || len(trend.Points) == 0 {
		_, err := fmt.Fprintf(w, "No commits found for %s\n", result.RepoID)
		return err
	}

	maxRolling := 0
	for _, p := range trend.Points {
		if p.Rolling > maxRolling {
			maxRolling = p.Rolling
		}
	}

	series := &schema.ActivitySeries{Period: trend.Period}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Bucket", "Churn", "Rolling", ""})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, p := range trend.Points {
		data = append(data, []string{
			bucketLabel(series, schema.ActivityBucket{Start: p.Start}),
			strconv.Itoa(p.Churn),
			strconv.Itoa(p.Rolling),
			sparkline(p.Rolling, maxRolling),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Rolling sum over a trailing window of %d %s buckets\n", trend.Window, trend.Period)
	return err
}

// writeChurnCSV writes the churn trend in CSV format.
func writeChurnCSV(w io.Writer, trend *schema.ChurnTrend) error {
	header := []string{"bucket_start", "churn", "rolling"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		if trend == nil {
			return nil
		}
		for _, p := range trend.Points {
			rec := []string{
				p.Start.Format(contract.DateTimeFormat),
				strconv.Itoa(p.Churn),
				strconv.Itoa(p.Rolling),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
