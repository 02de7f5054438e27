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

// printAuthors outputs per-author totals, dispatching on the output format.
func printAuthors(result *schema.AnalyticsResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAuthorsCSV(w, result.Authors)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(result, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAuthorsTable(w, result, cfg)
		}, "Wrote table")
	}
}

// writeAuthorsTable generates the human-readable contributor ranking.
func writeAuthorsTable(w io.Writer, result *schema.AnalyticsResult, cfg *contract.Config) error {
	authors := result.Authors
	if len(authors) == 0 {
		_, err := fmt.Fprintf(w, "No commits found for %s\n", result.RepoID)
		return err
	}
	if cfg.Limit > 0 && len(authors) > cfg.Limit {
		authors = authors[:cfg.Limit]
	}

	// Names come from commit metadata and can be arbitrarily long.
	maxNameWidth := terminalWidth(cfg) / 3

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Author", "Commits", "Insertions", "Deletions", "First seen", "Last seen"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, a := range authors {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(a.DisplayName, maxNameWidth),
			strconv.Itoa(a.Commits),
			strconv.Itoa(a.Insertions),
			strconv.Itoa(a.Deletions),
			a.FirstSeen.Format(dayLabelFormat),
			a.LastSeen.Format(dayLabelFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing top %d of %d contributors\n", len(authors), len(result.Authors))
	return err
}

// writeAuthorsCSV writes contributor totals in CSV format.
func writeAuthorsCSV(w io.Writer, authors []schema.AuthorTotals) error {
	header := []string{
		"rank",
		"author_id",
		"display_name",
		"commits",
		"insertions",
		"deletions",
		"first_seen",
		"last_seen",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, a := range authors {
			rec := []string{
				strconv.Itoa(i + 1),
				a.AuthorID,
				a.DisplayName,
				strconv.Itoa(a.Commits),
				strconv.Itoa(a.Insertions),
				strconv.Itoa(a.Deletions),
				a.FirstSeen.Format(contract.DateTimeFormat),
				a.LastSeen.Format(contract.DateTimeFormat),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
