package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/oloynet/tinals-player/internal/pipeline"
)

func printSummary(w io.Writer, summary pipeline.Summary) {
	if summary.NoData {
		fmt.Fprintln(w, "No local data found or empty.")
		return
	}
	if len(summary.Reports) > 0 {
		rows := make([][]string, 0, len(summary.Reports))
		for _, r := range summary.Reports {
			rows = append(rows, []string{
				r.Workflow,
				strconv.Itoa(r.Materialized),
				strconv.Itoa(r.Skipped),
				strconv.Itoa(r.Cleared),
				strconv.Itoa(r.Verified),
				strconv.Itoa(r.Failed),
			})
		}
		fmt.Fprintln(w, renderTable(tableSpec{
			Headers: []string{"Operation", "Materialized", "Skipped", "Cleared", "Verified", "Failed"},
			Rows:    rows,
			Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
		}))
	}
	source := "size profiles from " + summary.Profiles.Path
	if summary.Profiles.Fallback {
		source = "built-in size profiles"
	}
	fmt.Fprintf(w, "Run %s: %d items, %s, %s\n", shortID(summary.RunID), summary.Items, source, summary.Duration.Round(time.Millisecond))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
