package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(ledger *history.Ledger) error {
				runs, err := ledger.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(runsTable(runs)))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print machine readable JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		failedOnly bool
	)
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the decisions of one run (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLedger(func(ledger *history.Ledger) error {
				run, err := ledger.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				events, err := ledger.RunEvents(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if failedOnly {
					kept := events[:0]
					for _, ev := range events {
						if ev.Outcome == "failed" {
							kept = append(kept, ev)
						}
					}
					events = kept
				}
				if jsonOutput {
					return writeJSON(cmd, struct {
						Run    history.Run           `json:"run"`
						Events []history.EventRecord `json:"events"`
					}{run, events})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(runsTable([]history.Run{run})))
				if run.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", run.Error)
				}
				rows := make([][]string, 0, len(events))
				for _, ev := range events {
					rows = append(rows, []string{
						ev.CreatedAt.Local().Format("15:04:05"),
						ev.Workflow,
						ev.ItemID,
						ev.Field,
						string(ev.Outcome),
						ev.Path,
						ev.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					Title:   fmt.Sprintf("%d events", len(events)),
					Headers: []string{"Time", "Workflow", "Item", "Field", "Outcome", "Path", "Detail"},
					Rows:    rows,
				}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print machine readable JSON")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed decisions")
	return cmd
}

func runsTable(runs []history.Run) tableSpec {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := "running"
		if run.FinishedAt != nil {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		result := "ok"
		if run.Error != "" {
			result = "error"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.Time(run.StartedAt),
			duration,
			strings.Join(run.Operations, ", "),
			strconv.Itoa(run.Materialized),
			strconv.Itoa(run.Failed),
			result,
		})
	}
	return tableSpec{
		Headers: []string{"Run", "Started", "Duration", "Operations", "Materialized", "Failed", "Result"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	}
}
