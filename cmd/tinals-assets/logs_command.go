package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		runID  string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the latest daily log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			opts := logs.Options{Lines: lines, Follow: follow}
			if runID != "" {
				opts.Match = shortID(runID)
			}
			return logs.Tail(cmd.Context(), cfg.LogDir(), opts, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&runID, "run", "", "Only print lines mentioning this run id (or prefix)")
	return cmd
}
