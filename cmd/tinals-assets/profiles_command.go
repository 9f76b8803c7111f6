package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/profiles"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the size profiles a run would generate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := profiles.Load(cfg.Paths.ProfilesConfig)
			if err != nil {
				return err
			}
			set = set.WithDefaultQuality(cfg.Images.DefaultQuality)
			if jsonOutput {
				return writeJSON(cmd, set)
			}

			out := cmd.OutOrStdout()
			if set.Fallback {
				fmt.Fprintf(out, "Built-in size profiles (%s)\n", set.Reason)
			} else {
				fmt.Fprintf(out, "Size profiles from %s\n", set.Path)
			}
			if len(set.Profiles) == 0 {
				fmt.Fprintln(out, "No size profiles configured; image sync manages no fields.")
				return nil
			}
			rows := make([][]string, 0, len(set.Profiles))
			for _, p := range set.Profiles {
				rows = append(rows, []string{
					p.ID,
					geometry(p),
					actionList(p),
					string(p.Format),
					strconv.Itoa(p.Quality),
					p.FileName("<name>"),
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Headers: []string{"Field", "Geometry", "Actions", "Format", "Quality", "File"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print machine readable JSON")
	return cmd
}

func geometry(p profiles.SizeProfile) string {
	var parts []string
	if p.Width > 0 || p.Height > 0 {
		parts = append(parts, fmt.Sprintf("%sx%s", dim(p.Width), dim(p.Height)))
	}
	if p.MaxWidth > 0 || p.MaxHeight > 0 {
		parts = append(parts, fmt.Sprintf("max %sx%s", dim(p.MaxWidth), dim(p.MaxHeight)))
	}
	if len(parts) == 0 {
		return "original"
	}
	return strings.Join(parts, ", ")
}

func dim(v int) string {
	if v <= 0 {
		return "auto"
	}
	return strconv.Itoa(v)
}

func actionList(p profiles.SizeProfile) string {
	if len(p.Actions) == 0 {
		return "-"
	}
	names := make([]string, 0, len(p.Actions))
	for _, a := range p.Actions {
		names = append(names, string(a))
	}
	return strings.Join(names, "+")
}
