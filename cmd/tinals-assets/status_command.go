package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/cachepath"
	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/history"
	"github.com/oloynet/tinals-player/internal/profiles"
	"github.com/oloynet/tinals-player/internal/store"
)

type fieldStatus struct {
	Field   string `json:"field"`
	Present int    `json:"present"`
	OnDisk  int    `json:"on_disk"`
	Missing int    `json:"missing_on_disk"`
	Foreign int    `json:"foreign"`
}

type dirUsage struct {
	Path  string `json:"path"`
	Files int    `json:"files"`
	Bytes int64  `json:"bytes"`
}

type cacheStatus struct {
	DataFile string        `json:"data_file"`
	Items    int           `json:"items"`
	Fields   []fieldStatus `json:"fields"`
	Audio    dirUsage      `json:"audio_dir"`
	Images   dirUsage      `json:"images_dir"`
	LastRun  *history.Run  `json:"last_run,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize cached assets per field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := collectStatus(cfg)
			if err != nil {
				return err
			}
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}
			if ledger != nil {
				defer ledger.Close()
				runs, err := ledger.RecentRuns(cmd.Context(), 1)
				if err != nil {
					return err
				}
				if len(runs) == 1 {
					status.LastRun = &runs[0]
				}
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}
			printStatus(cmd, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print machine readable JSON")
	return cmd
}

func collectStatus(cfg *config.Config) (cacheStatus, error) {
	status := cacheStatus{DataFile: cfg.Paths.DataFile}
	items, err := store.Load(cfg.Paths.DataFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return status, err
	}
	status.Items = len(items)

	set, err := profiles.Load(cfg.Paths.ProfilesConfig)
	if err != nil {
		return status, err
	}
	mapper := cachepath.New(cfg.Paths.LogicalRoot, cfg.Paths.DataRoot)
	fields := append([]string{store.FieldAudio}, set.Fields()...)
	for _, field := range fields {
		st := fieldStatus{Field: field}
		for _, item := range items {
			ref := item.Asset(field)
			if !ref.IsPresent() {
				continue
			}
			st.Present++
			physical, err := mapper.Physical(ref.Path())
			if err != nil {
				st.Foreign++
				continue
			}
			if info, err := os.Stat(physical); err == nil && info.Mode().IsRegular() {
				st.OnDisk++
			} else {
				st.Missing++
			}
		}
		status.Fields = append(status.Fields, st)
	}

	if status.Audio, err = usage(cfg.AudioDirPath()); err != nil {
		return status, err
	}
	if status.Images, err = usage(cfg.ImagesDirPath()); err != nil {
		return status, err
	}
	return status, nil
}

func usage(dir string) (dirUsage, error) {
	u := dirUsage{Path: dir}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		u.Files++
		u.Bytes += info.Size()
		return nil
	})
	return u, err
}

func printStatus(cmd *cobra.Command, status cacheStatus) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Cache", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Item store", statusInfo, fmt.Sprintf("%s (%d items)", status.DataFile, status.Items), colorize))
	fmt.Fprintln(out, renderStatusLine("Audio", statusInfo, fmt.Sprintf("%d files, %s", status.Audio.Files, humanize.Bytes(uint64(status.Audio.Bytes))), colorize))
	fmt.Fprintln(out, renderStatusLine("Images", statusInfo, fmt.Sprintf("%d files, %s", status.Images.Files, humanize.Bytes(uint64(status.Images.Bytes))), colorize))
	fmt.Fprintln(out, lastRunLine(status.LastRun, colorize))
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(status.Fields))
	for _, f := range status.Fields {
		rows = append(rows, []string{
			f.Field,
			strconv.Itoa(f.Present),
			strconv.Itoa(f.OnDisk),
			strconv.Itoa(f.Missing),
			strconv.Itoa(f.Foreign),
			strconv.Itoa(status.Items - f.Present),
		})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Headers: []string{"Field", "Present", "On disk", "Missing file", "Foreign", "Absent"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	}))
}

func lastRunLine(run *history.Run, colorize bool) string {
	if run == nil {
		return renderStatusLine("Last run", statusInfo, "none recorded", colorize)
	}
	when := humanize.Time(run.StartedAt)
	switch {
	case run.FinishedAt == nil:
		return renderStatusLine("Last run", statusWarn, fmt.Sprintf("%s started %s, not finished", shortID(run.ID), when), colorize)
	case run.Error != "":
		return renderStatusLine("Last run", statusError, fmt.Sprintf("%s %s: %s", shortID(run.ID), when, firstLine(run.Error)), colorize)
	default:
		return renderStatusLine("Last run", statusOK, fmt.Sprintf("%s %s (%s, %d materialized, %d failed)",
			shortID(run.ID), when, run.Duration().Round(time.Second), run.Materialized, run.Failed), colorize)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
