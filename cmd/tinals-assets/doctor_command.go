package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, configuration, and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			healthy := true

			section := func(title string, lines []string) {
				for _, line := range renderSectionHeader(title, colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out)
			}

			config := "defaults (no config file)"
			if ctx.configExists {
				config = ctx.configPath
			}
			var fsLines []string
			fsLines = append(fsLines, renderStatusLine("Config", statusInfo, config, colorize))
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				fsLines = append(fsLines, checkLine(result, statusError, colorize))
				healthy = healthy && result.Passed
			}
			section("Filesystem", fsLines)

			profiles := preflight.CheckProfiles(cfg.Paths.ProfilesConfig)
			healthy = healthy && profiles.Passed
			sourceLines := []string{checkLine(profiles, statusError, colorize)}
			if offline {
				sourceLines = append(sourceLines, renderStatusLine("Manifest", statusInfo, "skipped (--offline)", colorize))
			} else {
				manifest := preflight.CheckManifest(cmd.Context(), cfg.Remote.ManifestURL, cfg.Remote.UserAgent)
				sourceLines = append(sourceLines, checkLine(manifest, statusWarn, colorize))
			}
			section("Sources", sourceLines)

			toolLines, toolsReady := dependencyLines(preflight.CheckSystemDeps(cfg), colorize)
			healthy = healthy && toolsReady
			section("Tools", toolLines)

			if !healthy {
				return errors.New("doctor found problems")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the manifest reachability check")
	return cmd
}
