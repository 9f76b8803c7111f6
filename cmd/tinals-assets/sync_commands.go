package main

import (
	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/pipeline"
	"github.com/oloynet/tinals-player/internal/reconcile"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Materialize missing assets from the manifest",
	}
	cmd.AddCommand(newSyncAudioCommand(ctx))
	cmd.AddCommand(newSyncImagesCommand(ctx))
	return cmd
}

func newSyncAudioCommand(ctx *commandContext) *cobra.Command {
	var (
		source string
		limit  int
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Fill absent audio fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := reconcile.ParseAudioSource(source)
			if err != nil {
				return err
			}
			return ctx.runPipeline(cmd, pipeline.Options{
				Audio: []reconcile.AudioSource{parsed},
				Limit: limit,
				Force: force,
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", string(reconcile.SourceAuto), "Audio source: auto (direct URL first), video, or direct")
	addSyncFlags(cmd, &limit, &force)
	return cmd
}

func newSyncImagesCommand(ctx *commandContext) *cobra.Command {
	var (
		limit    int
		force    bool
		maxWidth int
		compress int
	)
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Generate every size profile for items missing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, pipeline.Options{
				Images:   true,
				Limit:    limit,
				Force:    force,
				MaxWidth: maxWidth,
				Quality:  compress,
			})
		},
	}
	addSyncFlags(cmd, &limit, &force)
	addImageFlags(cmd, &maxWidth, &compress)
	return cmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "reset <audio|mp3|image|all>",
		Short:     "Delete cached assets and clear their fields",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"audio", "mp3", "image", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, pipeline.Options{Reset: args[0]})
		},
	}
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "check [audio|mp3|image|all]",
		Short:     "Clear fields whose cached file no longer exists",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"audio", "mp3", "image", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := string(reconcile.TargetAll)
			if len(args) == 1 {
				target = args[0]
			}
			return ctx.runPipeline(cmd, pipeline.Options{Check: target})
		},
	}
}
