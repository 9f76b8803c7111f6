package main

import (
	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/pipeline"
	"github.com/oloynet/tinals-player/internal/reconcile"
)

type runFlags struct {
	ytToMP3  bool
	mp3      bool
	image    bool
	reset    string
	check    string
	limit    int
	force    bool
	maxWidth int
	compress int
}

func (f runFlags) options() pipeline.Options {
	opts := pipeline.Options{
		Reset:    f.reset,
		Check:    f.check,
		Images:   f.image,
		Force:    f.force,
		Limit:    f.limit,
		MaxWidth: f.maxWidth,
		Quality:  f.compress,
	}
	if f.ytToMP3 {
		opts.Audio = append(opts.Audio, reconcile.SourceVideo)
	}
	if f.mp3 {
		opts.Audio = append(opts.Audio, reconcile.SourceDirect)
	}
	return opts
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one or more operations in the fixed order reset, check, audio, images",
		Example: `  tinals-assets run --yt-to-mp3 --mp3 --image
  tinals-assets run --check
  tinals-assets run --reset image --image --max-width 1200 --compress 70`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			if opts.Empty() {
				return cmd.Help()
			}
			return ctx.runPipeline(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&flags.ytToMP3, "yt-to-mp3", false, "Extract audio from each item's video_url with yt-dlp")
	cmd.Flags().BoolVar(&flags.mp3, "mp3", false, "Download each item's direct audio URL with wget")
	cmd.Flags().BoolVar(&flags.image, "image", false, "Download master images and generate every size profile")
	cmd.Flags().StringVar(&flags.reset, "reset", "", "Delete cached assets and clear their fields (audio, mp3, image, all)")
	cmd.Flags().StringVar(&flags.check, "check", "", "Clear fields whose cached file is missing (audio, mp3, image, all)")
	cmd.Flags().Lookup("check").NoOptDefVal = string(reconcile.TargetAll)
	addSyncFlags(cmd, &flags.limit, &flags.force)
	addImageFlags(cmd, &flags.maxWidth, &flags.compress)
	return cmd
}

func addSyncFlags(cmd *cobra.Command, limit *int, force *bool) {
	cmd.Flags().IntVar(limit, "limit", 0, "Only sync the first N items (0 means all)")
	cmd.Flags().BoolVar(force, "force", false, "Re-materialize assets that are already cached")
}

func addImageFlags(cmd *cobra.Command, maxWidth, compress *int) {
	cmd.Flags().IntVar(maxWidth, "max-width", 0, "Override every profile's max-width")
	cmd.Flags().IntVar(compress, "compress", 0, "Override every profile's encoder quality (1-100)")
}
