package pipeline

import (
	"github.com/oloynet/tinals-player/internal/reconcile"
)

// Options selects the operations of one run.
type Options struct {
	// Reset and Check name a target (audio, mp3, image, all) or are empty.
	Reset string
	Check string
	// Audio lists the Sync-Audio passes in order.
	Audio  []reconcile.AudioSource
	Images bool

	Force    bool
	Limit    int
	MaxWidth int
	Quality  int
}

// Empty reports whether no operation was requested.
func (o Options) Empty() bool {
	return o.Reset == "" && o.Check == "" && len(o.Audio) == 0 && !o.Images
}

// NeedsManifest reports whether a sync operation was requested.
func (o Options) NeedsManifest() bool {
	return len(o.Audio) > 0 || o.Images
}

// Operations names the requested operations in execution order.
func (o Options) Operations() []string {
	var ops []string
	if o.Reset != "" {
		ops = append(ops, reconcile.WorkflowReset+":"+o.Reset)
	}
	if o.Check != "" {
		ops = append(ops, reconcile.WorkflowCheck+":"+o.Check)
	}
	for _, source := range o.Audio {
		ops = append(ops, reconcile.WorkflowSyncAudio+":"+string(source))
	}
	if o.Images {
		ops = append(ops, reconcile.WorkflowSyncImages)
	}
	return ops
}

// FromScheduleOperations maps configured schedule operation names (audio,
// video, direct, images, check) onto run options.
func FromScheduleOperations(names []string) Options {
	var opts Options
	for _, name := range names {
		switch name {
		case "audio":
			opts.Audio = append(opts.Audio, reconcile.SourceAuto)
		case "video":
			opts.Audio = append(opts.Audio, reconcile.SourceVideo)
		case "direct":
			opts.Audio = append(opts.Audio, reconcile.SourceDirect)
		case "images":
			opts.Images = true
		case "check":
			opts.Check = string(reconcile.TargetAll)
		}
	}
	return opts
}
