package reconcile

import (
	"context"
	"errors"

	"github.com/oloynet/tinals-player/internal/audio"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/manifest"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
)

// SyncAudio materializes audio for every item whose audio field is absent
// (or all items when forced) and that the manifest knows. A missing tool
// stops the batch and is returned; items handled before it keep their new
// paths.
func (e *Engine) SyncAudio(ctx context.Context, items []*store.Item, remote manifest.Manifest, opts AudioOptions) (Report, error) {
	report := Report{Workflow: WorkflowSyncAudio}
	if e.audio == nil {
		return report, errors.New("sync audio requires an audio materializer")
	}
	ctx = services.WithWorkflow(ctx, WorkflowSyncAudio)
	source := opts.Source
	if source == "" {
		source = SourceAuto
	}

	names := e.newClaims()
	for _, item := range items {
		if key, ok := item.Key(); ok {
			if ref := item.Asset(store.FieldAudio); ref.IsPresent() {
				names.seed(audioStem(ref.Path()), key)
			}
		}
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		key, ok := item.Key()
		if !ok {
			continue
		}
		itemCtx, id := e.itemContext(ctx, item)

		if item.Asset(store.FieldAudio).IsPresent() && !opts.Force {
			e.emit(itemCtx, &report, Event{ItemID: id, Field: store.FieldAudio, Outcome: OutcomeSkipped, Path: item.Asset(store.FieldAudio).Path(), Detail: "already cached"})
			continue
		}
		record, found := remote.Lookup(item)
		if !found {
			e.emit(itemCtx, &report, Event{ItemID: id, Field: store.FieldAudio, Outcome: OutcomeSkipped, Detail: "not in manifest"})
			continue
		}
		url, mode := resolveAudioSource(record, source)
		if url == "" {
			e.emit(itemCtx, &report, Event{ItemID: id, Field: store.FieldAudio, Outcome: OutcomeSkipped, Detail: "no " + string(source) + " audio source"})
			continue
		}

		logging.WithContext(itemCtx, e.logger).Info("materializing audio",
			logging.String("event_name", item.EventName()),
			logging.String("mode", string(mode)),
			logging.String("source", url),
		)
		result, err := e.audio.Materialize(itemCtx, audio.Request{
			ID:        id,
			EventName: item.EventName(),
			URL:       url,
			Mode:      mode,
		}, names.audioNamer(itemCtx, key, id))
		if err != nil {
			e.emit(itemCtx, &report, Event{ItemID: id, Field: store.FieldAudio, Outcome: OutcomeFailed, Detail: err.Error()})
			if services.IsBatchFatal(err) {
				logging.ErrorWithContext(logging.WithContext(itemCtx, e.logger), "audio batch aborted", "audio_tool_missing",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "install the tool or point tools.yt_dlp / tools.wget at it"),
					logging.String(logging.FieldImpact, "remaining items were not processed"),
				)
				return report, err
			}
			logging.WarnWithContext(logging.WithContext(itemCtx, e.logger), "audio materialization failed", "audio_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "audio field left unchanged"),
			)
			continue
		}

		item.SetAsset(store.FieldAudio, store.Present(result.Logical))
		e.emit(itemCtx, &report, Event{ItemID: id, Field: store.FieldAudio, Outcome: OutcomeMaterialized, Path: result.Logical})
	}
	return report, nil
}

func resolveAudioSource(record manifest.Record, source AudioSource) (string, audio.Mode) {
	switch source {
	case SourceVideo:
		if u := record.VideoURL(); u != "" {
			return u, audio.ModeExtract
		}
	case SourceDirect:
		if u := record.AudioURL(); u != "" {
			return u, audio.ModeDownload
		}
	default:
		if u := record.AudioURL(); u != "" {
			return u, audio.ModeDownload
		}
		if u := record.VideoURL(); u != "" {
			return u, audio.ModeExtract
		}
	}
	return "", ""
}
