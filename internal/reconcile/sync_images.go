package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oloynet/tinals-player/internal/fileutil"
	"github.com/oloynet/tinals-player/internal/imaging"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/manifest"
	"github.com/oloynet/tinals-player/internal/profiles"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
	"github.com/oloynet/tinals-player/internal/textutil"
)

// SyncImages regenerates every derivative of an item when any profile field
// is absent (or always when forced). The master image is downloaded once per
// item into scratch and removed afterwards whatever happens. A failing
// profile is logged and the remaining profiles still run. An engine built
// with no profiles manages no image fields and does nothing here.
func (e *Engine) SyncImages(ctx context.Context, items []*store.Item, remote manifest.Manifest, opts ImageOptions) (Report, error) {
	report := Report{Workflow: WorkflowSyncImages}
	if e.fetcher == nil {
		return report, errors.New("sync images requires a fetcher")
	}
	ctx = services.WithWorkflow(ctx, WorkflowSyncImages)
	if len(e.profiles) == 0 {
		logging.WithContext(ctx, e.logger).Info("no size profiles configured, image sync skipped",
			logging.String(logging.FieldEventType, "images_no_profiles"),
		)
		return report, nil
	}
	overrides := imaging.Overrides{MaxWidth: opts.MaxWidth, Quality: opts.Quality}

	names := e.newClaims()
	for _, item := range items {
		if key, ok := item.Key(); ok {
			if stem := e.recordedImageStem(item); stem != "" {
				names.seed(stem, key)
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

		record, found := remote.Lookup(item)
		if !found {
			e.emit(itemCtx, &report, Event{ItemID: id, Field: profiles.MasterID, Outcome: OutcomeSkipped, Detail: "not in manifest"})
			continue
		}
		if !opts.Force && !e.missingImage(item) {
			e.emit(itemCtx, &report, Event{ItemID: id, Field: profiles.MasterID, Outcome: OutcomeSkipped, Detail: "all derivatives cached"})
			continue
		}
		masterURL := record.MasterImageURL(e.fields)
		if masterURL == "" {
			logging.WithContext(itemCtx, e.logger).Info("no master image, skipping",
				logging.String("event_name", item.EventName()),
			)
			e.emit(itemCtx, &report, Event{ItemID: id, Field: profiles.MasterID, Outcome: OutcomeSkipped, Detail: "no master image"})
			continue
		}

		stem := imageStem(item, id)
		stem = names.claim(itemCtx, stem, key, id)
		if err := e.processImages(itemCtx, &report, item, id, stem, masterURL, overrides); err != nil {
			if services.IsBatchFatal(err) {
				logging.ErrorWithContext(logging.WithContext(itemCtx, e.logger), "image batch aborted", "image_tool_missing",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "install wget or point tools.wget at it"),
					logging.String(logging.FieldImpact, "remaining items were not processed"),
				)
				return report, err
			}
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
		}
	}
	return report, nil
}

func (e *Engine) processImages(ctx context.Context, report *Report, item *store.Item, id, stem, masterURL string, overrides imaging.Overrides) error {
	logger := logging.WithContext(ctx, e.logger)
	if err := os.MkdirAll(e.scratchDir, 0o755); err != nil {
		e.emit(ctx, report, Event{ItemID: id, Field: profiles.MasterID, Outcome: OutcomeFailed, Detail: err.Error()})
		return fmt.Errorf("create scratch directory: %w", err)
	}
	master := filepath.Join(e.scratchDir, "master_"+textutil.SanitizeToken(id)+masterExtension(masterURL))
	defer func() {
		if err := os.Remove(master); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("remove master image failed", logging.String("path", master), logging.Error(err))
		}
	}()

	logger.Info("downloading master image",
		logging.String("event_name", item.EventName()),
		logging.String("source", masterURL),
	)
	if err := e.fetcher.Download(ctx, masterURL, master); err != nil {
		e.emit(ctx, report, Event{ItemID: id, Field: profiles.MasterID, Outcome: OutcomeFailed, Detail: err.Error()})
		if !services.IsBatchFatal(err) {
			logging.WarnWithContext(logger, "master image download failed", "image_master_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "image fields left unchanged"),
			)
		}
		return err
	}
	if ok, _ := fileutil.Exists(master); !ok {
		err := services.Wrap(services.ErrFetch, "images", "download", "master not found after download: "+master, nil)
		e.emit(ctx, report, Event{ItemID: id, Field: profiles.MasterID, Outcome: OutcomeFailed, Detail: err.Error()})
		logging.WarnWithContext(logger, "master image missing after download", "image_master_failed", logging.Error(err))
		return err
	}

	for _, profile := range e.profiles {
		logical, err := e.writeDerivative(master, stem, profile, overrides)
		if err != nil {
			e.emit(ctx, report, Event{ItemID: id, Field: profile.ID, Outcome: OutcomeFailed, Detail: err.Error()})
			logging.WarnWithContext(logger, "image derivative failed", "image_profile_failed",
				logging.String("profile", profile.ID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "field left unchanged; other sizes continue"),
			)
			continue
		}
		item.SetAsset(profile.ID, store.Present(logical))
		e.emit(ctx, report, Event{ItemID: id, Field: profile.ID, Outcome: OutcomeMaterialized, Path: logical})
	}
	return nil
}

func (e *Engine) writeDerivative(master, stem string, profile profiles.SizeProfile, overrides imaging.Overrides) (string, error) {
	data, err := e.transformer.Transform(master, profile, overrides)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(e.imagesDir, profile.FileName(stem))
	if err := fileutil.WriteFileAtomic(dest, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrTransform, "images", "write", dest, err)
	}
	logical, err := e.mapper.Logical(dest)
	if err != nil {
		return "", fmt.Errorf("map image path: %w", err)
	}
	return logical, nil
}

func (e *Engine) missingImage(item *store.Item) bool {
	for _, field := range e.fields {
		if !item.Asset(field).IsPresent() {
			return true
		}
	}
	return false
}

// recordedImageStem recovers the stem of an item's cached derivatives from
// the first present field whose name carries the profile suffix.
func (e *Engine) recordedImageStem(item *store.Item) string {
	for _, profile := range e.profiles {
		ref := item.Asset(profile.ID)
		if !ref.IsPresent() {
			continue
		}
		base := path.Base(ref.Path())
		if stem, ok := strings.CutSuffix(base, profile.Suffix()); ok && stem != "" {
			return stem
		}
	}
	return ""
}

func imageStem(item *store.Item, id string) string {
	name := item.EventName()
	if name == "" {
		name = "unknown"
	}
	if stem := textutil.SanitizeFileName(name); stem != "" {
		return stem
	}
	return textutil.SanitizeToken(id)
}

// masterExtension takes the extension from the URL path, ignoring the query.
func masterExtension(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		p = raw[:i]
	}
	ext := path.Ext(p)
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return ".jpg"
	}
	return strings.ToLower(ext)
}
