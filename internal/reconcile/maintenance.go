package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oloynet/tinals-player/internal/fileutil"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
)

// Reset deletes the cached files of the targeted classes and clears their
// fields. Paths outside the logical root are cleared without touching disk.
// A file that cannot be deleted keeps its field and counts as failed.
func (e *Engine) Reset(ctx context.Context, items []*store.Item, target Target) (Report, error) {
	report := Report{Workflow: WorkflowReset}
	ctx = services.WithWorkflow(ctx, WorkflowReset)
	fields, err := e.targetFields(target)
	if err != nil {
		return report, err
	}

	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		itemCtx, id := e.itemContext(ctx, item)
		for _, field := range fields {
			ref := item.Asset(field)
			if !ref.IsPresent() {
				continue
			}
			physical, err := e.mapper.Physical(ref.Path())
			if err != nil {
				logging.WarnWithContext(logging.WithContext(itemCtx, e.logger), "clearing foreign asset path", "reset_foreign_path",
					logging.String("field", field),
					logging.String("path", ref.Path()),
					logging.String(logging.FieldImpact, "field cleared; file outside the cache root left on disk"),
				)
				item.SetAsset(field, store.Absent())
				e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeCleared, Path: ref.Path(), Detail: "foreign path, file kept"})
				continue
			}
			if err := os.Remove(physical); err != nil && !errors.Is(err, os.ErrNotExist) {
				logging.WarnWithContext(logging.WithContext(itemCtx, e.logger), "asset delete failed", "reset_delete_failed",
					logging.String("field", field),
					logging.String("path", physical),
					logging.Error(err),
					logging.String(logging.FieldImpact, "field kept so the file stays tracked"),
				)
				e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeFailed, Path: ref.Path(), Detail: err.Error()})
				continue
			}
			item.SetAsset(field, store.Absent())
			e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeCleared, Path: ref.Path()})
		}
	}
	return report, nil
}

// Check clears fields whose cached file no longer exists. Present files and
// foreign paths are left alone.
func (e *Engine) Check(ctx context.Context, items []*store.Item, target Target) (Report, error) {
	report := Report{Workflow: WorkflowCheck}
	ctx = services.WithWorkflow(ctx, WorkflowCheck)
	fields, err := e.targetFields(target)
	if err != nil {
		return report, err
	}

	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		itemCtx, id := e.itemContext(ctx, item)
		for _, field := range fields {
			ref := item.Asset(field)
			if !ref.IsPresent() {
				continue
			}
			physical, err := e.mapper.Physical(ref.Path())
			if err != nil {
				logging.WithContext(itemCtx, e.logger).Info("skipping foreign asset path",
					logging.String("field", field),
					logging.String("path", ref.Path()),
				)
				e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeSkipped, Path: ref.Path(), Detail: "foreign path"})
				continue
			}
			exists, err := fileutil.Exists(physical)
			if err != nil {
				e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeFailed, Path: ref.Path(), Detail: err.Error()})
				continue
			}
			if exists {
				e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeVerified, Path: ref.Path()})
				continue
			}
			logging.WithContext(itemCtx, e.logger).Info("cached file missing, clearing field",
				logging.String("field", field),
				logging.String("path", physical),
			)
			item.SetAsset(field, store.Absent())
			e.emit(itemCtx, &report, Event{ItemID: id, Field: field, Outcome: OutcomeCleared, Path: ref.Path(), Detail: "file missing"})
		}
	}
	return report, nil
}

func (e *Engine) targetFields(target Target) ([]string, error) {
	if !target.includesAudio() && !target.includesImages() {
		return nil, fmt.Errorf("unknown target %q", target)
	}
	var fields []string
	if target.includesAudio() {
		fields = append(fields, store.FieldAudio)
	}
	if target.includesImages() {
		fields = append(fields, e.fields...)
	}
	return fields, nil
}
