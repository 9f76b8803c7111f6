package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/reconcile"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
)

// operation is one engine call over the item collection.
type operation func(ctx context.Context) (reconcile.Report, error)

// stepOptions controls one operation and the store write that follows it.
type stepOptions struct {
	Logger   *slog.Logger
	Name     string
	DataFile string
	Items    []*store.Item
	Run      operation
}

// runStep executes an operation and saves the collection whether or not the
// operation failed, so items handled before a failure keep their new paths.
// A save failure wins over the operation error.
func runStep(ctx context.Context, opts stepOptions) (reconcile.Report, error) {
	logger := logging.WithContext(ctx, opts.Logger)
	logger.Info("operation started",
		logging.String(logging.FieldEventType, "operation_start"),
		logging.String("operation", opts.Name),
		logging.Int("items", len(opts.Items)),
	)

	report, runErr := opts.Run(ctx)
	if err := store.Save(opts.DataFile, opts.Items); err != nil {
		logging.ErrorWithContext(logger, "item store not saved", "store_save_failed",
			logging.String("operation", opts.Name),
			logging.String("path", opts.DataFile),
			logging.Error(err),
			logging.String(logging.FieldImpact, "changes from this operation are lost"),
		)
		return report, fmt.Errorf("save item store after %s: %w", opts.Name, err)
	}

	attrs := []logging.Attr{
		logging.String("operation", opts.Name),
		logging.Int("materialized", report.Materialized),
		logging.Int("skipped", report.Skipped),
		logging.Int("cleared", report.Cleared),
		logging.Int("verified", report.Verified),
		logging.Int("failed", report.Failed),
	}
	if runErr != nil {
		hint := "check logs for details"
		if services.IsBatchFatal(runErr) {
			hint = "install the missing tool or point [tools] at it"
		}
		logging.ErrorWithContext(logger, "operation failed", "operation_failure",
			append(attrs, logging.Error(runErr), logging.String(logging.FieldErrorHint, hint))...)
		return report, runErr
	}
	logger.Info("operation completed", logging.Args(append(attrs, logging.String(logging.FieldEventType, "operation_complete"))...)...)
	return report, nil
}
