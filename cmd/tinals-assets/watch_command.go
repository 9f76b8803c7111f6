package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/pipeline"
	"github.com/oloynet/tinals-player/internal/store"
)

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, logging.Error(err))...)
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		expression string
		operations []string
		now        bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the scheduled operations on a cron schedule until interrupted",
		Example: `  tinals-assets watch --cron "0 */6 * * *" --ops audio,images
  tinals-assets watch --now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "watch")

			spec := strings.TrimSpace(expression)
			if spec == "" {
				spec = cfg.Schedule.Cron
			}
			if spec == "" {
				return errors.New("no schedule: set schedule.cron or pass --cron")
			}
			if len(operations) == 0 {
				operations = cfg.Schedule.Operations
			}
			for _, op := range operations {
				if !isScheduleOperation(op) {
					return fmt.Errorf("unknown operation %q (valid: %s)", op, strings.Join(config.ScheduleOperations, ", "))
				}
			}
			opts := pipeline.FromScheduleOperations(operations)
			if opts.Empty() {
				return errors.New("no operations scheduled: set schedule.operations or pass --ops")
			}

			runOnce := func() {
				err := ctx.runPipeline(cmd, opts)
				switch {
				case err == nil, errors.Is(err, context.Canceled):
				case errors.Is(err, store.ErrLocked):
					logger.Info("previous run still holds the store lock; skipping")
				default:
					logging.ErrorWithContext(logger, "scheduled run failed", "watch_run_failed", logging.Error(err))
				}
			}

			adapter := cronLogger{logger: logger}
			scheduler := cron.New(
				cron.WithParser(config.ScheduleParser),
				cron.WithLogger(adapter),
				cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
			)
			if _, err := scheduler.AddFunc(spec, runOnce); err != nil {
				return fmt.Errorf("schedule %q: %w", spec, err)
			}

			if now {
				runOnce()
			}
			scheduler.Start()
			logger.Info("watching",
				logging.String("cron", spec),
				logging.Strings("operations", opts.Operations()),
			)
			if schedule, err := config.ScheduleParser.Parse(spec); err == nil {
				logger.Info("next run scheduled", logging.Time("at", schedule.Next(time.Now())))
			}

			<-cmd.Context().Done()
			logger.Info("stopping scheduler")
			<-scheduler.Stop().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&expression, "cron", "", "Cron expression (overrides schedule.cron)")
	cmd.Flags().StringSliceVar(&operations, "ops", nil, "Operations to run (audio, video, direct, images, check)")
	cmd.Flags().BoolVar(&now, "now", false, "Run once immediately before waiting for the schedule")
	return cmd
}

func isScheduleOperation(op string) bool {
	for _, candidate := range config.ScheduleOperations {
		if op == candidate {
			return true
		}
	}
	return false
}
