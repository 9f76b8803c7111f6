package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/oloynet/tinals-player/internal/audio"
	"github.com/oloynet/tinals-player/internal/cachepath"
	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/history"
	"github.com/oloynet/tinals-player/internal/imaging"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/manifest"
	"github.com/oloynet/tinals-player/internal/notifications"
	"github.com/oloynet/tinals-player/internal/preflight"
	"github.com/oloynet/tinals-player/internal/profiles"
	"github.com/oloynet/tinals-player/internal/reconcile"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
	"github.com/oloynet/tinals-player/internal/tools"
)

// ErrNothingToDo reports a run without operations.
var ErrNothingToDo = errors.New("no operation requested")

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Items    int
	NoData   bool
	Profiles profiles.Set
	Reports  []reconcile.Report
	Duration time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLedger records runs in the history ledger.
func WithLedger(ledger *history.Ledger) Option {
	return func(r *Runner) {
		r.ledger = ledger
	}
}

// WithExtractor replaces the yt-dlp client.
func WithExtractor(extractor tools.Extractor) Option {
	return func(r *Runner) {
		if extractor != nil {
			r.extractor = extractor
		}
	}
}

// WithFetcher replaces the wget client.
func WithFetcher(fetcher tools.Fetcher) Option {
	return func(r *Runner) {
		if fetcher != nil {
			r.fetcher = fetcher
		}
	}
}

// WithManifestClient replaces the manifest client.
func WithManifestClient(client *manifest.Client) Option {
	return func(r *Runner) {
		if client != nil {
			r.manifest = client
		}
	}
}

// WithTransformer replaces the image transform pipeline.
func WithTransformer(transformer imaging.Transformer) Option {
	return func(r *Runner) {
		if transformer != nil {
			r.transformer = transformer
		}
	}
}

// WithNotifier replaces the ntfy service built from the config.
func WithNotifier(notifier notifications.Service) Option {
	return func(r *Runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// WithRunIDs replaces the run id generator.
func WithRunIDs(next func() string) Option {
	return func(r *Runner) {
		if next != nil {
			r.newRunID = next
		}
	}
}

// Runner executes runs against one configuration.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	ledger      *history.Ledger
	manifest    *manifest.Client
	extractor   tools.Extractor
	fetcher     tools.Fetcher
	transformer imaging.Transformer
	notifier    notifications.Service
	newRunID    func() string
}

// New builds a Runner. Without options it uses the configured yt-dlp and
// wget binaries and no history ledger.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	toolLogger := logging.NewComponentLogger(logger, "tools")
	r := &Runner{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		extractor:   tools.NewYtDlp(cfg.YtDlpBinary(), tools.WithLogger(toolLogger)),
		fetcher:     tools.NewWget(cfg.WgetBinary(), tools.WithLogger(toolLogger)),
		transformer: imaging.Pipeline{},
		notifier:    notifications.NewService(cfg),
		newRunID:    uuid.NewString,
	}
	r.manifest = manifest.NewClient(cfg.Remote.UserAgent, time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		manifest.WithLogger(logging.NewComponentLogger(logger, "manifest")))
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes the requested operations.
func (r *Runner) Run(ctx context.Context, opts Options) (summary Summary, err error) {
	if opts.Empty() {
		return Summary{}, ErrNothingToDo
	}
	resetTarget, checkTarget, err := parseTargets(opts)
	if err != nil {
		return Summary{}, err
	}
	if err := validateOverrides(opts); err != nil {
		return Summary{}, err
	}

	started := time.Now()
	summary.RunID = r.newRunID()
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if err := r.prepare(); err != nil {
		return summary, err
	}

	lock, err := store.AcquireLock(r.cfg.LockPath())
	if err != nil {
		return summary, err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.Warn("release store lock failed", logging.Error(releaseErr))
		}
	}()

	if r.ledger != nil {
		if beginErr := r.ledger.BeginRun(ctx, summary.RunID, opts.Operations()); beginErr != nil {
			logging.WarnWithContext(logger, "history run not recorded", "history_begin_failed", logging.Error(beginErr))
		}
		defer func() {
			if finishErr := r.ledger.FinishRun(context.WithoutCancel(ctx), summary.RunID, err); finishErr != nil {
				logging.WarnWithContext(logger, "history run not finalized", "history_finish_failed", logging.Error(finishErr))
			}
		}()
	}
	defer func() {
		if rmErr := os.RemoveAll(r.cfg.Paths.ScratchDir); rmErr != nil {
			logger.Warn("remove scratch directory failed", logging.String("path", r.cfg.Paths.ScratchDir), logging.Error(rmErr))
		}
		summary.Duration = time.Since(started)
		r.notify(ctx, opts, summary, err)
		if err != nil {
			logging.ErrorWithContext(logger, "run finished with errors", "run_failed",
				logging.Duration("duration", summary.Duration),
				logging.Error(err),
			)
			return
		}
		logger.Info("run finished",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.Duration("duration", summary.Duration),
		)
	}()

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Strings("operations", opts.Operations()),
	)

	items, loadErr := store.Load(r.cfg.Paths.DataFile)
	if loadErr != nil || len(items) == 0 {
		summary.NoData = true
		attrs := []logging.Attr{logging.String("path", r.cfg.Paths.DataFile)}
		if loadErr != nil {
			attrs = append(attrs, logging.Error(loadErr))
		}
		attrs = append(attrs, logging.String(logging.FieldImpact, "nothing to process"))
		logging.WarnWithContext(logger, "no local data found or empty", "store_empty", attrs...)
		return summary, nil
	}
	summary.Items = len(items)

	set, err := profiles.Load(r.cfg.Paths.ProfilesConfig)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "load size profiles", r.cfg.Paths.ProfilesConfig, err)
	}
	set = set.WithDefaultQuality(r.cfg.Images.DefaultQuality)
	summary.Profiles = set
	if set.Fallback {
		logger.Info("using built-in size profiles", logging.String("reason", set.Reason))
	}

	engine, err := r.engine(set.Profiles)
	if err != nil {
		return summary, err
	}

	step := func(name string, run operation) (reconcile.Report, error) {
		report, err := runStep(ctx, stepOptions{
			Logger:   r.logger,
			Name:     name,
			DataFile: r.cfg.Paths.DataFile,
			Items:    items,
			Run:      run,
		})
		summary.Reports = append(summary.Reports, report)
		return report, err
	}

	if resetTarget != "" {
		if _, err := step(reconcile.WorkflowReset, func(ctx context.Context) (reconcile.Report, error) {
			return engine.Reset(ctx, items, resetTarget)
		}); err != nil {
			return summary, err
		}
	}
	if checkTarget != "" {
		if _, err := step(reconcile.WorkflowCheck, func(ctx context.Context) (reconcile.Report, error) {
			return engine.Check(ctx, items, checkTarget)
		}); err != nil {
			return summary, err
		}
	}
	if !opts.NeedsManifest() {
		return summary, nil
	}

	remote := r.manifest.FetchOrEmpty(ctx, r.cfg.Remote.ManifestURL)

	subset := items
	if opts.Limit > 0 && opts.Limit < len(items) {
		logger.Info("limiting processing", logging.Int("limit", opts.Limit), logging.Int("items", len(items)))
		subset = items[:opts.Limit]
	}

	var batchErrs []error
	batch := func(name string, run operation) error {
		_, err := step(name, run)
		if err != nil && services.IsBatchFatal(err) {
			batchErrs = append(batchErrs, fmt.Errorf("%s: %w", name, err))
			return nil
		}
		return err
	}
	for _, source := range opts.Audio {
		audioOpts := reconcile.AudioOptions{Force: opts.Force, Source: source}
		if err := batch(reconcile.WorkflowSyncAudio+" ("+string(source)+")", func(ctx context.Context) (reconcile.Report, error) {
			return engine.SyncAudio(ctx, subset, remote, audioOpts)
		}); err != nil {
			return summary, err
		}
	}
	if opts.Images {
		imageOpts := reconcile.ImageOptions{Force: opts.Force, MaxWidth: opts.MaxWidth, Quality: opts.Quality}
		if err := batch(reconcile.WorkflowSyncImages, func(ctx context.Context) (reconcile.Report, error) {
			return engine.SyncImages(ctx, subset, remote, imageOpts)
		}); err != nil {
			return summary, err
		}
	}
	return summary, errors.Join(batchErrs...)
}

// notify reports failed runs and runs that changed the cache.
func (r *Runner) notify(ctx context.Context, opts Options, summary Summary, runErr error) {
	result := notifications.RunResult{
		RunID:      summary.RunID,
		Operations: opts.Operations(),
		Items:      summary.Items,
		Duration:   summary.Duration,
	}
	changed := false
	for _, report := range summary.Reports {
		result.Materialized += report.Materialized
		result.Cleared += report.Cleared
		result.Failed += report.Failed
		changed = changed || report.Changed() || report.Failed > 0
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	switch {
	case runErr != nil:
		err = r.notifier.NotifyRunFailed(ctx, result, runErr)
	case changed:
		err = r.notifier.NotifyRunCompleted(ctx, result)
	default:
		return
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "notification not sent", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome was not pushed"),
		)
	}
}

func (r *Runner) prepare() error {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "ensure directories", "", err)
	}
	for _, check := range []preflight.Result{
		preflight.CheckDirectoryAccess("Audio directory", r.cfg.AudioDirPath()),
		preflight.CheckDirectoryAccess("Images directory", r.cfg.ImagesDirPath()),
	} {
		if !check.Passed {
			return services.Wrap(services.ErrConfiguration, "pipeline", "preflight", check.Name+": "+check.Detail, nil)
		}
	}
	return nil
}

func (r *Runner) engine(list []profiles.SizeProfile) (*reconcile.Engine, error) {
	mapper := cachepath.New(r.cfg.Paths.LogicalRoot, r.cfg.Paths.DataRoot)
	workflow, err := audio.New(audio.Config{
		Extractor:  r.extractor,
		Fetcher:    r.fetcher,
		ScratchDir: r.cfg.Paths.ScratchDir,
		AudioDir:   r.cfg.AudioDirPath(),
		Mapper:     mapper,
		Logger:     r.logger,
	})
	if err != nil {
		return nil, err
	}
	cfg := reconcile.Config{
		Mapper:      mapper,
		ImagesDir:   r.cfg.ImagesDirPath(),
		ScratchDir:  r.cfg.Paths.ScratchDir,
		Profiles:    list,
		Collisions:  r.cfg.Images.Collisions,
		Audio:       workflow,
		Fetcher:     r.fetcher,
		Transformer: r.transformer,
		Logger:      r.logger,
	}
	if r.ledger != nil {
		cfg.Recorder = r.ledger
	}
	return reconcile.New(cfg)
}

// validateOverrides checks the per-run image and batch overrides. Zero
// leaves the configured value in place.
func validateOverrides(opts Options) error {
	switch {
	case opts.Quality != 0 && (opts.Quality < 1 || opts.Quality > 100):
		return services.Wrap(services.ErrValidation, "pipeline", "quality override",
			fmt.Sprintf("compress must be between 1 and 100, got %d", opts.Quality), nil)
	case opts.MaxWidth < 0:
		return services.Wrap(services.ErrValidation, "pipeline", "max width override",
			fmt.Sprintf("max width must not be negative, got %d", opts.MaxWidth), nil)
	case opts.Limit < 0:
		return services.Wrap(services.ErrValidation, "pipeline", "limit",
			fmt.Sprintf("limit must not be negative, got %d", opts.Limit), nil)
	}
	return nil
}

func parseTargets(opts Options) (reconcile.Target, reconcile.Target, error) {
	var reset, check reconcile.Target
	var err error
	if opts.Reset != "" {
		if reset, err = reconcile.ParseTarget(opts.Reset); err != nil {
			return "", "", services.Wrap(services.ErrValidation, "pipeline", "reset", "", err)
		}
	}
	if opts.Check != "" {
		if check, err = reconcile.ParseTarget(opts.Check); err != nil {
			return "", "", services.Wrap(services.ErrValidation, "pipeline", "check", "", err)
		}
	}
	return reset, check, nil
}
