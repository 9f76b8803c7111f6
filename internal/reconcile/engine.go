package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oloynet/tinals-player/internal/audio"
	"github.com/oloynet/tinals-player/internal/cachepath"
	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/imaging"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/profiles"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
	"github.com/oloynet/tinals-player/internal/tools"
)

// AudioMaterializer produces one cached mp3.
type AudioMaterializer interface {
	Materialize(ctx context.Context, req audio.Request, namer audio.Namer) (audio.Result, error)
}

// Config wires an Engine. Mapper, ImagesDir, ScratchDir, Audio, Fetcher and
// Transformer are required for the sync operations; Reset and Check only
// need the Mapper and Profiles. An empty Profiles list manages no image
// fields.
type Config struct {
	Mapper      cachepath.Mapper
	ImagesDir   string
	ScratchDir  string
	Profiles    []profiles.SizeProfile
	Collisions  string
	Audio       AudioMaterializer
	Fetcher     tools.Fetcher
	Transformer imaging.Transformer
	Recorder    Recorder
	Logger      *slog.Logger
}

// Engine applies reconciliation decisions to item collections.
type Engine struct {
	mapper      cachepath.Mapper
	imagesDir   string
	scratchDir  string
	profiles    []profiles.SizeProfile
	fields      []string
	disambig    bool
	audio       AudioMaterializer
	fetcher     tools.Fetcher
	transformer imaging.Transformer
	recorder    Recorder
	logger      *slog.Logger
}

// New validates cfg and builds an Engine.
func New(cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.Mapper.LogicalRoot) == "" || strings.TrimSpace(cfg.Mapper.PhysicalRoot) == "" {
		return nil, errors.New("reconcile engine requires a path mapper")
	}
	list := append([]profiles.SizeProfile(nil), cfg.Profiles...)
	transformer := cfg.Transformer
	if transformer == nil {
		transformer = imaging.Pipeline{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		mapper:      cfg.Mapper,
		imagesDir:   cfg.ImagesDir,
		scratchDir:  cfg.ScratchDir,
		profiles:    list,
		fields:      profiles.Fields(list),
		disambig:    strings.EqualFold(cfg.Collisions, config.CollisionDisambiguate),
		audio:       cfg.Audio,
		fetcher:     cfg.Fetcher,
		transformer: transformer,
		recorder:    cfg.Recorder,
		logger:      logging.NewComponentLogger(logger, "reconcile"),
	}, nil
}

// Fields returns the managed image fields, in profile order.
func (e *Engine) Fields() []string {
	return append([]string(nil), e.fields...)
}

func (e *Engine) itemContext(ctx context.Context, item *store.Item) (context.Context, string) {
	id, _ := item.ID()
	return services.WithItemID(ctx, id), id
}

func (e *Engine) emit(ctx context.Context, report *Report, event Event) {
	report.add(event.Outcome)
	logger := logging.WithContext(ctx, e.logger)
	attrs := []logging.Attr{
		logging.String("field", event.Field),
		logging.String("outcome", string(event.Outcome)),
	}
	if event.Path != "" {
		attrs = append(attrs, logging.String("path", event.Path))
	}
	if event.Detail != "" {
		attrs = append(attrs, logging.String("detail", event.Detail))
	}
	logger.Debug("asset decision", logging.Args(attrs...)...)

	if e.recorder == nil {
		return
	}
	event.Workflow = report.Workflow
	if err := e.recorder.Record(ctx, event); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database under state_dir"),
		)
	}
}
