package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/oloynet/tinals-player/internal/cachepath"
	"github.com/oloynet/tinals-player/internal/fileutil"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/textutil"
	"github.com/oloynet/tinals-player/internal/tools"
)

// Mode selects how the audio is obtained.
type Mode string

const (
	ModeExtract  Mode = "extract"
	ModeDownload Mode = "download"
)

const extension = ".mp3"

// Request describes one materialization.
type Request struct {
	ID        string
	EventName string
	URL       string
	Mode      Mode
}

// Result locates the materialized file.
type Result struct {
	FileName string
	Physical string
	Logical  string
}

// Namer may rewrite the destination file name before the move. It receives
// the candidate name, extension included.
type Namer func(name string) string

// Config wires a Workflow.
type Config struct {
	Extractor  tools.Extractor
	Fetcher    tools.Fetcher
	ScratchDir string
	AudioDir   string
	Mapper     cachepath.Mapper
	Logger     *slog.Logger
}

// Workflow runs audio materializations.
type Workflow struct {
	extractor  tools.Extractor
	fetcher    tools.Fetcher
	scratchDir string
	audioDir   string
	mapper     cachepath.Mapper
	logger     *slog.Logger
}

// New builds a workflow from cfg.
func New(cfg Config) (*Workflow, error) {
	if cfg.Extractor == nil || cfg.Fetcher == nil {
		return nil, errors.New("audio workflow requires an extractor and a fetcher")
	}
	if strings.TrimSpace(cfg.ScratchDir) == "" || strings.TrimSpace(cfg.AudioDir) == "" {
		return nil, errors.New("audio workflow requires scratch and audio directories")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Workflow{
		extractor:  cfg.Extractor,
		fetcher:    cfg.Fetcher,
		scratchDir: cfg.ScratchDir,
		audioDir:   cfg.AudioDir,
		mapper:     cfg.Mapper,
		logger:     logging.NewComponentLogger(logger, "audio"),
	}, nil
}

// Materialize fetches the audio for req and moves it into the audio
// directory. A missing tool surfaces as services.ErrToolMissing; every other
// failure is specific to this item.
func (w *Workflow) Materialize(ctx context.Context, req Request, namer Namer) (Result, error) {
	if strings.TrimSpace(req.URL) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "audio", "materialize", "source url required", nil)
	}
	if err := os.MkdirAll(w.scratchDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create scratch directory: %w", err)
	}

	var (
		scratchFile string
		name        string
		err         error
	)
	switch req.Mode {
	case ModeExtract:
		scratchFile, err = w.extract(ctx, req)
		if err != nil {
			return Result{}, err
		}
		name = filepath.Base(scratchFile)
	case ModeDownload:
		scratchFile, err = w.download(ctx, req)
		if err != nil {
			return Result{}, err
		}
		name = scratchToken(req.ID) + extension
	default:
		return Result{}, services.Wrap(services.ErrValidation, "audio", "materialize", fmt.Sprintf("unknown mode %q", req.Mode), nil)
	}

	if slug := textutil.SanitizeFileName(req.EventName); slug != "" {
		name = slug + extension
	}
	if namer != nil {
		name = namer(name)
	}

	dest := filepath.Join(w.audioDir, name)
	if err := fileutil.MoveFile(scratchFile, dest); err != nil {
		_ = os.Remove(scratchFile)
		return Result{}, fmt.Errorf("move audio into cache: %w", err)
	}
	logical, err := w.mapper.Logical(dest)
	if err != nil {
		return Result{}, fmt.Errorf("map audio path: %w", err)
	}

	logging.WithContext(ctx, w.logger).Info("audio materialized",
		logging.String("mode", string(req.Mode)),
		logging.String("path", logical),
	)
	return Result{FileName: name, Physical: dest, Logical: logical}, nil
}

func (w *Workflow) extract(ctx context.Context, req Request) (string, error) {
	prefix := scratchToken(req.ID) + "___"
	pattern := filepath.Join(w.scratchDir, prefix+"*"+extension)
	if stale, _ := filepath.Glob(pattern); len(stale) > 0 {
		for _, path := range stale {
			_ = os.Remove(path)
		}
	}

	template := filepath.Join(w.scratchDir, prefix+"%(title)s.%(ext)s")
	if err := w.extractor.ExtractAudio(ctx, req.URL, template); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	// Glob returns matches in lexical order; the first one wins.
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("scan scratch directory: %w", err)
	}
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrFetch, "audio", "extract", "no mp3 produced in "+w.scratchDir, nil)
	}
	return matches[0], nil
}

func (w *Workflow) download(ctx context.Context, req Request) (string, error) {
	path := filepath.Join(w.scratchDir, "temp_"+scratchToken(req.ID)+extension)
	if err := w.fetcher.Download(ctx, req.URL, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("download audio: %w", err)
	}
	ok, err := fileutil.Exists(path)
	if err != nil {
		return "", fmt.Errorf("inspect download: %w", err)
	}
	if !ok {
		return "", services.Wrap(services.ErrFetch, "audio", "download", "file not found after download: "+path, nil)
	}
	return path, nil
}

func scratchToken(id string) string {
	return textutil.SanitizeToken(id)
}
