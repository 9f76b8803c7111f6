package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/oloynet/tinals-player/internal/logging"
)

// Option configures a tool client.
type Option func(*client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger routes tool output to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type client struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

func newClient(binary, fallback string, opts []Option) client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = fallback
	}
	c := client{binary: binary, exec: CommandExecutor{}, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c client) run(ctx context.Context, args []string) error {
	logger := logging.WithContext(ctx, c.logger)
	return c.exec.Run(ctx, c.binary, args, func(line string) {
		logger.Debug("tool output", logging.String("tool", c.binary), logging.String("line", line))
	})
}

// Extractor pulls the audio track out of a video page.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoURL, outputTemplate string) error
}

// YtDlp drives yt-dlp.
type YtDlp struct {
	client
}

// NewYtDlp constructs a yt-dlp client. An empty binary means "yt-dlp" on PATH.
func NewYtDlp(binary string, opts ...Option) *YtDlp {
	return &YtDlp{client: newClient(binary, "yt-dlp", opts)}
}

// Binary returns the configured executable.
func (y *YtDlp) Binary() string {
	return y.binary
}

// ExtractAudio converts the best audio stream of videoURL to mp3, naming the
// output after outputTemplate (a yt-dlp output template).
func (y *YtDlp) ExtractAudio(ctx context.Context, videoURL, outputTemplate string) error {
	if strings.TrimSpace(videoURL) == "" {
		return errors.New("video url required")
	}
	return y.run(ctx, ExtractAudioArgs(videoURL, outputTemplate))
}

// ExtractAudioArgs builds the yt-dlp argument list for an mp3 extraction.
func ExtractAudioArgs(videoURL, outputTemplate string) []string {
	return []string{
		"--audio-quality", "0",
		"--audio-format", "mp3",
		"--extract-audio",
		"--restrict-filenames",
		"--no-windows-filenames",
		"--rm-cache-dir",
		"--output", outputTemplate,
		videoURL,
	}
}
