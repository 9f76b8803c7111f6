package tools

import (
	"context"
	"errors"
	"strings"
)

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// Wget drives wget.
type Wget struct {
	client
}

// NewWget constructs a wget client. An empty binary means "wget" on PATH.
func NewWget(binary string, opts ...Option) *Wget {
	return &Wget{client: newClient(binary, "wget", opts)}
}

// Binary returns the configured executable.
func (w *Wget) Binary() string {
	return w.binary
}

// Download writes url to dest, replacing any previous file.
func (w *Wget) Download(ctx context.Context, url, dest string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("download url required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("download destination required")
	}
	return w.run(ctx, []string{"-O", dest, url})
}
