package manifest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/store"
)

// HTTPDoer describes the HTTP client used to fetch the manifest.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "manifest")
	}
}

// Client loads the remote manifest from an http(s) URL or a local file.
type Client struct {
	http      HTTPDoer
	userAgent string
	logger    *slog.Logger
}

// NewClient constructs a manifest client. A zero timeout disables the deadline.
func NewClient(userAgent string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: strings.TrimSpace(userAgent),
		logger:    logging.NewComponentLogger(nil, "manifest"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves and indexes the manifest at source.
func (c *Client) Fetch(ctx context.Context, source string) (Manifest, error) {
	data, err := c.read(ctx, strings.TrimSpace(source))
	if err != nil {
		return Manifest{}, err
	}
	records, err := store.Decode(data)
	if err != nil {
		return Manifest{}, services.Wrap(services.ErrValidation, "manifest", "decode", source, err)
	}
	m := Index(records)
	c.logger.Info("manifest loaded",
		logging.String(logging.FieldEventType, "manifest_loaded"),
		logging.String("source", source),
		logging.Int("records", m.Len()))
	return m, nil
}

// FetchOrEmpty returns an empty manifest when the fetch fails, logging the
// cause. Every item then counts as absent from the manifest.
func (c *Client) FetchOrEmpty(ctx context.Context, source string) Manifest {
	m, err := c.Fetch(ctx, source)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "manifest unavailable; continuing with an empty manifest", "manifest_fetch_failed",
			logging.String("source", source),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check remote.manifest_url and network access"),
			logging.String(logging.FieldImpact, "no item will be materialized in this run"))
		return Manifest{}
	}
	return m
}

func (c *Client) read(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, services.Wrap(services.ErrConfiguration, "manifest", "fetch", "no manifest source configured", nil)
	}
	if IsHTTPURL(source) {
		return c.get(ctx, source)
	}
	path := source
	if strings.HasPrefix(source, "file://") {
		parsed, err := url.Parse(source)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "manifest", "fetch", "invalid file url", err)
		}
		path = parsed.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "manifest", "read", path, err)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "manifest", "fetch", "build request", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "manifest", "fetch", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, services.Wrap(services.ErrFetch, "manifest", "fetch", fmt.Sprintf("%s returned %d", source, resp.StatusCode), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "manifest", "read body", source, err)
	}
	return data, nil
}
