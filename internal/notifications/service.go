package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oloynet/tinals-player/internal/config"
)

const userAgent = "tinals-assets/1.0"

// RunResult summarizes a finished run.
type RunResult struct {
	RunID        string
	Operations   []string
	Items        int
	Materialized int
	Cleared      int
	Failed       int
	Duration     time.Duration
}

// Service defines the notification surface used by the pipeline.
type Service interface {
	NotifyRunCompleted(ctx context.Context, result RunResult) error
	NotifyRunFailed(ctx context.Context, result RunResult, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op one when
// notifications.ntfy_topic is empty.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		success:  cfg.Notifications.Success,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	success  bool
	errors   bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, result RunResult) error {
	if !n.success {
		return nil
	}
	title := "TINALS assets - Run complete"
	tags := []string{"tinals", "run", "completed"}
	if result.Failed > 0 {
		title = "TINALS assets - Run complete (with failures)"
		tags = append(tags, "warning")
	}
	return n.send(ctx, payload{
		title:   title,
		message: describe(result),
		tags:    tags,
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, result RunResult, err error) error {
	if !n.errors {
		return nil
	}
	var b strings.Builder
	b.WriteString(describe(result))
	if err != nil {
		b.WriteString("\nError: ")
		b.WriteString(strings.TrimSpace(err.Error()))
	}
	return n.send(ctx, payload{
		title:    "TINALS assets - Run failed",
		message:  b.String(),
		tags:     []string{"tinals", "run", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "TINALS assets - Test",
		message:  "Notification system test",
		tags:     []string{"tinals", "test"},
		priority: "low",
	})
}

func describe(result RunResult) string {
	duration := result.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	ops := strings.Join(result.Operations, ", ")
	if ops == "" {
		ops = "no operations"
	}
	return fmt.Sprintf("Run %s (%s): %d items, %d materialized, %d cleared, %d failed in %s",
		result.RunID, ops, result.Items, result.Materialized, result.Cleared, result.Failed, duration)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunResult) error     { return nil }
func (noopService) NotifyRunFailed(context.Context, RunResult, error) error { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
