package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/logs"
)

type collector struct {
	mu    sync.Mutex
	lines []string
}

func (c *collector) add(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func TestTailLastMatchingLines(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.Local)
	content := "a run_id=1\nb run_id=2\nc run_id=1\nd run_id=1\n"
	if err := os.WriteFile(logging.DailyLogPath(dir, now), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	var got collector
	err := logs.Tail(context.Background(), dir, logs.Options{Lines: 2, Match: "run_id=1", Now: func() time.Time { return now }}, got.add)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	lines := got.snapshot()
	if strings.Join(lines, "|") != "c run_id=1|d run_id=1" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestTailFallsBackToLatestFile(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"tinals-20260101.log": "old\n",
		"tinals-20260203.log": "newest\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	latest, ok := logs.Latest(dir)
	if !ok || filepath.Base(latest) != "tinals-20260203.log" {
		t.Fatalf("unexpected latest %q", latest)
	}

	var got collector
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.Local)
	if err := logs.Tail(context.Background(), dir, logs.Options{Lines: 5, Now: func() time.Time { return now }}, got.add); err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if lines := got.snapshot(); len(lines) != 1 || lines[0] != "newest" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestTailFollowPicksUpAppendedLines(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, time.Local)
	path := logging.DailyLogPath(dir, now)
	if err := os.WriteFile(path, []byte("start\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var got collector
	done := make(chan error, 1)
	go func() {
		done <- logs.Tail(ctx, dir, logs.Options{Lines: 1, Follow: true, Poll: 20 * time.Millisecond, Now: func() time.Time { return now }}, got.add)
	}()

	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\npartial"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(got.snapshot()) >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if lines := got.snapshot(); strings.Join(lines, "|") != "start|later" {
		t.Fatalf("unexpected lines %q", lines)
	}
}
