package main

import (
	"io"
	"strings"
	"testing"

	"github.com/oloynet/tinals-player/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Item store", statusError, "does not exist", false)
	want := "  Item store:          [ERROR] does not exist"
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Audio", statusOK, "12 files", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader(" Tools ", false)
	if len(lines) != 2 || lines[0] != "== Tools ==" || lines[1] != "-----------" {
		t.Fatalf("unexpected header %q", lines)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "yt-dlp", Available: false, Detail: `binary "yt-dlp" not found`},
		{Name: "wget", Available: true, Command: "/usr/bin/wget"},
		{Name: "ffmpeg", Available: false, Optional: true, Detail: "not found"},
	}
	lines, ready := dependencyLines(statuses, false)
	if ready {
		t.Fatal("expected missing required tool")
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR]") {
		t.Fatalf("expected error for yt-dlp, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (command: /usr/bin/wget)") {
		t.Fatalf("expected ready line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not found") {
		t.Fatalf("expected optional warning, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing tools") || !strings.Contains(lines[3], "yt-dlp") {
		t.Fatalf("expected missing summary, got %q", lines[3])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
