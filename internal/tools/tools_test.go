package tools_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/oloynet/tinals-player/internal/services"
	"github.com/oloynet/tinals-player/internal/tools"
)

type stubExecutor struct {
	binaries []string
	args     [][]string
	lines    []string
	err      error
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.binaries = append(s.binaries, binary)
	s.args = append(s.args, append([]string(nil), args...))
	for _, line := range s.lines {
		onOutput(line)
	}
	return s.err
}

func TestYtDlpExtractAudioArgs(t *testing.T) {
	exec := &stubExecutor{lines: []string{"[download] 100%"}}
	client := tools.NewYtDlp("", tools.WithExecutor(exec))

	if err := client.ExtractAudio(context.Background(), "https://youtu.be/abc", "/tmp/s/7___%(title)s.%(ext)s"); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if exec.binaries[0] != "yt-dlp" {
		t.Fatalf("expected default binary, got %q", exec.binaries[0])
	}
	want := []string{
		"--audio-quality", "0",
		"--audio-format", "mp3",
		"--extract-audio",
		"--restrict-filenames",
		"--no-windows-filenames",
		"--rm-cache-dir",
		"--output", "/tmp/s/7___%(title)s.%(ext)s",
		"https://youtu.be/abc",
	}
	if !reflect.DeepEqual(exec.args[0], want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", exec.args[0], want)
	}
}

func TestWgetDownloadArgs(t *testing.T) {
	exec := &stubExecutor{}
	client := tools.NewWget("/usr/bin/wget", tools.WithExecutor(exec))

	if err := client.Download(context.Background(), "https://cdn.example/a.mp3", "/tmp/s/temp_7.mp3"); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if client.Binary() != "/usr/bin/wget" || exec.binaries[0] != "/usr/bin/wget" {
		t.Fatalf("unexpected binary %q", exec.binaries[0])
	}
	want := []string{"-O", "/tmp/s/temp_7.mp3", "https://cdn.example/a.mp3"}
	if !reflect.DeepEqual(exec.args[0], want) {
		t.Fatalf("unexpected args %v", exec.args[0])
	}
}

func TestClientsRejectEmptyInputs(t *testing.T) {
	exec := &stubExecutor{}
	if err := tools.NewWget("", tools.WithExecutor(exec)).Download(context.Background(), "", "/tmp/x"); err == nil {
		t.Fatal("expected error for empty url")
	}
	if err := tools.NewYtDlp("", tools.WithExecutor(exec)).ExtractAudio(context.Background(), " ", "x"); err == nil {
		t.Fatal("expected error for empty video url")
	}
	if len(exec.args) != 0 {
		t.Fatalf("executor should not run, got %v", exec.args)
	}
}

func TestClientsPropagateExecutorErrors(t *testing.T) {
	exec := &stubExecutor{err: services.Wrap(services.ErrToolMissing, "tools", "start", "wget", nil)}
	err := tools.NewWget("", tools.WithExecutor(exec)).Download(context.Background(), "https://x/a.mp3", "/tmp/a.mp3")
	if !errors.Is(err, services.ErrToolMissing) {
		t.Fatalf("expected tool missing, got %v", err)
	}
}

func TestCommandExecutorMissingBinary(t *testing.T) {
	err := tools.CommandExecutor{}.Run(context.Background(), "tinals-definitely-not-installed", nil, nil)
	if !errors.Is(err, services.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}

	err = tools.CommandExecutor{}.Run(context.Background(), filepath.Join(t.TempDir(), "wget"), nil, nil)
	if !errors.Is(err, services.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing for absent path, got %v", err)
	}
}

func TestCommandExecutorForwardsOutputAndClassifiesExit(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-tool")
	body := "#!/bin/sh\necho \"first $1\"\necho oops >&2\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	var lines []string
	err := tools.CommandExecutor{}.Run(context.Background(), script, []string{"arg"}, func(line string) {
		lines = append(lines, line)
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if errors.Is(err, services.ErrToolMissing) {
		t.Fatalf("exit failure must not count as missing tool: %v", err)
	}
	if !strings.Contains(err.Error(), "oops") {
		t.Fatalf("expected output tail in error, got %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "first arg") || !strings.Contains(joined, "oops") {
		t.Fatalf("expected forwarded output, got %q", joined)
	}
}

func TestCommandExecutorSuccess(t *testing.T) {
	script := filepath.Join(t.TempDir(), "ok-tool")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := (tools.CommandExecutor{}).Run(context.Background(), script, nil, nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}
