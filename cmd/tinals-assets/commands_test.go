package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oloynet/tinals-player/internal/reconcile"
	"github.com/oloynet/tinals-player/internal/store"
	"github.com/oloynet/tinals-player/internal/testsupport"
)

func TestRunWithoutFlagsPrintsHelp(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, flag := range []string{"--yt-to-mp3", "--mp3", "--image", "--reset", "--check", "--max-width", "--compress"} {
		if !strings.Contains(out, flag) {
			t.Fatalf("expected %s in help output:\n%s", flag, out)
		}
	}
}

func TestRunFlagsMapToPipelineOptions(t *testing.T) {
	opts := runFlags{ytToMP3: true, mp3: true, image: true, check: "all", limit: 3, compress: 60}.options()
	if len(opts.Audio) != 2 || opts.Audio[0] != reconcile.SourceVideo || opts.Audio[1] != reconcile.SourceDirect {
		t.Fatalf("unexpected audio passes %v", opts.Audio)
	}
	if !opts.Images || opts.Check != "all" || opts.Limit != 3 || opts.Quality != 60 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestCheckCommandClearsMissingFilesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteItems(t, env.cfg, `[{"id": 1, "event_name": "Gone", "audio": "data/2026/mp3/gone.mp3"}]`)

	out, err := env.run(t, "run", "--check")
	if err != nil {
		t.Fatalf("run --check: %v", err)
	}
	if !strings.Contains(out, "check") || !strings.Contains(out, "Cleared") {
		t.Fatalf("expected summary table, got:\n%s", out)
	}
	items := testsupport.ReadItems(t, env.cfg)
	if items[0].Asset(store.FieldAudio).IsPresent() {
		t.Fatal("expected audio field cleared")
	}

	out, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "check:all") {
		t.Fatalf("expected check run in history, got:\n%s", out)
	}
}

func TestResetRequiresTarget(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "reset"); err == nil {
		t.Fatal("expected error without target")
	}
}

func TestImageOverridesAreValidated(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteItems(t, env.cfg, `[{"id": 1, "event_name": "Alpha"}]`)
	for _, args := range [][]string{
		{"run", "--image", "--compress", "150"},
		{"sync", "images", "--max-width=-10"},
	} {
		_, err := env.run(t, args...)
		if err == nil || !strings.Contains(err.Error(), "validation error") {
			t.Fatalf("%v: expected validation error, got %v", args, err)
		}
	}
}

func TestRunWithEmptyStoreReportsNoData(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "check", "audio")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "No local data found or empty.") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStatusJSONCountsFields(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteItems(t, env.cfg, `[
		{"id": 1, "audio": "data/2026/mp3/a.mp3", "image": "data/2026/images/a.webp"},
		{"id": 2, "audio": "elsewhere/b.mp3"},
		{"id": 3}
	]`)
	testsupport.WriteText(t, filepath.Join(env.cfg.AudioDirPath(), "a.mp3"), "audio")

	out, err := env.run(t, "status", "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status cacheStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if status.Items != 3 || status.Audio.Files != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
	audio := status.Fields[0]
	if audio.Field != store.FieldAudio || audio.Present != 2 || audio.OnDisk != 1 || audio.Foreign != 1 {
		t.Fatalf("unexpected audio status %+v", audio)
	}
	image := status.Fields[1]
	if image.Field != "image" || image.Present != 1 || image.Missing != 1 {
		t.Fatalf("unexpected image status %+v", image)
	}
}

func TestProfilesCommandListsBuiltInSizes(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "profiles")
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	for _, want := range []string{"Built-in size profiles", "image_thumbnail", "<name>.mobile.webp", "max 768xauto"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestConfigInitRefusesToOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "tinals", "config.toml")
	run := func(extra ...string) error {
		cmd := newRootCommand()
		cmd.SetOut(new(strings.Builder))
		cmd.SetArgs(append([]string{"config", "init", "--path", target}, extra...))
		return cmd.Execute()
	}
	if err := run(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}
	if err := run(); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if err := run("--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestWatchRequiresSchedule(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := env.run(t, "watch")
	if err == nil || !strings.Contains(err.Error(), "no schedule") {
		t.Fatalf("expected missing schedule error, got %v", err)
	}
	_, err = env.run(t, "watch", "--cron", "@hourly", "--ops", "icons")
	if err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Fatalf("expected unknown operation error, got %v", err)
	}
}
