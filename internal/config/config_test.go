package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/oloynet/tinals-player/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("YT_DLP_BIN", "")
	t.Setenv("WGET_BIN", "")
	t.Setenv("TINALS_MANIFEST_URL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "tinals")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.DataFile) {
		t.Fatalf("expected absolute data file, got %q", cfg.Paths.DataFile)
	}
	if cfg.Paths.LogicalRoot != "data/2026" {
		t.Fatalf("unexpected logical root: %q", cfg.Paths.LogicalRoot)
	}
	if cfg.LogicalAudioDir() != "data/2026/mp3" {
		t.Fatalf("unexpected logical audio dir: %q", cfg.LogicalAudioDir())
	}
	if cfg.LogicalImagesDir() != "data/2026/images" {
		t.Fatalf("unexpected logical images dir: %q", cfg.LogicalImagesDir())
	}
	if cfg.YtDlpBinary() != "yt-dlp" || cfg.WgetBinary() != "wget" {
		t.Fatalf("unexpected tool defaults: %q %q", cfg.YtDlpBinary(), cfg.WgetBinary())
	}
	if cfg.Images.DefaultQuality != 80 {
		t.Fatalf("expected default quality 80, got %d", cfg.Images.DefaultQuality)
	}
	if cfg.Images.Collisions != config.CollisionWarn {
		t.Fatalf("unexpected collision policy %q", cfg.Images.Collisions)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
	if cfg.LockPath() != cfg.Paths.DataFile+".lock" {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadToolEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("YT_DLP_BIN", "/opt/bin/yt-dlp")
	t.Setenv("WGET_BIN", "/usr/local/bin/wget")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.YtDlpBinary() != "/opt/bin/yt-dlp" {
		t.Fatalf("expected yt-dlp from env, got %q", cfg.YtDlpBinary())
	}
	if cfg.WgetBinary() != "/usr/local/bin/wget" {
		t.Fatalf("expected wget from env, got %q", cfg.WgetBinary())
	}
}

func TestLoadResolvesPathsRelativeToConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tinals.toml")
	content := `
[paths]
data_file = "site/data.json"
data_root = "site/cache"
logical_root = "./data/2027/"
audio_dir = "audio/"

[images]
collisions = "Disambiguate"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.DataFile != filepath.Join(dir, "site", "data.json") {
		t.Fatalf("unexpected data file %q", cfg.Paths.DataFile)
	}
	if cfg.AudioDirPath() != filepath.Join(dir, "site", "cache", "audio") {
		t.Fatalf("unexpected audio dir %q", cfg.AudioDirPath())
	}
	if cfg.Paths.LogicalRoot != "data/2027" {
		t.Fatalf("unexpected logical root %q", cfg.Paths.LogicalRoot)
	}
	if cfg.LogicalAudioDir() != "data/2027/audio" {
		t.Fatalf("unexpected logical audio dir %q", cfg.LogicalAudioDir())
	}
	if cfg.Images.Collisions != config.CollisionDisambiguate {
		t.Fatalf("expected normalized collision policy, got %q", cfg.Images.Collisions)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"quality", func(c *config.Config) { c.Images.DefaultQuality = 101 }, "images.default_quality"},
		{"collisions", func(c *config.Config) { c.Images.Collisions = "rename" }, "images.collisions"},
		{"logical traversal", func(c *config.Config) { c.Paths.LogicalRoot = "../data" }, "paths.logical_root"},
		{"absolute audio", func(c *config.Config) { c.Paths.AudioDir = "/mp3" }, "paths.audio_dir"},
		{"same dirs", func(c *config.Config) { c.Paths.ImagesDir = c.Paths.AudioDir }, "must differ"},
		{"schedule op", func(c *config.Config) { c.Schedule.Operations = []string{"video", "icons"} }, "schedule.operations"},
		{"cron", func(c *config.Config) { c.Schedule.Cron = "every six hours" }, "schedule.cron"},
		{"ntfy", func(c *config.Config) { c.Notifications.NtfyTopic = "tinals-alerts" }, "notifications.ntfy_topic"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"manifest", func(c *config.Config) { c.Remote.ManifestURL = "" }, "remote.manifest_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.DataFile = "/tmp/data.json"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}
