package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oloynet/tinals-player/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The cache lives under <base>/site/data/2026 with logical root "data/2026";
// no manifest URL is set and the profiles file does not exist.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataRoot = filepath.Join(base, "site", "data", "2026")
	cfgVal.Paths.DataFile = filepath.Join(cfgVal.Paths.DataRoot, "data.json")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "tmp")
	cfgVal.Paths.ProfilesConfig = filepath.Join(base, "config", "config.json")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Remote.ManifestURL = ""
	cfgVal.Tools.YtDlp = "yt-dlp"
	cfgVal.Tools.Wget = "wget"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithManifestURL points the config at a manifest source.
func WithManifestURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.ManifestURL = url
	}
}

// WithProfiles writes a size-profile document and points the config at it.
func WithProfiles(content string) ConfigOption {
	return func(b *configBuilder) {
		WriteText(b.t, b.cfg.Paths.ProfilesConfig, content)
	}
}

// WithCollisions sets the filename collision policy.
func WithCollisions(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Images.Collisions = policy
	}
}

// WithHistoryDisabled turns the run ledger off.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp and wget are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "wget"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
