package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	t.Setenv("HOME", filepath.Join(testsupport.BaseDir(cfg), "home"))
	t.Setenv("YT_DLP_BIN", "")
	t.Setenv("WGET_BIN", "")
	t.Setenv("TINALS_MANIFEST_URL", "")
	t.Setenv("TINALS_NTFY_TOPIC", "")

	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "remote", "manifest.json")
	testsupport.WriteText(t, manifestPath, "[]")
	cfg.Remote.ManifestURL = "file://" + manifestPath

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// run executes the CLI with the test config and returns stdout.
func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", env.configPath, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
