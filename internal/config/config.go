package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the item store, the cache tree, and local state.
type Paths struct {
	DataFile       string `toml:"data_file"`
	DataRoot       string `toml:"data_root"`
	LogicalRoot    string `toml:"logical_root"`
	AudioDir       string `toml:"audio_dir"`
	ImagesDir      string `toml:"images_dir"`
	ScratchDir     string `toml:"scratch_dir"`
	ProfilesConfig string `toml:"profiles_config"`
	StateDir       string `toml:"state_dir"`
}

// Remote configures the manifest source.
type Remote struct {
	ManifestURL    string `toml:"manifest_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Tools names the external binaries used to materialize media.
type Tools struct {
	YtDlp string `toml:"yt_dlp"`
	Wget  string `toml:"wget"`
}

// Images holds derivative generation defaults.
type Images struct {
	DefaultQuality int    `toml:"default_quality"`
	Collisions     string `toml:"collisions"`
}

// History configures the SQLite run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Schedule configures the watch command.
type Schedule struct {
	Cron       string   `toml:"cron"`
	Operations []string `toml:"operations"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Success        bool   `toml:"success"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the asset tool.
//
// Configuration sections:
//   - Paths: item store, cache roots, scratch and state directories
//   - Remote: manifest URL and HTTP identity
//   - Tools: yt-dlp and wget binaries
//   - Images: default compression and filename collision policy
//   - History: run ledger location
//   - Schedule: cron expression and operations for watch mode
//   - Notifications: ntfy push notifications for finished runs
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Remote        Remote        `toml:"remote"`
	Tools         Tools         `toml:"tools"`
	Images        Images        `toml:"images"`
	History       History       `toml:"history"`
	Schedule      Schedule      `toml:"schedule"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`

	baseDir string
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tinals/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Relative paths resolve against the directory
// holding the config file, or the working directory when no file exists.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		cfg.baseDir = filepath.Dir(resolvedPath)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tinals.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and state directories. The scratch
// directory is created per run by the pipeline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.AudioDirPath(), c.ImagesDirPath(), c.Paths.StateDir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AudioDirPath returns the physical directory holding materialized audio.
func (c *Config) AudioDirPath() string {
	return filepath.Join(c.Paths.DataRoot, filepath.FromSlash(c.Paths.AudioDir))
}

// ImagesDirPath returns the physical directory holding image derivatives.
func (c *Config) ImagesDirPath() string {
	return filepath.Join(c.Paths.DataRoot, filepath.FromSlash(c.Paths.ImagesDir))
}

// LogicalAudioDir returns the cache-relative prefix recorded for audio files.
func (c *Config) LogicalAudioDir() string {
	return path.Join(c.Paths.LogicalRoot, c.Paths.AudioDir)
}

// LogicalImagesDir returns the cache-relative prefix recorded for image files.
func (c *Config) LogicalImagesDir() string {
	return path.Join(c.Paths.LogicalRoot, c.Paths.ImagesDir)
}

// LogDir returns the directory receiving log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.StateDir, "logs")
}

// HistoryPath returns the SQLite ledger location.
func (c *Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the run lock file guarding the item store.
func (c *Config) LockPath() string {
	return c.Paths.DataFile + ".lock"
}

// YtDlpBinary returns the configured yt-dlp executable.
func (c *Config) YtDlpBinary() string {
	if strings.TrimSpace(c.Tools.YtDlp) == "" {
		return defaultYtDlpBinary
	}
	return c.Tools.YtDlp
}

// WgetBinary returns the configured wget executable.
func (c *Config) WgetBinary() string {
	if strings.TrimSpace(c.Tools.Wget) == "" {
		return defaultWgetBinary
	}
	return c.Tools.Wget
}

func expandPath(pathValue string) (string, error) {
	return expandPathFrom("", pathValue)
}

func expandPathFrom(base, pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	if base != "" && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(base, pathValue)
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
