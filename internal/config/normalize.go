package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRemote()
	c.normalizeTools()
	c.normalizeImages()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeSchedule()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if topic := strings.TrimSpace(os.Getenv("TINALS_NTFY_TOPIC")); topic != "" && c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = topic
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
		def   string
	}{
		{"paths.data_file", &c.Paths.DataFile, defaultDataFile},
		{"paths.data_root", &c.Paths.DataRoot, defaultDataRoot},
		{"paths.scratch_dir", &c.Paths.ScratchDir, defaultScratchDir},
		{"paths.profiles_config", &c.Paths.ProfilesConfig, defaultProfilesConfig},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.def
		}
		expanded, err := expandPathFrom(c.baseDir, strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	c.Paths.LogicalRoot = cleanLogical(c.Paths.LogicalRoot)
	if c.Paths.LogicalRoot == "" {
		c.Paths.LogicalRoot = defaultLogicalRoot
	}
	c.Paths.AudioDir = cleanLogical(c.Paths.AudioDir)
	if c.Paths.AudioDir == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	c.Paths.ImagesDir = cleanLogical(c.Paths.ImagesDir)
	if c.Paths.ImagesDir == "" {
		c.Paths.ImagesDir = defaultImagesDir
	}
	return nil
}

// cleanLogical converts a cache-relative path to slash form without
// leading "./" or trailing separators.
func cleanLogical(value string) string {
	value = strings.TrimSpace(filepath.ToSlash(value))
	if value == "" {
		return ""
	}
	cleaned := path.Clean(value)
	if cleaned == "." {
		return ""
	}
	return strings.TrimPrefix(cleaned, "./")
}

func (c *Config) normalizeRemote() {
	if value, ok := os.LookupEnv("TINALS_MANIFEST_URL"); ok && strings.TrimSpace(value) != "" {
		c.Remote.ManifestURL = value
	}
	c.Remote.ManifestURL = strings.TrimSpace(c.Remote.ManifestURL)
	c.Remote.UserAgent = strings.TrimSpace(c.Remote.UserAgent)
	if c.Remote.UserAgent == "" {
		c.Remote.UserAgent = defaultUserAgent
	}
	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeout
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YtDlp = strings.TrimSpace(c.Tools.YtDlp)
	if c.Tools.YtDlp == "" {
		if value, ok := os.LookupEnv("YT_DLP_BIN"); ok {
			c.Tools.YtDlp = strings.TrimSpace(value)
		}
	}
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = defaultYtDlpBinary
	}
	c.Tools.Wget = strings.TrimSpace(c.Tools.Wget)
	if c.Tools.Wget == "" {
		if value, ok := os.LookupEnv("WGET_BIN"); ok {
			c.Tools.Wget = strings.TrimSpace(value)
		}
	}
	if c.Tools.Wget == "" {
		c.Tools.Wget = defaultWgetBinary
	}
}

func (c *Config) normalizeImages() {
	if c.Images.DefaultQuality == 0 {
		c.Images.DefaultQuality = defaultImageQuality
	}
	c.Images.Collisions = strings.ToLower(strings.TrimSpace(c.Images.Collisions))
	if c.Images.Collisions == "" {
		c.Images.Collisions = CollisionWarn
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = ""
		return nil
	}
	expanded, err := expandPathFrom(c.baseDir, strings.TrimSpace(c.History.Path))
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	ops := make([]string, 0, len(c.Schedule.Operations))
	for _, op := range c.Schedule.Operations {
		if op = strings.ToLower(strings.TrimSpace(op)); op != "" {
			ops = append(ops, op)
		}
	}
	c.Schedule.Operations = ops
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
