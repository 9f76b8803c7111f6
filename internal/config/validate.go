package config

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/robfig/cron/v3"
)

// ScheduleOperations lists the operation names accepted by schedule.operations.
var ScheduleOperations = []string{"audio", "video", "direct", "images", "check"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataFile) == "" {
		return errors.New("paths.data_file must be set")
	}
	if strings.TrimSpace(c.Paths.DataRoot) == "" {
		return errors.New("paths.data_root must be set")
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"paths.logical_root", c.Paths.LogicalRoot},
		{"paths.audio_dir", c.Paths.AudioDir},
		{"paths.images_dir", c.Paths.ImagesDir},
	} {
		if path.IsAbs(field.value) {
			return fmt.Errorf("%s must be relative, got %q", field.name, field.value)
		}
		if field.value == ".." || strings.HasPrefix(field.value, "../") {
			return fmt.Errorf("%s must not leave its root, got %q", field.name, field.value)
		}
	}
	if c.Paths.AudioDir == c.Paths.ImagesDir {
		return errors.New("paths.audio_dir and paths.images_dir must differ")
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.ManifestURL == "" {
		return errors.New("remote.manifest_url must be set (or TINALS_MANIFEST_URL)")
	}
	if c.Remote.TimeoutSeconds < 0 {
		return errors.New("remote.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateImages() error {
	if c.Images.DefaultQuality < 1 || c.Images.DefaultQuality > 100 {
		return fmt.Errorf("images.default_quality must be between 1 and 100, got %d", c.Images.DefaultQuality)
	}
	switch c.Images.Collisions {
	case CollisionWarn, CollisionDisambiguate:
	default:
		return fmt.Errorf("images.collisions must be %q or %q, got %q", CollisionWarn, CollisionDisambiguate, c.Images.Collisions)
	}
	return nil
}

// ScheduleParser accepts standard five-field cron expressions and
// descriptors such as "@hourly" or "@every 6h".
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func (c *Config) validateSchedule() error {
	if c.Schedule.Cron != "" {
		if _, err := ScheduleParser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: invalid expression %q: %w", c.Schedule.Cron, err)
		}
	}
	for _, op := range c.Schedule.Operations {
		if !knownOperation(op) {
			return fmt.Errorf("schedule.operations: unknown operation %q (valid: %s)", op, strings.Join(ScheduleOperations, ", "))
		}
	}
	return nil
}

func knownOperation(op string) bool {
	for _, candidate := range ScheduleOperations {
		if op == candidate {
			return true
		}
	}
	return false
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
