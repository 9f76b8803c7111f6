package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	dailyLogPrefix = "tinals-"
	dailyLogLayout = "20060102"
)

// DailyLogPath names the log file receiving entries for the given day.
func DailyLogPath(dir string, day time.Time) string {
	return filepath.Join(dir, dailyLogPrefix+day.Format(dailyLogLayout)+".log")
}

// DailyLogPattern matches every file produced by DailyLogPath.
const DailyLogPattern = dailyLogPrefix + "*.log"

// PruneDailyLogs removes daily log files in dir whose day is more than
// retentionDays before now, returning how many were removed. The day comes
// from the file name; files with a foreign name fall back to their mtime.
// Today's file is never removed. retentionDays <= 0 disables pruning.
func PruneDailyLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) int {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0
	}
	if logger == nil {
		logger = NewNop()
	}
	today := DailyLogPath(dir, now)
	cutoff := now.AddDate(0, 0, -retentionDays)

	matches, err := filepath.Glob(filepath.Join(dir, DailyLogPattern))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range matches {
		if path == today {
			continue
		}
		day, ok := logDay(path)
		if !ok {
			continue
		}
		if !day.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and state_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		logger.Debug("log pruned", String("path", path), String(FieldEventType, "log_pruned"))
	}
	return removed
}

func logDay(path string) (time.Time, bool) {
	stamp := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), dailyLogPrefix), ".log")
	if day, err := time.ParseInLocation(dailyLogLayout, stamp, time.Local); err == nil {
		return day.AddDate(0, 0, 1), true
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
