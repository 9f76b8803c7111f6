package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/oloynet/tinals-player/internal/config"
	"github.com/oloynet/tinals-player/internal/history"
	"github.com/oloynet/tinals-player/internal/logging"
	"github.com/oloynet/tinals-player/internal/pipeline"
)

const defaultEnvFile = ".env"

type globalFlags struct {
	config    string
	envFile   string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := loadEnvFile(strings.TrimSpace(c.flags.envFile)); err != nil {
			c.configErr = err
			return
		}
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if level := strings.ToLower(strings.TrimSpace(c.flags.logLevel)); level != "" {
			cfg.Logging.Level = level
		}
		if format := strings.ToLower(strings.TrimSpace(c.flags.logFormat)); format != "" {
			cfg.Logging.Format = format
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openLedger returns nil when history is disabled.
func (c *commandContext) openLedger() (*history.Ledger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	ledger, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return ledger, nil
}

func (c *commandContext) withLedger(fn func(*history.Ledger) error) error {
	ledger, err := c.openLedger()
	if err != nil {
		return err
	}
	if ledger == nil {
		return errors.New("run history is disabled (history.enabled = false)")
	}
	defer ledger.Close()
	return fn(ledger)
}

// runPipeline executes one run and prints its summary to stdout.
func (c *commandContext) runPipeline(cmd *cobra.Command, opts pipeline.Options) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	ledger, err := c.openLedger()
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	runner, err := pipeline.New(cfg, logger, pipeline.WithLedger(ledger))
	if err != nil {
		return err
	}
	summary, runErr := runner.Run(cmd.Context(), opts)
	if summary.RunID != "" {
		printSummary(cmd.OutOrStdout(), summary)
	}
	housekeeping(cmd.Context(), cfg, logger, ledger)
	return runErr
}

func housekeeping(ctx context.Context, cfg *config.Config, logger *slog.Logger, ledger *history.Ledger) {
	days := cfg.Logging.RetentionDays
	logging.PruneDailyLogs(logger, cfg.LogDir(), days, time.Now())
	if ledger == nil || days <= 0 {
		return
	}
	removed, err := ledger.Prune(context.WithoutCancel(ctx), time.Now().AddDate(0, 0, -days))
	if err != nil {
		logger.Warn("prune run history failed", logging.Error(err))
		return
	}
	if removed > 0 {
		logger.Debug("pruned run history", logging.Int64("runs", removed))
	}
}

// loadEnvFile never overrides variables already set in the environment.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
