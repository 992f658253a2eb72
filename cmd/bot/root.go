package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-bot/internal/shared/config"
	"resume-bot/internal/shared/telemetry"
)

const app = "resume-bot"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "resume-bot is a Telegram bot that reviews resumes against vacancies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "an optional YAML config file; environment variables take precedence")
}

// loadRuntime resolves the config and builds the process logger.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := telemetry.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log.With(zap.String("app", app), zap.String("env", cfg.Env)), nil
}
