package main

import (
	"errors"

	"github.com/spf13/cobra"

	"resume-bot/internal/shared/storage/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		ctx := cmd.Context()
		opts := db.OptionsFromEnv(db.DefaultMigrateOptions(), log)
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts, log)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return err
		}
		log.Info("migrate.done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
