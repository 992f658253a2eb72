package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resume-bot/internal/telegram"
)

var setWebhookCmd = &cobra.Command{
	Use:   "set-webhook",
	Short: "Register TELEGRAM_WEBHOOK_URL with the Bot API, or remove it with --delete",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		client, err := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, 0, log)
		if err != nil {
			return err
		}
		if deleteWebhook, _ := cmd.Flags().GetBool("delete"); deleteWebhook {
			if err := client.DeleteWebhook(cmd.Context()); err != nil {
				return err
			}
			log.Info("telegram.webhook.deleted")
			return nil
		}
		if cfg.TelegramWebhookURL == "" {
			return errors.New("TELEGRAM_WEBHOOK_URL is required")
		}
		if err := client.SetWebhook(cmd.Context(), cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret); err != nil {
			return err
		}
		log.Info("telegram.webhook.set", zap.String("url", cfg.TelegramWebhookURL))
		return nil
	},
}

func init() {
	setWebhookCmd.Flags().Bool("delete", false, "delete the webhook and return to long polling")
	rootCmd.AddCommand(setWebhookCmd)
}
