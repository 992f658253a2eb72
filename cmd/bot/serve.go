package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resume-bot/internal/bootstrap"
	"resume-bot/internal/shared/config"
	"resume-bot/internal/shared/server"
	"resume-bot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (long polling or webhook) with the health and metrics endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap.failed", zap.Error(err))
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http.listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.TelegramMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.TelegramMode == config.ModeWebhook {
		g.Go(func() error {
			return a.Telegram.SetWebhook(gctx, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret)
		})
	} else {
		g.Go(func() error {
			return telegram.NewPoller(a.Telegram, a.Controller, log).Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("http.shutdown_failed", zap.Error(err))
		}
		if err := a.Controller.Shutdown(shutdownCtx); err != nil {
			log.Warn("conversation.shutdown_incomplete", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("serve.failed", zap.Error(err))
		return err
	}
	log.Info("serve.stopped")
	return nil
}
