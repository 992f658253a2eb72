// Package bootstrap wires configuration into the running bot: storage, the LLM provider,
// the conversation controller and the Telegram transport.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-bot/internal/analyses"
	"resume-bot/internal/conversation"
	"resume-bot/internal/entitlement"
	"resume-bot/internal/extract"
	"resume-bot/internal/llm"
	"resume-bot/internal/llm/gemini"
	"resume-bot/internal/llm/openai"
	"resume-bot/internal/messages"
	"resume-bot/internal/payments"
	"resume-bot/internal/review"
	"resume-bot/internal/services/health"
	"resume-bot/internal/shared/config"
	"resume-bot/internal/shared/server"
	"resume-bot/internal/shared/server/middleware"
	"resume-bot/internal/shared/storage/db"
	"resume-bot/internal/shared/storage/object"
	localstore "resume-bot/internal/shared/storage/object/local"
	s3store "resume-bot/internal/shared/storage/object/s3"
	"resume-bot/internal/telegram"
	"resume-bot/internal/users"
)

// webhookLimit allows Telegram's bursty delivery while capping abuse of a leaked URL.
var webhookLimit = middleware.RateLimitRule{Rate: 30, Burst: 100}

// App holds the wired dependencies.
type App struct {
	Config     config.Config
	Log        *zap.Logger
	DB         *sql.DB
	Sessions   conversation.Store
	Uploads    object.ObjectStore
	Generator  llm.Generator
	Telegram   *telegram.Client
	Messenger  *telegram.Messenger
	Controller *conversation.Controller
	Health     *health.Service
	Router     *gin.Engine

	closers []func() error
}

// Build prepares every dependency. Outside dev a missing database or an unreachable
// Redis is fatal; in dev they fall back to in-memory implementations.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{Config: cfg, Log: log, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.Health.Register("postgres", sqlDB)
		app.closers = append(app.closers, sqlDB.Close)
	}

	if err := app.buildSessions(ctx); err != nil {
		app.Close()
		return nil, err
	}

	uploads, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Uploads = uploads

	gen, err := buildGenerator(ctx, cfg, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Generator = gen

	if err := app.buildController(); err != nil {
		app.Close()
		return nil, err
	}

	var hook gin.HandlerFunc
	if cfg.TelegramMode == config.ModeWebhook {
		hook = telegram.WebhookHandler(cfg.TelegramWebhookSecret, app.Controller, log)
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Log:          log,
		Health:       app.Health,
		Webhook:      hook,
		WebhookPath:  WebhookPath(cfg.TelegramWebhookURL),
		WebhookLimit: webhookLimit,
	})

	return app, nil
}

// Close releases storage handles.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("bootstrap.close_failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func buildDB(ctx context.Context, cfg config.Config, log *zap.Logger) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Info("bootstrap.database.memory", zap.String("reason", "DATABASE_URL empty"))
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions(), log)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts, log)
	if err != nil {
		if cfg.IsDevLike() {
			log.Warn("bootstrap.database.memory", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func (a *App) buildSessions(ctx context.Context) error {
	cfg := a.Config
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		a.Log.Info("bootstrap.sessions.memory", zap.String("reason", "REDIS_ADDR empty"))
		a.Sessions = conversation.NewMemoryStore()
		return nil
	}
	store, err := conversation.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.StateTTL)
	if err != nil {
		return err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		if cfg.IsDevLike() {
			a.Log.Warn("bootstrap.sessions.memory", zap.Error(err))
			a.Sessions = conversation.NewMemoryStore()
			return nil
		}
		return fmt.Errorf("redis ping: %w", err)
	}
	a.Sessions = store
	a.Health.Register("redis", health.PingFunc(store.Ping))
	a.closers = append(a.closers, store.Close)
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.DataDir), nil
	}
}

func buildGenerator(ctx context.Context, cfg config.Config, log *zap.Logger) (llm.Generator, error) {
	models := llm.Models{General: cfg.LLMGeneralModel, Small: cfg.LLMSmallModel}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		if cfg.IsDevLike() {
			log.Warn("bootstrap.llm.placeholder", zap.String("reason", "LLM_API_KEY empty"))
			return llm.PlaceholderGenerator{}, nil
		}
		return nil, errors.New("LLM_API_KEY is required")
	}
	switch cfg.LLMProvider {
	case "gemini":
		return gemini.NewGenerator(ctx, cfg.LLMAPIKey, models, cfg.LLMTimeout)
	default:
		return openai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, models, cfg.LLMTimeout, log)
	}
}

func (a *App) buildController() error {
	cfg := a.Config

	var (
		userRepo     users.Repo
		analysisRepo analyses.Repo
		messageRepo  messages.Repo
	)
	if a.DB != nil {
		userRepo = &users.PGRepo{DB: a.DB}
		analysisRepo = &analyses.PGRepo{DB: a.DB}
		messageRepo = &messages.PGRepo{DB: a.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		messageRepo = messages.NewMemoryRepo()
	}

	policy, err := review.ParseFallbackPolicy(cfg.ClassifierFallback)
	if err != nil {
		return err
	}

	catalog := payments.Catalog{
		Currency:          cfg.PaymentsCurrency,
		SubscriptionPrice: cfg.SubscriptionPrice,
		SubscriptionDays:  cfg.SubscriptionDays,
		ProPrice:          cfg.ProPrice,
		ProDays:           cfg.ProDaysOnPayment,
		HRReviewPrice:     cfg.HRReviewPrice,
		CoverPackPrice:    cfg.CoverPackPrice,
	}

	client, err := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, 0, a.Log)
	if err != nil {
		return err
	}
	a.Telegram = client
	a.Messenger = telegram.NewMessenger(client, cfg.PaymentsProviderToken)

	controller, err := conversation.New(conversation.Deps{
		Users:      userRepo,
		Messages:   messageRepo,
		Analyses:   analysisRepo,
		Sessions:   a.Sessions,
		Uploads:    a.Uploads,
		Extractor:  extract.Extractor{},
		Classifier: review.NewClassifier(a.Generator, policy, a.Log),
		Feedback:   review.NewFeedbackGenerator(a.Generator, a.Log),
		Cover:      review.NewCoverLetterWriter(a.Generator, a.Log),
		Guard:      entitlement.NewGuard(userRepo),
		Settler:    payments.NewSettler(userRepo, catalog, a.Log),
		Messenger:  a.Messenger,
		Log:        a.Log,
	}, conversation.Options{
		FreeOneTimeFull:  cfg.FreeOneTimeFull,
		MaxDocumentBytes: cfg.MaxDocumentBytes,
		UserAgreementURL: cfg.UserAgreementURL,
		PrivacyURL:       cfg.PrivacyURL,
		PaymentsEnabled:  cfg.PaymentsEnabled(),
		Catalog:          catalog,
		Concurrency:      cfg.WorkerConcurrency,
	})
	if err != nil {
		return err
	}
	a.Controller = controller
	return nil
}

// WebhookPath extracts the route path from the public webhook URL.
func WebhookPath(webhookURL string) string {
	const fallback = "/telegram/webhook"
	if strings.TrimSpace(webhookURL) == "" {
		return fallback
	}
	u, err := url.Parse(webhookURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return fallback
	}
	return u.Path
}
