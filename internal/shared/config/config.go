// Package config resolves the bot configuration from the environment, optional .env files
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds application configuration.
type Config struct {
	Env       string `mapstructure:"env"`
	Port      string `mapstructure:"port"`
	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`

	TelegramBotToken      string `mapstructure:"telegram_bot_token" validate:"required"`
	TelegramMode          string `mapstructure:"telegram_mode" validate:"oneof=polling webhook"`
	TelegramAPIURL        string `mapstructure:"telegram_api_url" validate:"required,url"`
	TelegramWebhookURL    string `mapstructure:"telegram_webhook_url" validate:"required_if=TelegramMode webhook"`
	TelegramWebhookSecret string `mapstructure:"telegram_webhook_secret"`

	DatabaseURL     string        `mapstructure:"database_url"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db" validate:"min=0"`
	StateTTL        time.Duration `mapstructure:"state_ttl"`
	DataDir         string        `mapstructure:"data_dir"`
	ObjectStoreType string        `mapstructure:"object_store" validate:"oneof=local s3"`
	AWSRegion       string        `mapstructure:"aws_region"`
	S3Bucket        string        `mapstructure:"s3_bucket" validate:"required_if=ObjectStoreType s3"`
	S3Prefix        string        `mapstructure:"s3_prefix"`

	MaxDocumentBytes int64  `mapstructure:"max_document_bytes" validate:"gt=0"`
	UserAgreementURL string `mapstructure:"user_agreement_url"`
	PrivacyURL       string `mapstructure:"privacy_url"`
	FreeOneTimeFull  int    `mapstructure:"free_one_time_full" validate:"min=0"`

	LLMProvider        string        `mapstructure:"llm_provider" validate:"oneof=openai gemini"`
	LLMBaseURL         string        `mapstructure:"llm_base_url"`
	LLMAPIKey          string        `mapstructure:"llm_api_key"`
	LLMGeneralModel    string        `mapstructure:"llm_general_model" validate:"required"`
	LLMSmallModel      string        `mapstructure:"llm_small_model" validate:"required"`
	LLMTimeout         time.Duration `mapstructure:"llm_timeout" validate:"gt=0"`
	ClassifierFallback string        `mapstructure:"classifier_fallback" validate:"oneof=accept reject"`

	PaymentsProviderToken string `mapstructure:"payments_provider_token"`
	PaymentsCurrency      string `mapstructure:"payments_currency" validate:"len=3"`
	SubscriptionPrice     int    `mapstructure:"subscription_price" validate:"gt=0"`
	SubscriptionDays      int    `mapstructure:"subscription_days" validate:"gt=0"`
	ProPrice              int    `mapstructure:"pro_price" validate:"gt=0"`
	ProDaysOnPayment      int    `mapstructure:"pro_days_on_payment" validate:"gt=0"`
	HRReviewPrice         int    `mapstructure:"hr_review_price" validate:"gt=0"`
	CoverPackPrice        int    `mapstructure:"cover_pack_price" validate:"gt=0"`

	WorkerConcurrency int           `mapstructure:"worker_concurrency" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// PaymentsEnabled reports whether invoices can be issued.
func (c Config) PaymentsEnabled() bool {
	return strings.TrimSpace(c.PaymentsProviderToken) != ""
}

// IsDevLike reports whether in-memory fallbacks are allowed.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}

var defaults = map[string]any{
	"env":        "dev",
	"port":       "8080",
	"log_format": "json",
	"log_level":  "info",

	"telegram_bot_token":      "",
	"telegram_mode":           ModePolling,
	"telegram_api_url":        "https://api.telegram.org",
	"telegram_webhook_url":    "",
	"telegram_webhook_secret": "",

	"database_url":   "",
	"redis_addr":     "",
	"redis_password": "",
	"redis_db":       0,
	"state_ttl":      24 * time.Hour,
	"data_dir":       "./data/uploads",
	"object_store":   "local",
	"aws_region":     "",
	"s3_bucket":      "",
	"s3_prefix":      "",

	"max_document_bytes": 20 << 20,
	"user_agreement_url": "",
	"privacy_url":        "",
	"free_one_time_full": 1,

	"llm_provider":        "openai",
	"llm_base_url":        "https://api.openai.com/v1",
	"llm_api_key":         "",
	"llm_general_model":   "gpt-4o",
	"llm_small_model":     "gpt-4o-mini",
	"llm_timeout":         60 * time.Second,
	"classifier_fallback": "accept",

	"payments_provider_token": "",
	"payments_currency":       "RUB",
	"subscription_price":      29900,
	"subscription_days":       7,
	"pro_price":               29900,
	"pro_days_on_payment":     30,
	"hr_review_price":         149900,
	"cover_pack_price":        7900,

	"worker_concurrency": 8,
	"shutdown_timeout":   30 * time.Second,
}

// Load resolves configuration. path is an optional YAML file; environment variables
// (upper-cased keys) win over it. .env files are loaded first without overriding the
// real environment.
func Load(path string) (Config, error) {
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.TelegramMode = strings.ToLower(strings.TrimSpace(cfg.TelegramMode))
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.ObjectStoreType = strings.ToLower(strings.TrimSpace(cfg.ObjectStoreType))
	cfg.ClassifierFallback = strings.ToLower(strings.TrimSpace(cfg.ClassifierFallback))

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.ToUpper(f.Tag.Get("mapstructure"))
	})
	return v
}

// Validate checks required keys and enumerations.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		if !cfg.IsDevLike() && cfg.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required outside dev")
		}
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}
