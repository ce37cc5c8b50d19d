package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Chat      ChatConfig
	TicketAPI TicketAPIConfig
	SMTP      SMTPConfig
	Telegram  TelegramConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values for the audit log sink.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// ChatConfig defines conversation parameters.
type ChatConfig struct {
	EmailDomain       string
	SessionTTLSeconds int
	TokenSecret       string
	TokenTTLMinutes   int
}

// TicketAPIConfig points at the external ticket-creation endpoint. The
// token is confidential and lives only in the environment.
type TicketAPIConfig struct {
	URL            string
	Token          string
	TimeoutSeconds int
}

// SMTPConfig holds outbound mail settings for confirmation emails.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// TelegramConfig enables the optional Telegram front-end when a bot token
// is present.
type TelegramConfig struct {
	BotToken string
}

// Load reads configuration from environment variables, applying defaults
// where possible. A missing ticket API URL or token is a hard startup
// error, not something the conversation can recover from.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	ticketAPIURL := os.Getenv("TICKET_API_URL")
	if ticketAPIURL == "" {
		return nil, errors.New("missing required env TICKET_API_URL")
	}
	ticketAPIToken := os.Getenv("TICKET_API_TOKEN")
	if ticketAPIToken == "" {
		return nil, errors.New("missing required env TICKET_API_TOKEN")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-chat"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Chat: ChatConfig{
			EmailDomain:       getEnv("CHAT_EMAIL_DOMAIN", "dukekunshan.edu.cn"),
			SessionTTLSeconds: getEnvAsInt("CHAT_SESSION_TTL_SECONDS", 1800),
			TokenSecret:       getEnv("CHAT_TOKEN_SECRET", "dev-secret"),
			TokenTTLMinutes:   getEnvAsInt("CHAT_TOKEN_TTL_MINUTES", 60),
		},
		TicketAPI: TicketAPIConfig{
			URL:            ticketAPIURL,
			Token:          ticketAPIToken,
			TimeoutSeconds: getEnvAsInt("TICKET_API_TIMEOUT_SECONDS", 30),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "127.0.0.1"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "library-systems@dukekunshan.edu.cn"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the conversation time-to-live window.
func (c ChatConfig) SessionTTL() time.Duration {
	if c.SessionTTLSeconds <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Timeout returns the outbound HTTP timeout for the ticket API.
func (t TicketAPIConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
