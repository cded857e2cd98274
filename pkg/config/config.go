package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/kharcha/internal/domain/routing"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Routing       RoutingConfig
	AI            AIConfig
	Observability ObservabilityConfig
	Notify        NotifyConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	GinMode       string
	WebhookSecret string
	Timezone      string
	UploadsPath   string
}

type DatabaseConfig struct {
	// Disabled switches the app to in-memory storage. Data does not survive
	// a restart; meant for local development and demos.
	Disabled bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RoutingConfig carries the raw routing env values. Router validates and
// falls back to safe defaults on anything it does not recognize.
type RoutingConfig struct {
	Mode                   string
	Scope                  string
	CoachingTxnThreshold   int
	CoachingSessionRespect bool
	BilingualRouting       bool
	AuditMode              bool
}

type AIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type NotifyConfig struct {
	ResendAPIKey string
	DigestFrom   string
	DigestTo     string
	DigestCron   string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "localhost"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			GinMode:       getEnv("GIN_MODE", "release"),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
			Timezone:      getEnv("TIMEZONE", "Asia/Dhaka"),
			UploadsPath:   getEnv("STORAGE_LOCAL_PATH", "./uploads"),
		},
		Database: DatabaseConfig{
			Disabled: getEnvAsBool("POSTGRES_DISABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "kharcha-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Routing: RoutingConfig{
			Mode:                   getEnv("ROUTING_MODE", string(routing.ModeHybrid)),
			Scope:                  getEnv("ROUTING_SCOPE", string(routing.ScopeAll)),
			CoachingTxnThreshold:   getEnvAsInt("COACHING_TXN_THRESHOLD", 10),
			CoachingSessionRespect: getEnvAsBool("COACHING_SESSION_RESPECT", true),
			BilingualRouting:       getEnvAsBool("BILINGUAL_ROUTING", true),
			AuditMode:              getEnvAsBool("PCA_AUDIT_MODE", false),
		},
		AI: AIConfig{
			Enabled: getEnvAsBool("AI_ENABLED", false),
			APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			Model:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Notify: NotifyConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			DigestFrom:   getEnv("DIGEST_FROM", "Kharcha <digest@kharcha.app>"),
			DigestTo:     getEnv("DIGEST_TO", ""),
			DigestCron:   getEnv("DIGEST_CRON", "0 9 * * 1"),
		},
	}

	if cfg.AI.Enabled && cfg.AI.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required when AI_ENABLED is set")
	}

	return cfg, nil
}

// RouterConfig converts the raw routing env values into a validated
// routing.Config. Unknown mode or scope strings fall back to the defaults
// with a warning rather than failing startup.
func (c *RoutingConfig) RouterConfig(logger *slog.Logger) routing.Config {
	mode, ok := routing.ParseMode(c.Mode)
	if !ok {
		logger.Warn("unknown routing mode, falling back to hybrid", slog.String("mode", c.Mode))
	}
	scope, ok := routing.ParseScope(c.Scope)
	if !ok {
		logger.Warn("unknown routing scope, falling back to all", slog.String("scope", c.Scope))
	}
	return routing.Config{
		Mode:                   mode,
		Scope:                  scope,
		CoachingTxnThreshold:   c.CoachingTxnThreshold,
		CoachingSessionRespect: c.CoachingSessionRespect,
		BilingualRouting:       c.BilingualRouting,
		AuditMode:              c.AuditMode,
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
