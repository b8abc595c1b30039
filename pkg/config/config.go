package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database       DatabaseConfig
	Redis          RedisConfig
	CORS           CORSConfig
	Log            LogConfig
	Payments       PaymentsConfig
	Stores         StoresConfig
	Communications CommunicationsConfig
	Receipts       ReceiptsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PaymentsConfig governs the hosted checkout integration and the
// redirect reconciliation flow.
type PaymentsConfig struct {
	Enabled bool
	// GatewayURL is the base URL of the checkout session server.
	GatewayURL     string
	GatewayTimeout time.Duration
	Currency       string
	// MinAmount is the smallest amount the gateway accepts for a session.
	MinAmount float64
	// PendingTTL bounds how long an initiated-but-unfinished checkout
	// keeps its pending marker before it is considered abandoned.
	PendingTTL time.Duration
	// ClaimTTL bounds how long a redirect completion may hold the
	// per-session claim before a crashed attempt becomes retryable.
	ClaimTTL time.Duration
	// RetryAttempts and RetryDelay tune the automatic re-apply of a fee
	// update that failed after the charge was verified.
	RetryAttempts int
	RetryDelay    time.Duration
}

// StoresConfig gates the per-role document store endpoints.
type StoresConfig struct {
	Enabled bool
}

// CommunicationsConfig gates the messaging endpoints.
type CommunicationsConfig struct {
	Enabled bool
}

// ReceiptsConfig gates PDF receipt generation for fee payments.
type ReceiptsConfig struct {
	Enabled    bool
	SchoolName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Payments = PaymentsConfig{
		Enabled:        v.GetBool("ENABLE_PAYMENTS"),
		GatewayURL:     v.GetString("PAYMENT_GATEWAY_URL"),
		GatewayTimeout: parseDuration(v.GetString("PAYMENT_GATEWAY_TIMEOUT"), 10*time.Second),
		Currency:       v.GetString("PAYMENT_CURRENCY"),
		MinAmount:      v.GetFloat64("PAYMENT_MIN_AMOUNT"),
		PendingTTL:     parseDuration(v.GetString("PAYMENT_PENDING_TTL"), 24*time.Hour),
		ClaimTTL:       parseDuration(v.GetString("PAYMENT_CLAIM_TTL"), 2*time.Minute),
		RetryAttempts:  v.GetInt("PAYMENT_RETRY_ATTEMPTS"),
		RetryDelay:     parseDuration(v.GetString("PAYMENT_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Stores = StoresConfig{
		Enabled: v.GetBool("ENABLE_STORES"),
	}

	cfg.Communications = CommunicationsConfig{
		Enabled: v.GetBool("ENABLE_COMMUNICATIONS"),
	}

	cfg.Receipts = ReceiptsConfig{
		Enabled:    v.GetBool("ENABLE_RECEIPTS"),
		SchoolName: v.GetString("RECEIPT_SCHOOL_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_erp")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PAYMENTS", true)
	v.SetDefault("PAYMENT_GATEWAY_URL", "http://localhost:4242")
	v.SetDefault("PAYMENT_GATEWAY_TIMEOUT", "10s")
	v.SetDefault("PAYMENT_CURRENCY", "inr")
	v.SetDefault("PAYMENT_MIN_AMOUNT", 50)
	v.SetDefault("PAYMENT_PENDING_TTL", "24h")
	v.SetDefault("PAYMENT_CLAIM_TTL", "2m")
	v.SetDefault("PAYMENT_RETRY_ATTEMPTS", 3)
	v.SetDefault("PAYMENT_RETRY_DELAY", "5s")

	v.SetDefault("ENABLE_STORES", true)
	v.SetDefault("ENABLE_COMMUNICATIONS", true)

	v.SetDefault("ENABLE_RECEIPTS", true)
	v.SetDefault("RECEIPT_SCHOOL_NAME", "ABC International School")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
