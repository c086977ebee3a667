package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB configuration.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Collaborator base URLs.
	InventoryBaseURL   string `mapstructure:"INVENTORY_BASE_URL"`
	ProfileBaseURL     string `mapstructure:"PROFILE_BASE_URL"`
	ReservationBaseURL string `mapstructure:"RESERVATION_BASE_URL"`
	PaymentBaseURL     string `mapstructure:"PAYMENT_BASE_URL"`

	// Checkout timing knobs.
	SessionTTLMinutes   int `mapstructure:"SESSION_TTL_MINUTES"`
	PollIntervalSeconds int `mapstructure:"POLL_INTERVAL_SECONDS"`
	PollTimeoutMinutes  int `mapstructure:"POLL_TIMEOUT_MINUTES"`
	PaymentWindowMins   int `mapstructure:"PAYMENT_WINDOW_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("INVENTORY_BASE_URL", "http://localhost:8081")
	viper.SetDefault("PROFILE_BASE_URL", "http://localhost:8082")
	viper.SetDefault("RESERVATION_BASE_URL", "http://localhost:8083")
	viper.SetDefault("PAYMENT_BASE_URL", "http://localhost:8084")
	viper.SetDefault("SESSION_TTL_MINUTES", 120)
	viper.SetDefault("POLL_INTERVAL_SECONDS", 3)
	viper.SetDefault("POLL_TIMEOUT_MINUTES", 5)
	viper.SetDefault("PAYMENT_WINDOW_MINUTES", 30)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SessionTTL returns the redis TTL for checkout sessions.
func SessionTTL() time.Duration {
	return time.Duration(AppConfig.SessionTTLMinutes) * time.Minute
}

// PollInterval returns the delay between payment status polls.
func PollInterval() time.Duration {
	return time.Duration(AppConfig.PollIntervalSeconds) * time.Second
}

// PollTimeout returns the absolute lifetime of one polling run.
func PollTimeout() time.Duration {
	return time.Duration(AppConfig.PollTimeoutMinutes) * time.Minute
}

// PaymentWindow returns how long an unpaid session is kept before expiry.
func PaymentWindow() time.Duration {
	return time.Duration(AppConfig.PaymentWindowMins) * time.Minute
}
