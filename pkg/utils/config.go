package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	OAuth     OAuthConfig
	Kafka     KafkaConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	CORSOrigin     string
	FrontendURL    string
	ExternalAPIKey string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// KafkaConfig is optional; an empty broker list disables event publishing.
type KafkaConfig struct {
	Brokers          []string
	OrderEventsTopic string
	DispatchTopic    string
}

// MQTTConfig is optional; an empty broker disables telemetry ingestion.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	TelemetryTopic string
}

// RateLimitConfig keys buckets by peer address. TrustedProxies lists the
// CIDRs whose X-Forwarded-For header is believed; empty trusts none.
type RateLimitConfig struct {
	RPS            float64
	Burst          int
	TrustedProxies []string
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "drone-delivery")
	viper.SetDefault("PORT", "3001")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_EXPIRY_HOURS", 1)
	viper.SetDefault("GOOGLE_REDIRECT_URL", "http://localhost:3001/api/auth/google/callback")
	viper.SetDefault("KAFKA_ORDER_EVENTS_TOPIC", "order.status.changed")
	viper.SetDefault("KAFKA_DISPATCH_TOPIC", "drone.dispatch")
	viper.SetDefault("MQTT_CLIENT_ID", "drone-delivery-api")
	viper.SetDefault("MQTT_TELEMETRY_TOPIC", "drones/+/telemetry")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("ADMIN_NAME", "Admin User")

	// .env is optional, the process environment wins anyway
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			CORSOrigin:     viper.GetString("CORS_ORIGIN"),
			FrontendURL:    viper.GetString("FRONTEND_URL"),
			ExternalAPIKey: viper.GetString("EXTERNAL_API_KEY"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     strings.TrimSpace(viper.GetString("GOOGLE_CLIENT_ID")),
			GoogleClientSecret: strings.TrimSpace(viper.GetString("GOOGLE_CLIENT_SECRET")),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
		},
		Kafka: KafkaConfig{
			Brokers:          splitList(viper.GetString("KAFKA_BROKERS")),
			OrderEventsTopic: viper.GetString("KAFKA_ORDER_EVENTS_TOPIC"),
			DispatchTopic:    viper.GetString("KAFKA_DISPATCH_TOPIC"),
		},
		MQTT: MQTTConfig{
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			TelemetryTopic: viper.GetString("MQTT_TELEMETRY_TOPIC"),
		},
		RateLimit: RateLimitConfig{
			RPS:            viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:          viper.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies: splitList(viper.GetString("TRUSTED_PROXIES")),
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
			Name:     viper.GetString("ADMIN_NAME"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not defined")
	}

	return config, nil
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
