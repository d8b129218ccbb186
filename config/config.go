package config

import (
	"fmt"
	"os"
	"strings"

	"sortie/storage"
)

type Config struct {
	ServerPort     string
	Env            string
	AllowedOrigins []string

	DB storage.Config

	MessageKey  string
	TokenSecret string

	AMQPURL string
}

// Load reads the configuration from the environment. MessageKey and
// TokenSecret are required; everything else has a development default.
func Load() (Config, error) {
	cfg := Config{
		ServerPort:     envOr("SERVER_PORT", "8080"),
		Env:            envOr("ENV", "development"),
		AllowedOrigins: splitOrigins(os.Getenv("ALLOWED_ORIGINS")),
		DB: storage.Config{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     envOr("DB_PORT", "5432"),
			User:     envOr("DB_USER", "postgres"),
			Password: envOr("DB_PASSWORD", "postgres"),
			DBName:   envOr("DB_NAME", "sortie"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		MessageKey:  os.Getenv("MESSAGE_KEY"),
		TokenSecret: os.Getenv("TOKEN_SECRET"),
		AMQPURL:     os.Getenv("AMQP_URL"),
	}

	if cfg.MessageKey == "" {
		return Config{}, fmt.Errorf("MESSAGE_KEY is not set")
	}
	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("TOKEN_SECRET is not set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
