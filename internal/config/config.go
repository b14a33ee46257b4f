package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	HTTP struct {
		Port string
	}

	Auth struct {
		JWTSecret string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	AMQP struct {
		URL      string
		Exchange string
	}

	Otel struct {
		Endpoint string
	}

	Environment string
	Debug       bool
}

func New() *Config {
	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "mawadda_service")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// HTTP
	cfg.HTTP.Port = getEnvDefault("PORT", "8083")

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", "dev-secret")

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// AMQP
	cfg.AMQP.URL = os.Getenv("AMQP_URL")
	cfg.AMQP.Exchange = getEnvDefault("AMQP_EXCHANGE", "mawadda.events")

	// Tracing
	cfg.Otel.Endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	cfg.Environment = getEnvDefault("ENVIRONMENT", "development")
	cfg.Debug = isTruthy(os.Getenv("DEBUG"))

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
