package config

import (
	"os"
	"strings"
	"time"
)

// Config is read once at startup from the environment.
type Config struct {
	Port          string
	GraphQLURL    string
	SessionSecret string
	RedisAddr     string
	KafkaBrokers  []string
	EventTopic    string
	HTTPTimeout   time.Duration
}

// Load builds the configuration with defaults suitable for local development.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		GraphQLURL:    getEnv("GRAPHQL_URL", "http://localhost:4000/"),
		SessionSecret: getEnv("SESSION_SECRET", "secret"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  kafkaBrokers(),
		EventTopic:    getEnv("EVENT_TOPIC", "crm-events"),
		HTTPTimeout:   httpTimeout(),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// kafkaBrokers returns nil when KAFKA_BROKERS is unset, which disables event
// publishing entirely.
func kafkaBrokers() []string {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		return nil
	}
	return strings.Split(brokers, ",")
}

func httpTimeout() time.Duration {
	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return 15 * time.Second
}
