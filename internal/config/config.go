package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config centralizes runtime settings for the API and notifier.
type Config struct {
	Port string

	AuthToken string

	DataDir     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisDLQ      string
	RedisGroup    string
	RedisConsumer string

	CORSAllowedOrigins []string

	RateLimitRPS   float64
	RateLimitBurst int

	QueueBatchingEnabled     bool
	QueueBatchSize           int
	QueueBatchFlushMS        int
	QueueBatchFlushTimeoutMS int
	QueueBatchQueueCapacity  int
	QueueBatchMaxInFlight    int

	EmailUser string
	EmailPass string
	EmailFrom string
	SMTPHost  string
	SMTPPort  string

	OTPTTLSeconds int
	OTPMaxPending int

	NotifierEnabled bool
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		AuthToken: getEnv("API_AUTH_TOKEN", ""),

		DataDir:     getEnv("DATA_DIR", "data"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisStream:   getEnv("REDIS_STREAM", "portal_notifications"),
		RedisDLQ:      getEnv("REDIS_DLQ_STREAM", "portal_notifications_dlq"),
		RedisGroup:    getEnv("REDIS_GROUP", "portal_notifiers"),
		RedisConsumer: getEnv("REDIS_CONSUMER", "api-1"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),

		QueueBatchingEnabled:     getEnvBool("QUEUE_BATCHING_ENABLED", false),
		QueueBatchSize:           getEnvInt("QUEUE_BATCH_SIZE", 32),
		QueueBatchFlushMS:        getEnvInt("QUEUE_BATCH_FLUSH_MS", 25),
		QueueBatchFlushTimeoutMS: getEnvInt("QUEUE_BATCH_FLUSH_TIMEOUT_MS", 3000),
		QueueBatchQueueCapacity:  getEnvInt("QUEUE_BATCH_QUEUE_CAPACITY", 2048),
		QueueBatchMaxInFlight:    getEnvInt("QUEUE_BATCH_MAX_IN_FLIGHT", 4),

		EmailUser: getEnv("EMAIL_USER", ""),
		EmailPass: getEnv("EMAIL_PASS", ""),
		EmailFrom: getEnv("EMAIL_FROM", "demo@jobportal.com"),
		SMTPHost:  getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getEnv("SMTP_PORT", "587"),

		OTPTTLSeconds: getEnvInt("OTP_TTL_SECONDS", 300),
		OTPMaxPending: getEnvInt("OTP_MAX_PENDING", 1000),

		NotifierEnabled: getEnvBool("NOTIFIER_ENABLED", true),
	}
}

// WatcherConfig holds the settings for the worker-side sync agent.
type WatcherConfig struct {
	APIBaseURL       string
	WorkerID         string
	CacheFile        string
	PollInterval     time.Duration
	JobsPollInterval time.Duration
}

func LoadWatcher() WatcherConfig {
	return WatcherConfig{
		APIBaseURL:       getEnv("PORTAL_API_URL", "http://localhost:8080"),
		WorkerID:         getEnv("WORKER_ID", ""),
		CacheFile:        getEnv("WATCHER_CACHE_FILE", "data/watcher-cache.json"),
		PollInterval:     time.Duration(getEnvInt("WATCHER_POLL_MS", 5000)) * time.Millisecond,
		JobsPollInterval: time.Duration(getEnvInt("WATCHER_JOBS_POLL_MS", 10000)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
