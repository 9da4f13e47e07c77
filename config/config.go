package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubUserID       string
	SyncChannel        string

	// Webhook configuration
	WebhookURL         string
	ComplaintSheetURL  string
	AttendanceSheetURL string

	// Sync configuration
	SyncStalenessWindow time.Duration

	// Heartbeat configuration
	HeartbeatInterval time.Duration
	HeartbeatClient   string

	// Proxy surface
	ProxyPort         string
	ProxyRateLimit    int
	ProxyRateInterval time.Duration

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubUserID:       getEnv("PUBNUB_USER_ID", "service-center"),
		SyncChannel:        getEnv("SYNC_CHANNEL", "service-center-sync"),

		// Webhook
		WebhookURL:         getEnv("WEBHOOK_URL", ""),
		ComplaintSheetURL:  getEnv("COMPLAINT_SHEET_URL", ""),
		AttendanceSheetURL: getEnv("ATTENDANCE_SHEET_URL", ""),

		// Sync
		SyncStalenessWindow: getEnvAsDuration("SYNC_STALENESS_WINDOW", "5s"),

		// Heartbeat
		HeartbeatInterval: getEnvAsDuration("HEARTBEAT_INTERVAL", "5m"),
		HeartbeatClient:   getEnv("HEARTBEAT_CLIENT", "service-center"),

		// Proxy
		ProxyPort:         getEnv("PROXY_PORT", "8091"),
		ProxyRateLimit:    getEnvAsInt("PROXY_RATE_LIMIT", 30),
		ProxyRateInterval: getEnvAsDuration("PROXY_RATE_INTERVAL", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
