package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// External insurance API (Absher/TAMM) credentials and endpoints.
	AbsherAuthURL         string
	AbsherClientID        string
	AbsherClientSecret    string
	AbsherBaseURL         string
	AbsherSubscriptionKey string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Web Push VAPID keys. Push delivery is disabled when these are empty.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	NotifyHour          int // local hour of the daily expiry check
	ExpiryThresholdDays int // lookback window for due-soon notifications
	SyncDelayMillis     int // delay between per-vehicle external calls

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Vehicles         string
	HomeRents        string
	ElectricityBills string
	PushSubscribers  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Vehicles:         getEnv("DYNAMO_TABLE_VEHICLES", "vehicles"),
			HomeRents:        getEnv("DYNAMO_TABLE_HOME_RENTS", "home_rents"),
			ElectricityBills: getEnv("DYNAMO_TABLE_ELECTRICITY_BILLS", "electricity_bills"),
			PushSubscribers:  getEnv("DYNAMO_TABLE_PUSH_SUBSCRIBERS", "push_subscribers"),
		},

		AbsherAuthURL:         getEnv("ABSHER_AUTH_URL", ""),
		AbsherClientID:        getEnv("ABSHER_CLIENT_ID", ""),
		AbsherClientSecret:    getEnv("ABSHER_CLIENT_SECRET", ""),
		AbsherBaseURL:         getEnv("ABSHER_API_URL", ""),
		AbsherSubscriptionKey: getEnv("ABSHER_SUBSCRIPTION_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),

		NotifyHour:          getEnvInt("NOTIFY_HOUR", 9),
		ExpiryThresholdDays: getEnvInt("EXPIRY_THRESHOLD_DAYS", 10),
		SyncDelayMillis:     getEnvInt("SYNC_DELAY_MILLIS", 500),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
