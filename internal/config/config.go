package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port        string
	Origin      string
	Environment string
	LogMode     string
	Database    DatabaseConfig
	SMS         SMSConfig
	Scheduler   SchedulerConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// SMSConfig holds the messaging gateway credentials and send policy.
// The credentials are validated by the gateway itself at the start of each
// reminder sweep, not here, so the server can boot without them.
type SMSConfig struct {
	AccountSID         string
	AuthToken          string
	FromNumber         string
	BaseURL            string
	SendTimeout        time.Duration
	MaxRetries         int
	CountryCallingCode string
}

// SchedulerConfig holds the periodic job configuration
type SchedulerConfig struct {
	Enabled         bool
	ScheduleSpec    string
	ReminderSpec    string
	DuplicatePolicy string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		Host:     getEnv("DB_HOST", "localhost"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "sasamom"),
		DSN:      getEnv("DB_DSN", ""),
	}

	switch dbConfig.Driver {
	case "mysql":
		dbConfig.Port = getEnv("DB_PORT", "3306")
		if dbConfig.DSN == "" {
			// Dates are stored as DATE columns; loc=UTC keeps the calendar day stable.
			dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
		}
	case "postgres":
		dbConfig.Port = getEnv("DB_PORT", "5432")
		if dbConfig.DSN == "" {
			dbConfig.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				dbConfig.Host, dbConfig.Port, dbConfig.Username, dbConfig.Password, dbConfig.Name)
		}
	case "sqlite":
		if dbConfig.DSN == "" {
			dbConfig.DSN = dbConfig.Name + ".db?_foreign_keys=on&_txlock=immediate"
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected mysql, postgres or sqlite", dbConfig.Driver)
	}

	sendTimeout, err := strconv.Atoi(getEnv("SMS_SEND_TIMEOUT_SECONDS", "15"))
	if err != nil || sendTimeout <= 0 {
		return nil, fmt.Errorf("invalid SMS_SEND_TIMEOUT_SECONDS: %q", os.Getenv("SMS_SEND_TIMEOUT_SECONDS"))
	}

	maxRetries, err := strconv.Atoi(getEnv("SMS_MAX_RETRIES", "1"))
	if err != nil || maxRetries < 0 {
		return nil, fmt.Errorf("invalid SMS_MAX_RETRIES: %q", os.Getenv("SMS_MAX_RETRIES"))
	}

	smsConfig := SMSConfig{
		AccountSID:         strings.TrimSpace(getEnv("TWILIO_ACCOUNT_SID", "")),
		AuthToken:          strings.TrimSpace(getEnv("TWILIO_AUTH_TOKEN", "")),
		FromNumber:         strings.TrimSpace(getEnv("TWILIO_PHONE_NUMBER", "")),
		BaseURL:            getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		SendTimeout:        time.Duration(sendTimeout) * time.Second,
		MaxRetries:         maxRetries,
		CountryCallingCode: strings.TrimPrefix(getEnv("COUNTRY_CALLING_CODE", "254"), "+"),
	}

	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}

	policy := strings.ToLower(getEnv("SCHEDULE_DUPLICATE_POLICY", "active"))
	if policy != "active" && policy != "any" {
		return nil, fmt.Errorf("invalid SCHEDULE_DUPLICATE_POLICY %q: expected active or any", policy)
	}

	schedulerConfig := SchedulerConfig{
		Enabled:         cronEnabled,
		ScheduleSpec:    getEnv("SCHEDULE_CRON", "0 0 1 * * *"),
		ReminderSpec:    getEnv("REMINDER_CRON", "0 0 8 * * *"),
		DuplicatePolicy: policy,
	}

	return &Config{
		Port:        getEnv("PORT", "3001"),
		Origin:      getEnv("ORIGIN", "http://localhost:4200"),
		Environment: getEnv("APP_ENV", "development"),
		LogMode:     getEnv("LOG_MODE", "development"),
		Database:    dbConfig,
		SMS:         smsConfig,
		Scheduler:   schedulerConfig,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
