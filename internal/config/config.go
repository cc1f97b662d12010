package config

import (
	"os"
	"strconv"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"
)

// Config carries everything the server needs at startup. Values come from
// the environment; alert headers, channel enables and the temperature
// threshold can additionally be overridden per deployment through the
// configurations table at runtime.
type Config struct {
	HTTP struct {
		Addr string
	}
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
		MaxConns int
		MaxIdle  int
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Sensetime SensetimeConfig
	Nexmo     NexmoConfig
	SendGrid  SendGridConfig
	Defaults  settings.Defaults
}

// SensetimeConfig points at the device platform that stores captured
// face images.
type SensetimeConfig struct {
	BaseURL       string
	Username      string
	Password      string
	ImageCacheTTL time.Duration
}

// NexmoConfig holds the SMS gateway credentials.
type NexmoConfig struct {
	APIKey    string
	APISecret string
}

// SendGridConfig holds the email gateway credentials.
type SendGridConfig struct {
	APIKey      string
	FromAddress string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "covid19")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Sensetime.BaseURL = getEnv("SENSETIME_BASE_URL", "")
	cfg.Sensetime.Username = getEnv("SENSETIME_USERNAME", "")
	cfg.Sensetime.Password = getEnv("SENSETIME_PASSWORD", "")
	cfg.Sensetime.ImageCacheTTL = parseDuration(getEnv("SENSETIME_IMAGE_CACHE_TTL", "24h"), 24*time.Hour)

	cfg.Nexmo.APIKey = getEnv("NEXMO_API_KEY", "")
	cfg.Nexmo.APISecret = getEnv("NEXMO_API_SECRET", "")

	cfg.SendGrid.APIKey = getEnv("SENDGRID_API_KEY", "")
	cfg.SendGrid.FromAddress = getEnv("SENDGRID_FROM_ADDRESS", "")

	cfg.Defaults.TemperatureThreshold = getEnv("DEFAULT_TEMPERATURE_THRESHOLD", "37.5")
	cfg.Defaults.TemperatureAlertHeader = getEnv("DEFAULT_TEMPERATURE_ALERT_HEADER", "Abnormal temperature alert")
	cfg.Defaults.MaskAlertHeader = getEnv("DEFAULT_MASK_ALERT_HEADER", "No mask alert")
	cfg.Defaults.SMSAlertForTemperature = getEnv("DEFAULT_SMS_ALERT_FOR_TEMPERATURE", "0")
	cfg.Defaults.SMSAlertForMask = getEnv("DEFAULT_SMS_ALERT_FOR_MASK", "0")
	cfg.Defaults.EmailAlertForTemperature = getEnv("DEFAULT_EMAIL_ALERT_FOR_TEMPERATURE", "0")
	cfg.Defaults.EmailAlertForMask = getEnv("DEFAULT_EMAIL_ALERT_FOR_MASK", "0")
	cfg.Defaults.SMSSender = getEnv("DEFAULT_SMS_SENDER", "C19Server")
	cfg.Defaults.EmailSenderName = getEnv("DEFAULT_EMAIL_SENDER_NAME", "C19Server")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
