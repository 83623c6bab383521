package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"apartment_app_echo/internal/logger"
)

type Config struct {
	Port   string
	AppURL string
	Env    string

	DatabaseURL string
	RedisURL    string

	FirebaseCredentialsPath string

	RabbitMQURL string
	EventsQueue string

	UploadBackend string // local or minio
	UploadDir     string
	Minio         MinioConfig

	SMTP SMTPConfig

	WahaBaseURL         string
	WahaAPIKey          string
	WhatsappCountryCode string

	QRServiceURL          string
	DefaultPaymentGateway string

	WorkerInterval time.Duration

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

type MinioConfig struct {
	URL         string
	AccessKey   string
	SecretKey   string
	Location    string
	Secure      bool
	Bucket      string
	ResourceURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Load reads .env (when present) and the process environment into a Config
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: SMTP_PORT must be numeric: %w", err)
	}

	interval, err := time.ParseDuration(getEnv("WORKER_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: WORKER_INTERVAL: %w", err)
	}

	minioSecure, _ := strconv.ParseBool(getEnv("MINIO_SECURE", "false"))

	config := &Config{
		Port:                    getEnv("PORT", "8080"),
		AppURL:                  getEnv("APP_URL", "http://localhost:8080"),
		Env:                     getEnv("ENV", "development"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		RabbitMQURL:             getEnv("RABBITMQ_URL", ""),
		EventsQueue:             getEnv("EVENTS_QUEUE", "billing_events"),
		UploadBackend:           getEnv("UPLOAD_BACKEND", "local"),
		UploadDir:               getEnv("UPLOAD_DIR", "public/uploads"),
		Minio: MinioConfig{
			URL:         getEnv("MINIO_URL", ""),
			AccessKey:   getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:   getEnv("MINIO_SECRET_KEY", ""),
			Location:    getEnv("MINIO_LOCATION", "us-east-1"),
			Secure:      minioSecure,
			Bucket:      getEnv("MINIO_BUCKET", "apartment-uploads"),
			ResourceURL: getEnv("MINIO_RESOURCE_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     smtpPort,
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("EMAIL_FROM", ""),
		},
		WahaBaseURL:           getEnv("WAHA_BASE_URL", "http://waha:3000"),
		WahaAPIKey:            getEnv("WAHA_API_KEY", ""),
		WhatsappCountryCode:   getEnv("WHATSAPP_COUNTRY_CODE", "84"),
		QRServiceURL:          getEnv("QR_SERVICE_URL", "https://api.qrserver.com/v1/create-qr-code/"),
		DefaultPaymentGateway: getEnv("DEFAULT_PAYMENT_GATEWAY", "vnpay"),
		WorkerInterval:        interval,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:             getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks settings that only make sense together
func (c *Config) Validate() error {
	switch c.UploadBackend {
	case "local":
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for the local upload backend")
		}
	case "minio":
		if c.Minio.URL == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			return fmt.Errorf("MINIO_URL, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio upload backend")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.UploadBackend)
	}
	if c.WorkerInterval <= 0 {
		return fmt.Errorf("WORKER_INTERVAL must be positive")
	}
	return nil
}

// IsProduction reports whether cookies should be marked secure
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
