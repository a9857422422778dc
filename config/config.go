package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"debug"`
	DBUrl       string `env:"DATABASE_URL"`
	// Set when running behind PgBouncer in transaction mode
	DBSimpleProtocol bool `env:"DB_SIMPLE_PROTOCOL" envDefault:"false"`
	AutoMigrate      bool `env:"AUTO_MIGRATE" envDefault:"false"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"go-trades-backend"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`

	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// SMTP Configuration
	SMTPHost       string `env:"SMTP_HOST" envDefault:"smtp-relay.brevo.com"`
	SMTPPort       string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername   string `env:"SMTP_USERNAME"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
	SMTPFromEmail  string `env:"SMTP_FROM_EMAIL" envDefault:"noreply@tradesmarket.app"`
	ContactEmailTo string `env:"CONTACT_EMAIL_TO" envDefault:"support@tradesmarket.app"`

	// Redis Configuration
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Object storage (S3 compatible)
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`

	// Malware scanning; uploads are not scanned when unset
	ClamAVAddress string        `env:"CLAMAV_ADDRESS"`
	ClamAVTimeout time.Duration `env:"CLAMAV_TIMEOUT" envDefault:"30s"`

	// Firebase Cloud Messaging
	FCMCredentialsFile string `env:"FCM_CREDENTIALS_FILE"`

	// Rate Limiting Configuration
	RateLimitWindowSeconds   int `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitGlobalThreshold int `env:"RATE_LIMIT_GLOBAL_THRESHOLD" envDefault:"100"`
	RateLimitAuthThreshold   int `env:"RATE_LIMIT_AUTH_THRESHOLD" envDefault:"10"`
	FailedLoginBlockMinutes  int `env:"FAILED_LOGIN_BLOCK_MINUTES" envDefault:"15"`
	FailedLoginMaxAttempts   int `env:"FAILED_LOGIN_MAX_ATTEMPTS" envDefault:"5"`

	// Password reset
	OTPTTL        time.Duration `env:"OTP_TTL" envDefault:"5m"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"10m"`

	HousekeepingSpec string `env:"HOUSEKEEPING_CRON" envDefault:"@every 1h"`
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production injects env directly
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	cfg.S3PublicBaseURL = strings.TrimRight(cfg.S3PublicBaseURL, "/")

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Token issuing will fail.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
