package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr                   string
	Environment            string
	LogLevel               string
	DatabaseURL            string
	JWTSecret              string
	RecordStoreURL         string
	OnboardingURL          string
	UserMgmtURL            string
	UserMgmtTenant         string
	DocumentViewBaseURL    string
	UpstreamTimeout        time.Duration
	ServiceTokenTTL        time.Duration
	LicenseWarningDays     int
	ProbationSweepInterval time.Duration
	ProbationDueDays       int
	MaxBodyBytes           int64
	RateLimitPerMinute     int
	MetricsEnabled         bool
	EmailEnabled           bool
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	SMTPUseTLS             bool
	EmailFrom              string
	ProbationNotifyTo      string
	RunMigrations          bool
	MigrationsDir          string
}

func Load() Config {
	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		Environment:            getEnv("APP_ENV", "development"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		RecordStoreURL:         getEnv("RECORD_STORE_URL", ""),
		OnboardingURL:          getEnv("ONBOARDING_URL", ""),
		UserMgmtURL:            getEnv("USER_MGMT_URL", ""),
		UserMgmtTenant:         getEnv("USER_MGMT_TENANT", "hospital"),
		DocumentViewBaseURL:    getEnv("DOCUMENT_VIEW_BASE_URL", ""),
		UpstreamTimeout:        getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		ServiceTokenTTL:        getEnvDuration("SERVICE_TOKEN_TTL", 5*time.Minute),
		LicenseWarningDays:     getEnvInt("LICENSE_WARNING_DAYS", 30),
		ProbationSweepInterval: getEnvDuration("PROBATION_SWEEP_INTERVAL", 24*time.Hour),
		ProbationDueDays:       getEnvInt("PROBATION_DUE_DAYS", 14),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
		EmailEnabled:           getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:             getEnvBool("SMTP_USE_TLS", true),
		EmailFrom:              getEnv("EMAIL_FROM", "hr-noreply@hospital.local"),
		ProbationNotifyTo:      getEnv("PROBATION_NOTIFY_TO", ""),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:          getEnv("MIGRATIONS_DIR", "migrations"),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error
	required := []struct{ key, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"JWT_SECRET", c.JWTSecret},
		{"RECORD_STORE_URL", c.RecordStoreURL},
		{"ONBOARDING_URL", c.OnboardingURL},
		{"USER_MGMT_URL", c.UserMgmtURL},
	}
	for _, setting := range required {
		if strings.TrimSpace(setting.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", setting.key))
		}
	}
	if c.IsProduction() && len(c.JWTSecret) > 0 && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.LicenseWarningDays < 0 {
		errs = append(errs, errors.New("LICENSE_WARNING_DAYS must not be negative"))
	}
	if c.ProbationDueDays < 0 {
		errs = append(errs, errors.New("PROBATION_DUE_DAYS must not be negative"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	if c.EmailEnabled && strings.TrimSpace(c.SMTPHost) == "" {
		errs = append(errs, errors.New("SMTP_HOST is required when EMAIL_ENABLED is set"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
