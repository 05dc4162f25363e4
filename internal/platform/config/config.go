package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                 string
	DatabaseURL          string
	JWTSecret            string
	DataEncryptionKey    string
	Environment          string
	Timezone             string
	SeedAdminEmail       string
	SeedAdminPassword    string
	EmailFrom            string
	EmailEnabled         bool
	PayrollReportEmail   string
	SMTPHost             string
	SMTPPort             int
	SMTPUser             string
	SMTPPassword         string
	SMTPUseTLS           bool
	RunMigrations        bool
	RunSeed              bool
	PayslipDir           string
	PayrollAutoGenerate  bool
	PayrollGenerateGrace time.Duration
	MetricsEnabled       bool
	SessionTTL           time.Duration
	ResetBaseURL         string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		DataEncryptionKey:    getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:          getEnv("APP_ENV", "development"),
		Timezone:             getEnv("APP_TIMEZONE", "UTC"),
		SeedAdminEmail:       getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:    getEnv("SEED_ADMIN_PASSWORD", ""),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:         getEnvBool("EMAIL_ENABLED", false),
		PayrollReportEmail:   getEnv("PAYROLL_REPORT_EMAIL", ""),
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             getEnvInt("SMTP_PORT", 587),
		SMTPUser:             getEnv("SMTP_USER", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:           getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:              getEnvBool("RUN_SEED", true),
		PayslipDir:           getEnv("PAYSLIP_DIR", "storage/payslips"),
		PayrollAutoGenerate:  getEnvBool("PAYROLL_AUTO_GENERATE", false),
		PayrollGenerateGrace: getEnvDuration("PAYROLL_GENERATE_GRACE", 24*time.Hour),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		SessionTTL:           getEnvDuration("SESSION_TTL", 8*time.Hour),
		ResetBaseURL:         getEnv("RESET_BASE_URL", ""),
	}
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

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is not a valid IANA zone: %w", err)
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least a minute")
	}
	return nil
}
