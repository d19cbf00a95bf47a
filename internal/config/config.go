package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"libraryhub/internal/core/domain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Policy   domain.LoanPolicy
	Sweep    SweepConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string // file path for sqlite
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessTokenMins int
}

// SweepConfig holds the overdue sweep schedule
type SweepConfig struct {
	Enabled bool
	Cron    string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: database,
		JWT:      loadJWTConfig(appMode),
		Policy:   policy,
		Sweep:    loadSweepConfig(),
	}

	// Set global config
	AppConfig = config

	slog.Info("✅ Configuration loaded successfully", "mode", appMode, "db_driver", database.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", "mysql")))
	defaultPort := "3306"
	switch driver {
	case "mysql":
	case "postgres":
		defaultPort = "5432"
	case "sqlite":
		defaultPort = ""
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql', 'postgres' or 'sqlite')", driver)
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "libraryhub"),
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", "default_secret"),
		Issuer:          getEnv("JWT_ISSUER", "libraryhub"),
		AccessTokenMins: accessMins,
	}
}

// loadPolicy loads the circulation policy, falling back to the library defaults
func loadPolicy() (domain.LoanPolicy, error) {
	policy := domain.DefaultLoanPolicy()

	days, err := strconv.Atoi(getEnv("LOAN_PERIOD_DAYS", strconv.Itoa(domain.DefaultLoanPeriodDays)))
	if err != nil || days < 1 {
		return policy, fmt.Errorf("invalid LOAN_PERIOD_DAYS: must be a positive integer")
	}
	policy.LoanPeriod = time.Duration(days) * 24 * time.Hour

	maxLoans, err := strconv.Atoi(getEnv("MAX_ACTIVE_LOANS", strconv.Itoa(domain.DefaultMaxActiveLoans)))
	if err != nil || maxLoans < 1 {
		return policy, fmt.Errorf("invalid MAX_ACTIVE_LOANS: must be a positive integer")
	}
	policy.MaxActiveLoans = maxLoans

	finePerDay, err := decimal.NewFromString(getEnv("FINE_PER_DAY", domain.DefaultFinePerDay))
	if err != nil || finePerDay.IsNegative() {
		return policy, fmt.Errorf("invalid FINE_PER_DAY: must be a non-negative decimal")
	}
	policy.FinePerDay = finePerDay

	return policy, nil
}

// loadSweepConfig loads the overdue sweep schedule
func loadSweepConfig() SweepConfig {
	enabled, _ := strconv.ParseBool(getEnv("OVERDUE_SWEEP_ENABLED", "true"))

	return SweepConfig{
		Enabled: enabled,
		Cron:    getEnv("OVERDUE_SWEEP_CRON", "5 0 * * *"),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://library.example.org"
	}
	return origins
}
