package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"lendinghub/internal/core/domain"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Sweep    SweepConfig
	Policy   domain.Policy
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // mysql | postgres | sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// SweepConfig holds the schedules of the periodic sweeps (robfig/cron specs)
type SweepConfig struct {
	Enabled         bool
	ExpiryCron      string
	DueReminderCron string
	DueReminderDays int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database, err := loadDatabaseConfig(appMode)
	if err != nil {
		return nil, err
	}

	sweep, err := loadSweepConfig()
	if err != nil {
		return nil, err
	}

	policy, err := LoadPolicy(getEnv("POLICY_FILE", ""), policyFromEnv())
	if err != nil {
		return nil, err
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: database,
		JWT:      loadJWTConfig(appMode),
		Sweep:    sweep,
		Policy:   policy,
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, DB: %s]", appMode, database.Driver)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) (DatabaseConfig, error) {
	prefix := modePrefix(mode)

	driver := strings.ToLower(getEnv(prefix+"DB_DRIVER", "mysql"))
	defaultPort := "3306"
	switch driver {
	case DriverMySQL:
	case DriverPostgres:
		defaultPort = "5432"
	case DriverSQLite:
		defaultPort = ""
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid %sDB_DRIVER: '%s' (must be mysql, postgres or sqlite)", prefix, driver)
	}

	return DatabaseConfig{
		Driver:     driver,
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", defaultPort),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "lendinghub"),
		SSLMode:    getEnv(prefix+"DB_SSLMODE", "disable"),
		SQLitePath: getEnv(prefix+"SQLITE_PATH", "lendinghub.db"),
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))

	return JWTConfig{
		Secret:          getEnv(modePrefix(mode)+"JWT_SECRET", "default_secret"),
		AccessTokenMins: accessMins,
	}
}

// loadSweepConfig loads the sweep schedules
func loadSweepConfig() (SweepConfig, error) {
	enabled, err := strconv.ParseBool(getEnv("SWEEPS_ENABLED", "true"))
	if err != nil {
		return SweepConfig{}, fmt.Errorf("invalid SWEEPS_ENABLED: %w", err)
	}
	days, err := strconv.Atoi(getEnv("DUE_REMINDER_DAYS", "2"))
	if err != nil || days < 0 {
		return SweepConfig{}, fmt.Errorf("invalid DUE_REMINDER_DAYS: '%s'", getEnv("DUE_REMINDER_DAYS", ""))
	}

	return SweepConfig{
		Enabled:         enabled,
		ExpiryCron:      getEnv("EXPIRY_SWEEP_CRON", "@every 15m"),
		DueReminderCron: getEnv("DUE_REMINDER_CRON", "30 8 * * *"),
		DueReminderDays: days,
	}, nil
}

// policyFromEnv starts from the stock policy and applies LOAN_DAYS style overrides
func policyFromEnv() domain.Policy {
	p := domain.DefaultPolicy()
	p.LoanDays = getEnvInt("LOAN_DAYS", p.LoanDays)
	p.RenewalDays = getEnvInt("RENEWAL_DAYS", p.RenewalDays)
	p.MaxRenewals = getEnvInt("MAX_RENEWALS", p.MaxRenewals)
	p.ReservationDays = getEnvInt("RESERVATION_DAYS", p.ReservationDays)
	p.MaxBooksAllowed = getEnvInt("MAX_BOOKS_ALLOWED", p.MaxBooksAllowed)
	if rate, err := strconv.ParseFloat(getEnv("DAILY_FINE_RATE", ""), 64); err == nil {
		p.DailyFineRate = rate
	}
	return p
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

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
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
		return "http://localhost:3000"
	}
	return origins
}
