package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Sheets    SheetsConfig
	ERP       ERPConfig
	Sync      SyncConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// SheetsConfig holds the inventory spreadsheet settings
type SheetsConfig struct {
	SpreadsheetID   string
	ReadRange       string
	CredentialsFile string
	APIKey          string
}

// ERPConfig holds the outbound ERP connection settings
type ERPConfig struct {
	URL      string
	Database string
	Username string
	Password string
	Model    string
}

// SyncConfig holds reconciliation settings
type SyncConfig struct {
	Cron           string // cron expression; empty disables scheduling
	TimeoutMinutes int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3400"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "invtrack"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
			ReadRange:       getEnv("SHEETS_RANGE", "Inventory!A:K"),
			CredentialsFile: os.Getenv("SHEETS_CREDENTIALS_FILE"),
			APIKey:          os.Getenv("SHEETS_API_KEY"),
		},
		ERP: ERPConfig{
			URL:      os.Getenv("ERP_URL"),
			Database: os.Getenv("ERP_DATABASE"),
			Username: os.Getenv("ERP_USERNAME"),
			Password: os.Getenv("ERP_PASSWORD"),
			Model:    getEnv("ERP_OUTBOUND_MODEL", "stock.outbound.line"),
		},
		Sync: SyncConfig{
			Cron:           os.Getenv("SYNC_CRON"),
			TimeoutMinutes: getEnvInt("SYNC_TIMEOUT_MINUTES", 10),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
