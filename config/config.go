package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTKey          string
	JWTRefreshKey   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RefreshedTTL    time.Duration // lifetime of an access token minted from a refresh cookie
	SaltRound       int

	AllowedOrigins string

	EmailSender    string
	SendgridAPIKey string
	WebhookURL     string
	RollbarToken   string

	AttendanceSweepSpec  string
	DefaultAdminPassword string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "8000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "course_manager"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTKey:          getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTRefreshKey:   getEnv("JWT_REFRESH_SECRET_KEY", "defaultRefreshSecret"),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RefreshedTTL:    getEnvDuration("REFRESHED_TOKEN_TTL", 15*time.Minute),
		SaltRound:       getEnvInt("SALT_ROUND", 10),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@coursemanager.local"),
		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
		RollbarToken:   getEnv("ROLLBAR_TOKEN", ""),

		AttendanceSweepSpec:  getEnv("ATTENDANCE_SWEEP_SPEC", "@every 24h"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.JWTRefreshKey == "defaultRefreshSecret" {
		log.Println("Warning: Using default JWT_REFRESH_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DefaultAdminPassword == "admin123" {
		log.Println("Warning: Using default DEFAULT_ADMIN_PASSWORD. Update it in your environment.")
	}
}

// Testing returns a configuration suitable for unit tests: sqlite and cheap bcrypt.
func Testing() *Config {
	return &Config{
		Port:                 "0",
		AppEnv:               "test",
		DBDriver:             "sqlite",
		DBName:               ":memory:",
		JWTKey:               "test-secret",
		JWTRefreshKey:        "test-refresh-secret",
		AccessTokenTTL:       time.Hour,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		RefreshedTTL:         15 * time.Minute,
		SaltRound:            4,
		AllowedOrigins:       "*",
		EmailSender:          "no-reply@coursemanager.local",
		AttendanceSweepSpec:  "@every 24h",
		DefaultAdminPassword: "admin123",
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvDuration accepts Go duration strings such as "15m" or "168h"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
