// Package config loads service configuration from the environment.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port        string
	DBPath      string
	JWTSecret   string
	RedisAddr   string
	Env         string

	// Settlement rail credentials. The app-level handle and key
	// authenticate this service against the rail; HouseHandle is the
	// operator account that receives commission transfers.
	LedgerBaseURL   string
	LedgerAppHandle string
	LedgerAppKey    string
	HouseHandle     string

	// Push notification gateway.
	PushURL       string
	PushServerKey string
}

// Load reads an optional .env file and returns the resolved Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/cash.db"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		Env:             getEnv("ENV", "development"),
		LedgerBaseURL:   getEnv("LEDGER_BASE_URL", ""),
		LedgerAppHandle: getEnv("LEDGER_APP_HANDLE", ""),
		LedgerAppKey:    getEnv("LEDGER_APP_KEY", ""),
		HouseHandle:     getEnv("HOUSE_HANDLE", "buzzware"),
		PushURL:         getEnv("PUSH_URL", ""),
		PushServerKey:   getEnv("PUSH_SERVER_KEY", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
