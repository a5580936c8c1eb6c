package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/shortlet-ng/backend/logger"
)

// LoadEnv loads environment variables from a .env file if one exists.
// Missing .env is not an error; production deployments set real env vars.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if logger.InfoLogger != nil {
			logger.InfoLogger.Info("No .env file found, using environment variables")
		}
	}
}

// MustGetEnv returns the value for key or exits if it is not set.
func MustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		if logger.ErrorLogger != nil {
			logger.ErrorLogger.Errorf("%s not set", key)
		}
		os.Exit(1)
	}
	return val
}
