package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.116 Safari/537.36"

type Config struct {
	// DatabaseURL enables the PostgreSQL lookup cache when non-empty.
	DatabaseURL    string
	WorkerCount    int
	HTTPTimeoutSec int
	UserAgent      string
	ModuleSuffix   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		WorkerCount:    getEnvInt("WORKER_COUNT", 8),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		UserAgent:      getEnv("USER_AGENT", defaultUserAgent),
		ModuleSuffix:   getEnv("MODULE_SUFFIX", "Trash.lua"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
