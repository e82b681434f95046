// Package config loads server settings from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries every tunable the server reads at startup.
type Config struct {
	Addr            string
	JWTSecret       string
	RedisAddr       string
	BotDelay        time.Duration
	ChallengeWindow time.Duration
}

// Load reads .env if present, then the environment, applying defaults
// for anything unset.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}
	return Config{
		Addr:            getEnv("ONESERV_ADDR", ":8080"),
		JWTSecret:       getEnv("ONESERV_JWT_SECRET", "dev-secret-change-me"),
		RedisAddr:       getEnv("ONESERV_REDIS_ADDR", ""),
		BotDelay:        getEnvMillis("ONESERV_BOT_DELAY_MS", 2000),
		ChallengeWindow: getEnvMillis("ONESERV_CHALLENGE_WINDOW_MS", 3000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvMillis(key string, fallback int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback) * time.Millisecond
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ms < 0 {
		logrus.WithField("key", key).Warn("invalid duration value, using default")
		return time.Duration(fallback) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
