// internal/config/config.go
//
// Environment-driven configuration. A .env file in the working directory is
// loaded first (development convenience); real environment variables win.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port         string
	LogLevel     string
	DBPath       string
	ClientOrigin string
	Production   bool

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string

	WordsAnswersFile string
	WordsAllowedFile string
	DailySalt        string
	MaxGuesses       int

	SessionTTL    time.Duration
	SweepInterval time.Duration
	RedisURL      string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() Config {
	return Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DBPath:       getEnv("DB_PATH", "./data/app.db"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:   os.Getenv("NODE_ENV") == "production",

		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "wordle_token"),

		WordsAnswersFile: os.Getenv("WORDS_ANSWERS_FILE"),
		WordsAllowedFile: os.Getenv("WORDS_ALLOWED_FILE"),
		DailySalt:        getEnv("DAILY_SALT", "local_dev_salt"),
		MaxGuesses:       envInt("MAX_GUESSES", 6),

		SessionTTL:    envDuration("SESSION_TTL", 24*time.Hour),
		SweepInterval: envDuration("SWEEP_INTERVAL", 5*time.Minute),
		RedisURL:      os.Getenv("REDIS_URL"),
	}
}

// JWTTTL is the account token lifetime.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a duration, using default")
		return def
	}
	return d
}
