package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment. Command-line flags
// start from these values and may override them.
type Config struct {
	APIURL     string
	APITimeout time.Duration

	ListenAddr    string
	RedisAddr     string
	BadgerPath    string
	SessionSecret string
	SessionTTL    time.Duration

	SurfaceReadErrors bool
}

const devSessionSecret = "articledash-dev-secret"

// Load reads an optional .env file and then the process environment. Values
// already set in the environment win over the file.
func Load(files ...string) Config {
	// Missing .env is fine; everything has a default.
	_ = godotenv.Load(files...)

	return Config{
		APIURL:            getEnv("ARTICLE_API_URL", "http://localhost:8000"),
		APITimeout:        getDuration("API_TIMEOUT", 10*time.Second),
		ListenAddr:        getEnv("LISTEN_ADDR", ":8080"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		BadgerPath:        getEnv("BADGER_PATH", ""),
		SessionSecret:     getEnv("SESSION_SECRET", devSessionSecret),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		SurfaceReadErrors: getBool("SURFACE_READ_ERRORS", false),
	}
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c Config) InsecureSecret() bool {
	return c.SessionSecret == devSessionSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("30s") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}
