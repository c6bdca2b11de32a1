package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	DatabaseURL  string
	Port         string
	CORSOrigin   string
	DrawInterval time.Duration
}

// Load reads .env (when present) and the environment. DATABASE_URL is
// required; everything else has defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}

	cfg := &Config{
		DatabaseURL:  dsn,
		Port:         getEnv("PORT", "4000"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:3000"),
		DrawInterval: 5 * time.Second,
	}

	if raw := os.Getenv("DRAW_INTERVAL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.DrawInterval = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
