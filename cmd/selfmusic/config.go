package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"selfmusic/internal/logging"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL    string
	Addr           string
	JWTSecret      string
	UploadDir      string
	AllowedOrigins []string
	AdminUsername  string
	AdminPassword  string
	RateLimitRPS   float64
	RateLimitBurst int
	Log            logging.Config
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	addr := fmt.Sprintf(":%s", envOrDefault("PORT", "8080"))
	origins := parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	rps, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "10"), 64)
	if err != nil || rps <= 0 {
		return Config{}, errors.New("RATE_LIMIT_RPS must be a positive number")
	}
	burst, err := strconv.Atoi(envOrDefault("RATE_LIMIT_BURST", "20"))
	if err != nil || burst < 1 {
		return Config{}, errors.New("RATE_LIMIT_BURST must be a positive integer")
	}

	return Config{
		DatabaseURL:    dsn,
		Addr:           addr,
		JWTSecret:      secret,
		UploadDir:      envOrDefault("UPLOAD_DIR", "uploads"),
		AllowedOrigins: origins,
		AdminUsername:  envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:  envOrDefault("ADMIN_PASSWORD", "admin123"),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		Log: logging.Config{
			Level:  envOrDefault("LOG_LEVEL", "info"),
			Format: envOrDefault("LOG_FORMAT", "text"),
		},
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
