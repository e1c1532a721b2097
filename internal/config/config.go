// Package config reads process configuration from environment variables.
//
// Each binary loads its struct once in main and passes it down; nothing
// else in the tree calls os.Getenv.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client configures cmd/client, the local routing shell.
type Client struct {
	Port          int
	BlogAPIURL    string // base URL of the remote blog API
	SessionDBPath string // SQLite file backing the persisted session
	LogLevel      slog.Level
}

// DevAPI configures cmd/devapi, the stand-in blog API.
type DevAPI struct {
	Port        int
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	LogLevel    slog.Level
}

// LoadClient reads the client configuration.
func LoadClient() (Client, error) {
	port, err := getEnvInt("PORT", 3000)
	if err != nil {
		return Client{}, err
	}
	level, err := ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Client{}, err
	}

	cfg := Client{
		Port:          port,
		BlogAPIURL:    strings.TrimRight(getEnv("BLOG_API_URL", "http://localhost:8000"), "/"),
		SessionDBPath: getEnv("SESSION_DB_PATH", "data/session.db"),
		LogLevel:      level,
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail on first use.
func (c Client) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}
	u, err := url.Parse(c.BlogAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: BLOG_API_URL must be an http(s) URL, got %q", c.BlogAPIURL)
	}
	if c.SessionDBPath == "" {
		return fmt.Errorf("config: SESSION_DB_PATH must not be empty")
	}
	return nil
}

// LoadDevAPI reads the development API configuration.
//
// JWT_SECRET has a development default so `go run ./cmd/devapi` works out
// of the box; the server logs a warning when it is used.
func LoadDevAPI() (DevAPI, error) {
	port, err := getEnvInt("PORT", 8000)
	if err != nil {
		return DevAPI{}, err
	}
	level, err := ParseLevel(getEnv("LOG_LEVEL", "debug"))
	if err != nil {
		return DevAPI{}, err
	}
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return DevAPI{}, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}

	cfg := DevAPI{
		Port:        port,
		DBPath:      getEnv("DB_PATH", "data/devapi.db"),
		JWTSecret:   getEnv("JWT_SECRET", DevJWTSecret),
		TokenTTL:    ttl,
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:    level,
	}
	return cfg, cfg.Validate()
}

// DevJWTSecret is used when JWT_SECRET is unset. Never deploy with it.
const DevJWTSecret = "storyblog-development-secret"

// Validate checks the development API configuration.
func (c DevAPI) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: DB_PATH must not be empty")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	return nil
}

// ParseLevel turns "debug", "info", "warn" or "error" into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", port)
	}
	return nil
}
