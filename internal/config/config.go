package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=herbtrace port=5432 sslmode=disable"

type Config struct {
	HTTPPort          string
	DatabaseDSN       string
	JWTSecret         string
	CORSOrigins       string
	LogLevel          slog.Level
	StrictRoles       bool          // stage routes only accept the matching role
	QRSize            int           // edge length of generated QR PNGs in pixels
	UsernameCacheSize int
	TokenTTL          time.Duration
	CookieSecure      bool
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

// Load reads the environment, after merging a .env file when one exists.
// Problems that would make the server unsafe to run are returned as errors;
// development defaults only produce a warning.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "err", err)
	}

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "5000"),
		DatabaseDSN:       getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		CORSOrigins:       getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:          parseLevel(getEnv("LOG_LEVEL", "info")),
		StrictRoles:       getBool("STRICT_ROLES", false),
		QRSize:            getInt("QR_SIZE", 256),
		UsernameCacheSize: getInt("USERNAME_CACHE_SIZE", 1024),
		TokenTTL:          getDuration("TOKEN_TTL", time.Hour),
		CookieSecure:      getBool("COOKIE_SECURE", true),
		ReadTimeout:       getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == defaultDSN {
		slog.Warn("DATABASE_DSN is using the local development default")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		slog.Warn("CORS_ALLOWED_ORIGINS is using the local development default")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errMissingSecret
	}
	if len(c.JWTSecret) < 32 {
		return errShortSecret
	}
	for _, o := range c.Origins() {
		if o == "*" {
			return errWildcardOrigin
		}
	}
	if c.QRSize <= 0 {
		c.QRSize = 256
	}
	if c.UsernameCacheSize <= 0 {
		c.UsernameCacheSize = 1024
	}
	return nil
}

// Origins splits the comma separated CORS list.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type configError string

func (e configError) Error() string { return string(e) }

const (
	errMissingSecret  configError = "JWT_SECRET is not set"
	errShortSecret    configError = "JWT_SECRET must be at least 32 characters"
	errWildcardOrigin configError = "CORS_ALLOWED_ORIGINS cannot be * while session cookies are sent cross-origin"
)

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
