package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverCouchDB = "couchdb"
	DriverMemory  = "memory"

	defaultSessionSecret = "dev-secret-change-in-production"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Auth     AuthConfig
	Notes    NotesConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c ServerConfig) Production() bool {
	return c.Env == "production"
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// CouchURL returns DATABASE_URL when set, otherwise a URL assembled from the parts.
func (c DatabaseConfig) CouchURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := &url.URL{
		Scheme: "http",
		Host:   c.Host + ":" + c.Port,
		User:   url.UserPassword(c.User, c.Password),
	}
	return u.String()
}

type SessionConfig struct {
	Secret       string
	CookieName   string
	MaxAge       time.Duration
	TouchAfter   time.Duration
	SecureCookie bool
}

type AuthConfig struct {
	PasswordMinLength int
}

type NotesConfig struct {
	ShowRequiresOwner bool
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	godotenv.Load()

	maxAge, err := time.ParseDuration(getEnv("SESSION_MAX_AGE", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}

	touchAfter, err := time.ParseDuration(getEnv("SESSION_TOUCH_AFTER", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TOUCH_AFTER: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverCouchDB),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5984"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "notes"),
		},
		Session: SessionConfig{
			Secret:       getEnv("SESSION_SECRET", defaultSessionSecret),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "notes_session"),
			MaxAge:       maxAge,
			TouchAfter:   touchAfter,
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", false),
		},
		Auth: AuthConfig{
			PasswordMinLength: getEnvAsInt("PASSWORD_MIN_LENGTH", 6),
		},
		Notes: NotesConfig{
			ShowRequiresOwner: getEnvAsBool("NOTES_SHOW_REQUIRES_OWNER", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverCouchDB, DriverMemory:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q", c.Database.Driver)
	}

	if c.Session.MaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.Session.TouchAfter < 0 {
		return errors.New("SESSION_TOUCH_AFTER must not be negative")
	}
	if c.Auth.PasswordMinLength < 1 {
		return errors.New("PASSWORD_MIN_LENGTH must be at least 1")
	}
	if c.Server.Production() && c.Session.Secret == defaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
