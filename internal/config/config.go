// Package config assembles runtime settings from a .env file, an optional TOML file and
// the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/example/cardlearn/internal/database"
)

// Config holds every setting the binaries read
type Config struct {
	AppEnv        string
	HTTPAddr      string
	DBType        string
	DatabaseURL   string
	SQLitePath    string
	JWTSecret     string
	TelegramToken string
	Timezone      string
	DecoyCount    int
	StatsInterval time.Duration
	CORSOrigins   []string
}

// fileConfig mirrors the TOML layout; nil fields keep the current value.
type fileConfig struct {
	App struct {
		Env      *string `toml:"env"`
		Timezone *string `toml:"timezone"`
	} `toml:"app"`
	HTTP struct {
		Addr        *string  `toml:"addr"`
		CORSOrigins []string `toml:"cors_origins"`
	} `toml:"http"`
	Database struct {
		Type       *string `toml:"type"`
		URL        *string `toml:"url"`
		SQLitePath *string `toml:"sqlite_path"`
	} `toml:"database"`
	Learning struct {
		DecoyCount           *int `toml:"decoy_count"`
		StatsIntervalMinutes *int `toml:"stats_interval_minutes"`
	} `toml:"learning"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		AppEnv:        "production",
		HTTPAddr:      ":8080",
		DBType:        "sqlite",
		SQLitePath:    "data/cardlearn.db",
		Timezone:      "UTC",
		DecoyCount:    3,
		StatsInterval: 60 * time.Minute,
	}
}

// Load reads .env from the working directory, then the TOML file at path (if any), then
// the environment. Missing files are not errors.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config: %w", err)
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	setString(&c.AppEnv, fc.App.Env)
	setString(&c.Timezone, fc.App.Timezone)
	setString(&c.HTTPAddr, fc.HTTP.Addr)
	setString(&c.DBType, fc.Database.Type)
	setString(&c.DatabaseURL, fc.Database.URL)
	setString(&c.SQLitePath, fc.Database.SQLitePath)
	if fc.HTTP.CORSOrigins != nil {
		c.CORSOrigins = fc.HTTP.CORSOrigins
	}
	if fc.Learning.DecoyCount != nil {
		c.DecoyCount = *fc.Learning.DecoyCount
	}
	if fc.Learning.StatsIntervalMinutes != nil {
		c.StatsInterval = time.Duration(*fc.Learning.StatsIntervalMinutes) * time.Minute
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("APP_ENV", &c.AppEnv)
	str("HTTP_ADDR", &c.HTTPAddr)
	str("DB_TYPE", &c.DBType)
	str("DATABASE_URL", &c.DatabaseURL)
	str("SQLITE_PATH", &c.SQLitePath)
	str("JWT_SECRET_KEY", &c.JWTSecret)
	str("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	str("TIMEZONE", &c.Timezone)

	if v, ok := lookup("DECOY_COUNT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DECOY_COUNT %q: %w", v, err)
		}
		c.DecoyCount = n
	}
	if v, ok := lookup("STATS_INTERVAL_MINUTES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid STATS_INTERVAL_MINUTES %q: %w", v, err)
		}
		c.StatsInterval = time.Duration(n) * time.Minute
	}
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.CORSOrigins = append(c.CORSOrigins, o)
			}
		}
	}
	return nil
}

// Validate rejects settings the binaries cannot run with
func (c Config) Validate() error {
	switch strings.ToLower(c.DBType) {
	case "sqlite", "sqlite3":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is empty")
		}
	case "postgres", "postgresql":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.DecoyCount < 0 {
		return fmt.Errorf("DECOY_COUNT must not be negative, got %d", c.DecoyCount)
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("STATS_INTERVAL_MINUTES must be positive, got %s", c.StatsInterval)
	}
	return nil
}

// Location returns the timezone that defines "today".
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Database returns the connection settings for the configured store
func (c Config) Database() database.Config {
	if strings.HasPrefix(strings.ToLower(c.DBType), "postgres") {
		return database.Config{Type: c.DBType, DSN: c.DatabaseURL}
	}
	return database.Config{Type: c.DBType, DSN: c.SQLitePath}
}

// IsDev reports whether development logging should be used.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	}
	return false
}
