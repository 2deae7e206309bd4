package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port           string        `toml:"port"`
	LogLevel       string        `toml:"log_level"`
	PortfolioFile  string        `toml:"portfolio_file"`
	MappingsDir    string        `toml:"mappings_dir"`
	PostgresURL    string        `toml:"postgres_url"`
	DefaultLang    string        `toml:"default_lang"`
	MaxUploadBytes int64         `toml:"max_upload_bytes"`
	UploadTTL      time.Duration `toml:"-"`
	UploadTTLRaw   string        `toml:"upload_ttl"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		PortfolioFile:  "portfolioinputs.csv",
		MappingsDir:    ".",
		DefaultLang:    "en",
		MaxUploadBytes: 10 << 20,
		UploadTTL:      30 * time.Minute,
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment, in increasing order of precedence. A .env file is read first
// if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "dashboard.toml"
	}
	if err := cfg.readFile(path); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if c.UploadTTLRaw != "" {
		d, err := time.ParseDuration(c.UploadTTLRaw)
		if err != nil {
			return fmt.Errorf("upload_ttl: %w", err)
		}
		c.UploadTTL = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.PortfolioFile, "PORTFOLIO_FILE")
	setString(&c.MappingsDir, "MAPPINGS_DIR")
	setString(&c.PostgresURL, "POSTGRES_URL")
	setString(&c.DefaultLang, "DEFAULT_LANG")

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", v)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("UPLOAD_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("UPLOAD_TTL: %w", err)
		}
		c.UploadTTL = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
