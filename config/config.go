package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pevans/newsgrab/fetcher"
)

// DefaultPath is the config file read when NEWSGRAB_CONFIG is unset.
const DefaultPath = "newsgrab.yaml"

// Config holds the runtime settings of newsgrab.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Paths   PathsConfig   `yaml:"paths"`
}

// ServerConfig configures the web form listener.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`
}

// StorageConfig locates the article database.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// PathsConfig names the template and static asset directories.
type PathsConfig struct {
	Templates string `yaml:"templates"`
	Static    string `yaml:"static"`
}

// Default returns the built-in configuration: listen on all interfaces,
// port 5000, with debug output enabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:  "0.0.0.0:5000",
			Debug: true,
		},
		Storage: StorageConfig{
			DSN: "database.db",
		},
		Fetch: FetchConfig{
			Timeout:   fetcher.DefaultTimeout.String(),
			UserAgent: fetcher.DefaultUserAgent,
		},
		Paths: PathsConfig{
			Templates: "templates",
			Static:    "static",
		},
	}
}

// Load builds the configuration from defaults, the config file at path (if
// it exists) and NEWSGRAB_* environment variables, in increasing order of
// precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns the config file location from NEWSGRAB_CONFIG, or
// DefaultPath.
func Path() string {
	return getEnv("NEWSGRAB_CONFIG", DefaultPath)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Storage.DSN == "" {
		return errors.New("storage.dsn must not be empty")
	}
	if _, err := c.FetchTimeout(); err != nil {
		return err
	}
	return nil
}

// FetchTimeout parses Fetch.Timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid fetch.timeout: must be positive, got %s", c.Fetch.Timeout)
	}
	return d, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Addr = getEnv("NEWSGRAB_ADDR", cfg.Server.Addr)
	cfg.Storage.DSN = getEnv("NEWSGRAB_DSN", cfg.Storage.DSN)
	cfg.Fetch.Timeout = getEnv("NEWSGRAB_FETCH_TIMEOUT", cfg.Fetch.Timeout)
	cfg.Fetch.UserAgent = getEnv("NEWSGRAB_USER_AGENT", cfg.Fetch.UserAgent)
	cfg.Paths.Templates = getEnv("NEWSGRAB_TEMPLATES_DIR", cfg.Paths.Templates)
	cfg.Paths.Static = getEnv("NEWSGRAB_STATIC_DIR", cfg.Paths.Static)

	if value := os.Getenv("NEWSGRAB_DEBUG"); value != "" {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid NEWSGRAB_DEBUG: %w", err)
		}
		cfg.Server.Debug = debug
	}

	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
