package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration. Runtime-tunable knobs
// (thresholds, AI provider, scroll behavior) live in the settings table
// instead, so they can be changed from the API without a restart.
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:pricewatch.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		TickInterval  time.Duration `yaml:"tick_interval" json:"tick_interval" jsonschema:"default=1m,description=How often the scheduler scans for due items"`
		RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts" jsonschema:"default=5,description=Retry attempts for storage writes on lock contention"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Browser BrowserConfig `yaml:"browser" json:"browser" jsonschema:"description=Headless browser configuration"`
}

// BrowserConfig holds headless browser settings. PoolSize doubles as the
// pipeline concurrency ceiling: the scheduler never runs more concurrent
// checks than there are browser sessions.
type BrowserConfig struct {
	RemoteURL     string `yaml:"remote_url" json:"remote_url" jsonschema:"description=WebSocket control URL of a remote Chrome (empty launches a local one)"`
	PoolSize      int    `yaml:"pool_size" json:"pool_size" jsonschema:"default=5,minimum=1,description=Number of concurrent browser sessions"`
	ScreenshotDir string `yaml:"screenshot_dir" json:"screenshot_dir" jsonschema:"default=screenshots,description=Directory for item screenshots"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:pricewatch.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for schedule
	if cfg.Schedule.TickInterval == 0 {
		cfg.Schedule.TickInterval = time.Minute
	}
	if cfg.Schedule.RetryAttempts == 0 {
		cfg.Schedule.RetryAttempts = 5
	}

	// set defaults for browser
	if cfg.Browser.PoolSize == 0 {
		cfg.Browser.PoolSize = 5
	}
	if cfg.Browser.ScreenshotDir == "" {
		cfg.Browser.ScreenshotDir = "screenshots"
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.TickInterval < time.Second {
		return fmt.Errorf("schedule.tick_interval must be at least 1 second")
	}
	if cfg.Browser.PoolSize < 1 {
		return fmt.Errorf("browser.pool_size must be at least 1")
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetBrowserConfig returns headless browser configuration
func (c *Config) GetBrowserConfig() BrowserConfig {
	return c.Browser
}
