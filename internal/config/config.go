package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// HTTPAddr maps to HTTP_ADDR.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":5000"`

	// DatabaseURL maps to env var DB_URL. Optional: without it scratch
	// datasets stay in memory and run summaries go to the log.
	DatabaseURL string `envconfig:"DB_URL"`

	// Workers maps to WORKERS: how many crawls (and browsers) run at once.
	Workers int `envconfig:"WORKERS" default:"2"`

	MaxRequestsPerCrawl int           `envconfig:"MAX_REQUESTS_PER_CRAWL" default:"50"`
	ContentTimeout      time.Duration `envconfig:"CONTENT_TIMEOUT" default:"30s"`
	ImageWaitTimeout    time.Duration `envconfig:"IMAGE_WAIT_TIMEOUT" default:"0s"`
	JobTimeout          time.Duration `envconfig:"JOB_TIMEOUT" default:"4m"`

	ScrollInterval      time.Duration `envconfig:"SCROLL_INTERVAL" default:"100ms"`
	ScrollMaxIterations int           `envconfig:"SCROLL_MAX_ITERATIONS" default:"1000"`
	ScrollMaxDuration   time.Duration `envconfig:"SCROLL_MAX_DURATION" default:"2m"`

	// RateLimit maps to RATE_LIMIT, the minimum gap between crawls of one host.
	RateLimit     time.Duration `envconfig:"RATE_LIMIT" default:"2s"`
	RespectRobots bool          `envconfig:"RESPECT_ROBOTS" default:"true"`

	// AllowedHosts maps to ALLOWED_HOSTS (comma separated). Subdomains match.
	AllowedHosts []string `envconfig:"ALLOWED_HOSTS" default:"youtube.com"`
	UserAgent    string   `envconfig:"USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"`

	ChromePath string `envconfig:"CHROME_PATH"`
	Headless   bool   `envconfig:"HEADLESS" default:"true"`
	NoSandbox  bool   `envconfig:"NO_SANDBOX" default:"false"`

	// BatchSize maps to BATCH_SIZE.
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"20"`
	FlushInterval time.Duration `envconfig:"FLUSH_INTERVAL" default:"2s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// 1. Try to load .env file (if it exists)
	// In containers there is usually no .env file (vars are injected directly).
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			slog.Warn(".env file found but could not be loaded", slog.Any("error", err))
		}
	}

	// 2. Process Environment Variables (System + Loaded from .env)
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive")
	}
	if c.MaxRequestsPerCrawl <= 0 {
		return fmt.Errorf("MAX_REQUESTS_PER_CRAWL must be positive")
	}
	if c.ContentTimeout <= 0 {
		return fmt.Errorf("CONTENT_TIMEOUT must be positive")
	}
	if c.ImageWaitTimeout < 0 {
		return fmt.Errorf("IMAGE_WAIT_TIMEOUT cannot be negative")
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive")
	}
	if c.JobTimeout < c.ContentTimeout {
		return fmt.Errorf("JOB_TIMEOUT (%s) cannot be shorter than CONTENT_TIMEOUT (%s)", c.JobTimeout, c.ContentTimeout)
	}
	if c.ScrollInterval <= 0 {
		return fmt.Errorf("SCROLL_INTERVAL must be positive")
	}
	if c.ScrollMaxIterations < 0 {
		return fmt.Errorf("SCROLL_MAX_ITERATIONS cannot be negative")
	}
	if c.ScrollMaxDuration < 0 {
		return fmt.Errorf("SCROLL_MAX_DURATION cannot be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT cannot be negative")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive")
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("FLUSH_INTERVAL must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LOG_LEVEL.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
