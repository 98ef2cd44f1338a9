package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env in the way

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":5000" {
		t.Errorf("HTTPAddr = %q, want :5000", cfg.HTTPAddr)
	}
	if cfg.Workers != 2 || cfg.MaxRequestsPerCrawl != 50 {
		t.Errorf("Workers = %d MaxRequestsPerCrawl = %d", cfg.Workers, cfg.MaxRequestsPerCrawl)
	}
	if cfg.ContentTimeout != 30*time.Second || cfg.ScrollInterval != 100*time.Millisecond {
		t.Errorf("ContentTimeout = %s ScrollInterval = %s", cfg.ContentTimeout, cfg.ScrollInterval)
	}
	if cfg.ImageWaitTimeout != 0 {
		t.Errorf("ImageWaitTimeout = %s, want 0 so only the job deadline bounds the image wait", cfg.ImageWaitTimeout)
	}
	if !cfg.RespectRobots || !cfg.Headless || cfg.NoSandbox {
		t.Errorf("unexpected booleans: robots=%v headless=%v nosandbox=%v", cfg.RespectRobots, cfg.Headless, cfg.NoSandbox)
	}
	if len(cfg.AllowedHosts) != 1 || cfg.AllowedHosts[0] != "youtube.com" {
		t.Errorf("AllowedHosts = %v, want [youtube.com]", cfg.AllowedHosts)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL should be optional, got %q", cfg.DatabaseURL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WORKERS", "4")
	t.Setenv("SCROLL_INTERVAL", "250ms")
	t.Setenv("RESPECT_ROBOTS", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_HOSTS", "youtube.com,youtu.be")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Workers != 4 || cfg.ScrollInterval != 250*time.Millisecond || cfg.RespectRobots {
		t.Errorf("env not applied: %+v", cfg)
	}
	if len(cfg.AllowedHosts) != 2 || cfg.AllowedHosts[1] != "youtu.be" {
		t.Errorf("AllowedHosts = %v", cfg.AllowedHosts)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("Level = %s, want DEBUG", level)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"zero workers", "WORKERS", "0", "WORKERS"},
		{"zero budget", "MAX_REQUESTS_PER_CRAWL", "0", "MAX_REQUESTS_PER_CRAWL"},
		{"job shorter than content wait", "JOB_TIMEOUT", "10s", "JOB_TIMEOUT"},
		{"negative rate", "RATE_LIMIT", "-1s", "RATE_LIMIT"},
		{"unknown level", "LOG_LEVEL", "chatty", "LOG_LEVEL"},
		{"unparseable duration", "CONTENT_TIMEOUT", "soon", "CONTENT_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected an error for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}
