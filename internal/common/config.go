package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Crawler     CrawlerConfig `toml:"crawler"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// CrawlerConfig controls the headless Chrome fetcher
type CrawlerConfig struct {
	UserAgent      string        `toml:"user_agent"`       // User agent sent with every navigation
	Headless       bool          `toml:"headless"`         // Run Chrome headless
	NoSandbox      bool          `toml:"no_sandbox"`       // Disable Chrome sandbox (required in some containers)
	DisableGPU     bool          `toml:"disable_gpu"`      // Disable GPU acceleration
	RequestTimeout time.Duration `toml:"request_timeout"`  // Upper bound for one fetch attempt
	RenderWait     time.Duration `toml:"render_wait"`      // Settle time after navigation for JavaScript rendering
	RequestsPerSec float64       `toml:"requests_per_sec"` // Fetch throttle across all concurrent crawls
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in scrawl.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Crawler: CrawlerConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Headless:       true,
			NoSandbox:      true,
			DisableGPU:     true,
			RequestTimeout: 60 * time.Second,
			RenderWait:     2 * time.Second,
			RequestsPerSec: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override everything loaded from disk.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRAWL_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("SCRAWL_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCRAWL_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("SCRAWL_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("SCRAWL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SCRAWL_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if ua := os.Getenv("SCRAWL_CRAWLER_USER_AGENT"); ua != "" {
		config.Crawler.UserAgent = ua
	}
	if timeout := os.Getenv("SCRAWL_CRAWLER_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Crawler.RequestTimeout = d
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
