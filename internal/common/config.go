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
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Logging     LoggingConfig    `toml:"logging"`
	Storage     StorageConfig    `toml:"storage"`
	Harvest     HarvestConfig    `toml:"harvest"`
	GooglePlay  GooglePlayConfig `toml:"google_play"`
	AppStore    AppStoreConfig   `toml:"app_store"`
	Retention   RetentionConfig  `toml:"retention"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// StorageConfig controls where per-job CSV artifacts are written.
type StorageConfig struct {
	DataDir string `toml:"data_dir"` // Directory for per-job artifacts (default: "./data")
}

// HarvestConfig controls the review harvesting window and fan-out behavior.
type HarvestConfig struct {
	Regions      []string `toml:"regions"`       // Region codes fanned out per source
	CutoffMonths int      `toml:"cutoff_months"` // Sliding window: keep reviews newer than now-N months
	MaxWorkers   int      `toml:"max_workers"`   // Ceiling on the per-source region worker pool
	SampleSize   int      `toml:"sample_size"`   // Sample reviews attached to a completed job
}

// GooglePlayConfig configures the cursor-paginated Google Play review source.
type GooglePlayConfig struct {
	Enabled        bool          `toml:"enabled"`
	BaseURL        string        `toml:"base_url"`
	PageSize       int           `toml:"page_size"`      // Reviews requested per continuation call
	MaxPerRegion   int           `toml:"max_per_region"` // Safety cap on accumulated reviews per region
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimit      int           `toml:"rate_limit"` // Requests per second across all regions
}

// AppStoreConfig configures the page-numbered App Store customer-reviews feed.
type AppStoreConfig struct {
	Enabled        bool          `toml:"enabled"`
	BaseURL        string        `toml:"base_url"`
	MaxPages       int           `toml:"max_pages"` // Feed pages requested per region
	RequestTimeout time.Duration `toml:"request_timeout"`
	RateLimit      int           `toml:"rate_limit"` // Requests per second across all regions
}

// RetentionConfig controls the optional cron sweep that purges terminal job
// records and their artifacts once they age out.
type RetentionConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule with seconds field (default: hourly)
	MaxAge   string `toml:"max_age"`  // Duration string, e.g. "24h"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in recensio.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Harvest: HarvestConfig{
			Regions:      []string{"sa", "ae", "kw", "bh", "qa", "om", "us"},
			CutoffMonths: 6,
			MaxWorkers:   8,
			SampleSize:   5,
		},
		GooglePlay: GooglePlayConfig{
			Enabled:        true,
			BaseURL:        "https://play.google.com/store/getreviews",
			PageSize:       200,
			MaxPerRegion:   2000,
			RequestTimeout: 30 * time.Second,
			RateLimit:      5,
		},
		AppStore: AppStoreConfig{
			Enabled:        true,
			BaseURL:        "https://itunes.apple.com",
			MaxPages:       10,
			RequestTimeout: 5 * time.Second,
			RateLimit:      10,
		},
		Retention: RetentionConfig{
			Enabled:  false,
			Schedule: "0 0 * * * *", // Hourly (cron format with seconds)
			MaxAge:   "24h",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
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

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RECENSIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("RECENSIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RECENSIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("RECENSIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if dataDir := os.Getenv("RECENSIO_DATA_DIR"); dataDir != "" {
		config.Storage.DataDir = dataDir
	}

	if regions := os.Getenv("RECENSIO_HARVEST_REGIONS"); regions != "" {
		parts := strings.Split(regions, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			config.Harvest.Regions = cleaned
		}
	}
	if months := os.Getenv("RECENSIO_HARVEST_CUTOFF_MONTHS"); months != "" {
		if m, err := strconv.Atoi(months); err == nil && m > 0 {
			config.Harvest.CutoffMonths = m
		}
	}

	if baseURL := os.Getenv("RECENSIO_GOOGLE_PLAY_BASE_URL"); baseURL != "" {
		config.GooglePlay.BaseURL = baseURL
	}
	if baseURL := os.Getenv("RECENSIO_APP_STORE_BASE_URL"); baseURL != "" {
		config.AppStore.BaseURL = baseURL
	}
}

// CutoffDate returns the earliest review date retained by the current window.
func (h *HarvestConfig) CutoffDate(now time.Time) time.Time {
	months := h.CutoffMonths
	if months <= 0 {
		months = 6
	}
	return now.AddDate(0, -months, 0)
}

// PoolSize returns the worker-pool size for fanning out across the given
// number of regions: the region count or the configured ceiling, whichever
// is smaller.
func (h *HarvestConfig) PoolSize(regionCount int) int {
	limit := h.MaxWorkers
	if limit <= 0 {
		limit = 8
	}
	if regionCount < limit {
		return regionCount
	}
	return limit
}
