package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the queue dashboard.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	QueuePrefix       string
	RegularQueueKey   string
	WatchlistQueueKey string

	IndexMaxAge      time.Duration
	BrandCacheMaxAge time.Duration
	PageCacheTTL     time.Duration
	RefreshInterval  time.Duration
	StoreTimeout     time.Duration

	ScanCount        int
	FetchBatchSize   int
	DefaultPageLimit int
	MaxPageLimit     int
	HotPages         int
	HotPageLimit     int

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Queues struct {
		Prefix    string `yaml:"prefix"`
		Regular   string `yaml:"regular"`
		Watchlist string `yaml:"watchlist"`
	} `yaml:"queues"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "queue-dashboard",
		HTTPPort:          8080,
		GRPCPort:          9090,
		QueuePrefix:       "bull",
		RegularQueueKey:   "brand-processing",
		WatchlistQueueKey: "watchlist-brands",
		IndexMaxAge:       5 * time.Minute,
		BrandCacheMaxAge:  10 * time.Minute,
		PageCacheTTL:      10 * time.Minute,
		RefreshInterval:   5 * time.Minute,
		StoreTimeout:      5 * time.Second,
		ScanCount:         100,
		FetchBatchSize:    50,
		DefaultPageLimit:  10,
		MaxPageLimit:      100,
		HotPages:          2,
		HotPageLimit:      10,
		MaxDBConns:        20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Queues.Prefix != "" {
			cfg.QueuePrefix = f.Queues.Prefix
		}
		if f.Queues.Regular != "" {
			cfg.RegularQueueKey = f.Queues.Regular
		}
		if f.Queues.Watchlist != "" {
			cfg.WatchlistQueueKey = f.Queues.Watchlist
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.QueuePrefix = envOrDefault("QUEUE_PREFIX", cfg.QueuePrefix)
	cfg.RegularQueueKey = envOrDefault("REGULAR_QUEUE_KEY", cfg.RegularQueueKey)
	cfg.WatchlistQueueKey = envOrDefault("WATCHLIST_QUEUE_KEY", cfg.WatchlistQueueKey)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.ScanCount = envInt("SCAN_COUNT", cfg.ScanCount)
	cfg.FetchBatchSize = envInt("FETCH_BATCH_SIZE", cfg.FetchBatchSize)
	cfg.DefaultPageLimit = envInt("DEFAULT_PAGE_LIMIT", cfg.DefaultPageLimit)
	cfg.MaxPageLimit = envInt("MAX_PAGE_LIMIT", cfg.MaxPageLimit)
	cfg.HotPages = envInt("HOT_PAGES", cfg.HotPages)
	cfg.HotPageLimit = envInt("HOT_PAGE_LIMIT", cfg.HotPageLimit)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.IndexMaxAge = time.Duration(envInt("INDEX_MAX_AGE_SECONDS", int(cfg.IndexMaxAge.Seconds()))) * time.Second
	cfg.BrandCacheMaxAge = time.Duration(envInt("BRAND_CACHE_MAX_AGE_SECONDS", int(cfg.BrandCacheMaxAge.Seconds()))) * time.Second
	cfg.PageCacheTTL = time.Duration(envInt("PAGE_CACHE_TTL_SECONDS", int(cfg.PageCacheTTL.Seconds()))) * time.Second
	cfg.RefreshInterval = time.Duration(envInt("REFRESH_INTERVAL_SECONDS", int(cfg.RefreshInterval.Seconds()))) * time.Second
	cfg.StoreTimeout = time.Duration(envInt("STORE_TIMEOUT_SECONDS", int(cfg.StoreTimeout.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
