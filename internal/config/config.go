package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath          string
	ListenAddr      string
	LogLevel        slog.Level
	MaxPageSize     int
	Metrics         bool
	CacheSizeKiB    int64
	MmapSize        int64
	ShutdownTimeout time.Duration
}

// fileConfig mirrors Config for the optional YAML file. Zero values leave
// the defaults in place.
type fileConfig struct {
	DBPath          string `yaml:"db_path"`
	ListenAddr      string `yaml:"listen_addr"`
	LogLevel        string `yaml:"log_level"`
	MaxPageSize     *int   `yaml:"max_page_size"`
	Metrics         *bool  `yaml:"metrics"`
	CacheSizeKiB    *int64 `yaml:"cache_size"`
	MmapSize        *int64 `yaml:"mmap_size"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

func Defaults() Config {
	return Config{
		ListenAddr:      ":8080",
		LogLevel:        slog.LevelInfo,
		CacheSizeKiB:    -400000,
		MmapSize:        30000000000,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load layers defaults, the YAML file at path (or $FINDER_CONFIG when path is
// empty) and FINDER_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv("FINDER_CONFIG")
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = ParseLevel(fc.LogLevel, cfg.LogLevel)
	}
	if fc.MaxPageSize != nil {
		cfg.MaxPageSize = *fc.MaxPageSize
	}
	if fc.Metrics != nil {
		cfg.Metrics = *fc.Metrics
	}
	if fc.CacheSizeKiB != nil {
		cfg.CacheSizeKiB = *fc.CacheSizeKiB
	}
	if fc.MmapSize != nil {
		cfg.MmapSize = *fc.MmapSize
	}
	if fc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("parse config %s: shutdown_timeout: %w", path, err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.DBPath = getenv("FINDER_DB_PATH", cfg.DBPath)
	cfg.ListenAddr = getenv("FINDER_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = ParseLevel(os.Getenv("FINDER_LOG_LEVEL"), cfg.LogLevel)
	cfg.MaxPageSize = intEnv("FINDER_MAX_PAGE_SIZE", cfg.MaxPageSize)
	cfg.Metrics = boolEnv("FINDER_METRICS", cfg.Metrics)
	cfg.CacheSizeKiB = int64Env("FINDER_CACHE_SIZE", cfg.CacheSizeKiB)
	cfg.MmapSize = int64Env("FINDER_MMAP_SIZE", cfg.MmapSize)
	cfg.ShutdownTimeout = durationEnv("FINDER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func int64Env(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func boolEnv(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// ParseLevel maps debug/info/warn/error to a slog level. Anything else
// yields fallback.
func ParseLevel(v string, fallback slog.Level) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
