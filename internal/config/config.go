package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the client and the caching agent read at
// startup.
type Config struct {
	Path           string
	Server         string
	LogFile        string
	ScanInterval   time.Duration
	RequestTimeout time.Duration
	Agent          AgentConfig
}

// AgentConfig configures the caching agent.
type AgentConfig struct {
	Enabled     bool
	Strategy    string
	Listen      string
	CacheDriver string
	CachePath   string
	CachePrefix string
	Version     string
	Assets      []string
	NATSURL     string
	NATSSubject string
	WatchConfig bool
}

const (
	defaultConfigPath     = "~/.config/solo/config.toml"
	defaultLogFile        = "~/.local/share/solo/solo.log"
	defaultCachePath      = "~/.cache/solo"
	defaultServer         = "127.0.0.1:8000"
	defaultListen         = "127.0.0.1:8080"
	defaultStrategy       = "stale-while-populate"
	defaultCacheDriver    = "memory"
	defaultScanInterval   = 30 * time.Second
	defaultRequestTimeout = 8 * time.Second
)

type rawConfig struct {
	Server         string `toml:"server"`
	LogFile        string `toml:"log_file"`
	ScanInterval   string `toml:"scan_interval"`
	RequestTimeout string `toml:"request_timeout"`
	Agent          struct {
		Enabled     *bool    `toml:"enabled"`
		Strategy    string   `toml:"strategy"`
		Listen      string   `toml:"listen"`
		CacheDriver string   `toml:"cache_driver"`
		CachePath   string   `toml:"cache_path"`
		CachePrefix string   `toml:"cache_prefix"`
		Version     string   `toml:"version"`
		Assets      []string `toml:"assets"`
		NATSURL     string   `toml:"nats_url"`
		NATSSubject string   `toml:"nats_subject"`
		WatchConfig bool     `toml:"watch_config"`
	} `toml:"agent"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server:         defaultServer,
		LogFile:        mustExpand(defaultLogFile),
		ScanInterval:   defaultScanInterval,
		RequestTimeout: defaultRequestTimeout,
		Agent: AgentConfig{
			Enabled:     true,
			Strategy:    defaultStrategy,
			Listen:      defaultListen,
			CacheDriver: defaultCacheDriver,
			CachePath:   mustExpand(defaultCachePath),
		},
	}
}

// Load locates and parses the solo config, falling back to defaults when
// missing. SOLO_* environment variables override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg)
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Server); v != "" {
		cfg.Server = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if cfg.ScanInterval, err = parseDuration("scan_interval", raw.ScanInterval, defaultScanInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}

	a := raw.Agent
	if a.Enabled != nil {
		cfg.Agent.Enabled = *a.Enabled
	}
	setIfSet(&cfg.Agent.Strategy, a.Strategy)
	setIfSet(&cfg.Agent.Listen, a.Listen)
	setIfSet(&cfg.Agent.CacheDriver, a.CacheDriver)
	if v := strings.TrimSpace(a.CachePath); v != "" {
		cfg.Agent.CachePath = mustExpand(v)
	}
	setIfSet(&cfg.Agent.CachePrefix, a.CachePrefix)
	setIfSet(&cfg.Agent.Version, a.Version)
	setIfSet(&cfg.Agent.NATSURL, a.NATSURL)
	setIfSet(&cfg.Agent.NATSSubject, a.NATSSubject)
	for _, asset := range a.Assets {
		if trimmed := strings.TrimSpace(asset); trimmed != "" {
			cfg.Agent.Assets = append(cfg.Agent.Assets, trimmed)
		}
	}
	cfg.Agent.WatchConfig = a.WatchConfig

	return applyEnv(cfg)
}

// LoadEnvFile loads KEY=VALUE pairs from the given .env files (default
// ".env") into the process environment without overriding variables that
// are already set.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return os.ErrNotExist
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// CachePathFor returns the on-disk location for a cache driver. The sqlite
// driver stores a single file under the cache directory.
func (a AgentConfig) CachePathFor() string {
	if a.CacheDriver == "sqlite" {
		return filepath.Join(a.CachePath, "cache.db")
	}
	return a.CachePath
}

func applyEnv(cfg Config) (Config, error) {
	setIfSet(&cfg.Server, os.Getenv("SOLO_SERVER"))
	if v := strings.TrimSpace(os.Getenv("SOLO_LOG_FILE")); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := os.Getenv("SOLO_SCAN_INTERVAL"); strings.TrimSpace(v) != "" {
		d, err := parseDuration("SOLO_SCAN_INTERVAL", v, defaultScanInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.ScanInterval = d
	}
	setIfSet(&cfg.Agent.Strategy, os.Getenv("SOLO_AGENT_STRATEGY"))
	setIfSet(&cfg.Agent.Listen, os.Getenv("SOLO_AGENT_LISTEN"))
	setIfSet(&cfg.Agent.CacheDriver, os.Getenv("SOLO_CACHE_DRIVER"))
	if v := strings.TrimSpace(os.Getenv("SOLO_CACHE_PATH")); v != "" {
		cfg.Agent.CachePath = mustExpand(v)
	}
	setIfSet(&cfg.Agent.NATSURL, os.Getenv("SOLO_NATS_URL"))
	return cfg, nil
}

func setIfSet(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse %s: must be positive", field)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath trims path, expands a leading ~ and makes it absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
