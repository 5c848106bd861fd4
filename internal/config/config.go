// Package config provides unified configuration loading for the SCM assistant.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the SCM assistant.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Glossary      GlossaryConfig      `yaml:"glossary"`
	Index         IndexConfig         `yaml:"index"`
	Sync          SyncConfig          `yaml:"sync"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Agent         AgentConfig         `yaml:"agent"`
	Cache         CacheConfig         `yaml:"cache"`
	RunLog        RunLogConfig        `yaml:"run_log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// GlossaryConfig holds glossary feed settings.
type GlossaryConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig holds retrieval index locations.
type IndexConfig struct {
	Dir      string `yaml:"dir"`       // default collection blob directory
	CacheDir string `yaml:"cache_dir"` // synced blobs land here and win over Dir
	Supply   string `yaml:"supply"`    // file name of the supply blob
	Demand   string `yaml:"demand"`    // file name of the demand blob
	Default  string `yaml:"default"`   // file name of the default blob
}

// SyncConfig holds S3 index synchronization settings.
type SyncConfig struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	SupplyKey string `yaml:"supply_key"`
	DemandKey string `yaml:"demand_key"`
	Region    string `yaml:"region"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	TopK        int    `yaml:"top_k"`
	MaxFeatures int    `yaml:"max_features"`
	Ranker      string `yaml:"ranker"` // lexical or embedding
	EmbedderURL string `yaml:"embedder_url"`
	EmbedModel  string `yaml:"embed_model"`
}

// AgentConfig holds orchestration thresholds and policy.
type AgentConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	ContextBudget       int     `yaml:"context_budget"`
	MaxSummarySentences int     `yaml:"max_summary_sentences"`
	EscalationThreshold float64 `yaml:"escalation_threshold"`
	WebSearchResults    int     `yaml:"web_search_results"`
	GuardEnabled        bool    `yaml:"guard_enabled"`
}

// CacheConfig holds answer cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// RunLogConfig holds run logging settings.
type RunLogConfig struct {
	Driver string `yaml:"driver"` // sqlite, jsonl or none
	Path   string `yaml:"path"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Glossary: GlossaryConfig{
			Path: "data/scm_dictionary.json",
		},
		Index: IndexConfig{
			Dir:      "storage/indexes",
			CacheDir: "cache/indexes",
			Supply:   "supply.index",
			Demand:   "demand.index",
			Default:  "default.index",
		},
		Sync: SyncConfig{
			Prefix: "scm-assistant/indexes",
		},
		Retrieval: RetrievalConfig{
			TopK:        3,
			MaxFeatures: 40000,
			Ranker:      "lexical",
		},
		Agent: AgentConfig{
			ConfidenceThreshold: 0.55,
			ContextBudget:       2000,
			MaxSummarySentences: 3,
			EscalationThreshold: 0.01,
			WebSearchResults:    3,
			GuardEnabled:        false,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		RunLog: RunLogConfig{
			Driver: "sqlite",
			Path:   "logs/scm_runs.db",
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "scm-assistant",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Retrieval.TopK < 1 || c.Retrieval.TopK > 20 {
		return fmt.Errorf("top_k must be between 1 and 20")
	}

	if c.Retrieval.Ranker != "lexical" && c.Retrieval.Ranker != "embedding" {
		return fmt.Errorf("invalid ranker: %s", c.Retrieval.Ranker)
	}

	if c.Agent.ConfidenceThreshold < 0 || c.Agent.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in [0,1]")
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.RunLog.Driver != "sqlite" && c.RunLog.Driver != "jsonl" && c.RunLog.Driver != "none" {
		return fmt.Errorf("invalid run_log driver: %s", c.RunLog.Driver)
	}

	return nil
}

// IndexPath returns the blob path for a domain, preferring the synced cache.
// An empty domain selects the default collection blob.
func (c *Config) IndexPath(domain string) string {
	name := c.Index.Default
	switch domain {
	case "supply":
		name = c.Index.Supply
	case "demand":
		name = c.Index.Demand
	}

	cached := filepath.Join(c.Index.CacheDir, name)
	if _, err := os.Stat(cached); err == nil {
		return cached
	}
	return filepath.Join(c.Index.Dir, name)
}

// IndexExists reports whether the blob for a domain is present on disk.
func (c *Config) IndexExists(domain string) bool {
	_, err := os.Stat(c.IndexPath(domain))
	return err == nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("GLOSSARY_PATH"); v != "" {
		cfg.Glossary.Path = v
	}

	if v := os.Getenv("INDEX_DIR"); v != "" {
		cfg.Index.Dir = v
	}

	if v := os.Getenv("INDEX_CACHE_DIR"); v != "" {
		cfg.Index.CacheDir = v
	}

	if v := os.Getenv("INDEX_BUCKET"); v != "" {
		cfg.Sync.Bucket = v
	}

	if v := os.Getenv("INDEX_PREFIX"); v != "" {
		cfg.Sync.Prefix = strings.Trim(v, "/")
	}

	if v := os.Getenv("INDEX_SUPPLY_KEY"); v != "" {
		cfg.Sync.SupplyKey = v
	}

	if v := os.Getenv("INDEX_DEMAND_KEY"); v != "" {
		cfg.Sync.DemandKey = v
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Sync.Region = v
	}

	if v := os.Getenv("SCM_RANKER"); v != "" {
		cfg.Retrieval.Ranker = v
	}

	if v := os.Getenv("SCM_EMBEDDER_URL"); v != "" {
		cfg.Retrieval.EmbedderURL = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	configDir := filepath.Dir(configPath)
	return filepath.Join(configDir, targetPath)
}
