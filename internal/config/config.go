package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the shopsearch service configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	VectorIndex VectorIndexConfig `yaml:"vector_index"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Generation  GenerationConfig  `yaml:"generation"`
	Sync        SyncConfig        `yaml:"sync"`
	Search      SearchConfig      `yaml:"search"`
	Assistant   AssistantConfig   `yaml:"assistant"`
	Auth        AuthConfig        `yaml:"auth"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API key settings. Empty disables admin auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds the primary catalog (PostgreSQL) settings.
type CatalogConfig struct {
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
	SlowQueryMs        int    `yaml:"slow_query_ms"`
}

// VectorIndexConfig holds the Valkey/Redis search settings.
type VectorIndexConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	IndexName        string   `yaml:"index_name"`
	HNSWM            int      `yaml:"hnsw_m"`
	HNSWEFConstruct  int      `yaml:"hnsw_ef_construction"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	QueryTimeoutSec  int      `yaml:"query_timeout_sec"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"` // 0 = provider default, probed at startup
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
	TimeoutSec    int    `yaml:"timeout_sec"`
}

// GenerationConfig holds the chat completion settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// SyncConfig holds the index sync dispatcher settings.
type SyncConfig struct {
	Workers        int `yaml:"workers"`
	QueueSize      int `yaml:"queue_size"`
	TaskTimeoutSec int `yaml:"task_timeout_sec"`
	BatchSize      int `yaml:"batch_size"`
	RunTimeoutSec  int `yaml:"run_timeout_sec"`
}

// SearchConfig holds semantic search limits.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// AssistantConfig holds RAG settings.
type AssistantConfig struct {
	Candidates      int  `yaml:"candidates"`
	Surfaced        int  `yaml:"surfaced"`
	MaxHistoryTurns *int `yaml:"max_history_turns"` // nil = default; 0 disables history
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // empty = stdout exporter
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands, defaults and validates a configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	setDefault(&c.HTTP.Port, 8000)
	setDefault(&c.HTTP.ReadTimeoutSec, 10)
	// sync-embeddings blocks until the whole catalog is re-indexed
	setDefault(&c.HTTP.WriteTimeoutSec, 120)
	setDefault(&c.HTTP.ShutdownSec, 15)

	setDefault(&c.Catalog.MaxOpenConns, 20)
	setDefault(&c.Catalog.MaxIdleConns, 5)
	setDefault(&c.Catalog.ConnMaxLifetimeSec, 1800)
	setDefault(&c.Catalog.SlowQueryMs, 500)

	if c.VectorIndex.KeyPrefix == "" {
		c.VectorIndex.KeyPrefix = "shopsearch:"
	}
	setDefault(&c.VectorIndex.HNSWM, 16)
	setDefault(&c.VectorIndex.HNSWEFConstruct, 200)
	setDefault(&c.VectorIndex.ReadinessTimeout, 10)
	setDefault(&c.VectorIndex.QueryTimeoutSec, 5)

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	setDefault(&c.Embedding.CacheTTLHours, 24*7)
	setDefault(&c.Embedding.TimeoutSec, 30)

	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "llama-3.3-70b-versatile"
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.7
	}
	setDefault(&c.Generation.MaxTokens, 500)
	setDefault(&c.Generation.TimeoutSec, 30)

	setDefault(&c.Sync.Workers, 4)
	setDefault(&c.Sync.QueueSize, 256)
	setDefault(&c.Sync.TaskTimeoutSec, 30)
	setDefault(&c.Sync.BatchSize, 100)
	setDefault(&c.Sync.RunTimeoutSec, 3600)

	setDefault(&c.Search.DefaultLimit, 10)
	setDefault(&c.Search.MaxLimit, 100)

	setDefault(&c.Assistant.Candidates, 5)
	setDefault(&c.Assistant.Surfaced, 3)
	if c.Assistant.MaxHistoryTurns == nil {
		turns := 6
		c.Assistant.MaxHistoryTurns = &turns
	}

	if c.Tracing.SampleRatio <= 0 {
		c.Tracing.SampleRatio = 1
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "shopsearch"
	}
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.Catalog.DSN == "" {
		errs = append(errs, errors.New("catalog.dsn is required"))
	}
	if len(c.VectorIndex.Addrs) == 0 {
		errs = append(errs, errors.New("vector_index.addrs is required"))
	}
	if c.Embedding.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("embedding.dimensions must be non-negative, got %d", c.Embedding.Dimensions))
	}
	if c.Generation.Temperature > 2 {
		errs = append(errs, fmt.Errorf("generation.temperature must be at most 2, got %v", c.Generation.Temperature))
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		errs = append(errs, fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit))
	}
	if c.Assistant.Surfaced > c.Assistant.Candidates {
		errs = append(errs, fmt.Errorf("assistant.surfaced (%d) exceeds assistant.candidates (%d)",
			c.Assistant.Surfaced, c.Assistant.Candidates))
	}
	if c.Assistant.MaxHistoryTurns != nil && *c.Assistant.MaxHistoryTurns < 0 {
		errs = append(errs, errors.New("assistant.max_history_turns must be non-negative"))
	}
	if c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be in (0, 1], got %v", c.Tracing.SampleRatio))
	}
	return errors.Join(errs...)
}

// ReadTimeout returns the HTTP read timeout.
func (c HTTPConfig) ReadTimeout() time.Duration { return secs(c.ReadTimeoutSec) }

// WriteTimeout returns the HTTP write timeout.
func (c HTTPConfig) WriteTimeout() time.Duration { return secs(c.WriteTimeoutSec) }

// ShutdownTimeout returns the graceful shutdown deadline.
func (c HTTPConfig) ShutdownTimeout() time.Duration { return secs(c.ShutdownSec) }

// QueryTimeout returns the vector query timeout.
func (c VectorIndexConfig) QueryTimeout() time.Duration { return secs(c.QueryTimeoutSec) }

// CacheTTL returns the embedding cache entry lifetime.
func (c EmbeddingConfig) CacheTTL() time.Duration { return time.Duration(c.CacheTTLHours) * time.Hour }

// Timeout returns the HTTP timeout of embedding calls.
func (c EmbeddingConfig) Timeout() time.Duration { return secs(c.TimeoutSec) }

// Timeout returns the generation call timeout.
func (c GenerationConfig) Timeout() time.Duration { return secs(c.TimeoutSec) }

// TaskTimeout returns the per-task deadline of async index writes.
func (c SyncConfig) TaskTimeout() time.Duration { return secs(c.TaskTimeoutSec) }

// RunTimeout returns the deadline of one full catalog resync.
func (c SyncConfig) RunTimeout() time.Duration { return secs(c.RunTimeoutSec) }

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
