package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/recodex/internal/domain"
)

// Config holds the recodex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Auth      AuthConfig      `yaml:"auth"`
	Recommend RecommendConfig `yaml:"recommend"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
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

// DatabaseConfig holds catalog store settings.
type DatabaseConfig struct {
	Addrs            []string      `yaml:"addrs"`
	Username         string        `yaml:"username"`
	Password         string        `yaml:"password"`
	Standalone       bool          `yaml:"standalone"`
	KeyPrefix        string        `yaml:"key_prefix"`
	IndexName        string        `yaml:"index"`
	ReadinessTimeout int           `yaml:"readiness_timeout_sec"`
	QueryTimeoutMs   int           `yaml:"query_timeout_ms"`
	Breaker          BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings for catalog reads.
type BreakerConfig struct {
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
	OpenTimeoutSec      int    `yaml:"open_timeout_sec"`
	HalfOpenRequests    uint32 `yaml:"half_open_requests"`
}

// LLMConfig holds the OpenAI-compatible chat provider. An empty APIKey
// disables the model; prompts are then analyzed by keyword mapping only.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	// Describe enables per-product LLM descriptions on recommendation cards.
	Describe bool `yaml:"describe"`
}

// Enabled reports whether a provider is configured.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

// RecommendConfig holds pipeline settings.
type RecommendConfig struct {
	TopN                int `yaml:"top_n"`
	CandidateLimit      int `yaml:"candidate_limit"`
	DescribeConcurrency int `yaml:"describe_concurrency"`
}

// RateLimitConfig holds per-IP request limits for pipeline endpoints.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"` // 0 = disabled
	WindowSec int `yaml:"window_sec"`
}

// Catalog returns the storage layout described by the database section.
func (c DatabaseConfig) Catalog() domain.CatalogConfig {
	catalog := domain.DefaultCatalogConfig().WithPrefix(c.KeyPrefix)
	if c.IndexName != "" {
		catalog.IndexName = c.IndexName
	}
	return catalog
}

// QueryTimeout returns the per-call store deadline.
func (c DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references and applying defaults.
func Parse(data []byte) (Config, error) {
	data, err := expandEnvVars(data)
	if err != nil {
		return Config{}, err
	}

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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = domain.DefaultKeyPrefix
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.QueryTimeoutMs <= 0 {
		c.Database.QueryTimeoutMs = 2000
	}
	if c.Database.Breaker.ConsecutiveFailures == 0 {
		c.Database.Breaker.ConsecutiveFailures = 5
	}
	if c.Database.Breaker.OpenTimeoutSec <= 0 {
		c.Database.Breaker.OpenTimeoutSec = 15
	}
	if c.Database.Breaker.HalfOpenRequests == 0 {
		c.Database.Breaker.HalfOpenRequests = 1
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 30
	}
	if c.Recommend.TopN <= 0 {
		c.Recommend.TopN = 5
	}
	if c.Recommend.CandidateLimit <= 0 {
		c.Recommend.CandidateLimit = 300
	}
	if c.Recommend.DescribeConcurrency <= 0 {
		c.Recommend.DescribeConcurrency = 4
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %g", c.LLM.Temperature)
	}
	if c.Recommend.TopN > 20 {
		return fmt.Errorf("recommend.top_n must be at most 20, got %d", c.Recommend.TopN)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must not be negative, got %d", c.RateLimit.Requests)
	}
	return nil
}

// PathEnv names an explicit config file that overrides the per-environment lookup.
const PathEnv = "RECODEX_CONFIG"

// findConfigPath returns $RECODEX_CONFIG if set, else the first existing
// config/<env>.yaml under the working directory or the module root.
func findConfigPath(env string) string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}

	rel := filepath.Join("config", env+".yaml")
	_, src, _, _ := runtime.Caller(0)
	moduleRoot := filepath.Join(filepath.Dir(src), "..", "..")
	for _, p := range []string{rel, filepath.Join(moduleRoot, rel)} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return rel
}

// envVarRegex matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:[-?])([^}]*))?\}`)

// expandEnvVars substitutes environment references. An unset or empty
// ${VAR:?message} is an error.
func expandEnvVars(data []byte) ([]byte, error) {
	var missing []string
	out := envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		m := envVarRegex.FindSubmatch(match)
		name, op, arg := string(m[1]), string(m[2]), string(m[3])
		val := os.Getenv(name)
		if val != "" {
			return []byte(val)
		}
		switch op {
		case ":-":
			return []byte(arg)
		case ":?":
			if arg == "" {
				arg = "is required"
			}
			missing = append(missing, name+": "+arg)
		}
		return nil
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("environment: %s", strings.Join(missing, "; "))
	}
	return out, nil
}
