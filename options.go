package recodex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs      []string
	password   string
	standalone bool
	keyPrefix  string

	llm          *LLMConfig
	descriptions bool

	topN           int
	candidateLimit int
	queryTimeout   time.Duration

	logger *zap.Logger
}

// LLMConfig selects an OpenAI-compatible chat provider for prompt analysis
// and card descriptions.
type LLMConfig struct {
	APIKey      string
	BaseURL     string // empty = api.openai.com
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// WithRedis configures the client to connect to a Redis 8+ instance
// (RedisJSON + RediSearch).
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisCluster connects to several seed addresses.
func WithRedisCluster(addrs []string, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append([]string(nil), addrs...)
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Redis instances (not managed by a cluster operator).
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithKeyPrefix namespaces catalog keys and the product index. Default "recodex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLLM enables model-backed prompt analysis. Without it prompts are
// analyzed by keyword mapping.
func WithLLM(cfg LLMConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.llm = &cfg
	})
}

// WithDescriptions asks the LLM for a short description of each recommended
// product. Requires WithLLM; otherwise cards carry the product title.
func WithDescriptions() Option {
	return optionFunc(func(c *clientConfig) {
		c.descriptions = true
	})
}

// WithTopN sets the default number of recommendations. Default 5.
func WithTopN(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topN = n
	})
}

// WithCandidateLimit caps products fetched per retrieval attempt. Default 300.
func WithCandidateLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateLimit = n
	})
}

// WithQueryTimeout bounds each catalog read. Default 2s.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryTimeout = d
	})
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
