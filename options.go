package bookgraph

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
	addrs    []string
	username string
	password string
	db       int

	bookIndex   string
	personIndex string

	rosterPath    string
	aliasesPath   string
	overridesPath string

	arbiter       Arbiter
	openAIKey     string
	openAIBaseURL string
	openAIModel   string

	maxConcurrent int
	timeout       time.Duration

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisAuth sets an ACL username and logical database for the connection.
func WithRedisAuth(username string, db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.db = db
	})
}

// WithIndexes overrides the search index names for the book and person
// catalogs. Defaults: "idx:books" and "idx:people".
func WithIndexes(bookIndex, personIndex string) Option {
	return optionFunc(func(c *clientConfig) {
		c.bookIndex = bookIndex
		c.personIndex = personIndex
	})
}

// WithRoster sets the path to the author roster JSONL file.
// Required: the author catalog is loaded from it at construction time.
func WithRoster(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rosterPath = path
	})
}

// WithAliases sets the path to the author alias JSON file.
// Optional; without it query expansion skips alias variants.
func WithAliases(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.aliasesPath = path
	})
}

// WithOverrides sets the path to the person metadata overrides JSON file.
// Optional; without it person results keep their indexed birth/death years.
func WithOverrides(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.overridesPath = path
	})
}

// WithArbiter sets a custom candidate arbiter.
func WithArbiter(a Arbiter) Option {
	return optionFunc(func(c *clientConfig) {
		c.arbiter = a
	})
}

// WithOpenAIArbiter configures the built-in LLM arbiter against an
// OpenAI-compatible API. An empty baseURL means the OpenAI default.
func WithOpenAIArbiter(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
		c.openAIModel = model
	})
}

// WithMaxConcurrent bounds the number of in-flight resolutions.
// Default: 8.
func WithMaxConcurrent(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConcurrent = n
	})
}

// WithTimeout sets the per-resolution deadline. A resolution that exceeds it
// completes as not_found. Default: 2 minutes.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLogger enables structured logging for resolution operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
