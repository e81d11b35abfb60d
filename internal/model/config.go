package model

import "time"

// Config holds the full runtime configuration
type Config struct {
	Corpus      CorpusConfig      `yaml:"corpus" mapstructure:"corpus"`
	Matcher     MatcherConfig     `yaml:"matcher" mapstructure:"matcher"`
	Model       ModelConfig       `yaml:"model" mapstructure:"model"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// CorpusConfig locates the document corpus
type CorpusConfig struct {
	// Path to the parquet corpus file; the first existing path wins
	Paths []string `yaml:"paths" mapstructure:"paths"`
}

// MatcherConfig bounds the cheap lexical pre-filter
type MatcherConfig struct {
	MaxCandidates int `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// ModelConfig defines how to reach the language model
type ModelConfig struct {
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Name        string        `yaml:"name" mapstructure:"name"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	Seed        int           `yaml:"seed" mapstructure:"seed"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries  int           `yaml:"max_retries" mapstructure:"max_retries"`

	// Outbound request pacing
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ConcurrencyConfig bounds in-flight model work
type ConcurrencyConfig struct {
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	Ceiling   int `yaml:"ceiling" mapstructure:"ceiling"`
}

// CacheConfig controls the model response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// AnalysisConfig holds request defaults
type AnalysisConfig struct {
	RelevanceThreshold float64 `yaml:"relevance_threshold" mapstructure:"relevance_threshold"`
	PageSize           int     `yaml:"page_size" mapstructure:"page_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	JSON    string `yaml:"json,omitempty" mapstructure:"json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Paths: []string{
				"eurolex_consolidated.parquet",
				"data/eurolex_consolidated.parquet",
			},
		},
		Matcher: MatcherConfig{
			MaxCandidates: 50,
		},
		Model: ModelConfig{
			Name:              "gpt-4o-mini",
			Temperature:       0.0, // fixed for reproducibility
			Seed:              42,
			MaxTokens:         800,
			Timeout:           30 * time.Second,
			MaxRetries:        2,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Concurrency: ConcurrencyConfig{
			BatchSize: 25,
			Ceiling:   4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Analysis: AnalysisConfig{
			RelevanceThreshold: 0.3,
			PageSize:           10,
		},
		Output: OutputConfig{},
	}
}
