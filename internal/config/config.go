package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for wikiharvest.
type Config struct {
	Scraper Scraper       `mapstructure:"scraper" yaml:"scraper"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
}

// Scraper controls the site contract and traversal behavior.
type Scraper struct {
	// BaseURL is the wiki root, e.g. "https://en.wikinews.org".
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// MaxPages caps the number of listing pages processed (0 = unlimited).
	// The visited-set already bounds traversal; this is an operator brake.
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`

	// MaxArticles caps the number of article records emitted (0 = unlimited).
	MaxArticles int `mapstructure:"max_articles" yaml:"max_articles"`
}

// FetcherConfig controls the HTTP fetcher.
type FetcherConfig struct {
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"       yaml:"retry_delay"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
}

// LoggingConfig controls the diagnostic stream.
type LoggingConfig struct {
	// Level is one of notset, debug, info, warning, error, critical.
	Level string `mapstructure:"level" yaml:"level"`

	// File is the log destination path; empty means stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// OutputConfig controls where article records go.
type OutputConfig struct {
	// Path is the JSONL destination; "-" or empty means stdout.
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scraper: Scraper{
			BaseURL: "https://en.wikinews.org",
		},
		Fetcher: FetcherConfig{
			RequestTimeout:  30 * time.Second,
			MaxRetries:      0,
			RetryDelay:      2 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			UserAgent:       "wikiharvest/" + Version,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Path: "-",
		},
	}
}
