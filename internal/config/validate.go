package config

import (
	"fmt"
	"net/url"
)

// ValidLogLevels are the accepted logging.level values, mirroring the
// selector exposed on the CLI.
var ValidLogLevels = map[string]bool{
	"notset": true, "debug": true, "info": true,
	"warning": true, "error": true, "critical": true,
}

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	u, err := url.Parse(cfg.Scraper.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid scraper.base_url %q: %w", cfg.Scraper.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scraper.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("scraper.base_url must have a host")
	}
	if cfg.Scraper.MaxPages < 0 {
		return fmt.Errorf("scraper.max_pages must be >= 0, got %d", cfg.Scraper.MaxPages)
	}
	if cfg.Scraper.MaxArticles < 0 {
		return fmt.Errorf("scraper.max_articles must be >= 0, got %d", cfg.Scraper.MaxArticles)
	}

	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher.max_retries must be >= 0, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.RetryDelay < 0 {
		return fmt.Errorf("fetcher.retry_delay must be >= 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if !ValidLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be notset/debug/info/warning/error/critical, got %q", cfg.Logging.Level)
	}

	return nil
}

// ValidateCategory checks that a category name is usable in a wiki URL path.
func ValidateCategory(name string) error {
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	return nil
}
