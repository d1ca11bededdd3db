package config

import (
	"fmt"
	"time"
)

const (
	defaultUserAgent      = "webcrawler-mcp/1.0"
	defaultMaxPageSize    = 50 * 1024 * 1024 // 50 MB
	defaultSerperEndpoint = "https://google.serper.dev/search"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	if c.DefaultUserAgent == "" {
		c.DefaultUserAgent = defaultUserAgent
	}

	if c.MaxPageSizeBytes <= 0 {
		c.MaxPageSizeBytes = defaultMaxPageSize
	}

	// MaxRetries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}

	// Retry delays (only if retries enabled)
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
		if c.InitialRetryDelay > c.MaxRetryDelay {
			return warnings, fmt.Errorf("initial_retry_delay (%v) exceeds max_retry_delay (%v)",
				c.InitialRetryDelay, c.MaxRetryDelay)
		}
	}

	// Crawl defaults
	if c.Crawl.DefaultMaxDepth <= 0 {
		c.Crawl.DefaultMaxDepth = 3
	}
	if c.Crawl.DefaultMaxConcurrent <= 0 {
		warnings = append(warnings, "crawl.default_max_concurrent should be > 0, defaulting to 10")
		c.Crawl.DefaultMaxConcurrent = 10
	}
	if c.Crawl.MemoryThresholdPercent <= 0 {
		c.Crawl.MemoryThresholdPercent = 70.0
	}
	if c.Crawl.MemoryThresholdPercent >= 100 {
		warnings = append(warnings, fmt.Sprintf(
			"crawl.memory_threshold_percent (%.1f) disables throttling entirely",
			c.Crawl.MemoryThresholdPercent))
	}
	if c.Crawl.MemoryCheckInterval <= 0 {
		c.Crawl.MemoryCheckInterval = 1 * time.Second
	}

	// Search defaults
	if c.Search.SerperEndpoint == "" {
		c.Search.SerperEndpoint = defaultSerperEndpoint
	}
	if c.Search.DefaultMaxResults <= 0 {
		c.Search.DefaultMaxResults = 5
	}
	if c.Search.WikipediaLanguage == "" {
		c.Search.WikipediaLanguage = "en"
	}
	if c.Search.DefaultSentences <= 0 {
		c.Search.DefaultSentences = 3
	}
	if c.Search.SerperAPIKey == "" {
		warnings = append(warnings, "search.serper_api_key not set (SERPER_API_KEY env empty); web_search will be unavailable")
	}

	// HTTP client defaults
	httpCfg := &c.HTTPClientSettings
	if httpCfg.Timeout <= 0 {
		httpCfg.Timeout = 60 * time.Second
	}
	if httpCfg.MaxIdleConns <= 0 {
		httpCfg.MaxIdleConns = 100
	}
	if httpCfg.MaxIdleConnsPerHost <= 0 {
		httpCfg.MaxIdleConnsPerHost = 10
	}
	if httpCfg.IdleConnTimeout <= 0 {
		httpCfg.IdleConnTimeout = 90 * time.Second
	}
	if httpCfg.TLSHandshakeTimeout <= 0 {
		httpCfg.TLSHandshakeTimeout = 10 * time.Second
	}
	if httpCfg.ExpectContinueTimeout <= 0 {
		httpCfg.ExpectContinueTimeout = 1 * time.Second
	}
	if httpCfg.DialerTimeout <= 0 {
		httpCfg.DialerTimeout = 30 * time.Second
	}
	if httpCfg.DialerKeepAlive <= 0 {
		httpCfg.DialerKeepAlive = 30 * time.Second
	}

	return warnings, nil
}
