package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds the global application configuration
type AppConfig struct {
	DefaultUserAgent     string           `yaml:"default_user_agent,omitempty"`
	MaxPageSizeBytes     int64            `yaml:"max_page_size_bytes,omitempty"`
	MaxRetries           int              `yaml:"max_retries,omitempty"`
	InitialRetryDelay    time.Duration    `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay        time.Duration    `yaml:"max_retry_delay,omitempty"`
	RespectRobotsTxt     bool             `yaml:"respect_robots_txt,omitempty"`
	SitemapPatterns      []string         `yaml:"sitemap_patterns,omitempty"` // Extra regexes marking a URL path as a sitemap
	Crawl                CrawlConfig      `yaml:"crawl,omitempty"`
	Search               SearchConfig     `yaml:"search,omitempty"`
	HTTPClientSettings   HTTPClientConfig `yaml:"http_client_settings,omitempty"`
}

// CrawlConfig holds defaults and throttling settings for crawl operations
type CrawlConfig struct {
	DefaultMaxDepth        int           `yaml:"default_max_depth,omitempty"`        // Levels for recursive crawls
	DefaultMaxConcurrent   int           `yaml:"default_max_concurrent,omitempty"`   // In-flight fetch ceiling
	MemoryThresholdPercent float64       `yaml:"memory_threshold_percent,omitempty"` // Pause admissions above this utilization
	MemoryCheckInterval    time.Duration `yaml:"memory_check_interval,omitempty"`    // How often to re-check utilization
}

// SearchConfig holds settings for the external search collaborators
type SearchConfig struct {
	SerperAPIKey      string `yaml:"serper_api_key,omitempty"` // Usually supplied via SERPER_API_KEY env
	SerperEndpoint    string `yaml:"serper_endpoint,omitempty"`
	DefaultMaxResults int    `yaml:"default_max_results,omitempty"`
	WikipediaLanguage string `yaml:"wikipedia_language,omitempty"`
	DefaultSentences  int    `yaml:"default_sentences,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // Explicitly enable/disable HTTP/2 attempt (use pointer for tri-state: nil=default, true=force, false=disable)
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// Load reads an AppConfig from a YAML file and applies environment
// overrides. An empty path yields a default config (Validate fills in the
// defaults); a non-empty path must point at a readable YAML file.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets secrets live outside the config file
func (c *AppConfig) applyEnvOverrides() {
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		c.Search.SerperAPIKey = key
	}
}
