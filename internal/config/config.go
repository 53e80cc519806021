package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all user-facing configuration for bookcrawl.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Source  SourceConfig  `toml:"source"`
	Scrape  ScrapeConfig  `toml:"scrape"`
	Extract ExtractConfig `toml:"extract"`
	Limits  LimitsConfig  `toml:"limits"`
	Log     LogConfig     `toml:"log"`
}

type ServerConfig struct {
	Host                string `toml:"host"`
	Port                int    `toml:"port"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `toml:"idle_timeout_seconds"`
}

// SourceConfig points at the remote catalog. Filters are sent verbatim on
// every listing request.
type SourceConfig struct {
	BaseURL   string            `toml:"base_url"`
	UserAgent string            `toml:"user_agent"`
	Filters   map[string]string `toml:"filters"`
}

type ScrapeConfig struct {
	// MaxConcurrent bounds in-flight chapter page fetches.
	MaxConcurrent int `toml:"max_concurrent"`

	// BookWorkers is how many books are processed at once.
	BookWorkers int `toml:"book_workers"`

	// RateLimit is requests per second across all fetches; 0 disables pacing.
	RateLimit float64 `toml:"rate_limit"`

	// TimeoutSeconds is the per-request client timeout; 0 means none.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type ExtractConfig struct {
	Container string `toml:"container"`
	Paragraph string `toml:"paragraph"`
}

// LimitsConfig holds request defaults and the caps enforced on /crawl.
type LimitsConfig struct {
	DefaultBooks    int `toml:"default_books"`
	DefaultChapters int `toml:"default_chapters"`
	MaxBooks        int `toml:"max_books"`
	MaxChapters     int `toml:"max_chapters"`
}

type LogConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// DefaultFilters are the fixed listing filter parameters.
func DefaultFilters() map[string]string {
	return map[string]string{
		"channel":     "a",
		"category1":   "a",
		"category2":   "a",
		"words":       "a",
		"update_time": "a",
		"is_vip":      "a",
		"is_over":     "a",
		"order":       "click",
	}
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                5000,
			ReadTimeoutSeconds:  5,
			WriteTimeoutSeconds: 300,
			IdleTimeoutSeconds:  60,
		},
		Source: SourceConfig{
			BaseURL:   "https://www.qimao.com",
			UserAgent: "Mozilla/5.0 (compatible; bookcrawl/1.0)",
			Filters:   DefaultFilters(),
		},
		Scrape:  ScrapeConfig{MaxConcurrent: 10, BookWorkers: 1},
		Extract: ExtractConfig{Container: "div.article", Paragraph: "p"},
		Limits:  LimitsConfig{DefaultBooks: 5, DefaultChapters: 5, MaxBooks: 50, MaxChapters: 200},
		Log:     LogConfig{Format: "json", Level: "info"},
	}
}

// Load reads a TOML config file. If the file does not exist, built-in
// defaults are returned without error. Environment overrides are applied
// last and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	c.Server.Host = envOr(c.Server.Host, getenv("HOST"))
	c.Source.BaseURL = envOr(c.Source.BaseURL, getenv("BOOKCRAWL_SOURCE_URL"))
	c.Log.Format = envOr(c.Log.Format, getenv("BOOKCRAWL_LOG_FORMAT"))
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source.base_url %q is not an absolute URL", c.Source.BaseURL)
	}
	if c.Scrape.MaxConcurrent < 1 {
		return fmt.Errorf("scrape.max_concurrent must be positive, got %d", c.Scrape.MaxConcurrent)
	}
	if c.Scrape.BookWorkers < 1 {
		return fmt.Errorf("scrape.book_workers must be positive, got %d", c.Scrape.BookWorkers)
	}
	if c.Scrape.RateLimit < 0 {
		return fmt.Errorf("scrape.rate_limit must not be negative")
	}
	if c.Extract.Container == "" || c.Extract.Paragraph == "" {
		return fmt.Errorf("extract.container and extract.paragraph are required")
	}
	return nil
}

func envOr(existing, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	return value
}
