package config

import (
	"strings"
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Store drivers.
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
)

// Config is the root configuration for the championship importer.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"    yaml:"store"`
	Source   SourceConfig   `mapstructure:"source"   yaml:"source"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Throttle ThrottleConfig `mapstructure:"throttle" yaml:"throttle"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
	DryRun   bool           `mapstructure:"dry_run"  yaml:"dry_run"`
}

// StoreConfig selects and configures the relational data store.
type StoreConfig struct {
	Driver     string        `mapstructure:"driver"      yaml:"driver"` // postgrest, postgres
	URL        string        `mapstructure:"url"         yaml:"url"`
	ServiceKey string        `mapstructure:"service_key" yaml:"service_key"`
	DSN        string        `mapstructure:"dsn"         yaml:"dsn"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
}

// SourceConfig describes the scraped championship source.
type SourceConfig struct {
	BaseURL  string   `mapstructure:"base_url"  yaml:"base_url"`
	Parser   string   `mapstructure:"parser"    yaml:"parser"` // css, xpath, regex
	DenyList []string `mapstructure:"deny_list" yaml:"deny_list"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type        string        `mapstructure:"type"          yaml:"type"` // http, browser
	Timeout     time.Duration `mapstructure:"timeout"       yaml:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"    yaml:"user_agent"`
	MaxBodySize int64         `mapstructure:"max_body_size" yaml:"max_body_size"`
	TLSInsecure bool          `mapstructure:"tls_insecure"  yaml:"tls_insecure"`
}

// ThrottleConfig holds the fixed pauses between outbound calls.
type ThrottleConfig struct {
	ChampionDelay     time.Duration `mapstructure:"champion_delay"     yaml:"champion_delay"`
	ChampionshipDelay time.Duration `mapstructure:"championship_delay" yaml:"championship_delay"`
	PromotionDelay    time.Duration `mapstructure:"promotion_delay"    yaml:"promotion_delay"`
}

// ReportConfig controls where run reports are archived.
type ReportConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"` // none, or a comma-separated list of json, jsonl, mongodb
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"         yaml:"enabled"`
	Port           int    `mapstructure:"port"            yaml:"port"`
	Path           string `mapstructure:"path"            yaml:"path"`
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url"`
}

// DefaultUserAgent is sent to the source, which rejects non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:  DriverPostgREST,
			Timeout: 30 * time.Second,
		},
		Source: SourceConfig{
			BaseURL: "https://www.cagematch.net/",
			Parser:  "css",
		},
		Fetcher: FetcherConfig{
			Type:        "http",
			Timeout:     15 * time.Second,
			UserAgent:   DefaultUserAgent,
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
		Throttle: ThrottleConfig{
			ChampionDelay:     100 * time.Millisecond,
			ChampionshipDelay: 100 * time.Millisecond,
			PromotionDelay:    2 * time.Second,
		},
		Report: ReportConfig{
			Type:            "none",
			OutputPath:      "./output",
			MongoDatabase:   "hottag",
			MongoCollection: "champion_runs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Types returns the archive backends named by Type. "none" and an empty
// Type yield no backends.
func (c ReportConfig) Types() []string {
	var out []string
	for _, t := range strings.Split(c.Type, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || t == "none" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// IsDenied reports whether a promotion slug is on the deny list.
func (c SourceConfig) IsDenied(slug string) bool {
	for _, s := range c.DenyList {
		if s == slug {
			return true
		}
	}
	return false
}
