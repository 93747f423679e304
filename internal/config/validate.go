package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/IshaanNene/HotTag/internal/types"
)

func invalid(key, format string, args ...any) error {
	return &types.ConfigError{Key: key, Err: fmt.Errorf(format, args...)}
}

// Validate checks the configuration for missing or invalid values.
func Validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case DriverPostgREST:
		if cfg.Store.URL == "" {
			return &types.ConfigError{Key: "store.url", Err: errors.New("is required (set SUPABASE_URL)")}
		}
		if err := ValidateURL(cfg.Store.URL); err != nil {
			return &types.ConfigError{Key: "store.url", Err: err}
		}
		if cfg.Store.ServiceKey == "" {
			return &types.ConfigError{Key: "store.service_key", Err: errors.New("is required (set SUPABASE_SERVICE_ROLE_KEY)")}
		}
	case DriverPostgres:
		if cfg.Store.DSN == "" {
			return &types.ConfigError{Key: "store.dsn", Err: errors.New("is required (set DATABASE_URL)")}
		}
	default:
		return invalid("store.driver", "must be 'postgrest' or 'postgres', got %q", cfg.Store.Driver)
	}
	if cfg.Store.Timeout <= 0 {
		return invalid("store.timeout", "must be > 0")
	}

	if err := ValidateURL(cfg.Source.BaseURL); err != nil {
		return &types.ConfigError{Key: "source.base_url", Err: err}
	}
	validParsers := map[string]bool{"css": true, "xpath": true, "regex": true}
	if !validParsers[cfg.Source.Parser] {
		return invalid("source.parser", "must be css/xpath/regex, got %q", cfg.Source.Parser)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return invalid("fetcher.type", "must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.Timeout <= 0 {
		return invalid("fetcher.timeout", "must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return invalid("fetcher.max_body_size", "must be > 0")
	}
	if cfg.Fetcher.UserAgent == "" {
		return invalid("fetcher.user_agent", "must not be empty")
	}

	if cfg.Throttle.ChampionDelay < 0 || cfg.Throttle.ChampionshipDelay < 0 || cfg.Throttle.PromotionDelay < 0 {
		return invalid("throttle", "delays must be >= 0")
	}

	seen := make(map[string]bool)
	for _, t := range cfg.Report.Types() {
		switch t {
		case "json", "jsonl":
		case "mongodb":
			if cfg.Report.MongoURI == "" {
				return invalid("report.mongo_uri", "is required for report.type mongodb")
			}
		default:
			return invalid("report.type", "%q is not supported (valid: none, json, jsonl, mongodb)", t)
		}
		if seen[t] {
			return invalid("report.type", "%q is listed twice", t)
		}
		seen[t] = true
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return invalid("logging.level", "must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return invalid("logging.format", "must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return invalid("metrics.port", "must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}
	if cfg.Metrics.PushgatewayURL != "" {
		if err := ValidateURL(cfg.Metrics.PushgatewayURL); err != nil {
			return &types.ConfigError{Key: "metrics.pushgateway_url", Err: err}
		}
	}

	return nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
