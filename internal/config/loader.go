package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("HOTTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The web app's own variable names, so one .env serves both.
	if err := v.BindEnv("store.url", "HOTTAG_STORE_URL", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind store.url: %w", err)
	}
	if err := v.BindEnv("store.service_key", "HOTTAG_STORE_SERVICE_KEY", "SUPABASE_SERVICE_ROLE_KEY"); err != nil {
		return nil, fmt.Errorf("bind store.service_key: %w", err)
	}
	if err := v.BindEnv("store.dsn", "HOTTAG_STORE_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind store.dsn: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hottag")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".hottag"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so AutomaticEnv can see every key.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("store.driver", cfg.Store.Driver)
	v.SetDefault("store.url", cfg.Store.URL)
	v.SetDefault("store.service_key", cfg.Store.ServiceKey)
	v.SetDefault("store.dsn", cfg.Store.DSN)
	v.SetDefault("store.timeout", cfg.Store.Timeout)

	v.SetDefault("source.base_url", cfg.Source.BaseURL)
	v.SetDefault("source.parser", cfg.Source.Parser)
	v.SetDefault("source.deny_list", cfg.Source.DenyList)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)

	v.SetDefault("throttle.champion_delay", cfg.Throttle.ChampionDelay)
	v.SetDefault("throttle.championship_delay", cfg.Throttle.ChampionshipDelay)
	v.SetDefault("throttle.promotion_delay", cfg.Throttle.PromotionDelay)

	v.SetDefault("report.type", cfg.Report.Type)
	v.SetDefault("report.output_path", cfg.Report.OutputPath)
	v.SetDefault("report.mongo_uri", cfg.Report.MongoURI)
	v.SetDefault("report.mongo_database", cfg.Report.MongoDatabase)
	v.SetDefault("report.mongo_collection", cfg.Report.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
	v.SetDefault("metrics.pushgateway_url", cfg.Metrics.PushgatewayURL)

	v.SetDefault("dry_run", cfg.DryRun)
}
