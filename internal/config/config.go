// Package config loads fundsync configuration from config.yaml and the
// environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Enrich  EnrichConfig  `yaml:"enrich" mapstructure:"enrich"`
	Filings FilingsConfig `yaml:"filings" mapstructure:"filings"`
	Gaps    GapsConfig    `yaml:"gaps" mapstructure:"gaps"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig locates the canonical record store and the optional changelog
// database. An empty changelog path disables durable run recording.
type StoreConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	ChangelogPath string `yaml:"changelog_path" mapstructure:"changelog_path"`
}

// EnrichConfig configures observation-batch reconciliation.
type EnrichConfig struct {
	Batch string `yaml:"batch" mapstructure:"batch"`
}

// FilingsConfig configures the filings reconciliation path and the gap
// analyzer's jurisdiction assumption.
type FilingsConfig struct {
	Path           string  `yaml:"path" mapstructure:"path"`
	HomeCountry    string  `yaml:"home_country" mapstructure:"home_country"`
	NoiseThreshold float64 `yaml:"noise_threshold" mapstructure:"noise_threshold"`
}

// GapsConfig configures gap-report rendering.
type GapsConfig struct {
	PriorityLimit int `yaml:"priority_limit" mapstructure:"priority_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FUNDSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "data/companies.json")
	v.SetDefault("store.changelog_path", "")
	v.SetDefault("enrich.batch", "data/enrichment_batch.json")
	v.SetDefault("filings.path", "data/filings.json")
	v.SetDefault("filings.home_country", "US")
	v.SetDefault("filings.noise_threshold", 0.05)
	v.SetDefault("gaps.priority_limit", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
