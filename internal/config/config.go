package config

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Events    PipelineConfig  `yaml:"events" mapstructure:"events"`
	People    PipelineConfig  `yaml:"people" mapstructure:"people"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CacheConfig selects and locates the geocode cache.
type CacheConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // json, sqlite, postgres
	Path        string `yaml:"path" mapstructure:"path"`
	LegacyPath  string `yaml:"legacy_path" mapstructure:"legacy_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	Snapshot    bool   `yaml:"snapshot" mapstructure:"snapshot"`
}

// NominatimConfig configures the geocoding provider.
type NominatimConfig struct {
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	MinIntervalMS int    `yaml:"min_interval_ms" mapstructure:"min_interval_ms"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// MinInterval returns the request spacing as a duration.
func (c NominatimConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMS) * time.Millisecond
}

// Timeout returns the per-request timeout as a duration.
func (c NominatimConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ResolveConfig configures the resolver.
type ResolveConfig struct {
	AllowFallbacks bool `yaml:"allow_fallbacks" mapstructure:"allow_fallbacks"`
}

// PipelineConfig holds per-consumer settings.
type PipelineConfig struct {
	SkipGeocode bool   `yaml:"skip_geocode" mapstructure:"skip_geocode"`
	CountryCode string `yaml:"country_code" mapstructure:"country_code"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyToggles are the environment switches the pipelines have always used
// to replay from cache without network traffic.
var legacyToggles = map[string]string{
	"events.skip_geocode": "EVENTS_PIPELINE_SKIP_GEOCODE",
	"people.skip_geocode": "PEOPLE_PIPELINE_SKIP_GEOCODE",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEORESOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.driver", "json")
	v.SetDefault("cache.path", "data/cache/geocode_cache.json")
	v.SetDefault("cache.legacy_path", "data/cache/residence_lat_lng.json")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("cache.table", "geocode_cache")
	v.SetDefault("cache.snapshot", false)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("nominatim.user_agent", "unist-sport/1.0")
	v.SetDefault("nominatim.min_interval_ms", 1100)
	v.SetDefault("nominatim.timeout_secs", 30)
	v.SetDefault("resolve.allow_fallbacks", true)
	v.SetDefault("events.skip_geocode", false)
	v.SetDefault("events.country_code", "HR")
	v.SetDefault("people.skip_geocode", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	for key, env := range legacyToggles {
		if raw, ok := os.LookupEnv(env); ok {
			v.Set(key, ParseToggle(raw))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ParseToggle interprets the pipeline switches: "1", "true" and "yes" (any
// case) enable; everything else disables.
func ParseToggle(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
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
