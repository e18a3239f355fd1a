package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Sources     []SourceConfig    `mapstructure:"sources"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Matching    MatchingConfig    `mapstructure:"matching"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	History     HistoryConfig     `mapstructure:"history"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SourceConfig describes one retail platform adapter
type SourceConfig struct {
	ID            string  `mapstructure:"id"`
	Name          string  `mapstructure:"name"`
	BaseURL       string  `mapstructure:"base_url"`
	APIKey        string  `mapstructure:"api_key"`
	Enabled       bool    `mapstructure:"enabled"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// AggregationConfig bounds a single aggregation request
type AggregationConfig struct {
	Deadline time.Duration `mapstructure:"deadline"`
	PageSize int           `mapstructure:"page_size"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MatchingConfig holds configuration for the listing matcher
type MatchingConfig struct {
	JaccardThreshold    float64 `mapstructure:"jaccard_threshold"`
	EnableFuzzyMatching bool    `mapstructure:"enable_fuzzy_matching"`
	FuzzyEditDistance   int     `mapstructure:"fuzzy_edit_distance"`
	EnableDebugLogging  bool    `mapstructure:"enable_debug_logging"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerClient      int           `mapstructure:"per_client"`
	SourceCooldown time.Duration `mapstructure:"source_cooldown"`
}

// HistoryConfig points at the external price-history data source
type HistoryConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dealscope/")

	// Environment variable settings
	v.SetEnvPrefix("DEALSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Aggregation defaults
	v.SetDefault("aggregation.deadline", "3s")
	v.SetDefault("aggregation.page_size", 10)

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")

	// Matching defaults
	v.SetDefault("matching.jaccard_threshold", 0.6)
	v.SetDefault("matching.enable_fuzzy_matching", true)
	v.SetDefault("matching.fuzzy_edit_distance", 1)
	v.SetDefault("matching.enable_debug_logging", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_client", 100)
	v.SetDefault("ratelimit.source_cooldown", "30s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Aggregation.Deadline <= 0 {
		return fmt.Errorf("aggregation deadline must be positive, got: %s", config.Aggregation.Deadline)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	if t := config.Matching.JaccardThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("matching jaccard threshold must be in (0, 1], got: %v", t)
	}

	seen := make(map[string]bool)
	for _, src := range config.Sources {
		if src.ID == "" {
			return fmt.Errorf("source id is required")
		}
		if seen[src.ID] {
			return fmt.Errorf("duplicate source id: %s", src.ID)
		}
		seen[src.ID] = true
		if src.Enabled && src.BaseURL == "" {
			return fmt.Errorf("source %s is enabled but has no base_url", src.ID)
		}
	}

	return nil
}
