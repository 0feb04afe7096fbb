package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the local development backend used when nothing is configured.
const DefaultBaseURL = "http://localhost:3000"

// Config holds all configuration for the application
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
}

// APIConfig holds the REST backend settings
type APIConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	UserAgent            string `mapstructure:"user_agent"`
}

// StorageConfig selects where the cart and session token are kept
type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // memory, file, redis, postgres
	Path      string `mapstructure:"path"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"`     // seconds, redis only
	Timeout   int    `mapstructure:"timeout"` // seconds per storage call
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

type StorefrontConfig struct {
	FeaturedLimit int `mapstructure:"featured_limit"`
	BlurbLength   int `mapstructure:"blurb_length"`
}

// Load reads config.yaml from the working directory when present, then applies
// environment overrides (api.base_url -> API_BASE_URL) and any bound flags.
// A missing file is fine: the defaults point at the local development backend.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindFlags maps command line flags onto config keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"api.base_url":   "api-url",
		"storage.driver": "storage",
		"storage.path":   "state-file",
		"log.level":      "log-level",
	}
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}

	switch c.Storage.Driver {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Storage.Driver == "file" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required for the file driver")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.max_retries", 2)
	v.SetDefault("api.max_requests_per_second", 10)
	v.SetDefault("api.user_agent", "furnistore-storefront/1.0")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "./.storefront/state.json")
	v.SetDefault("storage.key_prefix", "storefront:state:")
	v.SetDefault("storage.ttl", 0)
	v.SetDefault("storage.timeout", 5)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "storefront")
	v.SetDefault("database.user", "storefront_user")
	v.SetDefault("database.password", "storefront_pass")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storefront.featured_limit", 6)
	v.SetDefault("storefront.blurb_length", 120)
}
