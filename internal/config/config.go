// Package config loads application configuration from a YAML file and
// environment variables using viper. Environment variables use the CORPORA_
// prefix and override file values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/contextkit/corpora/internal/domain"
	"github.com/contextkit/corpora/internal/logger"
)

// envPrefix namespaces the environment variables viper reads.
const envPrefix = "CORPORA"

// Server defaults
const (
	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
)

// ServerConfig holds HTTP server settings for the httpd command.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheServiceConfig holds the upstream cache service settings.
type CacheServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Config is the root application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Crawl        domain.CrawlConfig `mapstructure:"crawl"`
	CacheService CacheServiceConfig `mapstructure:"cache_service"`
	Logger       logger.Config      `mapstructure:"logger"`

	// DatabasePath overrides the default XDG location of the cache
	// metadata database.
	DatabasePath string `mapstructure:"database_path"`

	// ProfilesPath points at the YAML crawl-profile file.
	ProfilesPath string `mapstructure:"profiles_path"`
}

// Load reads configuration from configFile (optional; empty means defaults
// plus environment only) and the environment.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := domain.NewCrawlConfig()

	v.SetDefault("server.address", defaultServerAddress)
	v.SetDefault("server.read_timeout", defaultServerReadTimeout)
	v.SetDefault("server.write_timeout", defaultServerWriteTimeout)

	v.SetDefault("crawl.target_tokens", defaults.TargetTokens)
	v.SetDefault("crawl.min_tokens_per_page", defaults.MinTokensPerPage)
	v.SetDefault("crawl.max_pages", defaults.MaxPages)
	v.SetDefault("crawl.max_subrequests", defaults.MaxSubrequests)
	v.SetDefault("crawl.same_domain_only", defaults.SameDomainOnly)
	v.SetDefault("crawl.respect_robots_txt", defaults.RespectRobotsTxt)
	v.SetDefault("crawl.delay", defaults.Delay)

	v.SetDefault("cache_service.base_url", "")
	v.SetDefault("cache_service.api_key", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.development", false)

	v.SetDefault("database_path", "")
	v.SetDefault("profiles_path", "")
}
