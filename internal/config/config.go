// Package config loads application configuration from config.yaml, a
// local .env file, and MSP_-prefixed environment variables, in
// ascending precedence.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/msp-research-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	People    PeopleConfig    `yaml:"people" mapstructure:"people"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// GoogleConfig holds Programmable Search credentials.
type GoogleConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
	CX  string `yaml:"cx" mapstructure:"cx"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig configures evidence collection.
type SearchConfig struct {
	PauseMS       int    `yaml:"pause_ms" mapstructure:"pause_ms"`
	MaxItems      int    `yaml:"max_items" mapstructure:"max_items"`
	PerQuery      int    `yaml:"per_query" mapstructure:"per_query"`
	CacheDir      string `yaml:"cache_dir" mapstructure:"cache_dir"`
	TemplatesPath string `yaml:"templates_path" mapstructure:"templates_path"`
}

// PeopleConfig configures profile discovery.
type PeopleConfig struct {
	PerCompany int    `yaml:"per_company" mapstructure:"per_company"`
	CacheDir   string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// ServerConfig configures the read-only API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// Credentials commonly live in a local .env during development.
	// A missing file is fine; real environment variables win.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Credential keys default to empty so env-only values are
	// visible to Unmarshal.
	v.SetDefault("google.key", "")
	v.SetDefault("google.cx", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("search.templates_path", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "msp_research.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 300)
	v.SetDefault("search.pause_ms", 150)
	v.SetDefault("search.max_items", 10)
	v.SetDefault("search.per_query", 5)
	v.SetDefault("search.cache_dir", ".cache/msp_search")
	v.SetDefault("people.per_company", 25)
	v.SetDefault("people.cache_dir", ".cache/people_search")

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
