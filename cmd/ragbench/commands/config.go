package commands

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Corpus     string          `mapstructure:"corpus"`
	Codebase   string          `mapstructure:"codebase"`
	ResultsDir string          `mapstructure:"results_dir"`
	Format     string          `mapstructure:"format"`
	MaxFiles   int             `mapstructure:"max_files"`
	TopK       int             `mapstructure:"top_k"`
	Postgres   PostgresConfig  `mapstructure:"postgres"`
	OpenAI     OpenAIConfig    `mapstructure:"openai"`
	Anthropic  AnthropicConfig `mapstructure:"anthropic"`
	Tool       ToolConfig      `mapstructure:"tool"`
	Cache      CacheConfig     `mapstructure:"cache"`
}

type PostgresConfig struct {
	DSN       string `mapstructure:"dsn"`
	Dimension int    `mapstructure:"dimension"`
}

type OpenAIConfig struct {
	Model          string  `mapstructure:"model"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
	BackoffMillis  int     `mapstructure:"backoff_millis"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type AnthropicConfig struct {
	Model          string `mapstructure:"model"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	BackoffMillis  int    `mapstructure:"backoff_millis"`
}

type ToolConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Dir      string `mapstructure:"dir"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".ragbench")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
