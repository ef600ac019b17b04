package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the planning service.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Generation GenerationConfig `mapstructure:"generation"`
	PlanStore  PlanStoreConfig  `mapstructure:"planstore"`
	Planner    PlannerConfig    `mapstructure:"planner"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// ServiceKey authenticates token requests from the orchestrating agent.
	ServiceKey string `mapstructure:"service_key"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config points at the bucket holding generation transcripts.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration for the API surface.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// GenerationConfig configures the structured-generation backend.
type GenerationConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	// Timeout is the per-call budget; an overrun counts as a transport
	// failure against the retry budget.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PlanStoreConfig configures the training-plan persistence API.
// An empty Token disables persistence rather than failing.
type PlanStoreConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// PlannerConfig tunes the generation pipeline itself.
type PlannerConfig struct {
	// FanoutConcurrency caps in-flight daily expansions per batch.
	FanoutConcurrency int `mapstructure:"fanout_concurrency"`
	// MaxBatch is the hard bound on requests per fan-out call.
	MaxBatch int `mapstructure:"max_batch"`
	// RetryAttempts is the total attempt budget per daily expansion.
	RetryAttempts int `mapstructure:"retry_attempts"`
	// BackoffBase is the delay before the first retry; it doubles after
	// every failed attempt (1s, 2s, 4s with the defaults).
	BackoffBase time.Duration `mapstructure:"backoff_base"`
	// Methodology is the coaching-methodology text interpolated into every
	// prompt. Treated as a read-only configuration input.
	Methodology string `mapstructure:"methodology"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	// Nested keys map to env vars, e.g. generation.base_url -> GENERATION_BASE_URL.
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "codetrekking")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("generation.timeout", "30s")
	viper.SetDefault("generation.model", "gpt-4o")
	viper.SetDefault("planner.fanout_concurrency", 3)
	viper.SetDefault("planner.max_batch", 7)
	viper.SetDefault("planner.retry_attempts", 3)
	viper.SetDefault("planner.backoff_base", "1s")

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
