package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// OpenAIConfig covers both the plan-generation gateway and the assistant
// session bridge.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	AssistantID    string `mapstructure:"assistant_id"`
	AssistantModel string `mapstructure:"assistant_model"`

	// Generation bounds: nutrition answers are short, training plans are not.
	NutritionTimeout time.Duration `mapstructure:"nutrition_timeout"`
	TrainingTimeout  time.Duration `mapstructure:"training_timeout"`

	// Assistant run polling.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxPollWait  time.Duration `mapstructure:"max_poll_wait"`
}

type CacheConfig struct {
	ContextTTL time.Duration `mapstructure:"context_ttl"`
}

// ArchiveConfig configures the S3-compatible bucket retired plans are
// snapshotted to before the modification path deletes them. Leaving the
// bucket name empty disables archiving.
type ArchiveConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether plan archiving is configured.
func (a ArchiveConfig) Enabled() bool { return a.BucketName != "" }

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS,
	// openai.api_key -> OPENAI_API_KEY
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "coach_app")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("openai.model", "gpt-4.1-mini")
	viper.SetDefault("openai.assistant_model", "gpt-4.1-mini")
	viper.SetDefault("openai.nutrition_timeout", "60s")
	viper.SetDefault("openai.training_timeout", "120s")
	viper.SetDefault("openai.poll_interval", "1s")
	viper.SetDefault("openai.max_poll_wait", "5m")
	viper.SetDefault("cache.context_ttl", "1h")
	viper.SetDefault("archive.use_ssl", true)
	viper.SetDefault("log.mode", "dev")

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
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
