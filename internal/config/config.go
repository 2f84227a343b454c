// Package config provides configuration loading and validation for the
// secretary bot. Values come from defaults, an optional config.yaml, and
// SECRETARY_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application settings.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Triage    TriageConfig    `mapstructure:"triage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Topic     TopicConfig     `mapstructure:"topic"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// TelegramConfig holds bot credentials and the operator identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// OwnerID is the only account allowed to run commands and label messages.
	OwnerID int64 `mapstructure:"owner_id" validate:"required,gt=0"`
	// BotUsername, when set, is matched as a literal @mention during triage
	// in addition to generic mentions.
	BotUsername string `mapstructure:"bot_username"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TriageConfig holds scoring and digest selection tunables.
type TriageConfig struct {
	// WarningThreshold is the minimum priority score that triggers an
	// immediate alert to the operator.
	WarningThreshold int `mapstructure:"warning_threshold" validate:"min=0"`
	// MinScore is the lowest score eligible for a digest.
	MinScore int `mapstructure:"min_score" validate:"min=0"`
	// MaxMessages caps how many messages one digest claims.
	MaxMessages int `mapstructure:"max_messages" validate:"min=1,max=100"`
}

// SchedulerConfig holds digest timing.
type SchedulerConfig struct {
	// SummaryInterval is the period between digest runs; it is also the
	// lookback window of each run.
	SummaryInterval time.Duration `mapstructure:"summary_interval" validate:"min=1m"`
	// StartupDelay postpones the first digest run after boot.
	StartupDelay time.Duration `mapstructure:"startup_delay" validate:"min=0"`
}

// TopicConfig holds the topic hint model settings. An empty APIKey disables
// hints entirely.
type TopicConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s,max=1m"`
}

// Load reads configuration from defaults, the YAML file at configPath
// (optional), and SECRETARY_* environment variables, then validates it.
func Load(configPath string) (*Config, error) {
	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("SECRETARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults and env cover it.
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")

	viper.SetDefault("database.path", "secretary.db")

	viper.SetDefault("triage.warning_threshold", 5)
	viper.SetDefault("triage.min_score", 1)
	viper.SetDefault("triage.max_messages", 15)

	viper.SetDefault("scheduler.summary_interval", 4*time.Hour)
	viper.SetDefault("scheduler.startup_delay", 5*time.Minute)

	viper.SetDefault("topic.model", "gemini-2.0-flash")
	viper.SetDefault("topic.timeout", 5*time.Second)
}
