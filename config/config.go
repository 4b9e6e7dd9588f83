// Package config loads the bot configuration from an optional file,
// SERVER_BUILDER_* environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "SERVER_BUILDER"

type DiscordConfig struct {
	Token  string `mapstructure:"token"`
	Prefix string `mapstructure:"prefix"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider"` // gemini, openai, deepseek or mock
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

type BuilderConfig struct {
	PacingDelay time.Duration `mapstructure:"pacing_delay"`
	RoleName    string        `mapstructure:"role_name"`
	ChannelName string        `mapstructure:"channel_name"`
}

type DialogConfig struct {
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	TextTimeout    time.Duration `mapstructure:"text_timeout"`
	ContentTimeout time.Duration `mapstructure:"content_timeout"`
}

type HTTPConfig struct {
	// Addr is the ops listener; empty disables it.
	Addr string `mapstructure:"addr"`
}

type Config struct {
	Discord   DiscordConfig `mapstructure:"discord"`
	LLM       LLMConfig     `mapstructure:"llm"`
	Builder   BuilderConfig `mapstructure:"builder"`
	Dialog    DialogConfig  `mapstructure:"dialog"`
	HTTP      HTTPConfig    `mapstructure:"http"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
}

func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{Prefix: "!"},
		LLM:     LLMConfig{Provider: "gemini"},
		Builder: BuilderConfig{
			PacingDelay: 500 * time.Millisecond,
			RoleName:    "🤖 Server Builder",
			ChannelName: "bot-commands",
		},
		Dialog: DialogConfig{
			ConfirmTimeout: 30 * time.Second,
			TextTimeout:    60 * time.Second,
			ContentTimeout: 120 * time.Second,
		},
		HTTP:      HTTPConfig{Addr: ":8080"},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadConfig reads path when given, otherwise looks for config.{json,yaml}
// in the working directory and /etc/server-builder/. A missing file is fine.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/server-builder/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("discord.token", config.Discord.Token)
	v.SetDefault("discord.prefix", config.Discord.Prefix)

	v.SetDefault("llm.provider", config.LLM.Provider)
	v.SetDefault("llm.model", config.LLM.Model)
	v.SetDefault("llm.api_key", config.LLM.APIKey)
	v.SetDefault("llm.base_url", config.LLM.BaseURL)

	v.SetDefault("builder.pacing_delay", config.Builder.PacingDelay)
	v.SetDefault("builder.role_name", config.Builder.RoleName)
	v.SetDefault("builder.channel_name", config.Builder.ChannelName)

	v.SetDefault("dialog.confirm_timeout", config.Dialog.ConfirmTimeout)
	v.SetDefault("dialog.text_timeout", config.Dialog.TextTimeout)
	v.SetDefault("dialog.content_timeout", config.Dialog.ContentTimeout)

	v.SetDefault("http.addr", config.HTTP.Addr)
	v.SetDefault("log_level", config.LogLevel)
	v.SetDefault("log_format", config.LogFormat)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate checks values that do not depend on which command runs. The
// Discord token is checked when the bot starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Prefix) == "" {
		return errors.New("discord.prefix cannot be empty")
	}

	switch c.LLM.Provider {
	case "gemini", "openai", "mock":
	case "deepseek":
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires llm.base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %q not supported", c.LLM.Provider)
	}

	if c.Builder.PacingDelay < 0 {
		return errors.New("builder.pacing_delay cannot be negative")
	}
	if c.Builder.RoleName == "" || c.Builder.ChannelName == "" {
		return errors.New("builder.role_name and builder.channel_name cannot be empty")
	}

	if c.Dialog.ConfirmTimeout <= 0 || c.Dialog.TextTimeout <= 0 || c.Dialog.ContentTimeout <= 0 {
		return errors.New("dialog timeouts must be positive")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("log_format %q must be json or text", c.LogFormat)
	}
	return nil
}
