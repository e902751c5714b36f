// Package config loads the revision buddy settings from defaults, an
// optional buddy.toml, a .env file and BUDDY_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"revision-buddy/llm"
)

const (
	defaultListen            = ":8080"
	defaultSessionTTL        = 2 * time.Hour
	defaultMaxSnippets       = 2
	defaultMaxTokens         = 1500
	defaultTemperature       = 0.7
	defaultDocumentCharLimit = 15000
	defaultModelTimeout      = 60 * time.Second
)

type Config struct {
	Listen          string        `mapstructure:"listen"`
	Debug           bool          `mapstructure:"debug"`
	LogFile         string        `mapstructure:"log_file"`
	TeacherPasscode string        `mapstructure:"teacher_passcode"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	MaxSnippets     int           `mapstructure:"max_snippets"`
	LLM             LLMConfig     `mapstructure:"llm"`
}

type LLMConfig struct {
	OpenAIKey         string        `mapstructure:"openai_api_key"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	AnthropicKey      string        `mapstructure:"anthropic_api_key"`
	AnthropicModel    string        `mapstructure:"anthropic_model"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Temperature       float64       `mapstructure:"temperature"`
	DocumentCharLimit int           `mapstructure:"document_char_limit"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// Client returns the settings the llm package needs.
func (c LLMConfig) Client() llm.Config {
	return llm.Config{
		OpenAIKey:      c.OpenAIKey,
		OpenAIModel:    c.OpenAIModel,
		AnthropicKey:   c.AnthropicKey,
		AnthropicModel: c.AnthropicModel,
	}
}

// NewDefaultConfig returns a Config with defaults for all fields.
func NewDefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		SessionTTL:  defaultSessionTTL,
		MaxSnippets: defaultMaxSnippets,
		LLM: LLMConfig{
			OpenAIModel:       llm.DefaultOpenAIModel,
			AnthropicModel:    llm.DefaultAnthropicModel,
			MaxTokens:         defaultMaxTokens,
			Temperature:       defaultTemperature,
			DocumentCharLimit: defaultDocumentCharLimit,
			Timeout:           defaultModelTimeout,
		},
	}
}

// Load builds the config. Precedence, highest first:
//  1. BUDDY_ environment variables (BUDDY_LISTEN, BUDDY_LLM_MAX_TOKENS, ...)
//  2. plain OPENAI_API_KEY / ANTHROPIC_API_KEY / TEACHER_PASSCODE
//  3. the config file (configFile, or buddy.toml in the working directory)
//  4. defaults
//
// A .env file in the working directory is loaded into the environment first
// when present.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("buddy")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("BUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	applyBareEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("listen", d.Listen)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("teacher_passcode", d.TeacherPasscode)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("max_snippets", d.MaxSnippets)

	v.SetDefault("llm.openai_api_key", d.LLM.OpenAIKey)
	v.SetDefault("llm.openai_model", d.LLM.OpenAIModel)
	v.SetDefault("llm.anthropic_api_key", d.LLM.AnthropicKey)
	v.SetDefault("llm.anthropic_model", d.LLM.AnthropicModel)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.document_char_limit", d.LLM.DocumentCharLimit)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
}

// applyBareEnv fills secrets from the unprefixed variable names the hosted
// deployments already use.
func applyBareEnv(cfg *Config) {
	if cfg.LLM.OpenAIKey == "" {
		cfg.LLM.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.AnthropicKey == "" {
		cfg.LLM.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.TeacherPasscode == "" {
		cfg.TeacherPasscode = os.Getenv("TEACHER_PASSCODE")
	}
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.MaxSnippets < 0 {
		return fmt.Errorf("max_snippets must not be negative, got %d", c.MaxSnippets)
	}
	if c.LLM.DocumentCharLimit < 0 {
		return fmt.Errorf("llm.document_char_limit must not be negative, got %d", c.LLM.DocumentCharLimit)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must not be negative, got %s", c.LLM.Timeout)
	}
	return nil
}
