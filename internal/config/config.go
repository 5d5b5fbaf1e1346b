// Package config loads engine settings from config files, .env files and
// environment variables.
//
// Precedence, highest first:
//  1. environment variables (SIGNALMAP_MATCHER_NAME_THRESHOLD, ...)
//  2. .env / .env.local
//  3. the policy file named by policy_file, for the eligibility section
//  4. the config file (--config, or .signalmap.yaml in $HOME or the
//     working directory)
//  5. defaults
package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/eligibility"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/matcher"
	"github.com/agentstation/signalmap/pkg/profile"
	"github.com/agentstation/signalmap/pkg/quality"
)

// EnvPrefix prefixes every environment variable the engine reads.
const EnvPrefix = "SIGNALMAP"

// Config is the full engine configuration.
type Config struct {
	Matcher     matcher.Config     `mapstructure:"matcher" yaml:"matcher"`
	Grouping    Grouping           `mapstructure:"grouping" yaml:"grouping"`
	Builder     profile.Config     `mapstructure:"builder" yaml:"builder"`
	Quality     quality.Config     `mapstructure:"quality" yaml:"quality"`
	Eligibility eligibility.Policy `mapstructure:"eligibility" yaml:"eligibility"`
	Gemini      Gemini             `mapstructure:"gemini" yaml:"gemini"`

	// PolicyFile replaces the eligibility section with a standalone
	// policy document.
	PolicyFile string `mapstructure:"policy_file" yaml:"policy_file"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// Grouping holds grouping engine settings.
type Grouping struct {
	BlockingThreshold int `mapstructure:"blocking_threshold" yaml:"blocking_threshold"`
	PrefixLength      int `mapstructure:"prefix_length" yaml:"prefix_length"`
}

// Gemini holds assessment service settings.
type Gemini struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Matcher: matcher.DefaultConfig(),
		Grouping: Grouping{
			BlockingThreshold: constants.BlockingThreshold,
			PrefixLength:      constants.BlockingPrefixLength,
		},
		Builder:     profile.DefaultConfig(),
		Quality:     quality.DefaultConfig(),
		Eligibility: eligibility.DefaultPolicy(),
		Gemini: Gemini{
			Model:   constants.DefaultAssessmentModel,
			Timeout: constants.AssessmentTimeout,
		},
	}
}

// Load reads configuration from every source. An empty file searches the
// standard locations; a missing file there is not an error.
func Load(file string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, errors.NewConfigError("config", "failed to bind API key", err)
	}

	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".signalmap")
	}
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "failed to read config file", err)
		}
	}

	if path := v.GetString("policy_file"); path != "" {
		if err := mergePolicy(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "failed to decode configuration", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergePolicy layers a policy file over the eligibility section. It sits in
// the config layer, so environment variables still override it.
func mergePolicy(v *viper.Viper, path string) error {
	policy, err := eligibility.LoadPolicy(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(map[string]eligibility.Policy{"eligibility": policy})
	if err != nil {
		return errors.NewConfigError("policy_file", "failed to encode policy", err)
	}
	v.SetConfigType("yaml")
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return errors.NewConfigError("policy_file", "failed to merge policy", err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Matcher.Validate(); err != nil {
		return err
	}
	if err := c.Quality.Validate(); err != nil {
		return err
	}
	if err := c.Builder.Validate(); err != nil {
		return err
	}
	if err := c.Eligibility.Validate(); err != nil {
		return err
	}
	if c.Grouping.BlockingThreshold < 0 {
		return errors.NewValidationError("grouping.blocking_threshold", c.Grouping.BlockingThreshold, "must not be negative")
	}
	if c.Grouping.PrefixLength < 1 {
		return errors.NewValidationError("grouping.prefix_length", c.Grouping.PrefixLength, "must be at least 1")
	}
	return nil
}

// setDefaults seeds viper with the defaults as its base config layer, so
// every key is known to AutomaticEnv and partially set sections keep
// their defaults.
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.NewConfigError("config", "failed to encode defaults", err)
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return errors.NewConfigError("config", "failed to load defaults", err)
	}
	return nil
}

// loadEnvFiles loads .env files; .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
