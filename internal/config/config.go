// Package config loads the optional application config file. Precedence
// for every setting is flag > environment > file > default; this package
// only covers the file layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ytakagi/excelquiz/internal/llm"
)

// Config is the on-disk configuration.
type Config struct {
	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`

	LLM struct {
		Provider  string `yaml:"provider"`
		Gemini    keyed  `yaml:"gemini"`
		OpenAI    struct {
			APIKey  string `yaml:"api_key"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"openai"`
		Anthropic keyed `yaml:"anthropic"`
	} `yaml:"llm"`
}

type keyed struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// DefaultPath resolves the config file location:
// $XDG_CONFIG_HOME/excelquiz/config.yaml, falling back to
// ~/.config/excelquiz/config.yaml.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "excelquiz", "config.yaml"), nil
}

// Load reads the YAML config at path. A missing file is not an error:
// the zero Config is returned.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LLMConfig builds the provider configuration: defaults, overlaid with
// the file, overlaid with environment variables.
func (c Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()

	if c.LLM.Provider != "" {
		out.Provider = c.LLM.Provider
	}
	if c.LLM.Gemini.APIKey != "" {
		out.Gemini.APIKey = c.LLM.Gemini.APIKey
	}
	if c.LLM.Gemini.Model != "" {
		out.Gemini.Model = c.LLM.Gemini.Model
	}
	if c.LLM.OpenAI.APIKey != "" {
		out.OpenAI.APIKey = c.LLM.OpenAI.APIKey
	}
	if c.LLM.OpenAI.Model != "" {
		out.OpenAI.Model = c.LLM.OpenAI.Model
	}
	if c.LLM.OpenAI.BaseURL != "" {
		out.OpenAI.BaseURL = c.LLM.OpenAI.BaseURL
	}
	if c.LLM.Anthropic.APIKey != "" {
		out.Anthropic.APIKey = c.LLM.Anthropic.APIKey
	}
	if c.LLM.Anthropic.Model != "" {
		out.Anthropic.Model = c.LLM.Anthropic.Model
	}

	out.ApplyEnv()
	return out
}
