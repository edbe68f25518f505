// Copyright (c) Weftworks. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/weftworks/loom"
)

// ProviderConfig describes one OpenAI-compatible endpoint.
type ProviderConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	APIKey  string            `mapstructure:"api_key"`
	Models  map[string]string `mapstructure:"models"`
}

// AgentConfig holds loop settings shared by all subcommands.
type AgentConfig struct {
	MaxRounds   int    `mapstructure:"max_rounds"`
	ProfilesDir string `mapstructure:"profiles_dir"`
}

// ServerConfig holds settings for the serve subcommand.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// ToolServerConfig describes an MCP tool server launched over stdio.
type ToolServerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Env     []string `mapstructure:"env"`
}

// Config is the full loom.yaml layout.
type Config struct {
	Providers       map[string]ProviderConfig   `mapstructure:"providers"`
	DefaultProvider string                      `mapstructure:"default_provider"`
	Agent           AgentConfig                 `mapstructure:"agent"`
	Server          ServerConfig                `mapstructure:"server"`
	Tools           map[string]ToolServerConfig `mapstructure:"tools"`
}

// loadConfig reads loom.yaml from the working directory or $HOME/.loom.
// A missing config file is not an error: the defaults below plus the
// OPENAI_* environment variables are enough to run against OpenAI.
func loadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("loom")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.loom")

	v.SetDefault("default_provider", "openai")
	v.SetDefault("agent.max_rounds", loom.DefaultMaxToolRounds)
	v.SetDefault("agent.profiles_dir", "profiles")
	v.SetDefault("server.port", 8080)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ${ENV_VAR} references so keys never live in the file itself.
	for name, p := range cfg.Providers {
		p.APIKey = expandEnv(p.APIKey)
		p.BaseURL = expandEnv(p.BaseURL)
		cfg.Providers[name] = p
	}

	// With no providers section the default provider is plain OpenAI,
	// configured entirely from the environment.
	if len(cfg.Providers) == 0 {
		cfg.Providers = map[string]ProviderConfig{"openai": {}}
	}

	return &cfg, nil
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}

// Provider returns the config for a named provider, falling back to the
// default.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	p, ok := c.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("unknown provider: %s", name)
	}
	return p, nil
}
