// Copyright (c) Weftworks. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/weftworks/loom"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("LOOM_TEST_KEY", "sk-test-1")

	cfgYAML := `default_provider: local
providers:
  local:
    base_url: http://localhost:8000/v1
    api_key: ${LOOM_TEST_KEY}
  openai:
    api_key: ${OPENAI_API_KEY}
server:
  port: 9999
`
	if err := os.WriteFile(filepath.Join(dir, "loom.yaml"), []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.DefaultProvider != "local" {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	local := cfg.Providers["local"]
	if local.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("BaseURL = %q", local.BaseURL)
	}
	if local.APIKey != "sk-test-1" {
		t.Errorf("APIKey = %q, want env value", local.APIKey)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}

	// Sections absent from the file keep their defaults.
	if cfg.Agent.MaxRounds != loom.DefaultMaxToolRounds {
		t.Errorf("MaxRounds = %d", cfg.Agent.MaxRounds)
	}
	if cfg.Agent.ProfilesDir != "profiles" {
		t.Errorf("ProfilesDir = %q", cfg.Agent.ProfilesDir)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("a missing config file should not fail: %v", err)
	}

	if cfg.DefaultProvider != "openai" {
		t.Errorf("DefaultProvider = %q", cfg.DefaultProvider)
	}
	if _, ok := cfg.Providers["openai"]; !ok {
		t.Errorf("providers = %v, want implicit openai", cfg.Providers)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestConfig_Provider(t *testing.T) {
	cfg := &Config{
		DefaultProvider: "openai",
		Providers: map[string]ProviderConfig{
			"openai": {BaseURL: "https://api.openai.com/v1"},
			"local":  {BaseURL: "http://localhost:8000/v1"},
		},
	}

	p, err := cfg.Provider("")
	if err != nil {
		t.Fatalf("default provider: %v", err)
	}
	if p.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q", p.BaseURL)
	}

	p, err = cfg.Provider("local")
	if err != nil {
		t.Fatalf("named provider: %v", err)
	}
	if p.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("BaseURL = %q", p.BaseURL)
	}

	if _, err := cfg.Provider("missing"); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("LOOM_TEST_VALUE", "resolved")

	tests := []struct {
		in, want string
	}{
		{"${LOOM_TEST_VALUE}", "resolved"},
		{"${LOOM_TEST_UNSET_VALUE}", ""},
		{"plain-key", "plain-key"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := expandEnv(tc.in); got != tc.want {
			t.Errorf("expandEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	profileYAML := `name: researcher
provider: local
model: gpt-4o-mini
system_prompt: You research things.
tools:
  - read_file
  - current_time
max_rounds: 5
`
	path := filepath.Join(dir, "researcher.yaml")
	if err := os.WriteFile(path, []byte(profileYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}

	if p.Name != "researcher" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", p.Model)
	}
	if p.SystemPrompt != "You research things." {
		t.Errorf("SystemPrompt = %q", p.SystemPrompt)
	}
	if len(p.Tools) != 2 || p.Tools[0] != "read_file" {
		t.Errorf("Tools = %v", p.Tools)
	}
	if p.MaxRounds != 5 {
		t.Errorf("MaxRounds = %d", p.MaxRounds)
	}

	if _, err := LoadProfile(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("missing profile should fail")
	}
}
