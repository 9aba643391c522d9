package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func envOf(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestParseCLIConfigEnvAndDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := parseCLIConfig(nil, envOf(map[string]string{
		"OPENAI_API_KEY":  "sk-test",
		"WEATHER_API_KEY": "wk",
	}), io.Discard)
	if err != nil {
		t.Fatalf("parseCLIConfig: %v", err)
	}
	if cfg.APIKey != "sk-test" || cfg.WeatherAPIKey != "wk" {
		t.Fatalf("unexpected keys: %+v", cfg)
	}
	if cfg.Model != "gpt-4o-mini" || cfg.MaxTokens != 1000 {
		t.Fatalf("unexpected defaults: model=%q max_tokens=%d", cfg.Model, cfg.MaxTokens)
	}
	if cfg.EnvFile != "azureopenai.env" {
		t.Fatalf("unexpected env file %q", cfg.EnvFile)
	}
}

func TestParseCLIConfigFlagsOverrideFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "weather-chat.yaml")
	if err := os.WriteFile(path, []byte("model: from-file\nmax_tokens: 200\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := parseCLIConfig([]string{
		"-config", path,
		"-max_tokens", "300",
		"-azure_endpoint", "https://res.cognitiveservices.azure.com/",
		"-weather_timeout", "2s",
	}, envOf(map[string]string{
		"OPENAI_MODEL":         "from-env",
		"OPENAI_API_KEY":       "sk-openai",
		"AZURE_OPENAI_API_KEY": "azure-key",
	}), io.Discard)
	if err != nil {
		t.Fatalf("parseCLIConfig: %v", err)
	}
	if cfg.Model != "from-env" {
		t.Fatalf("expected env to override file, got %q", cfg.Model)
	}
	if cfg.MaxTokens != 300 {
		t.Fatalf("expected flag to override file, got %d", cfg.MaxTokens)
	}
	if !cfg.IsAzure() || cfg.ChatModel() != "from-env" || cfg.ChatAPIKey() != "azure-key" {
		t.Fatalf("unexpected azure config: %+v", cfg)
	}
	if cfg.WeatherTimeout != 2*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.WeatherTimeout)
	}
}

func TestParseCLIConfigLoadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// Register cleanup, then unset so the env file can supply the value.
	t.Setenv("WEATHER_API_KEY", "")
	_ = os.Unsetenv("WEATHER_API_KEY")

	if err := os.WriteFile(filepath.Join(dir, "keys.env"), []byte("WEATHER_API_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := parseCLIConfig([]string{"-env_file", "keys.env"}, os.Getenv, io.Discard)
	if err != nil {
		t.Fatalf("parseCLIConfig: %v", err)
	}
	if cfg.WeatherAPIKey != "from-file" {
		t.Fatalf("expected key from env file, got %q", cfg.WeatherAPIKey)
	}
	if cfg.EnvFile != "keys.env" {
		t.Fatalf("expected env file name to be kept, got %q", cfg.EnvFile)
	}
}

func TestParseCLIConfigRejectsExtraArgs(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := parseCLIConfig([]string{"London"}, envOf(nil), io.Discard); err == nil {
		t.Fatal("expected error for positional arguments")
	}
}

func TestParseCLIConfigMissingConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := parseCLIConfig([]string{"-config", "nope.yaml"}, envOf(nil), io.Discard); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
