package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	configpkg "github.com/minhyannv/weather-chat-go/pkg/config"
)

// parseCLIConfig layers defaults, an optional YAML file, env files, the
// environment, and finally explicitly set flags.
func parseCLIConfig(args []string, getenv func(string) string, stderr io.Writer) (configpkg.Config, error) {
	defaults := configpkg.DefaultConfig()

	fs := flag.NewFlagSet("weather-chat", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}
	configFile := fs.String("config", "", "Optional YAML config file")
	envFile := fs.String("env_file", defaults.EnvFile, "Env file holding API keys (a missing file is ignored)")
	model := fs.String("model", defaults.Model, "Model name, or deployment name when -azure_endpoint is set")
	maxTokens := fs.Int64("max_tokens", defaults.MaxTokens, "Max tokens per completion")
	azureEndpoint := fs.String("azure_endpoint", "", "Azure OpenAI endpoint, e.g. https://<resource>.cognitiveservices.azure.com/")
	azureIdentity := fs.Bool("azure_identity", false, "Authenticate to Azure OpenAI with the default Azure credential chain")
	weatherTimeout := fs.Duration("weather_timeout", defaults.WeatherTimeout, "Weather API request timeout")
	verbose := fs.Bool("verbose", false, "Verbose request and tool-call logging")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, err
	}
	setFlags := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg := defaults
	if path := strings.TrimSpace(*configFile); path != "" {
		loaded, err := configpkg.LoadFile(path, cfg)
		if err != nil {
			return configpkg.Config{}, err
		}
		cfg = loaded
	}
	if setFlags["env_file"] {
		cfg.EnvFile = *envFile
	}

	loadEnvFiles(cfg.EnvFile)
	cfg = configpkg.ApplyEnv(cfg, getenv)

	if setFlags["model"] {
		cfg.Model = *model
		cfg.AzureDeployment = *model
	}
	if setFlags["max_tokens"] {
		cfg.MaxTokens = *maxTokens
	}
	if setFlags["azure_endpoint"] {
		cfg.AzureEndpoint = *azureEndpoint
	}
	if setFlags["azure_identity"] {
		cfg.AzureUseIdentity = *azureIdentity
	}
	if setFlags["weather_timeout"] {
		cfg.WeatherTimeout = *weatherTimeout
	}
	if setFlags["verbose"] {
		cfg.Verbose = *verbose
	}
	if fs.NArg() > 0 {
		return configpkg.Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return configpkg.Normalize(cfg), nil
}

// loadEnvFiles loads the named env file and then .env. Existing variables
// are never overwritten, so the first file wins.
func loadEnvFiles(envFile string) {
	for _, name := range []string{strings.TrimSpace(envFile), ".env"} {
		if name == "" {
			continue
		}
		if _, err := os.Stat(name); err != nil {
			continue
		}
		_ = godotenv.Load(name)
	}
}

