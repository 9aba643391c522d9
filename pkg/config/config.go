package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEnvFile         = "azureopenai.env"
	DefaultModel           = "gpt-4o-mini"
	DefaultAzureAPIVersion = "2024-12-01-preview"
	DefaultMaxTokens       = 1000
	DefaultWeatherBaseURL  = "https://api.weatherapi.com/v1"
	DefaultWeatherTimeout  = 15 * time.Second
)

// Config holds all runtime configuration for the assistant.
type Config struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`

	AzureAPIKey      string `yaml:"azure_api_key"`
	AzureEndpoint    string `yaml:"azure_endpoint"`
	AzureAPIVersion  string `yaml:"azure_api_version"`
	AzureDeployment  string `yaml:"azure_deployment"`
	AzureUseIdentity bool   `yaml:"azure_use_identity"`

	WeatherAPIKey  string        `yaml:"weather_api_key"`
	WeatherBaseURL string        `yaml:"weather_base_url"`
	WeatherTimeout time.Duration `yaml:"weather_timeout"`

	EnvFile      string `yaml:"env_file"`
	SystemPrompt string `yaml:"system_prompt"`
	Verbose      bool   `yaml:"verbose"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Model:           DefaultModel,
		MaxTokens:       DefaultMaxTokens,
		AzureAPIVersion: DefaultAzureAPIVersion,
		WeatherBaseURL:  DefaultWeatherBaseURL,
		WeatherTimeout:  DefaultWeatherTimeout,
		EnvFile:         DefaultEnvFile,
	}
}

// LoadFile overlays values from a YAML file onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays non-empty values from the environment lookup onto cfg.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.APIKey, "OPENAI_API_KEY")
	set(&cfg.BaseURL, "OPENAI_BASE_URL")
	set(&cfg.Model, "OPENAI_MODEL")
	set(&cfg.AzureAPIKey, "AZURE_OPENAI_API_KEY")
	set(&cfg.AzureEndpoint, "AZURE_OPENAI_ENDPOINT")
	set(&cfg.AzureAPIVersion, "AZURE_OPENAI_API_VERSION")
	set(&cfg.AzureDeployment, "AZURE_OPENAI_DEPLOYMENT")
	set(&cfg.WeatherAPIKey, "WEATHER_API_KEY")
	set(&cfg.WeatherBaseURL, "WEATHER_API_BASE_URL")
	return cfg
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.AzureAPIKey = strings.TrimSpace(cfg.AzureAPIKey)
	cfg.AzureEndpoint = strings.TrimSpace(cfg.AzureEndpoint)
	cfg.AzureAPIVersion = strings.TrimSpace(cfg.AzureAPIVersion)
	cfg.AzureDeployment = strings.TrimSpace(cfg.AzureDeployment)
	cfg.WeatherAPIKey = strings.TrimSpace(cfg.WeatherAPIKey)
	cfg.WeatherBaseURL = strings.TrimRight(strings.TrimSpace(cfg.WeatherBaseURL), "/")
	cfg.EnvFile = strings.TrimSpace(cfg.EnvFile)
	cfg.SystemPrompt = strings.TrimSpace(cfg.SystemPrompt)

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.AzureAPIVersion == "" {
		cfg.AzureAPIVersion = DefaultAzureAPIVersion
	}
	if cfg.AzureEndpoint != "" && cfg.AzureDeployment == "" {
		cfg.AzureDeployment = cfg.Model
	}
	if cfg.WeatherBaseURL == "" {
		cfg.WeatherBaseURL = DefaultWeatherBaseURL
	}
	if cfg.WeatherTimeout <= 0 {
		cfg.WeatherTimeout = DefaultWeatherTimeout
	}
	if cfg.EnvFile == "" {
		cfg.EnvFile = DefaultEnvFile
	}
	return cfg
}

// Validate reports configuration that prevents the chat client from starting.
// A missing weather key is not an error here; lookups report it per call.
func Validate(cfg Config) error {
	if cfg.ChatAPIKey() == "" && !(cfg.AzureEndpoint != "" && cfg.AzureUseIdentity) {
		return errors.New("chat API key is not set (OPENAI_API_KEY or AZURE_OPENAI_API_KEY)")
	}
	if cfg.Model == "" {
		return errors.New("Model is not set")
	}
	if cfg.AzureUseIdentity && cfg.AzureEndpoint == "" {
		return errors.New("azure identity auth requires AZURE_OPENAI_ENDPOINT")
	}
	return nil
}

// IsAzure reports whether the chat client targets an Azure OpenAI resource.
func (c Config) IsAzure() bool {
	return c.AzureEndpoint != ""
}

// ChatModel returns the model name sent with each request. Azure routes on the
// deployment name instead of the model.
func (c Config) ChatModel() string {
	if c.IsAzure() && c.AzureDeployment != "" {
		return c.AzureDeployment
	}
	return c.Model
}

// ChatAPIKey returns the key sent to the chat service. The Azure key is used
// whenever an Azure endpoint is set, however the endpoint was configured.
func (c Config) ChatAPIKey() string {
	if c.IsAzure() && c.AzureAPIKey != "" {
		return c.AzureAPIKey
	}
	if c.APIKey != "" {
		return c.APIKey
	}
	return c.AzureAPIKey
}
