package config

import (
	"fmt"
	"os"

	"github.com/kkk9131/new-gate-sub000/pkg/models"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration. Every field has a usable default
// so the file is optional.
type Config struct {
	Server     ServerConfig                       `yaml:"server"`
	Bridge     BridgeConfig                       `yaml:"bridge"`
	Extensions ExtensionsConfig                   `yaml:"extensions"`
	Providers  map[models.Provider]ProviderConfig `yaml:"providers"`
	Log        LogConfig                          `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type BridgeConfig struct {
	// URL of the desktop backend that actually executes tools.
	URL string `yaml:"url"`
}

type ExtensionsConfig struct {
	// Path of the sqlite database holding extension tool definitions.
	// Empty disables the extension lookup entirely.
	Path string `yaml:"path"`
}

type ProviderConfig struct {
	Model string `yaml:"model"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Bridge: BridgeConfig{URL: "http://localhost:3100/tools/execute"},
		Providers: map[models.Provider]ProviderConfig{
			models.ProviderOpenAI:    {Model: "gpt-4o-mini"},
			models.ProviderAnthropic: {Model: "claude-3-5-sonnet-latest"},
			models.ProviderGemini:    {Model: "gemini-1.5-flash"},
		},
		Log: LogConfig{Level: "info", Pretty: true},
	}
}

// Load reads the yaml config at path, falling back to defaults when the file
// does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Model returns the configured model name for a provider.
func (c *Config) Model(p models.Provider) string {
	return c.Providers[p].Model
}

var credentialEnv = map[models.Provider]string{
	models.ProviderOpenAI:    "OPENAI_API_KEY",
	models.ProviderAnthropic: "ANTHROPIC_API_KEY",
	models.ProviderGemini:    "GOOGLE_API_KEY",
}

// MergeCredentials merges caller-supplied keys with the per-provider
// environment fallback. Caller values win. The result is read-only for the
// rest of the request.
func MergeCredentials(caller map[string]string) models.Credentials {
	creds := models.Credentials{}
	for _, p := range models.Providers() {
		if v := os.Getenv(credentialEnv[p]); v != "" {
			creds[p] = v
		}
	}
	for k, v := range caller {
		p, ok := models.ParseProvider(k)
		if !ok || v == "" {
			continue
		}
		creds[p] = v
	}
	return creds
}
