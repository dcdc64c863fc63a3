package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hpungsan/cardsmith/internal/errors"
)

// DefaultPath is the well-known config location, relative to the working directory.
const DefaultPath = "config.toml"

// Config holds application configuration.
type Config struct {
	API    APIConfig    `toml:"api"`
	Server ServerConfig `toml:"server"`
}

// APIConfig holds the generation API credential and provider settings.
type APIConfig struct {
	// AnthropicKey is the API credential. Required.
	AnthropicKey string `toml:"anthropic_key"`

	// Key is accepted as an alias for AnthropicKey.
	Key string `toml:"key"`

	// Provider selects the generation backend: "anthropic" (default), "openai" or "mock".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways, proxies).
	BaseURL string `toml:"base_url"`

	// Model overrides the provider's fixed default model identifier.
	Model string `toml:"model"`
}

// ServerConfig holds web UI listen settings.
type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

// DefaultConfig returns the default configuration. It carries no credential.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Provider: "anthropic",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8501,
		},
	}
}

// APIKey returns the resolved credential, preferring anthropic_key over key.
func (c *Config) APIKey() string {
	if k := strings.TrimSpace(c.API.AnthropicKey); k != "" {
		return k
	}
	return strings.TrimSpace(c.API.Key)
}

// Load reads the TOML config at path and merges it over DefaultConfig.
// Unlike optional settings, the credential is mandatory: a missing file,
// a parse failure or an empty key are all reported as startup errors.
func Load(path string) (*Config, error) {
	raw, err := loadFileRaw(path)
	if err != nil {
		return nil, err
	}
	if raw.APIKey() == "" {
		return nil, errors.NewCredentialAbsent(path)
	}
	return Merge(DefaultConfig(), raw), nil
}

// ResolveAPIKey reads the config at path and returns only the credential.
func ResolveAPIKey(path string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	return cfg.APIKey(), nil
}

// loadFileRaw decodes the file at path without applying defaults.
func loadFileRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewConfigMissing(path)
		}
		return nil, errors.NewConfigMalformed(path, err)
	}

	cfg := &Config{}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.NewConfigMalformed(path, err)
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values win when non-zero.
func Merge(base, overlay *Config) *Config {
	result := *base

	result.API.AnthropicKey = pick(overlay.API.AnthropicKey, base.API.AnthropicKey)
	result.API.Key = pick(overlay.API.Key, base.API.Key)
	result.API.Provider = strings.ToLower(pick(overlay.API.Provider, base.API.Provider))
	result.API.BaseURL = pick(overlay.API.BaseURL, base.API.BaseURL)
	result.API.Model = pick(overlay.API.Model, base.API.Model)

	result.Server.Bind = pick(overlay.Server.Bind, base.Server.Bind)
	result.Server.Port = overlay.Server.Port
	if result.Server.Port == 0 {
		result.Server.Port = base.Server.Port
	}

	return &result
}

func pick(overlay, base string) string {
	if s := strings.TrimSpace(overlay); s != "" {
		return s
	}
	return base
}
