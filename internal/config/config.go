// Package config layers environment variables over a JSON key-value file
// kept in the OS config directory. The Gemini API key is stored encrypted
// next to it; callers only ever see the plaintext accessor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName     = "RinominaFacile"
	configFileName = "config.json"

	apiKeyConfigKey = "ai.gemini_api_key"
)

type Config struct {
	LogLevel string
	BaseURL  string
	Model    string

	dir    string
	path   string
	values map[string]any
}

// Load reads the config file (corrupt or missing files fall back to
// defaults) and applies environment overrides.
func Load() (*Config, error) {
	dir := os.Getenv("RINOMINA_CONFIG_DIR")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dir = filepath.Join(base, appDirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	c := &Config{
		LogLevel: env("RINOMINA_LOG_LEVEL", "info"),
		BaseURL:  env("GEMINI_BASE_URL", ""),
		Model:    env("GEMINI_MODEL", ""),
		dir:      dir,
		path:     filepath.Join(dir, configFileName),
		values:   map[string]any{},
	}

	raw, err := os.ReadFile(c.path)
	if err == nil {
		if jsonErr := json.Unmarshal(raw, &c.values); jsonErr != nil {
			// Corrupt file: start from defaults rather than failing.
			c.values = map[string]any{}
		}
	}
	return c, nil
}

func (c *Config) Dir() string      { return c.dir }
func (c *Config) Location() string { return c.path }

// Get resolves a dotted key ("ai.gemini_api_key") against the value tree.
func (c *Config) Get(key string, fallback string) string {
	node := any(c.values)
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return fallback
		}
		node, ok = m[part]
		if !ok {
			return fallback
		}
	}
	if s, ok := node.(string); ok {
		return s
	}
	return fallback
}

// Set writes a dotted key and persists the file.
func (c *Config) Set(key string, value string) error {
	parts := strings.Split(key, ".")
	node := c.values
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return c.save()
}

func (c *Config) save() error {
	raw, err := json.MarshalIndent(c.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// GeminiAPIKeyPlain decrypts the stored key. The environment variable
// wins, and any failure yields the empty string: the caller treats that
// as "not configured".
func (c *Config) GeminiAPIKeyPlain() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	blob := c.Get(apiKeyConfigKey, "")
	if blob == "" {
		return ""
	}
	plain, err := c.decryptString(blob)
	if err != nil {
		return ""
	}
	return plain
}

// SetGeminiAPIKeyPlain encrypts and persists the key.
func (c *Config) SetGeminiAPIKeyPlain(apiKey string) error {
	blob, err := c.encryptString(apiKey)
	if err != nil {
		return fmt.Errorf("encrypt api key: %w", err)
	}
	return c.Set(apiKeyConfigKey, blob)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
