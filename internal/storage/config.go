package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// APIKeyEnv overrides the configured API key when set.
const APIKeyEnv = "OPENAI_API_KEY"

// Config holds application configuration.
type Config struct {
	OpenAIAPIKey          string `json:"openaiApiKey"`
	RequestTimeoutSeconds int    `json:"requestTimeoutSeconds"`
	BatchConcurrency      int    `json:"batchConcurrency"`
	NotesDir              string `json:"notesDir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		RequestTimeoutSeconds: 30,
		BatchConcurrency:      4,
		NotesDir:              ".",
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	if config.RequestTimeoutSeconds <= 0 {
		config.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if config.BatchConcurrency <= 0 {
		config.BatchConcurrency = defaults.BatchConcurrency
	}
	if config.NotesDir == "" {
		config.NotesDir = defaults.NotesDir
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// APIKey returns the key from the environment, falling back to the file.
func (c *Config) APIKey() string {
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key
	}
	return c.OpenAIAPIKey
}

// RequestTimeout returns the HTTP timeout for API calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DefaultConfigFilePath returns the default config path: ~/.config/autotag/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
