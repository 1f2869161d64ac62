package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, LLM_CONFIG env, ./config.yaml)
//  3. .env file (LLM_ENV_FILE env or ./.env), consulted only for
//     variables not already present in the environment
//  4. Environment variable overrides
//  5. File reference resolution (_file suffix)
//  6. Validation
//
// Missing credentials are not a load error. Adapters report them when a
// request is attempted.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
		debug.Log("config", "loaded config file", "path", filePath)
	}

	dotenv, err := loadDotEnv()
	if err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnvOverrides(&cfg, envLookup(dotenv)); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. LLM_CONFIG environment variable
// 3. ./config.yaml in the current directory
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("LLM_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv reads the .env file without touching the process
// environment. A missing file yields an empty map.
func loadDotEnv() (map[string]string, error) {
	path := os.Getenv("LLM_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	debug.Log("config", "loaded .env file", "path", path, "vars", len(vars))
	return vars, nil
}

// envLookup returns a getter that prefers the process environment and
// falls back to dotenv.
func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides maps environment variables to config fields. Empty
// values leave the field untouched.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, "INFERENCE_PROVIDER")

	set(&cfg.HuggingFace.Endpoint, "HF_INFERENCE_ENDPOINT")
	set(&cfg.HuggingFace.APIKey, "HUGGINGFACE_API_KEY")
	set(&cfg.HuggingFace.Model, "HF_MODEL")

	set(&cfg.Together.APIKey, "TOGETHER_API_KEY")
	set(&cfg.Together.Model, "TOGETHER_MODEL")
	set(&cfg.Together.BaseURL, "TOGETHER_BASE_URL")

	set(&cfg.Replicate.APIKey, "REPLICATE_API_KEY")
	set(&cfg.Replicate.Model, "REPLICATE_MODEL")
	set(&cfg.Replicate.BaseURL, "REPLICATE_BASE_URL")

	set(&cfg.Observability.Metrics.Addr, "LLM_METRICS_ADDR")

	if v := getenv("LLM_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTP.Timeout = d
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name string
		file string
		dst  *string
	}{
		{"huggingface.api_key_file", cfg.HuggingFace.APIKeyFile, &cfg.HuggingFace.APIKey},
		{"together.api_key_file", cfg.Together.APIKeyFile, &cfg.Together.APIKey},
		{"replicate.api_key_file", cfg.Replicate.APIKeyFile, &cfg.Replicate.APIKey},
	}

	for _, ref := range refs {
		if ref.file == "" || *ref.dst != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.dst = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
