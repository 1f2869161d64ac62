// Package config provides unified configuration for the inference providers.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. .env file in the working directory (never overrides the process environment)
//  4. Environment variable overrides
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Provider names accepted in the provider field.
const (
	ProviderHuggingFace = "huggingface"
	ProviderTogether    = "together"
	ProviderReplicate   = "replicate"
)

// Default model identifiers and base URLs.
const (
	DefaultHuggingFaceModel = "mistralai/Mistral-7B-Instruct-v0.3"
	DefaultTogetherModel    = "mistralai/Mistral-7B-Instruct-v0.3"
	DefaultReplicateModel   = "mistralai/mistral-7b-instruct-v0.3"
	DefaultTogetherBaseURL  = "https://api.together.xyz/v1"
	DefaultReplicateBaseURL = "https://api.replicate.com/v1"
)

// Config holds all configuration for selecting and constructing a provider.
type Config struct {
	Provider      string              `yaml:"provider"` // default: "huggingface"
	HuggingFace   HuggingFaceConfig   `yaml:"huggingface"`
	Together      VendorConfig        `yaml:"together"`
	Replicate     VendorConfig        `yaml:"replicate"`
	HTTP          HTTPConfig          `yaml:"http"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// HuggingFaceConfig holds token-generation endpoint settings. The
// endpoint is the full inference URL, not a base.
type HuggingFaceConfig struct {
	Endpoint   string `yaml:"endpoint"`     // required at request time
	APIKey     string `yaml:"api_key"`      // required at request time
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
	Model      string `yaml:"model"`
}

// VendorConfig holds settings for a vendor addressed by base URL.
type VendorConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`      // required at request time
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
	Model      string `yaml:"model"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	// Timeout bounds non-streaming calls. Streams are bounded by the
	// caller's context only.
	Timeout time.Duration `yaml:"timeout"` // default: 120s
}

// LogConfig holds logging settings. LLM_DEBUG and LLM_LOG_LEVEL take
// precedence when set.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "INFO"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
	Format string `yaml:"format"` // "text" or "json", default: "text"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Addr    string `yaml:"addr"`    // listen address; empty disables the listener
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Provider: ProviderHuggingFace,
		HuggingFace: HuggingFaceConfig{
			Model: DefaultHuggingFaceModel,
		},
		Together: VendorConfig{
			BaseURL: DefaultTogetherBaseURL,
			Model:   DefaultTogetherModel,
		},
		Replicate: VendorConfig{
			BaseURL: DefaultReplicateBaseURL,
			Model:   DefaultReplicateModel,
		},
		HTTP: HTTPConfig{
			Timeout: 120 * time.Second,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
