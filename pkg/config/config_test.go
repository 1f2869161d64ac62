package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// envKeys lists every variable Load consults.
var envKeys = []string{
	"LLM_CONFIG", "LLM_ENV_FILE",
	"INFERENCE_PROVIDER",
	"HF_INFERENCE_ENDPOINT", "HUGGINGFACE_API_KEY", "HF_MODEL",
	"TOGETHER_API_KEY", "TOGETHER_MODEL", "TOGETHER_BASE_URL",
	"REPLICATE_API_KEY", "REPLICATE_MODEL", "REPLICATE_BASE_URL",
	"LLM_HTTP_TIMEOUT", "LLM_METRICS_ADDR",
}

// isolateEnv unsets every variable Load reads and points the .env layer
// at a file that does not exist. Originals are restored on cleanup.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("LLM_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Provider != "huggingface" {
		t.Errorf("default provider = %q, want \"huggingface\"", cfg.Provider)
	}
	if cfg.HuggingFace.Model != "mistralai/Mistral-7B-Instruct-v0.3" {
		t.Errorf("default huggingface.model = %q", cfg.HuggingFace.Model)
	}
	if cfg.Together.BaseURL != "https://api.together.xyz/v1" {
		t.Errorf("default together.base_url = %q", cfg.Together.BaseURL)
	}
	if cfg.Replicate.BaseURL != "https://api.replicate.com/v1" {
		t.Errorf("default replicate.base_url = %q", cfg.Replicate.BaseURL)
	}
	if cfg.Replicate.Model != "mistralai/mistral-7b-instruct-v0.3" {
		t.Errorf("default replicate.model = %q", cfg.Replicate.Model)
	}
	if cfg.HTTP.Timeout != 120*time.Second {
		t.Errorf("default http.timeout = %v, want 120s", cfg.HTTP.Timeout)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("default metrics = %+v, want enabled at /metrics", cfg.Observability.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	isolateEnv(t)

	yamlContent := `
provider: Replicate
huggingface:
  endpoint: https://hf.example.com/models/mistral
  api_key: hf-yaml-key
together:
  api_key: tg-yaml-key
  model: meta-llama/Llama-3-8b-chat-hf
replicate:
  base_url: http://localhost:9000/v1
  api_key: r8-yaml-key
  model: owner/model:abc123
http:
  timeout: 45s
log:
  level: debug
  debug: providers,streaming
  format: json
observability:
  metrics:
    enabled: true
    addr: ":9464"
    path: /prom
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "replicate" {
		t.Errorf("provider = %q, want \"replicate\" (normalized)", cfg.Provider)
	}
	if cfg.HuggingFace.Endpoint != "https://hf.example.com/models/mistral" {
		t.Errorf("huggingface.endpoint = %q", cfg.HuggingFace.Endpoint)
	}
	if cfg.HuggingFace.APIKey != "hf-yaml-key" {
		t.Errorf("huggingface.api_key = %q", cfg.HuggingFace.APIKey)
	}
	if cfg.HuggingFace.Model != DefaultHuggingFaceModel {
		t.Errorf("huggingface.model = %q, want default retained", cfg.HuggingFace.Model)
	}
	if cfg.Together.Model != "meta-llama/Llama-3-8b-chat-hf" {
		t.Errorf("together.model = %q", cfg.Together.Model)
	}
	if cfg.Together.BaseURL != DefaultTogetherBaseURL {
		t.Errorf("together.base_url = %q, want default retained", cfg.Together.BaseURL)
	}
	if cfg.Replicate.BaseURL != "http://localhost:9000/v1" {
		t.Errorf("replicate.base_url = %q", cfg.Replicate.BaseURL)
	}
	if cfg.Replicate.Model != "owner/model:abc123" {
		t.Errorf("replicate.model = %q", cfg.Replicate.Model)
	}
	if cfg.HTTP.Timeout != 45*time.Second {
		t.Errorf("http.timeout = %v, want 45s", cfg.HTTP.Timeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Debug != "providers,streaming" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Observability.Metrics.Addr != ":9464" || cfg.Observability.Metrics.Path != "/prom" {
		t.Errorf("metrics = %+v", cfg.Observability.Metrics)
	}
}

func TestEnvOverride(t *testing.T) {
	isolateEnv(t)

	yamlContent := `
provider: huggingface
together:
  api_key: from-yaml
  model: yaml-model
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	t.Setenv("INFERENCE_PROVIDER", "TOGETHER")
	t.Setenv("TOGETHER_API_KEY", "from-env")
	t.Setenv("TOGETHER_MODEL", "env-model")
	t.Setenv("TOGETHER_BASE_URL", "http://together.local/v1")
	t.Setenv("HF_INFERENCE_ENDPOINT", "http://hf.local/generate")
	t.Setenv("HUGGINGFACE_API_KEY", "hf-env")
	t.Setenv("HF_MODEL", "hf-env-model")
	t.Setenv("REPLICATE_API_KEY", "r8-env")
	t.Setenv("REPLICATE_MODEL", "r8-env-model")
	t.Setenv("REPLICATE_BASE_URL", "http://replicate.local/v1")
	t.Setenv("LLM_HTTP_TIMEOUT", "5s")
	t.Setenv("LLM_METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"provider", cfg.Provider, "together"},
		{"together.api_key", cfg.Together.APIKey, "from-env"},
		{"together.model", cfg.Together.Model, "env-model"},
		{"together.base_url", cfg.Together.BaseURL, "http://together.local/v1"},
		{"huggingface.endpoint", cfg.HuggingFace.Endpoint, "http://hf.local/generate"},
		{"huggingface.api_key", cfg.HuggingFace.APIKey, "hf-env"},
		{"huggingface.model", cfg.HuggingFace.Model, "hf-env-model"},
		{"replicate.api_key", cfg.Replicate.APIKey, "r8-env"},
		{"replicate.model", cfg.Replicate.Model, "r8-env-model"},
		{"replicate.base_url", cfg.Replicate.BaseURL, "http://replicate.local/v1"},
		{"observability.metrics.addr", cfg.Observability.Metrics.Addr, "127.0.0.1:9100"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("http.timeout = %v, want 5s", cfg.HTTP.Timeout)
	}
}

func TestEnvOverrideInvalidTimeout(t *testing.T) {
	isolateEnv(t)
	t.Setenv("LLM_HTTP_TIMEOUT", "soon")

	_, err := Load(writeTemp(t, "config-*.yaml", "provider: together\n"))
	if err == nil {
		t.Fatal("expected error for invalid LLM_HTTP_TIMEOUT")
	}
	if !strings.Contains(err.Error(), "LLM_HTTP_TIMEOUT") {
		t.Errorf("error = %q, want it to name LLM_HTTP_TIMEOUT", err.Error())
	}
}

func TestDotEnvFile(t *testing.T) {
	isolateEnv(t)

	envFile := writeTemp(t, "dotenv-*", strings.Join([]string{
		"INFERENCE_PROVIDER=replicate",
		"REPLICATE_API_KEY=r8-dotenv",
		"TOGETHER_API_KEY=tg-dotenv",
		"",
	}, "\n"))
	t.Setenv("LLM_ENV_FILE", envFile)
	// The process environment wins over .env.
	t.Setenv("TOGETHER_API_KEY", "tg-process")

	cfg, err := Load(writeTemp(t, "config-*.yaml", "{}\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider != "replicate" {
		t.Errorf("provider = %q, want \"replicate\" from .env", cfg.Provider)
	}
	if cfg.Replicate.APIKey != "r8-dotenv" {
		t.Errorf("replicate.api_key = %q, want value from .env", cfg.Replicate.APIKey)
	}
	if cfg.Together.APIKey != "tg-process" {
		t.Errorf("together.api_key = %q, want process env to win", cfg.Together.APIKey)
	}
	if _, ok := os.LookupEnv("REPLICATE_API_KEY"); ok {
		t.Error(".env values must not be exported to the process environment")
	}
}

func TestMissingCredentialsLoad(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(writeTemp(t, "config-*.yaml", "provider: huggingface\n"))
	if err != nil {
		t.Fatalf("missing credentials must not fail Load, got %v", err)
	}
	if cfg.HuggingFace.APIKey != "" || cfg.HuggingFace.Endpoint != "" {
		t.Errorf("expected empty credentials, got %+v", cfg.HuggingFace)
	}
}

func TestFileReference(t *testing.T) {
	isolateEnv(t)

	secretFile := writeTemp(t, "secret-*.txt", "  sk-from-file-123  \n")
	yamlContent := `
together:
  api_key_file: ` + secretFile + `
replicate:
  api_key_file: ` + secretFile + `
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Together.APIKey != "sk-from-file-123" {
		t.Errorf("together.api_key = %q, want trimmed file content", cfg.Together.APIKey)
	}
	if cfg.Replicate.APIKey != "sk-from-file-123" {
		t.Errorf("replicate.api_key = %q, want trimmed file content", cfg.Replicate.APIKey)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	isolateEnv(t)

	yamlContent := `
huggingface:
  api_key_file: /nonexistent/path/key.txt
`
	_, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err == nil {
		t.Fatal("expected error for unreadable api_key_file")
	}
	if !strings.Contains(err.Error(), "huggingface.api_key_file") {
		t.Errorf("error = %q, want it to name the field", err.Error())
	}
}

func TestFileReferenceDoesNotOverrideExplicitValue(t *testing.T) {
	isolateEnv(t)

	secretFile := writeTemp(t, "secret-*.txt", "sk-from-file")
	yamlContent := `
together:
  api_key: sk-explicit
  api_key_file: ` + secretFile + `
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Together.APIKey != "sk-explicit" {
		t.Errorf("together.api_key = %q, want explicit value", cfg.Together.APIKey)
	}
}

func TestFileDiscovery(t *testing.T) {
	isolateEnv(t)

	envFile := writeTemp(t, "envconfig-*.yaml", "provider: together\n")
	t.Setenv("LLM_CONFIG", envFile)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with LLM_CONFIG error: %v", err)
	}
	if cfg.Provider != "together" {
		t.Errorf("LLM_CONFIG: provider = %q, want \"together\"", cfg.Provider)
	}

	// Explicit path wins over LLM_CONFIG.
	explicit := writeTemp(t, "explicit-*.yaml", "provider: replicate\n")
	cfg, err = Load(explicit)
	if err != nil {
		t.Fatalf("Load(explicit) error: %v", err)
	}
	if cfg.Provider != "replicate" {
		t.Errorf("explicit: provider = %q, want \"replicate\"", cfg.Provider)
	}

	// No file anywhere: defaults only.
	t.Setenv("LLM_CONFIG", "")
	t.Chdir(t.TempDir())
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() without file error: %v", err)
	}
	if cfg.Provider != ProviderHuggingFace {
		t.Errorf("no file: provider = %q, want default", cfg.Provider)
	}
}

func TestInvalidYAML(t *testing.T) {
	isolateEnv(t)

	_, err := Load(writeTemp(t, "config-*.yaml", "provider: [unterminated\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "empty provider",
			modify:  func(c *Config) { c.Provider = " " },
			wantErr: "provider is required",
		},
		{
			name:    "relative endpoint",
			modify:  func(c *Config) { c.HuggingFace.Endpoint = "localhost:8080/generate" },
			wantErr: "huggingface.endpoint",
		},
		{
			name:    "unsupported scheme",
			modify:  func(c *Config) { c.Together.BaseURL = "ftp://together.example.com" },
			wantErr: "together.base_url",
		},
		{
			name:    "missing host",
			modify:  func(c *Config) { c.Replicate.BaseURL = "http://" },
			wantErr: "replicate.base_url",
		},
		{
			name:    "non-positive timeout",
			modify:  func(c *Config) { c.HTTP.Timeout = 0 },
			wantErr: "http.timeout must be > 0",
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format must be",
		},
		{
			name:    "metrics path",
			modify:  func(c *Config) { c.Observability.Metrics.Path = "metrics" },
			wantErr: "observability.metrics.path",
		},
		{
			name:    "unknown provider is left to the factory",
			modify:  func(c *Config) { c.Provider = "unknown-vendor" },
			wantErr: "",
		},
		{
			name:    "valid config",
			modify:  func(c *Config) { c.HuggingFace.Endpoint = "http://localhost:8080/generate" },
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidationJoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.HTTP.Timeout = -1
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"http.timeout", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		t.Fatalf("writing temp file: %v", err)
	}
	f.Close()
	return f.Name()
}
