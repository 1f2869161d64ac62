package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for structurally invalid values.
// Returns an error with a descriptive field path on failure. Provider
// names are resolved by the factory, which reports unknown values.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Provider) == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}

	urls := []struct {
		name  string
		value string
	}{
		{"huggingface.endpoint", c.HuggingFace.Endpoint},
		{"together.base_url", c.Together.BaseURL},
		{"replicate.base_url", c.Replicate.BaseURL},
	}
	for _, u := range urls {
		if u.value == "" {
			continue
		}
		if err := validateURL(u.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.name, err))
		}
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be > 0, got %v", c.HTTP.Timeout))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
