// Package factory selects and constructs a provider adapter by name.
package factory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/greemwahr/GeorgianGPT/pkg/config"
	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/provider"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/huggingface"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/replicate"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/together"
)

// Constructor builds an adapter from configuration. Constructors only
// read configuration; they never touch the network.
type Constructor func(cfg *config.Config) provider.Provider

// Registry maps case-insensitive provider names to constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, c Constructor) {
	name = normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = c
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New constructs a fresh adapter for name. An unknown name is a
// configuration error naming the value. A nil cfg uses config.Defaults.
func (r *Registry) New(name string, cfg *config.Config) (provider.Provider, error) {
	r.mu.RLock()
	c, ok := r.constructors[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, provider.NewConfigError("", fmt.Sprintf("unknown INFERENCE_PROVIDER: %q (supported: %s)",
			name, strings.Join(r.Names(), ", ")))
	}

	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}
	p := c(cfg)
	debug.Log("providers", "provider constructed", "provider", p.Name(), "model", p.ModelInfo().ModelName)
	return p, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry holding the built-in vendors.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		r.Register(string(provider.HuggingFace), newHuggingFace)
		r.Register(string(provider.Together), newTogether)
		r.Register(string(provider.Replicate), newReplicate)
		defaultRegistry = r
	})
	return defaultRegistry
}

// New constructs the built-in adapter selected by name.
func New(name string, cfg *config.Config) (provider.Provider, error) {
	return Default().New(name, cfg)
}

// FromConfig constructs the adapter selected by cfg.Provider.
func FromConfig(cfg *config.Config) (provider.Provider, error) {
	return New(cfg.Provider, cfg)
}

func newHuggingFace(cfg *config.Config) provider.Provider {
	return huggingface.New(huggingface.Config{
		Endpoint: cfg.HuggingFace.Endpoint,
		APIKey:   cfg.HuggingFace.APIKey,
		Model:    cfg.HuggingFace.Model,
		Timeout:  cfg.HTTP.Timeout,
	})
}

func newTogether(cfg *config.Config) provider.Provider {
	return together.New(together.Config{
		BaseURL: cfg.Together.BaseURL,
		APIKey:  cfg.Together.APIKey,
		Model:   cfg.Together.Model,
		Timeout: cfg.HTTP.Timeout,
	})
}

func newReplicate(cfg *config.Config) provider.Provider {
	return replicate.New(replicate.Config{
		BaseURL: cfg.Replicate.BaseURL,
		APIKey:  cfg.Replicate.APIKey,
		Model:   cfg.Replicate.Model,
		Timeout: cfg.HTTP.Timeout,
	})
}
