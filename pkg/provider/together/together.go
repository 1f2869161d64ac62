package together

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/provider"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/prompt"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/wire"
)

const name = provider.Together

// costPer1MTokens is the list price used for static model info.
const costPer1MTokens = 0.2

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model       string                 `json:"model"`
	Messages    []provider.ChatMessage `json:"messages"`
	Stream      bool                   `json:"stream"`
	Temperature float64                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
	TopP        float64                `json:"top_p"`
}

// Provider streams chat completions from Together AI.
type Provider struct {
	cfg    Config
	client *http.Client
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)

// New creates a Provider. Missing credentials are reported by
// GenerateStream.
func New(cfg Config) *Provider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: provider.NewClient(name, cfg.Model, cfg.Timeout, cfg.Transport),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return string(name)
}

// ModelInfo returns the configured model and its list price.
func (p *Provider) ModelInfo() provider.ModelInfo {
	return provider.ModelInfo{
		Provider:        name,
		ModelName:       p.cfg.Model,
		CostPer1MTokens: costPer1MTokens,
	}
}

// GenerateStream posts the role list with stream=true and decodes
// choices[0].delta.content from each event.
func (p *Provider) GenerateStream(ctx context.Context, systemPrompt string, messages []provider.ChatMessage, opts provider.GenerationOptions) (*provider.Stream, error) {
	if p.cfg.APIKey == "" {
		return nil, provider.NewConfigError(string(name), "missing TOGETHER_API_KEY")
	}
	if p.cfg.BaseURL == "" {
		return nil, provider.NewConfigError(string(name), "missing TOGETHER_BASE_URL")
	}
	if p.cfg.Model == "" {
		return nil, provider.NewConfigError(string(name), "missing TOGETHER_MODEL")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	body := chatRequest{
		Model:       p.cfg.Model,
		Messages:    prompt.RoleList(systemPrompt, messages),
		Stream:      true,
		Temperature: opts.TemperatureOr(provider.DefaultTemperature),
		MaxTokens:   opts.MaxTokensOr(provider.DefaultMaxTokens),
		TopP:        opts.TopPOr(provider.DefaultTopP),
	}

	req, err := provider.NewJSONRequest(ctx, http.MethodPost, p.cfg.BaseURL+"/chat/completions", body)
	if err != nil {
		return nil, provider.NewConfigError(string(name), "invalid base URL: "+err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := provider.Send(provider.StreamingClient(p.client), req, string(name))
	if err != nil {
		return nil, err
	}

	id := provider.NewStreamID()
	debug.Log("providers", "chat stream opened", "stream_id", id, "model", p.cfg.Model)

	dec := wire.NewEventDecoder(resp.Body, wire.DeltaContentExtractor,
		wire.WithSkipHook(provider.CountSkippedFrames(name)),
	)
	return provider.NewStream(ctx, resp.Body, dec, provider.StreamInfo{
		ID:       id,
		Provider: name,
		Model:    p.cfg.Model,
	}), nil
}

// Close releases idle connections.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
