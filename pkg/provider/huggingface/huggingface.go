package huggingface

import (
	"context"
	"net/http"
	"time"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/provider"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/prompt"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/wire"
)

const name = provider.HuggingFace

// generateRequest is the text-generation-inference request body.
type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
	Stream     bool       `json:"stream"`
}

type parameters struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	TopP           float64 `json:"top_p"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Provider streams completions from a Hugging Face inference endpoint.
type Provider struct {
	cfg    Config
	client *http.Client
}

// Ensure Provider implements provider.Provider at compile time.
var _ provider.Provider = (*Provider)(nil)

// New creates a Provider. Missing credentials are not an error here;
// GenerateStream reports them before any network activity.
func New(cfg Config) *Provider {
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

// ModelInfo returns the configured model. Dedicated endpoints are not
// billed per token.
func (p *Provider) ModelInfo() provider.ModelInfo {
	return provider.ModelInfo{
		Provider:        name,
		ModelName:       p.cfg.Model,
		CostPer1MTokens: 0,
	}
}

// GenerateStream posts the instruction-formatted conversation and returns
// the response body as a text stream.
func (p *Provider) GenerateStream(ctx context.Context, systemPrompt string, messages []provider.ChatMessage, opts provider.GenerationOptions) (*provider.Stream, error) {
	if p.cfg.Endpoint == "" || p.cfg.APIKey == "" {
		return nil, provider.NewConfigError(string(name), "missing HUGGINGFACE_API_KEY or HF_INFERENCE_ENDPOINT")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	body := generateRequest{
		Inputs: prompt.Instruction(systemPrompt, messages),
		Parameters: parameters{
			Temperature:    opts.TemperatureOr(provider.DefaultTemperature),
			MaxNewTokens:   opts.MaxTokensOr(provider.DefaultMaxTokens),
			TopP:           opts.TopPOr(provider.DefaultTopP),
			ReturnFullText: false,
		},
		Stream: true,
	}

	req, err := provider.NewJSONRequest(ctx, http.MethodPost, p.cfg.Endpoint, body)
	if err != nil {
		return nil, provider.NewConfigError(string(name), "invalid endpoint: "+err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := provider.Send(provider.StreamingClient(p.client), req, string(name))
	if err != nil {
		return nil, err
	}

	id := provider.NewStreamID()
	debug.Log("providers", "token stream opened",
		"stream_id", id,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return provider.NewStream(ctx, resp.Body, wire.NewRawDecoder(resp.Body), provider.StreamInfo{
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
