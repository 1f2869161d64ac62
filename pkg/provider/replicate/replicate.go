package replicate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/provider"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/prompt"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/wire"
)

const name = provider.Replicate

// maxPredictionBody caps how much of the create response is decoded.
const maxPredictionBody = 1 << 20

// predictionRequest is the body of POST /predictions.
type predictionRequest struct {
	Version string          `json:"version"`
	Stream  bool            `json:"stream"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature"`
	MaxNewTokens int     `json:"max_new_tokens"`
	TopP         float64 `json:"top_p"`
}

// prediction is the subset of the create response we need.
type prediction struct {
	ID   string `json:"id"`
	URLs struct {
		Stream string `json:"stream"`
	} `json:"urls"`
}

// Provider streams prediction output from Replicate.
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

// ModelInfo returns the configured model.
func (p *Provider) ModelInfo() provider.ModelInfo {
	return provider.ModelInfo{
		Provider:        name,
		ModelName:       p.cfg.Model,
		CostPer1MTokens: 0,
	}
}

// GenerateStream creates a streaming prediction and opens its event
// stream. A create response without a stream URL is a protocol error.
func (p *Provider) GenerateStream(ctx context.Context, systemPrompt string, messages []provider.ChatMessage, opts provider.GenerationOptions) (*provider.Stream, error) {
	if p.cfg.APIKey == "" {
		return nil, provider.NewConfigError(string(name), "missing REPLICATE_API_KEY")
	}
	if p.cfg.BaseURL == "" {
		return nil, provider.NewConfigError(string(name), "missing REPLICATE_BASE_URL")
	}
	if p.cfg.Model == "" {
		return nil, provider.NewConfigError(string(name), "missing REPLICATE_MODEL")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	streamURL, err := p.createPrediction(ctx, systemPrompt, messages, opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, provider.NewProtocolError(string(name), "invalid stream URL: "+err.Error())
	}
	req.Header.Set("Authorization", "Token "+p.cfg.APIKey)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := provider.Send(provider.StreamingClient(p.client), req, string(name))
	if err != nil {
		return nil, err
	}

	id := provider.NewStreamID()
	debug.Log("providers", "prediction stream opened", "stream_id", id, "url", req.URL.Redacted())

	dec := wire.NewEventDecoder(resp.Body, wire.OutputExtractor,
		wire.WithSkipHook(provider.CountSkippedFrames(name)),
	)
	return provider.NewStream(ctx, resp.Body, dec, provider.StreamInfo{
		ID:       id,
		Provider: name,
		Model:    p.cfg.Model,
	}), nil
}

// createPrediction performs the first round trip and returns the stream
// URL. It uses the timeout-bound client since the response is small.
func (p *Provider) createPrediction(ctx context.Context, systemPrompt string, messages []provider.ChatMessage, opts provider.GenerationOptions) (string, error) {
	body := predictionRequest{
		Version: p.cfg.Model,
		Stream:  true,
		Input: predictionInput{
			Prompt:       prompt.PlainText(systemPrompt, messages),
			Temperature:  opts.TemperatureOr(provider.DefaultTemperature),
			MaxNewTokens: opts.MaxTokensOr(provider.DefaultMaxTokens),
			TopP:         opts.TopPOr(provider.DefaultTopP),
		},
	}

	req, err := provider.NewJSONRequest(ctx, http.MethodPost, p.cfg.BaseURL+"/predictions", body)
	if err != nil {
		return "", provider.NewConfigError(string(name), "invalid base URL: "+err.Error())
	}
	req.Header.Set("Authorization", "Token "+p.cfg.APIKey)

	resp, err := provider.Send(p.client, req, string(name))
	if err != nil {
		return "", err
	}
	defer func() {
		// Read to EOF so the connection goes back to the pool.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxPredictionBody))
		resp.Body.Close()
	}()

	var pred prediction
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPredictionBody)).Decode(&pred); err != nil {
		return "", &provider.Error{
			Kind:     provider.KindProtocol,
			Provider: string(name),
			Message:  "failed to decode prediction response",
			Err:      err,
		}
	}
	if pred.URLs.Stream == "" {
		return "", provider.NewProtocolError(string(name), "prediction did not return stream URL")
	}

	debug.Log("providers", "prediction created", "prediction_id", pred.ID)
	return pred.URLs.Stream, nil
}

// Close releases idle connections.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
