package provider

import (
	"fmt"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of a conversation. Order is significant.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ProviderName enumerates the supported vendors.
type ProviderName string

const (
	HuggingFace ProviderName = "huggingface"
	Together    ProviderName = "together"
	Replicate   ProviderName = "replicate"
)

// GenerationOptions holds optional sampling parameters. A nil field means
// "use the adapter default".
type GenerationOptions struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// Default generation parameters shared by all adapters.
const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 512
	DefaultTopP        = 0.9
)

// Validate rejects out-of-range options. It returns an invalid_request
// Error naming the offending field.
func (o GenerationOptions) Validate() error {
	if o.Temperature != nil && *o.Temperature < 0 {
		return NewInvalidRequestError("temperature", fmt.Sprintf("must be >= 0, got %v", *o.Temperature))
	}
	if o.MaxTokens != nil && *o.MaxTokens <= 0 {
		return NewInvalidRequestError("max_tokens", fmt.Sprintf("must be > 0, got %d", *o.MaxTokens))
	}
	if o.TopP != nil && (*o.TopP < 0 || *o.TopP > 1) {
		return NewInvalidRequestError("top_p", fmt.Sprintf("must be in [0,1], got %v", *o.TopP))
	}
	return nil
}

// TemperatureOr returns the temperature or def when unset.
func (o GenerationOptions) TemperatureOr(def float64) float64 {
	if o.Temperature == nil {
		return def
	}
	return *o.Temperature
}

// MaxTokensOr returns the max token count or def when unset.
func (o GenerationOptions) MaxTokensOr(def int) int {
	if o.MaxTokens == nil {
		return def
	}
	return *o.MaxTokens
}

// TopPOr returns top_p or def when unset.
func (o GenerationOptions) TopPOr(def float64) float64 {
	if o.TopP == nil {
		return def
	}
	return *o.TopP
}

// ModelInfo holds static information about the model behind an adapter.
type ModelInfo struct {
	Provider        ProviderName `json:"provider"`
	ModelName       string       `json:"model_name"`
	CostPer1MTokens float64      `json:"cost_per_1m_tokens"`
}

// Float64 returns a pointer to v. Handy for building GenerationOptions.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
