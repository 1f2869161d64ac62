package wire

import (
	"encoding/json"
)

// DoneSentinel is the payload chat-completion vendors send as their last
// frame. It carries no text; the stream still ends when the connection
// closes.
const DoneSentinel = "[DONE]"

// OutputExtractor reads prediction frames of the form
// {"output": "text"} or {"output": ["a", "b"]}. Non-string list
// elements and any other output shape are ignored.
func OutputExtractor(payload string) ([]string, error) {
	var v any
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil, err
	}

	obj, _ := v.(map[string]any)
	switch out := obj["output"].(type) {
	case string:
		return []string{out}, nil
	case []any:
		frags := make([]string, 0, len(out))
		for _, elem := range out {
			if s, ok := elem.(string); ok {
				frags = append(frags, s)
			}
		}
		return frags, nil
	default:
		return nil, nil
	}
}

// chatCompletionChunk is the subset of an OpenAI-style streaming chunk
// the delta extractor needs.
type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// DeltaContentExtractor reads choices[0].delta.content from chat
// completion chunks. The [DONE] sentinel yields nothing.
func DeltaContentExtractor(payload string) ([]string, error) {
	if payload == DoneSentinel {
		return nil, nil
	}

	var chunk chatCompletionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return nil, err
	}
	if len(chunk.Choices) == 0 {
		return nil, nil
	}

	content := chunk.Choices[0].Delta.Content
	if content == nil || *content == "" {
		return nil, nil
	}
	return []string{*content}, nil
}
