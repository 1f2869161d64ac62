// Package prompt converts a system prompt plus conversation history into
// the payload shape each vendor expects: an instruction-template string,
// a role/content list, or a plain transcript.
package prompt

import (
	"strings"

	"github.com/greemwahr/GeorgianGPT/pkg/provider"
)

// Instruction renders a Llama/Mistral instruction template. System turns
// in messages are ignored; the system prompt is folded into the first
// user turn. An assistant turn directly following a user turn is closed
// with </s>. Blocks are joined with a single space.
//
// A conversation without user turns renders as the empty string.
func Instruction(systemPrompt string, messages []provider.ChatMessage) string {
	turns := make([]provider.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role != provider.RoleSystem {
			turns = append(turns, m)
		}
	}

	var parts []string
	for i := 0; i < len(turns); i++ {
		msg := turns[i]
		if msg.Role != provider.RoleUser {
			continue
		}

		content := strings.TrimSpace(msg.Content)
		if len(parts) == 0 {
			parts = append(parts, "<s>[INST] <<SYS>>\n"+strings.TrimSpace(systemPrompt)+"\n<</SYS>>\n\n"+content+" [/INST]")
		} else {
			parts = append(parts, "<s>[INST] "+content+" [/INST]")
		}

		if i+1 < len(turns) && turns[i+1].Role == provider.RoleAssistant {
			parts = append(parts, strings.TrimSpace(turns[i+1].Content)+"</s>")
			i++
		}
	}

	return strings.Join(parts, " ")
}

// RoleList prepends a system entry and passes every message through with
// role and content untouched.
func RoleList(systemPrompt string, messages []provider.ChatMessage) []provider.ChatMessage {
	out := make([]provider.ChatMessage, 0, len(messages)+1)
	out = append(out, provider.ChatMessage{Role: provider.RoleSystem, Content: systemPrompt})
	return append(out, messages...)
}

// PlainText renders a newline-joined transcript ending with an
// "assistant:" cue line.
func PlainText(systemPrompt string, messages []provider.ChatMessage) string {
	lines := make([]string, 0, len(messages)+2)
	lines = append(lines, "System: "+systemPrompt)
	for _, m := range messages {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	lines = append(lines, "assistant:")
	return strings.Join(lines, "\n")
}
