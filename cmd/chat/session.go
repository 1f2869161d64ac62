package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greemwahr/GeorgianGPT/pkg/provider"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// session holds the conversation for one run of the client. Nothing is
// persisted.
type session struct {
	prov    provider.Provider
	system  string
	opts    provider.GenerationOptions
	out     io.Writer
	history []provider.ChatMessage
}

func newSession(prov provider.Provider, system string, opts provider.GenerationOptions, out io.Writer) *session {
	return &session{prov: prov, system: system, opts: opts, out: out}
}

// turn sends input with the history so far and writes the reply to out
// as fragments arrive. Only completed exchanges are added to history.
func (s *session) turn(ctx context.Context, input string) error {
	messages := append(s.history[:len(s.history):len(s.history)],
		provider.ChatMessage{Role: provider.RoleUser, Content: input})

	stream, err := s.prov.GenerateStream(ctx, s.system, messages, s.opts)
	if err != nil {
		return err
	}
	defer stream.Close()

	var reply strings.Builder
	for stream.Next() {
		frag := stream.Text()
		reply.WriteString(frag)
		if _, err := io.WriteString(s.out, frag); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
	}
	if err := stream.Err(); err != nil {
		return err
	}

	s.history = append(messages, provider.ChatMessage{
		Role:    provider.RoleAssistant,
		Content: strings.TrimSpace(reply.String()),
	})
	return nil
}

func (s *session) reset() {
	s.history = nil
}
