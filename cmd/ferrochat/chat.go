package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ferro-labs/ferrochat"
	"github.com/ferro-labs/ferrochat/providers"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(a.ctx(cmd), a.client, cmd.OutOrStdout())
		},
	}
}

// session is one conversation: the in-memory history the REPL sends with
// every message.
type session struct {
	client  *ferrochat.Client
	out     io.Writer
	history []ferrochat.ChatMessage
}

func runREPL(ctx context.Context, client *ferrochat.Client, out io.Writer) error {
	cfg := client.GetAPIConfig(ctx)
	_, _ = fmt.Fprintf(out, "Provider: %s, Model: %s\n", cfg.SelectedProvider, cfg.SelectedModel)
	_, _ = fmt.Fprintln(out, "Type /help for commands, /exit to quit.")

	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".ferrochat-history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	s := &session{client: client, out: out}
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				_, _ = fmt.Fprintln(out, "Interrupted. Use /exit to quit.")
				continue
			}
			return nil
		}
		if quit := s.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether the session ended.
func (s *session) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return s.command(ctx, line)
	}

	reply, err := s.client.SendChatMessage(ctx, line, s.history)
	s.history = append(s.history, ferrochat.ChatMessage{Role: providers.RoleUser, Content: line})
	if err != nil {
		s.history = append(s.history, ferrochat.ChatMessage{Role: providers.RoleAssistant, Content: err.Error(), Error: true})
		_, _ = fmt.Fprintf(s.out, "✗ %v\n", err)
		return false
	}
	s.history = append(s.history, ferrochat.ChatMessage{Role: providers.RoleAssistant, Content: reply})
	_, _ = fmt.Fprint(s.out, render(s.out, reply))
	return false
}

func (s *session) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/exit", "/quit":
		return true
	case "/help":
		_, _ = fmt.Fprint(s.out, `Commands:
  /use <provider> [model]  switch provider (and model)
  /model <id>              switch model
  /models                  list models of the current provider
  /clear                   forget the conversation
  /exit                    quit
`)
	case "/clear":
		s.history = nil
		_, _ = fmt.Fprintln(s.out, "✓ Cleared. Fresh context.")
	case "/models":
		name := s.client.GetAPIConfig(ctx).SelectedProvider
		list, err := s.client.GetProviderModels(ctx, name)
		if err != nil {
			_, _ = fmt.Fprintf(s.out, "✗ %v\n", err)
			return false
		}
		for _, m := range list {
			_, _ = fmt.Fprintf(s.out, "  %-40s %s\n", m.ID, m.Name)
		}
	case "/use", "/model":
		cfg := s.client.GetAPIConfig(ctx)
		switch {
		case fields[0] == "/model" && len(fields) == 2:
			cfg.SelectedModel = fields[1]
		case fields[0] == "/use" && len(fields) >= 2:
			cfg.SelectedProvider = fields[1]
			if len(fields) == 3 {
				cfg.SelectedModel = fields[2]
			}
		default:
			_, _ = fmt.Fprintln(s.out, "usage: /use <provider> [model] | /model <id>")
			return false
		}
		if err := s.client.ValidateAPIConfig(cfg); err != nil {
			_, _ = fmt.Fprintf(s.out, "✗ %v\n", err)
			return false
		}
		s.client.SetAPIConfig(ctx, cfg)
		_, _ = fmt.Fprintf(s.out, "✓ Using %s / %s\n", cfg.SelectedProvider, cfg.SelectedModel)
	default:
		_, _ = fmt.Fprintf(s.out, "Unknown command %s, try /help\n", fields[0])
	}
	return false
}

// render formats markdown for terminals and leaves piped output untouched.
func render(out io.Writer, text string) string {
	f, ok := out.(*os.File)
	if !ok || !readline.IsTerminal(int(f.Fd())) {
		return text + "\n"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text + "\n"
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text + "\n"
	}
	return rendered
}
