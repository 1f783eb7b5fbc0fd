package chat

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"ivagate/internal/mood"
)

var ErrEmptyReply = errors.New("chat: backend returned no reply")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Backend produces Iva's reply to text given the prior turns, oldest first.
type Backend interface {
	Reply(ctx context.Context, history []Turn, text string) (string, error)
}

type Config struct {
	APIKey       string        `koanf:"api_key"`
	BaseURL      string        `koanf:"base_url"`
	Model        string        `koanf:"model"`
	SystemPrompt string        `koanf:"system_prompt"`
	History      int           `koanf:"history"` // past exchanges sent with each message
	Timeout      time.Duration `koanf:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://openrouter.ai/api/v1",
		Model:        "openai/gpt-4o-mini",
		SystemPrompt: SystemPrompt,
		History:      10,
		Timeout:      60 * time.Second,
	}
}

// Reply is a backend answer split into its display tag and spoken text.
type Reply struct {
	Tag       mood.Tag `json:"tag"`
	Text      string   `json:"text"`
	Sentences []string `json:"sentences,omitempty"`
}

var sentenceEnd = regexp.MustCompile(`[^.!?。．！？\n]+[.!?。．！？\n]*`)

// ParseReply reads the leading [tag] the persona is asked to emit. Replies
// without a known tag are displayed as neutral.
func ParseReply(raw string) Reply {
	tag, text, ok := mood.SplitTag(strings.TrimSpace(raw))
	if !ok {
		tag = mood.TagNeutral
	}
	return Reply{
		Tag:       tag,
		Text:      text,
		Sentences: Sentences(text),
	}
}

func Sentences(text string) []string {
	var out []string
	for _, s := range sentenceEnd.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Window keeps the most recent n exchanges, counted by user turns, so the
// kept slice always starts on a user turn.
func Window(history []Turn, n int) []Turn {
	if n <= 0 {
		return history
	}
	seen := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != RoleUser {
			continue
		}
		if seen++; seen == n {
			return history[i:]
		}
	}
	return history
}
