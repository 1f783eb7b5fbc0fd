package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenRouter talks to any OpenAI-compatible chat completions endpoint,
// OpenRouter by default.
type OpenRouter struct {
	client       openai.Client
	model        string
	systemPrompt string
	history      int
}

func NewOpenRouter(cfg Config, extra ...option.RequestOption) *OpenRouter {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = def.SystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	}
	opts = append(opts, extra...)

	return &OpenRouter{
		client:       openai.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		history:      cfg.History,
	}
}

func (o *OpenRouter) Reply(ctx context.Context, history []Turn, text string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: o.buildMessages(history, text),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

func (o *OpenRouter) buildMessages(history []Turn, text string) []openai.ChatCompletionMessageParamUnion {
	var params []openai.ChatCompletionMessageParamUnion
	if o.systemPrompt != "" {
		params = append(params, openai.SystemMessage(o.systemPrompt))
	}
	for _, t := range Window(history, o.history) {
		switch t.Role {
		case RoleUser:
			params = append(params, openai.UserMessage(t.Content))
		case RoleAssistant:
			params = append(params, openai.AssistantMessage(t.Content))
		}
	}
	return append(params, openai.UserMessage(text))
}
