package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/steveyeow/academi/internal/model"
)

const (
	defaultAnthropicChatModel = "claude-sonnet-4-5-20250929"
	anthropicMaxOutputTokens  = 4096
)

type anthropicConfig struct {
	APIKey    string `json:"api_key"`
	ChatModel string `json:"chat_model"`
}

type anthropicProvider struct {
	apiKey    string
	chatModel string
	client    anthropic.Client
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *anthropicProvider) SupportsEmbeddings() bool {
	return false
}

func (p *anthropicProvider) SupportsGrounding() bool {
	return false
}

func (p *anthropicProvider) EmbedModel() string {
	return ""
}

func (p *anthropicProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if !p.Configured() {
		return nil, ErrUnavailable
	}
	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, msg := range req.History {
		if msg.Role == model.MessageRoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)))
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.chatModel),
		MaxTokens: anthropicMaxOutputTokens,
		Messages:  msgs,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty response from anthropic")
	}
	return &ChatResult{
		Text:     text,
		Provider: p.Name(),
		Usage: model.TokenUsage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
			TotalTokens:  message.Usage.InputTokens + message.Usage.OutputTokens,
		},
	}, nil
}

func (p *anthropicProvider) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	return nil, ErrNoEmbeddingCapability
}

func createAnthropicFactory(args interface{}) (Provider, error) {
	cfg := &anthropicConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	provider := &anthropicProvider{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		chatModel: cfg.ChatModel,
	}
	if provider.chatModel == "" {
		provider.chatModel = defaultAnthropicChatModel
	}
	if provider.apiKey != "" {
		provider.client = anthropic.NewClient(option.WithAPIKey(provider.apiKey))
	}
	return provider, nil
}

func init() {
	Register("anthropic", createAnthropicFactory)
}
