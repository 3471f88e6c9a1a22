package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/steveyeow/academi/internal/model"
)

// openAICompatible speaks the OpenAI chat-completions wire format, which
// Kimi and DeepSeek also serve. Each vendor registers its own name with its
// own default base URL and models.
type openAICompatible struct {
	name       string
	apiKey     string
	baseURL    string
	chatModel  string
	embedModel string
}

type openAICompatibleConfig struct {
	APIKey     string `json:"api_key"`
	BaseURL    string `json:"base_url"`
	ChatModel  string `json:"chat_model"`
	EmbedModel string `json:"embed_model"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIChatMsg `json:"messages"`
	Stream   bool            `json:"stream"`
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage openAIUsage `json:"usage"`
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *openAICompatible) Name() string {
	return p.name
}

func (p *openAICompatible) Configured() bool {
	return p.apiKey != ""
}

func (p *openAICompatible) SupportsEmbeddings() bool {
	return p.embedModel != ""
}

func (p *openAICompatible) SupportsGrounding() bool {
	return false
}

func (p *openAICompatible) EmbedModel() string {
	return p.embedModel
}

func (p *openAICompatible) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s request failed: %s: %s", p.name, resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *openAICompatible) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if !p.Configured() {
		return nil, ErrUnavailable
	}
	msgs := make([]openAIChatMsg, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openAIChatMsg{Role: "system", Content: req.System})
	}
	for _, msg := range req.History {
		msgs = append(msgs, openAIChatMsg{Role: msg.Role, Content: msg.Content})
	}
	msgs = append(msgs, openAIChatMsg{Role: "user", Content: req.User})
	var out openAIChatResponse
	if err := p.post(ctx, "/chat/completions", openAIChatRequest{
		Model:    p.chatModel,
		Messages: msgs,
		Stream:   false,
	}, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%s response has no choices", p.name)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("empty response from %s", p.name)
	}
	return &ChatResult{
		Text:     text,
		Provider: p.name,
		Usage: model.TokenUsage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
			TotalTokens:  out.Usage.TotalTokens,
		},
	}, nil
}

func (p *openAICompatible) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if !p.Configured() {
		return nil, ErrUnavailable
	}
	if !p.SupportsEmbeddings() {
		return nil, ErrNoEmbeddingCapability
	}
	if len(texts) == 0 {
		return nil, nil
	}
	var out openAIEmbedResponse
	if err := p.post(ctx, "/embeddings", openAIEmbedRequest{
		Model: p.embedModel,
		Input: texts,
	}, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("%s embedding count mismatch: want %d got %d", p.name, len(texts), len(out.Data))
	}
	// the API may return items out of order, keyed by index
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	vectors := make([][]float32, 0, len(out.Data))
	for _, item := range out.Data {
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("%s returned an empty embedding", p.name)
		}
		vectors = append(vectors, item.Embedding)
	}
	return vectors, nil
}

func createOpenAICompatibleFactory(name, baseURL, chatModel, embedModel string) ProviderFactory {
	return func(args interface{}) (Provider, error) {
		cfg := &openAICompatibleConfig{}
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
		provider := &openAICompatible{
			name:       name,
			apiKey:     strings.TrimSpace(cfg.APIKey),
			baseURL:    strings.TrimSpace(cfg.BaseURL),
			chatModel:  cfg.ChatModel,
			embedModel: cfg.EmbedModel,
		}
		if provider.baseURL == "" {
			provider.baseURL = baseURL
		}
		if provider.chatModel == "" {
			provider.chatModel = chatModel
		}
		if provider.embedModel == "" {
			provider.embedModel = embedModel
		}
		return provider, nil
	}
}

func init() {
	Register("openai", createOpenAICompatibleFactory("openai",
		"https://api.openai.com/v1", "gpt-4o-mini", "text-embedding-3-small"))
	Register("kimi", createOpenAICompatibleFactory("kimi",
		"https://api.moonshot.cn/v1", "moonshot-v1-8k", ""))
	Register("deepseek", createOpenAICompatibleFactory("deepseek",
		"https://api.deepseek.com/v1", "deepseek-chat", ""))
}
