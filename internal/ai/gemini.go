package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyeow/academi/internal/model"
	"google.golang.org/genai"
)

const (
	defaultGeminiChatModel  = "gemini-2.0-flash"
	defaultGeminiEmbedModel = "text-embedding-004"
)

type geminiConfig struct {
	APIKey     string `json:"api_key"`
	ChatModel  string `json:"chat_model"`
	EmbedModel string `json:"embed_model"`
}

type geminiProvider struct {
	apiKey     string
	chatModel  string
	embedModel string
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *geminiProvider) SupportsEmbeddings() bool {
	return true
}

func (p *geminiProvider) SupportsGrounding() bool {
	return true
}

func (p *geminiProvider) EmbedModel() string {
	return p.embedModel
}

func (p *geminiProvider) client(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func (p *geminiProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	if !p.Configured() {
		return nil, ErrUnavailable
	}
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		role := genai.RoleUser
		if msg.Role == model.MessageRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.User}},
	})
	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	resp, err := client.Models.GenerateContent(ctx, p.chatModel, contents, config)
	if err != nil {
		return nil, err
	}
	result := &ChatResult{
		Text:     strings.TrimSpace(resp.Text()),
		Provider: p.Name(),
	}
	if result.Text == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}
	if usage := resp.UsageMetadata; usage != nil {
		result.Usage = model.TokenUsage{
			InputTokens:  int64(usage.PromptTokenCount),
			OutputTokens: int64(usage.CandidatesTokenCount),
			TotalTokens:  int64(usage.TotalTokenCount),
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			result.Sources = append(result.Sources, WebSource{
				Title: chunk.Web.Title,
				URL:   chunk.Web.URI,
			})
		}
	}
	return result, nil
}

func (p *geminiProvider) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if !p.Configured() {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}
	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: text}}})
	}
	var config *genai.EmbedContentConfig
	if taskType != "" {
		config = &genai.EmbedContentConfig{TaskType: taskType}
	}
	resp, err := client.Models.EmbedContent(ctx, p.embedModel, contents, config)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: want %d got %d", len(texts), len(resp.Embeddings))
	}
	vectors := make([][]float32, 0, len(resp.Embeddings))
	for _, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("no embedding values returned")
		}
		vectors = append(vectors, emb.Values)
	}
	return vectors, nil
}

func createGeminiFactory(args interface{}) (Provider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	provider := &geminiProvider{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
	}
	if provider.chatModel == "" {
		provider.chatModel = defaultGeminiChatModel
	}
	if provider.embedModel == "" {
		provider.embedModel = defaultGeminiEmbedModel
	}
	return provider, nil
}

func init() {
	Register("gemini", createGeminiFactory)
}
