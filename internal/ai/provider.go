package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/steveyeow/academi/internal/model"
)

// Embedding task types, passed through to providers that distinguish them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

var (
	// ErrUnavailable means the provider has no credentials configured.
	ErrUnavailable = errors.New("ai provider not configured")
	// ErrNoAvailableProvider means every eligible provider was exhausted.
	ErrNoAvailableProvider = errors.New("no available ai provider")
	// ErrNoEmbeddingCapability means no configured provider can embed.
	ErrNoEmbeddingCapability = errors.New("no provider with embedding capability")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one provider-agnostic chat call. Grounding asks for
// web-search grounding on providers that support it; others ignore it.
type ChatRequest struct {
	System    string
	User      string
	History   []Message
	Grounding bool
}

// WebSource is one grounding citation returned by a search-capable provider.
type WebSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ChatResult struct {
	Text     string
	Provider string
	Sources  []WebSource
	Usage    model.TokenUsage
}

// Provider is one language-model backend. Capability checks are cheap and
// never touch the network; Chat and Embed may block.
type Provider interface {
	Name() string
	Configured() bool
	SupportsEmbeddings() bool
	SupportsGrounding() bool
	EmbedModel() string
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
	Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}

type ProviderFactory func(args interface{}) (Provider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
