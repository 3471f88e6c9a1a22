package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/steveyeow/academi/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name       string
	configured bool
	embeds     bool
	grounds    bool
	chatErr    error
	embedErr   error
	text       string
	calls      int
}

func (f *fakeProvider) Name() string             { return f.name }
func (f *fakeProvider) Configured() bool         { return f.configured }
func (f *fakeProvider) SupportsEmbeddings() bool { return f.embeds }
func (f *fakeProvider) SupportsGrounding() bool  { return f.grounds }
func (f *fakeProvider) EmbedModel() string       { return f.name + "-embed" }

func (f *fakeProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	f.calls++
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	return &ChatResult{Text: f.text, Provider: f.name, Usage: model.TokenUsage{TotalTokens: 10}}, nil
}

func (f *fakeProvider) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	f.calls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func TestGatewayChatFallbackOrder(t *testing.T) {
	ctx := context.Background()
	broken := &fakeProvider{name: "first", configured: true, chatErr: errors.New("quota exceeded")}
	healthy := &fakeProvider{name: "second", configured: true, text: "hello"}
	last := &fakeProvider{name: "third", configured: true, text: "never"}
	gw := NewGateway([]Provider{broken, healthy, last}, 0)

	res, err := gw.Chat(ctx, &ChatRequest{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "second", res.Provider)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, healthy.calls)
	assert.Equal(t, 0, last.calls, "later providers must not be touched after a success")
}

func TestGatewayChatSkipsUnconfigured(t *testing.T) {
	ctx := context.Background()
	missing := &fakeProvider{name: "first", configured: false}
	healthy := &fakeProvider{name: "second", configured: true, text: "ok"}
	gw := NewGateway([]Provider{missing, healthy}, 0)

	res, err := gw.Chat(ctx, &ChatRequest{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "second", res.Provider)
	assert.Equal(t, 0, missing.calls)
}

func TestGatewayChatAllExhausted(t *testing.T) {
	ctx := context.Background()
	a := &fakeProvider{name: "a", configured: true, chatErr: errors.New("down")}
	b := &fakeProvider{name: "b", configured: true, chatErr: errors.New("also down")}
	gw := NewGateway([]Provider{a, b}, 0)

	_, err := gw.Chat(ctx, &ChatRequest{User: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAvailableProvider)
}

func TestGatewayChatGroundingSkipsIncapable(t *testing.T) {
	ctx := context.Background()
	plain := &fakeProvider{name: "plain", configured: true, text: "ungrounded"}
	grounded := &fakeProvider{name: "search", configured: true, grounds: true, text: "grounded"}
	gw := NewGateway([]Provider{plain, grounded}, 0)

	res, err := gw.Chat(ctx, &ChatRequest{User: "hi", Grounding: true})
	require.NoError(t, err)
	assert.Equal(t, "search", res.Provider)
	assert.Equal(t, 0, plain.calls)
}

func TestGatewayEmbedNoCapability(t *testing.T) {
	ctx := context.Background()
	chatOnly := &fakeProvider{name: "chat", configured: true}
	gw := NewGateway([]Provider{chatOnly}, 0)

	_, err := gw.Embed(ctx, []string{"text"}, TaskRetrievalDocument)
	assert.ErrorIs(t, err, ErrNoEmbeddingCapability)
}

func TestGatewayEmbedWithPinnedProviderErrorDoesNotSwitchSpace(t *testing.T) {
	ctx := context.Background()
	pinned := &fakeProvider{name: "gemini", configured: true, embeds: true, embedErr: errors.New("quota exceeded")}
	other := &fakeProvider{name: "openai", configured: true, embeds: true}
	gw := NewGateway([]Provider{pinned, other}, 0)

	_, err := gw.EmbedWith(ctx, "gemini", []string{"q"}, TaskRetrievalQuery)
	require.Error(t, err)
	assert.Equal(t, 0, other.calls, "a vector from another provider lives in the wrong space")
}

func TestGatewayEmbedWithFallsBackWhenProviderGone(t *testing.T) {
	ctx := context.Background()
	unconfigured := &fakeProvider{name: "gemini", configured: false, embeds: true}
	other := &fakeProvider{name: "openai", configured: true, embeds: true}
	gw := NewGateway([]Provider{unconfigured, other}, 0)

	res, err := gw.EmbedWith(ctx, "gemini", []string{"q"}, TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)

	res, err = gw.EmbedWith(ctx, "unknown", []string{"q"}, TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)
}

func TestGatewayEmbedRecordsProvider(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeProvider{name: "gemini", configured: true, embeds: true}
	gw := NewGateway([]Provider{embedder}, 0)

	res, err := gw.Embed(ctx, []string{"a", "b"}, TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Len(t, res.Vectors, 2)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "gemini-embed", res.Model)
}

func TestGatewayEmbedWithPrefersNamedProvider(t *testing.T) {
	ctx := context.Background()
	first := &fakeProvider{name: "openai", configured: true, embeds: true}
	second := &fakeProvider{name: "gemini", configured: true, embeds: true}
	gw := NewGateway([]Provider{first, second}, 0)

	res, err := gw.EmbedWith(ctx, "gemini", []string{"a"}, TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, 0, first.calls)
}

func TestGatewaySupportsGrounding(t *testing.T) {
	plain := &fakeProvider{name: "plain", configured: true}
	assert.False(t, NewGateway([]Provider{plain}, 0).SupportsGrounding())

	grounded := &fakeProvider{name: "search", configured: true, grounds: true}
	assert.True(t, NewGateway([]Provider{plain, grounded}, 0).SupportsGrounding())

	off := &fakeProvider{name: "search", configured: false, grounds: true}
	assert.False(t, NewGateway([]Provider{off}, 0).SupportsGrounding())
}

func TestNewProviderUnknownName(t *testing.T) {
	_, err := NewProvider("no-such-vendor", map[string]interface{}{})
	require.Error(t, err)
}

func TestNewProviderFactories(t *testing.T) {
	for _, name := range []string{"gemini", "openai", "kimi", "deepseek", "anthropic"} {
		p, err := NewProvider(name, map[string]interface{}{"api_key": "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
		assert.True(t, p.Configured())
	}
}
