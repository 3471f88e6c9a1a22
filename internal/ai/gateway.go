package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// EmbedResult records which provider and model produced the vectors, so the
// caller can embed future queries against the same space.
type EmbedResult struct {
	Vectors  [][]float32
	Provider string
	Model    string
}

// Gateway fans a request over an ordered list of providers and returns the
// first success. Order is the order providers were configured in; a provider
// without credentials is skipped, and any error moves on to the next one.
type Gateway struct {
	providers []Provider
	timeout   time.Duration
}

func NewGateway(providers []Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{providers: providers, timeout: timeout}
}

// Configured reports whether at least one provider has credentials.
func (g *Gateway) Configured() bool {
	for _, p := range g.providers {
		if p.Configured() {
			return true
		}
	}
	return false
}

// SupportsGrounding reports whether some configured provider can attach
// web-search grounding to a chat call.
func (g *Gateway) SupportsGrounding() bool {
	for _, p := range g.providers {
		if p.Configured() && p.SupportsGrounding() {
			return true
		}
	}
	return false
}

// Chat tries each configured provider in order and returns the first answer.
// When the request asks for grounding, providers that cannot ground are
// skipped entirely rather than answering without sources.
func (g *Gateway) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	logger := logutil.GetLogger(ctx)
	var lastErr error
	for _, p := range g.providers {
		if !p.Configured() {
			continue
		}
		if req.Grounding && !p.SupportsGrounding() {
			continue
		}
		res, err := g.chatOne(ctx, p, req)
		if err != nil {
			lastErr = err
			logger.Warn("provider chat failed, trying next",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		return res, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAvailableProvider, lastErr)
	}
	return nil, ErrNoAvailableProvider
}

func (g *Gateway) chatOne(ctx context.Context, p Provider, req *ChatRequest) (*ChatResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	res, err := p.Chat(callCtx, req)
	if err != nil {
		return nil, err
	}
	if res.Provider == "" {
		res.Provider = p.Name()
	}
	return res, nil
}

// Embed tries each configured embedding-capable provider in order.
func (g *Gateway) Embed(ctx context.Context, texts []string, taskType string) (*EmbedResult, error) {
	logger := logutil.GetLogger(ctx)
	var lastErr error
	hasEmbedder := false
	for _, p := range g.providers {
		if !p.Configured() || !p.SupportsEmbeddings() {
			continue
		}
		hasEmbedder = true
		vectors, err := g.embedOne(ctx, p, texts, taskType)
		if err != nil {
			lastErr = err
			logger.Warn("provider embed failed, trying next",
				zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		return &EmbedResult{Vectors: vectors, Provider: p.Name(), Model: p.EmbedModel()}, nil
	}
	if !hasEmbedder {
		return nil, ErrNoEmbeddingCapability
	}
	return nil, fmt.Errorf("%w: %v", ErrNoAvailableProvider, lastErr)
}

// EmbedWith embeds with a named provider, used to keep query vectors in the
// same space as the vectors built at index time. It falls back to the normal
// ordered walk only when that provider is gone or no longer configured; a
// call error from the named provider is returned as-is, because a vector
// from any other provider would live in the wrong space.
func (g *Gateway) EmbedWith(ctx context.Context, provider string, texts []string, taskType string) (*EmbedResult, error) {
	logger := logutil.GetLogger(ctx)
	for _, p := range g.providers {
		if p.Name() != provider {
			continue
		}
		if !p.Configured() || !p.SupportsEmbeddings() {
			break
		}
		vectors, err := g.embedOne(ctx, p, texts, taskType)
		if err != nil {
			return nil, fmt.Errorf("embed with %s: %w", provider, err)
		}
		return &EmbedResult{Vectors: vectors, Provider: p.Name(), Model: p.EmbedModel()}, nil
	}
	logger.Warn("pinned embedding provider unavailable, picking a new space",
		zap.String("provider", provider))
	return g.Embed(ctx, texts, taskType)
}

func (g *Gateway) embedOne(ctx context.Context, p Provider, texts []string, taskType string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return p.Embed(callCtx, texts, taskType)
}
