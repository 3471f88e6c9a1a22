package skill

import (
	"context"
	"fmt"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/citation"
)

// LLMKnowledge is the terminal fallback: answer from whatever the model
// remembers about the book, with no citations and no grounding claim.
type LLMKnowledge struct {
	gateway *ai.Gateway
}

func NewLLMKnowledge(gateway *ai.Gateway) *LLMKnowledge {
	return &LLMKnowledge{gateway: gateway}
}

func (s *LLMKnowledge) Name() string {
	return NameLLMKnowledge
}

func (s *LLMKnowledge) Execute(ctx context.Context, req *Request) Result {
	system := "You are a Socratic study assistant inspired by the Feynman learning method. " +
		fmt.Sprintf("Use your own knowledge about %s to answer. ", bookHint(req.Books)) +
		"Be honest when you are unsure. Do not emit citation markers like [1]. " +
		"Respond in the same language as the user's question."
	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System:  system,
		User:    req.Question,
		History: req.History,
	})
	if err != nil {
		return failed(s.Name(), err)
	}
	return Result{
		Outcome:  OutcomeSuccess,
		Answer:   citation.StripMarkers(chat.Text),
		Skill:    s.Name(),
		Grounded: false,
		Provider: chat.Provider,
		Usage:    chat.Usage,
	}
}
