package skill

import (
	"context"
	"fmt"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/citation"
	"github.com/steveyeow/academi/internal/model"
)

// WebSearch asks a grounding-capable provider to answer with live web
// search. It only counts as a success when the provider actually returns
// source URLs; an answer without sources is indistinguishable from plain
// model knowledge and falls through to the next skill.
type WebSearch struct {
	gateway *ai.Gateway
}

func NewWebSearch(gateway *ai.Gateway) *WebSearch {
	return &WebSearch{gateway: gateway}
}

func (s *WebSearch) Name() string {
	return NameWebSearch
}

func (s *WebSearch) Execute(ctx context.Context, req *Request) Result {
	if !s.gateway.SupportsGrounding() {
		return inapplicable(s.Name())
	}
	system := "You are a Socratic study assistant inspired by the Feynman learning method. " +
		fmt.Sprintf("You are helping the user study %s. ", bookHint(req.Books)) +
		"Use web search to find accurate, current information about the book before answering. " +
		"Respond in the same language as the user's question."
	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System:    system,
		User:      req.Question,
		History:   req.History,
		Grounding: true,
	})
	if err != nil {
		return failed(s.Name(), err)
	}
	if len(chat.Sources) == 0 {
		return failed(s.Name(), fmt.Errorf("grounded chat returned no web sources"))
	}
	references := make([]model.Reference, 0, len(chat.Sources))
	for i, src := range chat.Sources {
		references = append(references, model.Reference{
			Index:      i + 1,
			OriginKind: model.ReferenceURL,
			Book:       src.Title,
			URL:        src.URL,
		})
	}
	return Result{
		Outcome:    OutcomeSuccess,
		Answer:     citation.Normalize(chat.Text),
		Skill:      s.Name(),
		Grounded:   true,
		References: references,
		Provider:   chat.Provider,
		Usage:      chat.Usage,
	}
}
