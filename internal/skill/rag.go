package skill

import (
	"context"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/citation"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/vector"
)

// RAG answers from the indexed passages of ready books. It only applies
// when at least one target book has a chunk set to search.
type RAG struct {
	store         *vector.Store
	gateway       *ai.Gateway
	minSimilarity float64
}

func NewRAG(store *vector.Store, gateway *ai.Gateway, minSimilarity float64) *RAG {
	return &RAG{store: store, gateway: gateway, minSimilarity: minSimilarity}
}

func (s *RAG) Name() string {
	return NameRAG
}

func (s *RAG) Execute(ctx context.Context, req *Request) Result {
	ready := make([]*model.Book, 0, len(req.Books))
	byID := make(map[string]*model.Book, len(req.Books))
	for _, book := range req.Books {
		if book.Status == model.BookStatusReady {
			ready = append(ready, book)
			byID[book.ID] = book
		}
	}
	if len(ready) == 0 {
		return inapplicable(s.Name())
	}
	hits, err := s.store.Query(ctx, req.Question, ready, req.TopK, s.minSimilarity)
	if err != nil {
		return failed(s.Name(), err)
	}
	if len(hits) == 0 {
		return inapplicable(s.Name())
	}

	passages := make([]string, 0, len(hits))
	candidates := make([]model.Reference, 0, len(hits))
	for _, hit := range hits {
		passages = append(passages, hit.Chunk.Text)
		bookName := ""
		if book := byID[hit.Chunk.BookID]; book != nil {
			bookName = book.Name
		}
		candidates = append(candidates, model.Reference{
			OriginKind: model.ReferencePassage,
			Book:       bookName,
			Snippet:    snippet(hit.Chunk.Text),
		})
	}

	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System:  systemPrompt(ready),
		User:    contextPrompt(passages, req.Question),
		History: req.History,
	})
	if err != nil {
		return failed(s.Name(), err)
	}
	answer, cited := citation.Assemble(chat.Text, candidates)
	return Result{
		Outcome:    OutcomeSuccess,
		Answer:     answer,
		Skill:      s.Name(),
		Grounded:   true,
		References: cited,
		Provider:   chat.Provider,
		Usage:      chat.Usage,
	}
}
