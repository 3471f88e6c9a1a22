package skill

import (
	"context"
	"fmt"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/citation"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/sources"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// at most this many books get a live synopsis lookup per question
const maxFetchBooks = 3

// ContentFetch answers from live public book metadata when no indexed
// passages exist yet. Each fetched synopsis becomes one citable passage.
type ContentFetch struct {
	fetcher *sources.Fetcher
	gateway *ai.Gateway
}

func NewContentFetch(fetcher *sources.Fetcher, gateway *ai.Gateway) *ContentFetch {
	return &ContentFetch{fetcher: fetcher, gateway: gateway}
}

func (s *ContentFetch) Name() string {
	return NameContentFetch
}

func (s *ContentFetch) Execute(ctx context.Context, req *Request) Result {
	logger := logutil.GetLogger(ctx)
	if len(req.Books) == 0 {
		return inapplicable(s.Name())
	}
	books := req.Books
	if len(books) > maxFetchBooks {
		books = books[:maxFetchBooks]
	}
	var passages []string
	var candidates []model.Reference
	var fetched []*model.Book
	for _, book := range books {
		content, err := s.fetcher.FetchBookContent(ctx, book.Name, book.Author)
		if err != nil {
			logger.Debug("no public content for book",
				zap.String("book", book.Name), zap.Error(err))
			continue
		}
		passages = append(passages, fmt.Sprintf("Book information for %q:\n%s", book.Name, content))
		candidates = append(candidates, model.Reference{
			OriginKind: model.ReferencePassage,
			Book:       book.Name,
			Snippet:    snippet(content),
		})
		fetched = append(fetched, book)
	}
	if len(passages) == 0 {
		return inapplicable(s.Name())
	}

	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System:  systemPrompt(fetched),
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
