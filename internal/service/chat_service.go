package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/steveyeow/academi/internal/skill"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// BookRef names a book by title for conversations that have no book id yet.
type BookRef struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// GlobalChatInput is one question aimed at any slice of the library.
type GlobalChatInput struct {
	Message string
	TopK    int
	BookIDs []string
	Books   []BookRef
	History []ai.Message
}

// ChatService answers questions through the skill chain and keeps per-book
// conversation history.
const (
	answerCacheSize = 128
	answerCacheTTL  = 5 * time.Minute
)

type ChatService struct {
	agents       *AgentService
	discovery    *DiscoveryService
	messages     *repo.MessageRepo
	resolver     *skill.Resolver
	topK         int
	historyLimit int
	// answers caches history-free global answers; a cached turn skips the
	// whole skill chain and its model calls
	answers *expirable.LRU[string, *model.Answer]
}

func NewChatService(agents *AgentService, discovery *DiscoveryService, messages *repo.MessageRepo, resolver *skill.Resolver, topK, historyLimit int) *ChatService {
	return &ChatService{
		agents:       agents,
		discovery:    discovery,
		messages:     messages,
		resolver:     resolver,
		topK:         topK,
		historyLimit: historyLimit,
		answers:      expirable.NewLRU[string, *model.Answer](answerCacheSize, nil, answerCacheTTL),
	}
}

// History returns a book's recent conversation, oldest first.
func (s *ChatService) History(ctx context.Context, bookID string, limit int) ([]*model.ChatMessage, error) {
	if _, err := s.agents.Get(ctx, bookID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.messages.ListRecent(ctx, bookID, limit)
}

// ChatWithBook answers one question about a single book. A cold book gets
// its indexing run kicked off in the background while the skill chain
// answers from whatever source is available right now.
func (s *ChatService) ChatWithBook(ctx context.Context, bookID string, message string, topK int) (*model.Answer, error) {
	logger := logutil.GetLogger(ctx)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", errs.ErrInvalid)
	}
	book, err := s.agents.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Status == model.BookStatusCatalog || book.Status == model.BookStatusError {
		s.agents.TriggerIndexing(ctx, book)
	}
	history, err := s.loadHistory(ctx, bookID)
	if err != nil {
		return nil, err
	}
	answer, err := s.resolve(ctx, &skill.Request{
		Question: message,
		Books:    []*model.Book{book},
		History:  history,
		TopK:     s.effectiveTopK(topK),
	})
	if err != nil {
		return nil, err
	}
	s.recordTurn(ctx, bookID, message, answer)
	logger.Info("answered book question",
		zap.String("book_id", bookID),
		zap.String("skill", answer.SkillUsed),
		zap.String("provider", answer.Provider))
	return answer, nil
}

// GlobalChat answers one question across many books. Unknown titles in the
// request are registered as chat-sourced catalog books on the spot, and an
// empty selection searches every ready book in the library.
func (s *ChatService) GlobalChat(ctx context.Context, in *GlobalChatInput) (*model.Answer, error) {
	if in.Message == "" {
		return nil, fmt.Errorf("%w: message is required", errs.ErrInvalid)
	}
	books, err := s.gatherBooks(ctx, in)
	if err != nil {
		return nil, err
	}
	for _, book := range books {
		if book.Status == model.BookStatusCatalog || book.Status == model.BookStatusError {
			s.agents.TriggerIndexing(ctx, book)
		}
	}
	if len(books) == 0 {
		// no selection: the whole ready library is fair game
		ready, err := s.agents.books.ListByStatus(ctx, model.BookStatusReady)
		if err != nil {
			return nil, err
		}
		books = ready
	}
	cacheKey := ""
	if len(in.History) == 0 {
		cacheKey = answerCacheKey(in.Message, books, s.effectiveTopK(in.TopK))
		if cached, ok := s.answers.Get(cacheKey); ok {
			return cached, nil
		}
	}
	answer, err := s.resolve(ctx, &skill.Request{
		Question: in.Message,
		Books:    books,
		History:  in.History,
		TopK:     s.effectiveTopK(in.TopK),
	})
	if err != nil {
		return nil, err
	}
	if cacheKey != "" {
		s.answers.Add(cacheKey, answer)
	}
	return answer, nil
}

func answerCacheKey(question string, books []*model.Book, topK int) string {
	ids := make([]string, 0, len(books))
	for _, book := range books {
		ids = append(ids, book.ID)
	}
	sort.Strings(ids)
	return strings.ToLower(strings.TrimSpace(question)) + "|" + strings.Join(ids, ",") + "|" + strconv.Itoa(topK)
}

func (s *ChatService) resolve(ctx context.Context, req *skill.Request) (*model.Answer, error) {
	res, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	answer := &model.Answer{
		Text:       res.Answer,
		References: res.References,
		SkillUsed:  res.Skill,
		Grounded:   res.Grounded,
		Provider:   res.Provider,
		Usage:      res.Usage,
	}
	if answer.References == nil {
		answer.References = []model.Reference{}
	}
	// answers often recommend further reading; grow the library from them
	bgCtx := context.WithoutCancel(ctx)
	go s.discovery.ProcessMentions(bgCtx, answer.Text)
	return answer, nil
}

func (s *ChatService) gatherBooks(ctx context.Context, in *GlobalChatInput) ([]*model.Book, error) {
	logger := logutil.GetLogger(ctx)
	var books []*model.Book
	seen := make(map[string]struct{})
	for _, id := range in.BookIDs {
		book, err := s.agents.Get(ctx, id)
		if errors.Is(err, errs.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if _, ok := seen[book.ID]; !ok {
			seen[book.ID] = struct{}{}
			books = append(books, book)
		}
	}
	for _, ref := range in.Books {
		if ref.Title == "" {
			continue
		}
		book, err := s.agents.CreateCatalogBook(ctx, ref.Title, ref.Author, "", "", model.BookSourceChat)
		if err != nil {
			logger.Warn("failed to resolve book reference",
				zap.String("title", ref.Title), zap.Error(err))
			continue
		}
		if _, ok := seen[book.ID]; !ok {
			seen[book.ID] = struct{}{}
			books = append(books, book)
		}
	}
	return books, nil
}

func (s *ChatService) loadHistory(ctx context.Context, bookID string) ([]ai.Message, error) {
	msgs, err := s.messages.ListRecent(ctx, bookID, s.historyLimit)
	if err != nil {
		return nil, err
	}
	history := make([]ai.Message, 0, len(msgs))
	for _, msg := range msgs {
		history = append(history, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	return history, nil
}

func (s *ChatService) recordTurn(ctx context.Context, bookID, question string, answer *model.Answer) {
	logger := logutil.GetLogger(ctx)
	if err := s.messages.Add(ctx, &model.ChatMessage{
		BookID:  bookID,
		Role:    model.MessageRoleUser,
		Content: question,
	}); err != nil {
		logger.Warn("failed to store user message", zap.Error(err))
		return
	}
	if err := s.messages.Add(ctx, &model.ChatMessage{
		BookID:    bookID,
		Role:      model.MessageRoleAssistant,
		Content:   answer.Text,
		SkillUsed: answer.SkillUsed,
	}); err != nil {
		logger.Warn("failed to store assistant message", zap.Error(err))
	}
}

func (s *ChatService) effectiveTopK(topK int) int {
	if topK > 0 && topK <= 20 {
		return topK
	}
	return s.topK
}
