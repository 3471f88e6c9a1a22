package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// at most this many books get auto-created from one answer's mentions
const maxMentionBooks = 3

var (
	codeFenceOpenRe  = regexp.MustCompile("^```\\w*\\n?")
	codeFenceCloseRe = regexp.MustCompile("\\n?```$")

	// quoted Title, optionally followed by `by Author`, in plain or CJK quotes
	bookMentionRe = regexp.MustCompile(
		`["\x{201c}\x{300a}]([A-Z][\w\s:,'-]{3,60})["\x{201d}\x{300b}]` +
			`(?:\s+by\s+([A-Z][A-Za-z.\s]{1,40}?)(?:[,;.\n\r!?]|\s+(?:for|and|or|is|was|to|in|on|at|the)\b|$))?`)
)

// DiscoveredBook is one library addition reported back to the caller.
type DiscoveredBook struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author"`
	Created bool   `json:"created"`
}

// DiscoveryService grows the library: topic discovery runs, single-book
// search, vote promotion, and book mentions extracted from chat answers.
type DiscoveryService struct {
	agents        *AgentService
	votes         *repo.VoteRepo
	gateway       *ai.Gateway
	voteThreshold int
	batchSize     int
	topicCount    int
}

func NewDiscoveryService(agents *AgentService, votes *repo.VoteRepo, gateway *ai.Gateway, voteThreshold, batchSize, topicCount int) *DiscoveryService {
	return &DiscoveryService{
		agents:        agents,
		votes:         votes,
		gateway:       gateway,
		voteThreshold: voteThreshold,
		batchSize:     batchSize,
		topicCount:    topicCount,
	}
}

func (s *DiscoveryService) Topics() []string {
	return DiscoveryTopics
}

type llmBook struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = codeFenceOpenRe.ReplaceAllString(text, "")
		text = codeFenceCloseRe.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// DiscoverForTopic asks the model for must-read books on a topic, registers
// them as catalog books, and starts indexing each new one.
func (s *DiscoveryService) DiscoverForTopic(ctx context.Context, topic string, count int) ([]DiscoveredBook, model.TokenUsage, error) {
	logger := logutil.GetLogger(ctx)
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, model.TokenUsage{}, fmt.Errorf("%w: topic is required", errs.ErrInvalid)
	}
	if count <= 0 || count > 10 {
		count = s.topicCount
	}
	prompt := fmt.Sprintf(
		"Recommend exactly %d must-read books on the topic %q. "+
			"Return a JSON array of objects with keys: title, author, description (one sentence). "+
			"Only output the JSON array, no other text.", count, topic)
	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System: "You are a book recommendation expert.",
		User:   prompt,
	})
	if err != nil {
		return nil, model.TokenUsage{}, err
	}
	var entries []llmBook
	if err := json.Unmarshal([]byte(stripCodeFences(chat.Text)), &entries); err != nil {
		return nil, chat.Usage, fmt.Errorf("parse discovery response: %w", err)
	}
	if len(entries) > count {
		entries = entries[:count]
	}
	var results []DiscoveredBook
	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		existing, findErr := s.agents.FindByName(ctx, title)
		known := findErr == nil && existing != nil
		book, err := s.agents.CreateCatalogBook(ctx, title, entry.Author, topic, entry.Description, model.BookSourceCuration)
		if err != nil {
			logger.Warn("failed to register discovered book",
				zap.String("title", title), zap.Error(err))
			continue
		}
		if known && existing.Description == "" && strings.TrimSpace(entry.Description) != "" {
			if err := s.agents.books.UpdateDescription(ctx, existing.ID, strings.TrimSpace(entry.Description)); err != nil {
				logger.Warn("failed to backfill book description",
					zap.String("book_id", existing.ID), zap.Error(err))
			}
		}
		results = append(results, DiscoveredBook{
			ID:      book.ID,
			Title:   book.Name,
			Author:  book.Author,
			Created: !known,
		})
		s.agents.TriggerIndexing(ctx, book)
		logger.Info("discovered book",
			zap.String("title", title), zap.String("topic", topic))
	}
	return results, chat.Usage, nil
}

// SearchBook identifies the book behind a free-form query and adds it to the
// library. An exact title match short-circuits the model call.
func (s *DiscoveryService) SearchBook(ctx context.Context, query string) ([]DiscoveredBook, model.TokenUsage, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, model.TokenUsage{}, fmt.Errorf("%w: query is too short", errs.ErrInvalid)
	}
	if existing, err := s.agents.FindByName(ctx, query); err == nil {
		return []DiscoveredBook{{
			ID:     existing.ID,
			Title:  existing.Name,
			Author: existing.Author,
		}}, model.TokenUsage{}, nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, model.TokenUsage{}, err
	}
	prompt := fmt.Sprintf(
		"The user is searching for a book: %q. "+
			"Identify the most likely book they mean. Return a JSON array with exactly 1 object "+
			"containing keys: title (full correct title), author, category (broad academic topic), "+
			"description (one sentence). Only output the JSON array, no other text.", query)
	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System: "You are a book identification expert.",
		User:   prompt,
	})
	if err != nil {
		return nil, model.TokenUsage{}, err
	}
	var entries []llmBook
	if err := json.Unmarshal([]byte(stripCodeFences(chat.Text)), &entries); err != nil {
		return nil, chat.Usage, fmt.Errorf("parse search response: %w", err)
	}
	var results []DiscoveredBook
	for _, entry := range entries[:min(1, len(entries))] {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}
		book, err := s.agents.CreateCatalogBook(ctx, title, entry.Author, entry.Category, entry.Description, model.BookSourceCuration)
		if err != nil {
			return nil, chat.Usage, err
		}
		results = append(results, DiscoveredBook{
			ID:      book.ID,
			Title:   book.Name,
			Author:  book.Author,
			Created: true,
		})
		s.agents.TriggerIndexing(ctx, book)
	}
	return results, chat.Usage, nil
}

// Mention is one book title spotted inside an answer.
type Mention struct {
	Title  string
	Author string
}

// ExtractMentions parses quoted book titles (with optional authors) out of
// an answer, deduplicated case-insensitively in order of appearance.
func ExtractMentions(text string) []Mention {
	matches := bookMentionRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{})
	var books []Mention
	for _, match := range matches {
		title := strings.TrimSpace(match[1])
		key := strings.ToLower(title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		books = append(books, Mention{Title: title, Author: strings.TrimSpace(match[2])})
	}
	return books
}

// ProcessMentions registers books the model recommended inside an answer.
// Only unknown titles are created, and never more than a handful per answer.
func (s *DiscoveryService) ProcessMentions(ctx context.Context, answerText string) {
	logger := logutil.GetLogger(ctx)
	mentions := ExtractMentions(answerText)
	if len(mentions) > maxMentionBooks {
		mentions = mentions[:maxMentionBooks]
	}
	for _, mention := range mentions {
		if _, err := s.agents.FindByName(ctx, mention.Title); err == nil {
			continue
		} else if !errors.Is(err, errs.ErrNotFound) {
			logger.Warn("mention lookup failed", zap.String("title", mention.Title), zap.Error(err))
			continue
		}
		if _, err := s.agents.CreateCatalogBook(ctx, mention.Title, mention.Author, "", "", model.BookSourceChat); err != nil {
			logger.Warn("failed to create book from mention",
				zap.String("title", mention.Title), zap.Error(err))
			continue
		}
		logger.Info("auto-created book from chat mention", zap.String("title", mention.Title))
	}
}

// RunScheduledDiscovery fills out underrepresented categories, smallest
// first, creating at most batchSize books per run.
func (s *DiscoveryService) RunScheduledDiscovery(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	counts, err := s.agents.books.CategoryCounts(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		return nil
	}
	type catCount struct {
		category string
		count    int
	}
	cats := make([]catCount, 0, len(counts))
	for category, count := range counts {
		cats = append(cats, catCount{category, count})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].count != cats[j].count {
			return cats[i].count < cats[j].count
		}
		return cats[i].category < cats[j].category
	})
	created := 0
	var usage model.TokenUsage
	for _, cat := range cats {
		if created >= s.batchSize {
			break
		}
		books, u, err := s.DiscoverForTopic(ctx, cat.category, s.batchSize-created)
		usage = usage.Add(u)
		if err != nil {
			logger.Warn("scheduled discovery for category failed",
				zap.String("category", cat.category), zap.Error(err))
			continue
		}
		created += len(books)
	}
	if created > 0 {
		logger.Info("scheduled discovery added books",
			zap.Int("created", created),
			zap.Int64("tokens", usage.TotalTokens))
	}
	return nil
}

// Votes lists the current wishlist, most wanted first.
func (s *DiscoveryService) Votes(ctx context.Context) ([]*model.Vote, error) {
	return s.votes.List(ctx)
}

// CreateVote registers (or bumps) a wishlist vote for a title and promotes
// it into the catalog once it crosses the threshold.
func (s *DiscoveryService) CreateVote(ctx context.Context, title string) (*model.Vote, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalid)
	}
	vote, err := s.votes.Upsert(ctx, title)
	if err != nil {
		return nil, err
	}
	s.maybePromote(ctx, vote)
	return vote, nil
}

// Upvote bumps an existing wishlist entry by id.
func (s *DiscoveryService) Upvote(ctx context.Context, voteID string) (*model.Vote, error) {
	vote, err := s.votes.Increment(ctx, voteID)
	if err != nil {
		return nil, err
	}
	s.maybePromote(ctx, vote)
	return vote, nil
}

func (s *DiscoveryService) maybePromote(ctx context.Context, vote *model.Vote) {
	logger := logutil.GetLogger(ctx)
	if vote.Count < s.voteThreshold {
		return
	}
	book, err := s.agents.CreateCatalogBook(ctx, vote.Title, "", "", "", model.BookSourceVote)
	if err != nil {
		logger.Warn("vote promotion failed",
			zap.String("title", vote.Title), zap.Error(err))
		return
	}
	s.agents.TriggerIndexing(ctx, book)
	logger.Info("vote threshold reached, book promoted",
		zap.String("title", vote.Title), zap.Int("count", vote.Count))
}

// PromotePendingVotes sweeps the wishlist for entries at or past the
// threshold whose books never got created (for example because a promotion
// attempt raced a crash), used by the scheduled job.
func (s *DiscoveryService) PromotePendingVotes(ctx context.Context) error {
	votes, err := s.votes.ListAtOrAbove(ctx, s.voteThreshold)
	if err != nil {
		return err
	}
	for _, vote := range votes {
		s.maybePromote(ctx, vote)
	}
	return nil
}
