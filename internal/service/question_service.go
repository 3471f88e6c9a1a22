package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	questionCount      = 5
	questionSampleSize = 3000
)

// fallbackQuestions cover any book when no provider is reachable.
var fallbackQuestions = []string{
	"What is the central thesis of this text?",
	"What evidence does the author provide?",
	"How would you explain the key concepts in your own words?",
	"What are the practical implications?",
	"What questions remain unanswered?",
}

// QuestionService generates and serves study questions for indexed books.
type QuestionService struct {
	questions *repo.QuestionRepo
	gateway   *ai.Gateway
}

func NewQuestionService(questions *repo.QuestionRepo, gateway *ai.Gateway) *QuestionService {
	return &QuestionService{questions: questions, gateway: gateway}
}

func (s *QuestionService) List(ctx context.Context, bookID string) ([]*model.Question, error) {
	return s.questions.ListByBook(ctx, bookID)
}

// Generate builds study questions from a sample of the book text and stores
// them. Existing questions are kept; a provider outage falls back to a
// generic set rather than leaving the book without questions.
func (s *QuestionService) Generate(ctx context.Context, bookID string, textSample string) ([]string, error) {
	logger := logutil.GetLogger(ctx)
	existing, err := s.questions.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		out := make([]string, 0, len(existing))
		for _, q := range existing {
			out = append(out, q.Text)
		}
		return out, nil
	}

	sample := truncateRunes(textSample, questionSampleSize)
	prompt := fmt.Sprintf(
		"Based on the following text excerpt, generate exactly %d thought-provoking study questions "+
			"that would help a student deeply understand the material using the Feynman technique. "+
			"Questions should encourage critical thinking and connecting ideas. "+
			"Return ONLY the questions, one per line, numbered 1-%d. No extra text.\n\nText:\n%s",
		questionCount, questionCount, sample)

	questions := fallbackQuestions
	chat, err := s.gateway.Chat(ctx, &ai.ChatRequest{
		System: "You are a Socratic tutor. Generate insightful study questions.",
		User:   prompt,
	})
	if err != nil {
		logger.Warn("question generation fell back to the generic set",
			zap.String("book_id", bookID), zap.Error(err))
	} else if parsed := parseQuestionLines(chat.Text, questionCount); len(parsed) > 0 {
		questions = parsed
	}

	if err := s.questions.AddBatch(ctx, bookID, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// truncateRunes cuts at a rune boundary so multi-byte sources stay valid UTF-8.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// parseQuestionLines strips numbering prefixes like "1. " or "2) " and
// keeps at most count non-empty lines.
func parseQuestionLines(text string, count int) []string {
	var questions []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		cleaned := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "0123456789.)- "))
		if cleaned == "" {
			continue
		}
		questions = append(questions, cleaned)
		if len(questions) == count {
			break
		}
	}
	return questions
}
