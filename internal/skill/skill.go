package skill

import (
	"context"
	"errors"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/model"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Skill names, in chain order.
const (
	NameRAG          = "rag"
	NameContentFetch = "content_fetch"
	NameWebSearch    = "web_search"
	NameLLMKnowledge = "llm_knowledge"
)

// ErrAllSkillsExhausted means every skill in the chain either did not apply
// or failed, including the knowledge fallback.
var ErrAllSkillsExhausted = errors.New("all answering skills exhausted")

type Outcome int

const (
	// OutcomeInapplicable means the skill had nothing to work with and the
	// chain should move on silently.
	OutcomeInapplicable Outcome = iota
	// OutcomeFailed means the skill tried and hit an error.
	OutcomeFailed
	// OutcomeSuccess means the skill produced an answer.
	OutcomeSuccess
)

// Request is one question heading into the skill chain. Books carries the
// conversation's target books; per-book chat passes exactly one.
type Request struct {
	Question string
	Books    []*model.Book
	History  []ai.Message
	TopK     int
}

// Result is a single skill's verdict on a request.
type Result struct {
	Outcome    Outcome
	Answer     string
	Skill      string
	Grounded   bool
	References []model.Reference
	Provider   string
	Usage      model.TokenUsage
	Err        error
}

func inapplicable(name string) Result {
	return Result{Outcome: OutcomeInapplicable, Skill: name}
}

func failed(name string, err error) Result {
	return Result{Outcome: OutcomeFailed, Skill: name, Err: err}
}

// Skill is one strategy for answering a question about a book.
type Skill interface {
	Name() string
	Execute(ctx context.Context, req *Request) Result
}

// Resolver walks an ordered skill chain and returns the first success.
type Resolver struct {
	chain []Skill
}

func NewResolver(chain ...Skill) *Resolver {
	return &Resolver{chain: chain}
}

// Resolve runs the chain in order. An inapplicable skill is skipped, a
// failed one is logged and skipped, and the first success wins. When the
// whole chain is spent the caller gets ErrAllSkillsExhausted carrying the
// last real failure.
func (r *Resolver) Resolve(ctx context.Context, req *Request) (*Result, error) {
	logger := logutil.GetLogger(ctx)
	var lastErr error
	for _, s := range r.chain {
		res := s.Execute(ctx, req)
		switch res.Outcome {
		case OutcomeSuccess:
			logger.Info("skill resolved question",
				zap.String("skill", s.Name()),
				zap.String("provider", res.Provider))
			return &res, nil
		case OutcomeFailed:
			lastErr = res.Err
			logger.Warn("skill failed, moving down the chain",
				zap.String("skill", s.Name()), zap.Error(res.Err))
		}
	}
	if lastErr != nil {
		return nil, errors.Join(ErrAllSkillsExhausted, lastErr)
	}
	return nil, ErrAllSkillsExhausted
}
