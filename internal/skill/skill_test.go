package skill

import (
	"context"
	"errors"
	"testing"

	"github.com/steveyeow/academi/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSkill struct {
	name   string
	result Result
	calls  int
}

func (s *stubSkill) Name() string { return s.name }

func (s *stubSkill) Execute(ctx context.Context, req *Request) Result {
	s.calls++
	res := s.result
	res.Skill = s.name
	return res
}

func TestResolverFirstSuccessWins(t *testing.T) {
	skipped := &stubSkill{name: "a", result: Result{Outcome: OutcomeInapplicable}}
	winner := &stubSkill{name: "b", result: Result{Outcome: OutcomeSuccess, Answer: "answer"}}
	untouched := &stubSkill{name: "c", result: Result{Outcome: OutcomeSuccess, Answer: "other"}}
	r := NewResolver(skipped, winner, untouched)

	res, err := r.Resolve(context.Background(), &Request{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Skill)
	assert.Equal(t, "answer", res.Answer)
	assert.Equal(t, 0, untouched.calls, "chain must stop at the first success")
}

func TestResolverFailureFallsThrough(t *testing.T) {
	broken := &stubSkill{name: "a", result: Result{Outcome: OutcomeFailed, Err: errors.New("boom")}}
	winner := &stubSkill{name: "b", result: Result{Outcome: OutcomeSuccess, Answer: "answer"}}
	r := NewResolver(broken, winner)

	res, err := r.Resolve(context.Background(), &Request{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Skill)
}

func TestResolverAllExhausted(t *testing.T) {
	a := &stubSkill{name: "a", result: Result{Outcome: OutcomeInapplicable}}
	b := &stubSkill{name: "b", result: Result{Outcome: OutcomeFailed, Err: errors.New("boom")}}
	r := NewResolver(a, b)

	_, err := r.Resolve(context.Background(), &Request{Question: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllSkillsExhausted)
	assert.ErrorContains(t, err, "boom")
}

func TestBookHint(t *testing.T) {
	assert.Equal(t, "books in general", bookHint(nil))
	assert.Equal(t, `the book "Moby Dick" by Herman Melville`, bookHint([]*model.Book{
		{Name: "Moby Dick", Author: "Herman Melville"},
	}))
	assert.Equal(t, `the books "A", "B"`, bookHint([]*model.Book{{Name: "A"}, {Name: "B"}}))
}

func TestContextPrompt(t *testing.T) {
	assert.Equal(t, "just the question", contextPrompt(nil, "just the question"))

	prompt := contextPrompt([]string{"first passage", "second passage"}, "why?")
	assert.Contains(t, prompt, "[1] first passage")
	assert.Contains(t, prompt, "[2] second passage")
	assert.Contains(t, prompt, "Question:\nwhy?")
}

func TestSnippetTruncation(t *testing.T) {
	short := "tiny"
	assert.Equal(t, short, snippet(short))

	long := make([]rune, 0, 400)
	for i := 0; i < 400; i++ {
		long = append(long, 'x')
	}
	got := snippet(string(long))
	assert.Len(t, []rune(got), snippetLimit+3)
	assert.True(t, len(got) < 400)
}
