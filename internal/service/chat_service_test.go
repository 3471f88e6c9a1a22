package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steveyeow/academi/internal/model"
)

func TestAnswerCacheKeyStableUnderBookOrder(t *testing.T) {
	a := &model.Book{ID: "book-a"}
	b := &model.Book{ID: "book-b"}
	require.Equal(t,
		answerCacheKey("What is gravity?", []*model.Book{a, b}, 5),
		answerCacheKey("What is gravity?", []*model.Book{b, a}, 5),
	)
}

func TestAnswerCacheKeyNormalizesQuestion(t *testing.T) {
	a := &model.Book{ID: "book-a"}
	require.Equal(t,
		answerCacheKey("  What is gravity?  ", []*model.Book{a}, 5),
		answerCacheKey("what is gravity?", []*model.Book{a}, 5),
	)
	require.NotEqual(t,
		answerCacheKey("what is gravity?", []*model.Book{a}, 5),
		answerCacheKey("what is gravity?", []*model.Book{a}, 3),
	)
}
