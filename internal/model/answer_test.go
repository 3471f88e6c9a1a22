package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	b := TokenUsage{InputTokens: 3, OutputTokens: 2, TotalTokens: 5}

	sum := a.Add(b)
	assert.Equal(t, TokenUsage{InputTokens: 13, OutputTokens: 7, TotalTokens: 20}, sum)
	assert.Equal(t, a, a.Add(TokenUsage{}))
}
