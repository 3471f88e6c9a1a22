package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerEmptyInput(t *testing.T) {
	c := NewChunker(0, 0)
	assert.Empty(t, c.Chunk(context.Background(), "   \n  "))
}

func TestChunkerShortTextSingleChunk(t *testing.T) {
	c := NewChunker(0, 0)
	chunks := c.Chunk(context.Background(), "a short passage about whales")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short passage about whales", chunks[0])
}

func TestChunkerPlainSlidingWindow(t *testing.T) {
	c := NewChunker(100, 20)
	words := strings.Repeat("lorem ipsum dolor sit amet ", 40)
	chunks := c.Chunk(context.Background(), words)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
		assert.NotEmpty(t, chunk)
	}
}

func TestChunkerPlainOverlapSharesText(t *testing.T) {
	c := NewChunker(100, 20)
	words := strings.Repeat("alpha beta gamma delta ", 30)
	chunks := c.Chunk(context.Background(), words)
	require.Greater(t, len(chunks), 1)
	// the head of each chunk must appear near the tail of the previous one
	for i := 1; i < len(chunks); i++ {
		head := strings.Fields(chunks[i])[0]
		assert.Contains(t, chunks[i-1], head)
	}
}

func TestChunkerMarkdownHeadingContext(t *testing.T) {
	c := NewChunker(200, 20)
	md := "# Chapter One\n\nIshmael goes to sea.\n\n# Chapter Two\n\nThe Pequod sets sail."
	chunks := c.Chunk(context.Background(), md)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "Chapter One")
	assert.Contains(t, chunks[0], "Ishmael goes to sea.")
	assert.Contains(t, chunks[1], "Chapter Two")
	assert.NotContains(t, chunks[1], "Ishmael")
}

func TestChunkerMarkdownLongSectionSplits(t *testing.T) {
	c := NewChunker(120, 20)
	md := "# Voyage\n\n" + strings.Repeat("the sea was calm and endless that day ", 30)
	chunks := c.Chunk(context.Background(), md)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Contains(t, chunk, "Voyage")
	}
}

func TestChunkerNoSpacesDoesNotLoop(t *testing.T) {
	c := NewChunker(50, 10)
	chunks := c.Chunk(context.Background(), strings.Repeat("x", 500))
	require.NotEmpty(t, chunks)
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	assert.GreaterOrEqual(t, total, 500)
}
