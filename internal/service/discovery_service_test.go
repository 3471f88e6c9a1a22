package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `[{"title":"A"}]`, stripCodeFences("```json\n[{\"title\":\"A\"}]\n```"))
	assert.Equal(t, `[{"title":"A"}]`, stripCodeFences("```\n[{\"title\":\"A\"}]\n```"))
	assert.Equal(t, `[{"title":"A"}]`, stripCodeFences(`[{"title":"A"}]`))
}

func TestExtractMentions(t *testing.T) {
	text := `You might enjoy "Thinking, Fast and Slow" by Daniel Kahneman, ` +
		`and also "The Selfish Gene" is a classic.`
	mentions := ExtractMentions(text)
	require.Len(t, mentions, 2)
	assert.Equal(t, "Thinking, Fast and Slow", mentions[0].Title)
	assert.Equal(t, "Daniel Kahneman", mentions[0].Author)
	assert.Equal(t, "The Selfish Gene", mentions[1].Title)
	assert.Empty(t, mentions[1].Author)
}

func TestExtractMentionsDeduplicates(t *testing.T) {
	text := `Read "Deep Work" first. Yes, "Deep Work" again. And "deep work" once more.`
	mentions := ExtractMentions(text)
	assert.Len(t, mentions, 1)
}

func TestExtractMentionsIgnoresShortQuotes(t *testing.T) {
	mentions := ExtractMentions(`He said "ok" and "Hi" to me.`)
	assert.Empty(t, mentions)
}

func TestSeedCatalogShape(t *testing.T) {
	assert.Len(t, seedCatalog, 24)
	seen := map[string]struct{}{}
	for _, book := range seedCatalog {
		require.NotEmpty(t, book.Name)
		require.NotEmpty(t, book.Author)
		require.NotEmpty(t, book.Category)
		_, dup := seen[book.Name]
		require.False(t, dup, "duplicate seed title: %s", book.Name)
		seen[book.Name] = struct{}{}
	}
}
