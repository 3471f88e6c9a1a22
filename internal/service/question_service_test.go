package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestParseQuestionLines(t *testing.T) {
	text := "1. What is entropy?\n2) Why does it matter?\n- How would you explain it?\n\n"
	questions := parseQuestionLines(text, 5)
	assert.Equal(t, []string{
		"What is entropy?",
		"Why does it matter?",
		"How would you explain it?",
	}, questions)
}

func TestParseQuestionLinesLimit(t *testing.T) {
	text := "1. a?\n2. b?\n3. c?\n4. d?\n5. e?\n6. f?"
	assert.Len(t, parseQuestionLines(text, 5), 5)
}

func TestParseQuestionLinesEmpty(t *testing.T) {
	assert.Empty(t, parseQuestionLines("   \n\n  ", 5))
}

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	cjk := strings.Repeat("熵是什么？", 3)
	got := truncateRunes(cjk, 7)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 7, len([]rune(got)))
	assert.Equal(t, "熵是什么？熵是", got)
}

func TestTruncateRunesShortInputUntouched(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 100))
}
