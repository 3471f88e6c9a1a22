package skill

import (
	"fmt"
	"strings"

	"github.com/steveyeow/academi/internal/model"
)

const snippetLimit = 150

func bookHint(books []*model.Book) string {
	if len(books) == 0 {
		return "books in general"
	}
	if len(books) == 1 {
		book := books[0]
		hint := fmt.Sprintf("the book %q", book.Name)
		if book.Author != "" {
			hint += " by " + book.Author
		}
		return hint
	}
	names := make([]string, 0, len(books))
	for _, book := range books {
		names = append(names, fmt.Sprintf("%q", book.Name))
	}
	return "the books " + strings.Join(names, ", ")
}

// systemPrompt is shared by the passage-backed skills. The numbering rules
// matter: models love to cite every passage as [1].
func systemPrompt(books []*model.Book) string {
	return "You are a Socratic study assistant inspired by the Feynman learning method. " +
		fmt.Sprintf("You are helping the user study %s. ", bookHint(books)) +
		"Answer using the provided context passages. Each passage has a unique number: [1], [2], [3], etc. " +
		"IMPORTANT: passages are DIFFERENT text segments with DIFFERENT numbers. " +
		"Cite the specific passage number you used. Never cite all as [1]. " +
		"If the context is insufficient, supplement with your own knowledge (no citation needed). " +
		"Encourage deeper thinking by occasionally suggesting follow-up questions. " +
		"Respond in the same language as the user's question."
}

func contextPrompt(passages []string, question string) string {
	if len(passages) == 0 {
		return question
	}
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for i, passage := range passages {
		fmt.Fprintf(&sb, "[%d] %s\n\n", i+1, passage)
	}
	sb.WriteString("Question:\n")
	sb.WriteString(question)
	return sb.String()
}

func snippet(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= snippetLimit {
		return string(runes)
	}
	return string(runes[:snippetLimit]) + "..."
}
