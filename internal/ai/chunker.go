package ai

import (
	"context"
	"strings"
	"unicode"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

const (
	DefaultMaxChunkChars = 1200
	DefaultChunkOverlap  = 120
)

// Chunker splits book text into retrieval-sized passages. Markdown sources
// are split on block boundaries with heading context prepended; plain text
// falls back to a sliding window that breaks at whitespace.
type Chunker struct {
	maxChars int
	overlap  int
}

func NewChunker(maxChars int, overlap int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = DefaultChunkOverlap
	}
	return &Chunker{maxChars: maxChars, overlap: overlap}
}

func (c *Chunker) Chunk(ctx context.Context, content string) []string {
	logger := logutil.GetLogger(ctx)
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	var chunks []string
	if looksLikeMarkdown(content) {
		chunks = c.chunkMarkdown(content)
	} else {
		chunks = c.chunkPlain(content)
	}
	logger.Debug("chunked content", zap.Int("size", len(content)), zap.Int("chunks", len(chunks)))
	return chunks
}

func looksLikeMarkdown(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "```") {
			return true
		}
	}
	return false
}

func (c *Chunker) chunkMarkdown(content string) []string {
	md := goldmark.New()
	reader := text.NewReader([]byte(content))
	doc := md.Parser().Parse(reader)

	var chunks []string
	var current []string
	currentLen := 0
	heading := ""

	flush := func() {
		if len(current) == 0 {
			return
		}
		body := strings.Join(current, "\n\n")
		if heading != "" {
			body = heading + "\n" + body
		}
		chunks = append(chunks, body)
		// carry the tail of the chunk forward so adjacent passages share context
		tail := tailChars(current, c.overlap)
		current = tail
		currentLen = joinedLen(tail)
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && h.Level <= 2 {
			flush()
			current = nil
			currentLen = 0
			heading = string(h.Text(reader.Source()))
			continue
		}
		txt := blockText(node, reader.Source())
		if txt == "" {
			continue
		}
		if len(txt) > c.maxChars {
			flush()
			for _, piece := range c.chunkPlain(txt) {
				if heading != "" {
					piece = heading + "\n" + piece
				}
				chunks = append(chunks, piece)
			}
			current = nil
			currentLen = 0
			continue
		}
		if currentLen+len(txt) > c.maxChars {
			flush()
		}
		current = append(current, txt)
		currentLen += len(txt)
	}
	flush()
	return chunks
}

// chunkPlain walks a fixed-size window over the text with overlap between
// consecutive chunks, preferring to break at whitespace near the window edge.
func (c *Chunker) chunkPlain(content string) []string {
	runes := []rune(content)
	if len(runes) <= c.maxChars {
		return []string{strings.TrimSpace(content)}
	}
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.maxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = breakAtSpace(runes, start, end)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= len(runes) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// breakAtSpace searches backwards from end for a whitespace boundary, giving
// up after a quarter of the window to avoid degenerate runs with no spaces.
func breakAtSpace(runes []rune, start, end int) int {
	limit := end - (end-start)/4
	for i := end; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

func tailChars(parts []string, budget int) []string {
	if budget <= 0 {
		return nil
	}
	total := 0
	var tail []string
	for i := len(parts) - 1; i >= 0; i-- {
		if total+len(parts[i]) > budget {
			break
		}
		total += len(parts[i])
		tail = append([]string{parts[i]}, tail...)
	}
	return tail
}

func joinedLen(parts []string) int {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	return total
}

func blockText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
