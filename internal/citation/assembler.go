package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/steveyeow/academi/internal/model"
)

var (
	// models sometimes emit verbose markers like [Context 1, 2] or [Passage 3]
	verboseMarkerRe = regexp.MustCompile(`\[(?:Google [\w\s]+?|Context|Source|Sources|Ref|Reference|Passage)\s*((?:\d+(?:\s*,\s*)?)+)\]`)
	markerRe        = regexp.MustCompile(`\[(\d+(?:\s*,\s*\d+)*)\]`)
)

// Normalize rewrites verbose citation markers to the bare [1, 2] form.
// Already-clean markers pass through untouched.
func Normalize(text string) string {
	return verboseMarkerRe.ReplaceAllStringFunc(text, func(marker string) string {
		nums := verboseMarkerRe.FindStringSubmatch(marker)[1]
		return "[" + strings.TrimSpace(nums) + "]"
	})
}

// Assemble binds the citation markers in an answer to the candidate
// references that produced its prompt. Cited references are renumbered by
// first appearance in the text, markers are rewritten to the new numbers,
// and only cited references are returned, in marker order. Numbers with no
// matching candidate are left as-is so the reader can still see them.
// Running Assemble on its own output is a no-op.
func Assemble(text string, candidates []model.Reference) (string, []model.Reference) {
	text = Normalize(text)
	renumber := make(map[int]int)
	var cited []model.Reference

	out := markerRe.ReplaceAllStringFunc(text, func(marker string) string {
		body := markerRe.FindStringSubmatch(marker)[1]
		parts := strings.Split(body, ",")
		rewritten := make([]string, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			if n < 1 || n > len(candidates) {
				rewritten = append(rewritten, strconv.Itoa(n))
				continue
			}
			mapped, ok := renumber[n]
			if !ok {
				mapped = len(cited) + 1
				renumber[n] = mapped
				ref := candidates[n-1]
				ref.Index = mapped
				cited = append(cited, ref)
			}
			rewritten = append(rewritten, strconv.Itoa(mapped))
		}
		if len(rewritten) == 0 {
			return marker
		}
		return "[" + strings.Join(rewritten, ", ") + "]"
	})
	return out, cited
}

// StripMarkers removes citation markers entirely, for answers with nothing
// to cite. Trailing space before a marker is collapsed.
func StripMarkers(text string) string {
	stripped := markerRe.ReplaceAllString(text, "")
	stripped = regexp.MustCompile(`[ \t]+([.,;:!?\n])`).ReplaceAllString(stripped, "$1")
	stripped = regexp.MustCompile(`[ \t]{2,}`).ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}
