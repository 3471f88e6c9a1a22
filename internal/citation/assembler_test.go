package citation

import (
	"testing"

	"github.com/steveyeow/academi/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(n int) []model.Reference {
	out := make([]model.Reference, n)
	for i := range out {
		out[i] = model.Reference{
			OriginKind: model.ReferencePassage,
			Book:       "Moby Dick",
			Snippet:    "snippet",
		}
	}
	return out
}

func TestNormalizeVerboseMarkers(t *testing.T) {
	assert.Equal(t, "whales [1, 2] hunt", Normalize("whales [Context 1, 2] hunt"))
	assert.Equal(t, "see [3]", Normalize("see [Passage 3]"))
	assert.Equal(t, "see [1]", Normalize("see [Source 1]"))
	assert.Equal(t, "clean [1, 2] stays", Normalize("clean [1, 2] stays"))
}

func TestAssembleRenumbersByFirstAppearance(t *testing.T) {
	text, cited := Assemble("ending [3] but opening [1] and again [3]", refs(3))
	assert.Equal(t, "ending [1] but opening [2] and again [1]", text)
	require.Len(t, cited, 2)
	assert.Equal(t, 1, cited[0].Index)
	assert.Equal(t, 2, cited[1].Index)
}

func TestAssembleMultiNumberMarker(t *testing.T) {
	text, cited := Assemble("claim [2, 1]", refs(2))
	assert.Equal(t, "claim [1, 2]", text)
	assert.Len(t, cited, 2)
}

func TestAssembleDropsNothingOutOfRange(t *testing.T) {
	text, cited := Assemble("claim [1] wild [7]", refs(1))
	assert.Equal(t, "claim [1] wild [7]", text)
	assert.Len(t, cited, 1)
}

func TestAssembleNoMarkers(t *testing.T) {
	text, cited := Assemble("no citations here", refs(5))
	assert.Equal(t, "no citations here", text)
	assert.Empty(t, cited)
}

func TestAssembleVerboseInput(t *testing.T) {
	text, cited := Assemble("whales [Context 2] hunt", refs(2))
	assert.Equal(t, "whales [1] hunt", text)
	require.Len(t, cited, 1)
	assert.Equal(t, 1, cited[0].Index)
}

func TestAssembleIdempotent(t *testing.T) {
	first, cited := Assemble("a [3] b [1] c [2]", refs(3))
	second, cited2 := Assemble(first, cited)
	assert.Equal(t, first, second)
	assert.Equal(t, cited, cited2)
}

func TestStripMarkers(t *testing.T) {
	assert.Equal(t, "whales hunt in pods.", StripMarkers("whales hunt [1] in pods [2, 3]."))
	assert.Equal(t, "plain text", StripMarkers("plain text"))
}
