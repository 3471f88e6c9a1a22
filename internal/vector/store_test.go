package vector

import (
	"testing"

	"github.com/steveyeow/academi/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarityDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestRankChunksOrderAndFloor(t *testing.T) {
	query := []float32{1, 0}
	chunks := []*model.Chunk{
		{ID: "c1", BookID: "b1", Ordinal: 0, Text: "off-topic", Embedding: []float32{0, 1}},
		{ID: "c2", BookID: "b1", Ordinal: 1, Text: "close", Embedding: []float32{1, 1}},
		{ID: "c3", BookID: "b1", Ordinal: 2, Text: "exact", Embedding: []float32{2, 0}},
	}

	hits := rankChunks(query, chunks, 10, 0.25)
	assert.Len(t, hits, 2, "the orthogonal chunk sits below the floor")
	assert.Equal(t, "c3", hits[0].Chunk.ID)
	assert.Equal(t, "c2", hits[1].Chunk.ID)
}

func TestRankChunksTieBreakOrdinalThenBookID(t *testing.T) {
	query := []float32{1, 0}
	// identical embeddings, so every score ties
	chunks := []*model.Chunk{
		{ID: "c1", BookID: "b2", Ordinal: 1, Embedding: []float32{1, 0}},
		{ID: "c2", BookID: "b1", Ordinal: 1, Embedding: []float32{1, 0}},
		{ID: "c3", BookID: "b1", Ordinal: 0, Embedding: []float32{1, 0}},
	}

	hits := rankChunks(query, chunks, 10, 0)
	ids := []string{hits[0].Chunk.ID, hits[1].Chunk.ID, hits[2].Chunk.ID}
	assert.Equal(t, []string{"c3", "c2", "c1"}, ids)

	// same input shuffled must rank identically
	shuffled := []*model.Chunk{chunks[1], chunks[2], chunks[0]}
	again := rankChunks(query, shuffled, 10, 0)
	assert.Equal(t, ids, []string{again[0].Chunk.ID, again[1].Chunk.ID, again[2].Chunk.ID})
}

func TestRankChunksTopKAndEmpty(t *testing.T) {
	query := []float32{1, 0}
	chunks := []*model.Chunk{
		{ID: "c1", BookID: "b1", Ordinal: 0, Embedding: []float32{1, 0}},
		{ID: "c2", BookID: "b1", Ordinal: 1, Embedding: []float32{1, 0}},
	}
	assert.Len(t, rankChunks(query, chunks, 1, 0), 1)
	assert.Empty(t, rankChunks(query, nil, 3, 0))
}
