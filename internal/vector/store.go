package vector

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/steveyeow/academi/internal/ai"
	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/repo"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const embedBatchSize = 16

// Hit is one retrieved passage with its similarity to the query.
type Hit struct {
	Chunk *model.Chunk
	Score float64
}

// IndexResult reports which embedding space a book's chunks were built in.
type IndexResult struct {
	ChunkCount int
	Provider   string
	Model      string
}

// Store persists chunk embeddings and answers nearest-passage queries.
// Similarity is computed in-process over the candidate books' chunks, which
// stay small enough (a few hundred passages per book) that we do not need a
// pgvector index scan.
type Store struct {
	gateway *ai.Gateway
	chunks  *repo.ChunkRepo
}

func NewStore(gateway *ai.Gateway, chunks *repo.ChunkRepo) *Store {
	return &Store{gateway: gateway, chunks: chunks}
}

// Index embeds the passages and stores them as the book's chunk set,
// replacing whatever was there before. Passage order defines ordinals.
func (s *Store) Index(ctx context.Context, bookID string, texts []string) (*IndexResult, error) {
	logger := logutil.GetLogger(ctx)
	if len(texts) == 0 {
		return nil, fmt.Errorf("no passages to index")
	}
	vectors := make([][]float32, 0, len(texts))
	provider, embedModel := "", ""
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		var res *ai.EmbedResult
		var err error
		if provider == "" {
			res, err = s.gateway.Embed(ctx, texts[start:end], ai.TaskRetrievalDocument)
		} else {
			// later batches must stay in the space the first batch chose
			res, err = s.gateway.EmbedWith(ctx, provider, texts[start:end], ai.TaskRetrievalDocument)
		}
		if err != nil {
			return nil, err
		}
		if provider != "" && res.Provider != provider {
			return nil, fmt.Errorf("embedding provider changed mid-index: %s -> %s", provider, res.Provider)
		}
		provider, embedModel = res.Provider, res.Model
		vectors = append(vectors, res.Vectors...)
	}
	records := make([]*model.Chunk, 0, len(texts))
	for i, text := range texts {
		records = append(records, &model.Chunk{Text: text, Embedding: vectors[i]})
	}
	if err := s.chunks.DeleteByBook(ctx, bookID); err != nil {
		return nil, err
	}
	if err := s.chunks.InsertBatch(ctx, bookID, records); err != nil {
		return nil, err
	}
	logger.Info("indexed book passages",
		zap.String("book_id", bookID),
		zap.Int("chunks", len(texts)),
		zap.String("provider", provider))
	return &IndexResult{ChunkCount: len(texts), Provider: provider, Model: embedModel}, nil
}

// Query embeds the question and returns the top passages across the given
// books, ordered best first. Ties break on ordinal then book id so repeated
// queries see a stable order. Books carry the provider their chunks were
// embedded with; the query vector is built in the same space.
func (s *Store) Query(ctx context.Context, question string, books []*model.Book, topK int, minSimilarity float64) ([]*Hit, error) {
	if len(books) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(books))
	embedProvider := ""
	for _, book := range books {
		ids = append(ids, book.ID)
		if embedProvider == "" && book.EmbedProvider != "" {
			embedProvider = book.EmbedProvider
		}
	}
	var res *ai.EmbedResult
	var err error
	if embedProvider != "" {
		res, err = s.gateway.EmbedWith(ctx, embedProvider, []string{question}, ai.TaskRetrievalQuery)
	} else {
		res, err = s.gateway.Embed(ctx, []string{question}, ai.TaskRetrievalQuery)
	}
	if err != nil {
		return nil, err
	}
	if len(res.Vectors) != 1 {
		return nil, fmt.Errorf("expected one query vector, got %d", len(res.Vectors))
	}
	query := res.Vectors[0]
	chunks, err := s.chunks.ListByBooks(ctx, ids)
	if err != nil {
		return nil, err
	}
	return rankChunks(query, chunks, topK, minSimilarity), nil
}

// rankChunks scores the chunks against the query vector, drops everything
// below the similarity floor and returns at most topK hits, best first.
// Ties break on ordinal then book id so equal scores rank deterministically.
func rankChunks(query []float32, chunks []*model.Chunk, topK int, minSimilarity float64) []*Hit {
	hits := make([]*Hit, 0, len(chunks))
	for _, chunk := range chunks {
		score := cosineSimilarity(query, chunk.Embedding)
		if score < minSimilarity {
			continue
		}
		hits = append(hits, &Hit{Chunk: chunk, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.Ordinal != hits[j].Chunk.Ordinal {
			return hits[i].Chunk.Ordinal < hits[j].Chunk.Ordinal
		}
		return hits[i].Chunk.BookID < hits[j].Chunk.BookID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
