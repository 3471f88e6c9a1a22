package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/ids"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertBatch stores the chunks of one indexing run. Ordinals follow slice
// order; they fix the citation and tie-break order for the book's lifetime.
func (r *ChunkRepo) InsertBatch(ctx context.Context, bookID string, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	const query = `
		INSERT INTO chunks (id, book_id, ordinal, content, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().UnixMilli()
	for i, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = ids.New()
		}
		chunk.BookID = bookID
		chunk.Ordinal = i
		chunk.Ctime = now
		if _, err := tx.ExecContext(ctx, query,
			chunk.ID, bookID, chunk.Ordinal, chunk.Text,
			pgvector.NewVector(chunk.Embedding), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListByBooks returns all chunks of the given books ordered by book id then
// ordinal. An empty id set yields an empty result.
func (r *ChunkRepo) ListByBooks(ctx context.Context, bookIDs []string) ([]*model.Chunk, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}
	query := `SELECT id, book_id, ordinal, content, embedding, ctime
		FROM chunks WHERE book_id IN (?) ORDER BY book_id ASC, ordinal ASC`
	query, args, err := sqlx.In(query, bookIDs)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chunks []*model.Chunk
	for rows.Next() {
		var chunk model.Chunk
		var embedding pgvector.Vector
		if err := rows.Scan(&chunk.ID, &chunk.BookID, &chunk.Ordinal,
			&chunk.Text, &embedding, &chunk.Ctime); err != nil {
			return nil, err
		}
		chunk.Embedding = embedding.Slice()
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) DeleteByBook(ctx context.Context, bookID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE book_id = $1`, bookID)
	return err
}
