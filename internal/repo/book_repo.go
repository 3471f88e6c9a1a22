package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/dbutil"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/pkg/ids"
)

type BookRepo struct {
	db *sql.DB
}

func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db}
}

const bookColumns = `id, name, author, category, source, status, isbn, description,
	chunk_count, embed_provider, embed_model, last_error, ctime, mtime`

func scanBook(row interface{ Scan(...interface{}) error }) (*model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Name, &b.Author, &b.Category, &b.Source, &b.Status,
		&b.ISBN, &b.Description, &b.ChunkCount, &b.EmbedProvider, &b.EmbedModel,
		&b.LastError, &b.Ctime, &b.Mtime)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a new book row. The caller picks the initial status:
// uploads start at indexing, everything else at catalog.
func (r *BookRepo) Create(ctx context.Context, book *model.Book) error {
	if book.ID == "" {
		book.ID = ids.New()
	}
	now := time.Now().UnixMilli()
	book.Ctime = now
	book.Mtime = now
	data := map[string]interface{}{
		"id":             book.ID,
		"name":           book.Name,
		"author":         book.Author,
		"category":       book.Category,
		"source":         book.Source,
		"status":         string(book.Status),
		"isbn":           book.ISBN,
		"description":    book.Description,
		"chunk_count":    book.ChunkCount,
		"embed_provider": book.EmbedProvider,
		"embed_model":    book.EmbedModel,
		"last_error":     book.LastError,
		"ctime":          book.Ctime,
		"mtime":          book.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("books", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return errs.ErrConflict
		}
		return err
	}
	return nil
}

func (r *BookRepo) Get(ctx context.Context, id string) (*model.Book, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	return book, err
}

// FindByName looks a book up by case-insensitive title.
func (r *BookRepo) FindByName(ctx context.Context, name string) (*model.Book, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE LOWER(name) = LOWER($1)`, name)
	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	return book, err
}

func (r *BookRepo) List(ctx context.Context) ([]*model.Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY ctime DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (r *BookRepo) ListByStatus(ctx context.Context, status model.BookStatus) ([]*model.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE status = $1 ORDER BY ctime DESC`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var books []*model.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// CompareAndSetStatus atomically moves a book from one status to another.
// Returns false when the book was not in the expected status, which is how
// the lifecycle manager enforces at-most-one indexing job per book.
func (r *BookRepo) CompareAndSetStatus(ctx context.Context, id string, from, to model.BookStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET status = $1, mtime = $2 WHERE id = $3 AND status = $4`,
		string(to), time.Now().UnixMilli(), id, string(from))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkReady finalizes a successful indexing run.
func (r *BookRepo) MarkReady(ctx context.Context, id string, chunkCount int, embedProvider, embedModel string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET status = $1, chunk_count = $2, embed_provider = $3, embed_model = $4,
			last_error = '', mtime = $5
		WHERE id = $6`,
		string(model.BookStatusReady), chunkCount, embedProvider, embedModel,
		time.Now().UnixMilli(), id)
	return err
}

// MarkError records a failed indexing run.
func (r *BookRepo) MarkError(ctx context.Context, id string, cause string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE books SET status = $1, last_error = $2, mtime = $3 WHERE id = $4`,
		string(model.BookStatusError), cause, time.Now().UnixMilli(), id)
	return err
}

func (r *BookRepo) UpdateDescription(ctx context.Context, id string, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE books SET description = $1, mtime = $2 WHERE id = $3`,
		description, time.Now().UnixMilli(), id)
	return err
}

func (r *BookRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// CategoryCounts returns how many books each category holds, used by the
// scheduled discovery job to pick underrepresented topics.
func (r *BookRepo) CategoryCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM books WHERE category <> '' GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}
