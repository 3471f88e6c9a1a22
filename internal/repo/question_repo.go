package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/ids"
)

type QuestionRepo struct {
	db *sql.DB
}

func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

func (r *QuestionRepo) AddBatch(ctx context.Context, bookID string, questions []string) error {
	if len(questions) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().UnixMilli()
	for _, q := range questions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, book_id, content, ctime) VALUES ($1, $2, $3, $4)`,
			ids.New(), bookID, q, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *QuestionRepo) ListByBook(ctx context.Context, bookID string) ([]*model.Question, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, book_id, content, ctime FROM questions WHERE book_id = $1 ORDER BY ctime ASC, id ASC`,
		bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []*model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.BookID, &q.Text, &q.Ctime); err != nil {
			return nil, err
		}
		questions = append(questions, &q)
	}
	return questions, rows.Err()
}
