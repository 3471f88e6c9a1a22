package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/errs"
	"github.com/steveyeow/academi/internal/pkg/ids"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// Upsert adds one vote for a title, creating the row on first vote. Titles
// collide case-insensitively; the first-seen spelling is kept for display.
func (r *VoteRepo) Upsert(ctx context.Context, title string) (*model.Vote, error) {
	const query = `
		INSERT INTO votes (id, title, count, ctime)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (LOWER(title)) DO UPDATE SET count = votes.count + 1
		RETURNING id, title, count, ctime
	`
	row := r.db.QueryRowContext(ctx, query, ids.New(), title, time.Now().UnixMilli())
	var vote model.Vote
	if err := row.Scan(&vote.ID, &vote.Title, &vote.Count, &vote.Ctime); err != nil {
		return nil, err
	}
	return &vote, nil
}

// Increment bumps an existing vote by id.
func (r *VoteRepo) Increment(ctx context.Context, id string) (*model.Vote, error) {
	const query = `
		UPDATE votes SET count = count + 1 WHERE id = $1
		RETURNING id, title, count, ctime
	`
	row := r.db.QueryRowContext(ctx, query, id)
	var vote model.Vote
	if err := row.Scan(&vote.ID, &vote.Title, &vote.Count, &vote.Ctime); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &vote, nil
}

func (r *VoteRepo) List(ctx context.Context) ([]*model.Vote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, count, ctime FROM votes ORDER BY count DESC, ctime ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var votes []*model.Vote
	for rows.Next() {
		var vote model.Vote
		if err := rows.Scan(&vote.ID, &vote.Title, &vote.Count, &vote.Ctime); err != nil {
			return nil, err
		}
		votes = append(votes, &vote)
	}
	return votes, rows.Err()
}

// ListAtOrAbove returns votes whose count crossed the threshold, for the
// periodic promotion sweep.
func (r *VoteRepo) ListAtOrAbove(ctx context.Context, threshold int) ([]*model.Vote, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, count, ctime FROM votes WHERE count >= $1 ORDER BY count DESC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var votes []*model.Vote
	for rows.Next() {
		var vote model.Vote
		if err := rows.Scan(&vote.ID, &vote.Title, &vote.Count, &vote.Ctime); err != nil {
			return nil, err
		}
		votes = append(votes, &vote)
	}
	return votes, rows.Err()
}
