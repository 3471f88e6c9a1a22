package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/steveyeow/academi/internal/model"
	"github.com/steveyeow/academi/internal/pkg/dbutil"
	"github.com/steveyeow/academi/internal/pkg/ids"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Add(ctx context.Context, msg *model.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = ids.New()
	}
	msg.Ctime = time.Now().UnixMilli()
	data := map[string]interface{}{
		"id":         msg.ID,
		"book_id":    msg.BookID,
		"role":       msg.Role,
		"content":    msg.Content,
		"skill_used": msg.SkillUsed,
		"ctime":      msg.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListRecent returns the newest messages of a book in chronological order.
func (r *MessageRepo) ListRecent(ctx context.Context, bookID string, limit int) ([]*model.ChatMessage, error) {
	const query = `
		SELECT id, book_id, role, content, skill_used, ctime
		FROM messages WHERE book_id = $1 ORDER BY ctime DESC, id DESC LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, bookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []*model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.BookID, &msg.Role, &msg.Content,
			&msg.SkillUsed, &msg.Ctime); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
