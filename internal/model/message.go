package model

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// ChatMessage is one turn of a book conversation.
type ChatMessage struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	SkillUsed string `json:"skill_used,omitempty"`
	Ctime     int64  `json:"ctime"`
}

// Question is a generated study question attached to a book.
type Question struct {
	ID     string `json:"id"`
	BookID string `json:"book_id"`
	Text   string `json:"text"`
	Ctime  int64  `json:"ctime"`
}
