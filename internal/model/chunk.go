package model

// Chunk is one indexed passage of a book. Chunks are created during indexing,
// never mutated afterwards, and removed together with their book. The ordinal
// preserves insertion order, which doubles as the ranking tie-break order.
type Chunk struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Ordinal   int       `json:"ordinal"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
	Ctime     int64     `json:"ctime"`
}
