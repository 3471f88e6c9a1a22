package model

// BookStatus is the lifecycle state of a book agent.
type BookStatus string

const (
	// BookStatusCatalog marks a book that is known but has no indexed content.
	BookStatusCatalog BookStatus = "catalog"
	// BookStatusIndexing marks a book whose fetch/chunk/embed run is in progress.
	BookStatusIndexing BookStatus = "indexing"
	// BookStatusReady marks a book whose chunks are queryable.
	BookStatusReady BookStatus = "ready"
	// BookStatusError marks a book whose last indexing attempt failed.
	BookStatusError BookStatus = "error"
)

// Source kinds record how a book entered the library.
const (
	BookSourceUpload   = "upload"
	BookSourceCatalog  = "catalog"
	BookSourceChat     = "chat"
	BookSourceTopic    = "topic"
	BookSourceVote     = "vote"
	BookSourceCuration = "curation"
)

type Book struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Author        string     `json:"author"`
	Category      string     `json:"category"`
	Source        string     `json:"source"`
	Status        BookStatus `json:"status"`
	ISBN          string     `json:"isbn,omitempty"`
	Description   string     `json:"description,omitempty"`
	ChunkCount    int        `json:"chunk_count"`
	EmbedProvider string     `json:"embed_provider,omitempty"`
	EmbedModel    string     `json:"embed_model,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	Ctime         int64      `json:"ctime"`
	Mtime         int64      `json:"mtime"`
}
