package model

// Vote counts upvotes for a book title. The title is matched
// case-insensitively and is independent of any Book row until the
// discovery engine finds (or creates) one for it.
type Vote struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
	Ctime int64  `json:"ctime"`
}
