package model

// Reference origin kinds.
const (
	ReferencePassage = "passage"
	ReferenceURL     = "url"
)

// Reference binds one inline citation marker of an answer to its source.
// It lives only as long as the answer it belongs to.
type Reference struct {
	Index      int    `json:"index"`
	OriginKind string `json:"origin_kind"`
	Book       string `json:"book,omitempty"`
	URL        string `json:"url,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

// TokenUsage reports provider token consumption for one answer.
// All fields are zero when the provider does not report usage.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// Answer is what the core hands back to the web layer for one chat turn.
type Answer struct {
	Text       string      `json:"answer"`
	References []Reference `json:"references"`
	SkillUsed  string      `json:"skill_used"`
	Grounded   bool        `json:"grounded"`
	Provider   string      `json:"provider,omitempty"`
	Usage      TokenUsage  `json:"usage"`
}
