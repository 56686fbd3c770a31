package domain

import "context"

// Document represents a single source file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Source  string
	Page    Locator
	Content string
}

// Chunk is an immutable unit of knowledge used for indexing and retrieval.
type Chunk struct {
	Text    string  `json:"text"`
	Source  string  `json:"source,omitempty"`
	Page    Locator `json:"page,omitempty"`
	Section Locator `json:"section,omitempty"`
	Lang    string  `json:"lang,omitempty"`
}

// ScoredChunk pairs a chunk with its relevance for a single retrieval call.
type ScoredChunk struct {
	Chunk      Chunk   `json:"chunk"`
	Position   int     `json:"position"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// Query is the raw user text plus a detected or declared language tag.
type Query struct {
	Text string
	Lang string
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Retriever ranks corpus chunks against a query.
type Retriever interface {
	Score(text, lang string, k int) []Chunk
	Rank(text, lang string, k int) []ScoredChunk
}

// Generator produces a model reply from a system prompt and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Summarizer produces a brief extractive summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
