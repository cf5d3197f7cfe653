// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

// LLMService generates assistant replies from a language model provider.
type LLMService interface {
	// Chat produces a complete reply for the given system instruction and turns.
	Chat(ctx context.Context, system string, turns []entities.ChatTurn) (string, error)

	// ChatStream produces the reply as incremental fragments.
	// The channel is closed after the Done (or error) token.
	ChatStream(ctx context.Context, system string, turns []entities.ChatTurn) (<-chan StreamToken, error)
}

// StreamToken represents a single fragment of a streaming LLM response.
type StreamToken struct {
	Content string
	Done    bool
	Err     error
}

// ContextRetriever selects knowledge-base context for a user query.
// Implementations never return an empty snippet.
type ContextRetriever interface {
	// Retrieve returns the context snippet for the query and whether any
	// knowledge entry actually matched (false means the default snippet).
	Retrieve(query string) (snippet string, matched bool)
}

// PersonaSource supplies the system persona text.
// Implementations may reload the text behind the scenes; System must be
// safe for concurrent use.
type PersonaSource interface {
	System() string
}

// TranscriptLog records completed exchanges for operational inspection.
// It is write-only from the chat pipeline; nothing is ever read back.
type TranscriptLog interface {
	Record(ctx context.Context, t entities.Transcript) error
	Close() error
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
