// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ChatTurn represents a single message in a conversation.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// KnowledgeEntry is one retrievable fact block from the knowledge document.
// Immutable after load - the retriever only ever reads these.
type KnowledgeEntry struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords"`
	Content  string   `json:"content"`
}

// KnowledgeBase is the full knowledge document, loaded once at startup.
// Entries keep document order; matching is stable, not relevance-ranked.
type KnowledgeBase struct {
	Restaurant string
	Entries    []KnowledgeEntry
}

// ChatRequest represents a user message with caller-owned history.
type ChatRequest struct {
	Message string
	History []ChatTurn
}

// ChatResponse is the assistant answer plus the updated history.
// History is always input history + one user turn + one assistant turn.
type ChatResponse struct {
	Response string
	History  []ChatTurn
}

// Transcript is one recorded exchange for the optional transcript log.
type Transcript struct {
	ID       string
	Message  string
	Response string
}
