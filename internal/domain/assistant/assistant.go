package assistant

import (
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// Role is the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    Role
	Content string
}

// Valid reports whether the turn has a known role and non-empty content.
func (t Turn) Valid() bool {
	return (t.Role == RoleUser || t.Role == RoleAssistant) && t.Content != ""
}

// Prompt is a single-shot generation request.
type Prompt struct {
	History []Turn
	User    string
}

// Answer is the grounded reply of the shopping assistant.
type Answer struct {
	Text      string
	Products  []result.Hit
	Timestamp time.Time
}
