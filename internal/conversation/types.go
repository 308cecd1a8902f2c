package conversation

import "time"

// Status of a conversation.
const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// Role of a message sender.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PlatformAIChat tags conversations owned by the AI assistant channel.
// Redirect-only platforms (WhatsApp, LINE, ...) never store messages.
const PlatformAIChat = "ai-chat"

// Conversation is one visitor thread, keyed by an opaque id.
type Conversation struct {
	ID        string    `json:"conversation_id"`
	UserIP    string    `json:"user_ip"`
	UserAgent string    `json:"user_agent"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single stored turn.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Body           string    `json:"body"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
}

// Turn is the (role, body) pair the composer consumes.
type Turn struct {
	Role string
	Body string
}
