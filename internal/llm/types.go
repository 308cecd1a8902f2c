// Package llm sends chat-completion requests to the configured provider
// and normalizes responses across gateway implementations.
package llm

import "fmt"

// Role identifies who authored a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat-completion message on the wire.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrorKind classifies a completion failure so callers can pick the
// right user-facing message without parsing error strings.
type ErrorKind string

const (
	ErrTimeout   ErrorKind = "timeout"
	ErrAuth      ErrorKind = "auth"
	ErrNetwork   ErrorKind = "network"
	ErrHTTP      ErrorKind = "http_error"
	ErrDecode    ErrorKind = "decode_error"
	ErrNoContent ErrorKind = "no_content"
)

// Error is a classified completion failure. Status is set for ErrHTTP
// and ErrAuth, zero otherwise.
type Error struct {
	Kind   ErrorKind
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion failed (%s, status %d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("completion failed (%s): %s", e.Kind, e.Detail)
}

// KindOf returns the classification of err, or ErrNetwork for errors
// that did not come out of this package.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ErrNetwork
}
