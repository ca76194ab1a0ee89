package models

import "fmt"

// Role represents the role of a message sender
type Role string

const (
	// RoleSystem represents the fixed system prompt
	RoleSystem Role = "system"
	// RoleUser represents a message from the user
	RoleUser Role = "user"
	// RoleAssistant represents a message from the assistant
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ParseRole converts a wire role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Message represents one chat turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System returns a system turn with the given prompt.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User returns a user turn.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant returns an assistant turn.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
