// Package conversation owns the per-session chat history and the three
// operations that mutate it around a remote completion call.
package conversation

import "github.com/AagmanBhatia/Oora/pkg/models"

// Conversation is the ordered list of turns for one session. Index 0 is
// always the system turn; it is never removed, duplicated or reordered.
type Conversation struct {
	turns []models.Message
}

// New creates a conversation holding only the system turn.
func New(systemPrompt string) *Conversation {
	return &Conversation{turns: []models.Message{models.System(systemPrompt)}}
}

// Turns returns a copy of every turn, system turn included.
func (c *Conversation) Turns() []models.Message {
	out := make([]models.Message, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns including the system turn.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// HasUserTurn reports whether any user turn has been appended.
func (c *Conversation) HasUserTurn() bool {
	for _, t := range c.turns[1:] {
		if t.Role == models.RoleUser {
			return true
		}
	}
	return false
}

func (c *Conversation) append(m models.Message) {
	c.turns = append(c.turns, m)
}

// putAssistant overwrites the last turn when it is an assistant turn and
// appends a new assistant turn otherwise.
func (c *Conversation) putAssistant(content string) {
	last := len(c.turns) - 1
	switch c.turns[last].Role {
	case models.RoleAssistant:
		c.turns[last].Content = content
	default:
		c.append(models.Assistant(content))
	}
}

func (c *Conversation) reset() {
	system := c.turns[0]
	c.turns = []models.Message{system}
}
