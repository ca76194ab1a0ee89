// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/AagmanBhatia/Oora/pkg/models"
)

// Reply is one scripted provider answer.
type Reply struct {
	Content string
	Err     error
}

// Client replays Replies in order and records every request. When the
// script runs out the last reply is repeated.
type Client struct {
	mu      sync.Mutex
	replies []Reply
	calls   [][]models.Message
	next    int
	model   string
}

// New returns a client that will answer with replies in order.
func New(replies ...Reply) *Client {
	return &Client{replies: replies, model: "fake-model"}
}

// Returning scripts successful answers with the given contents.
func Returning(contents ...string) *Client {
	replies := make([]Reply, len(contents))
	for i, c := range contents {
		replies[i] = Reply{Content: c}
	}
	return New(replies...)
}

// Failing scripts a client whose every call fails with err.
func Failing(err error) *Client {
	return New(Reply{Err: err})
}

// Push appends replies to the script.
func (c *Client) Push(replies ...Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, replies...)
}

func (c *Client) Chat(ctx context.Context, messages []models.Message) (models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sent := make([]models.Message, len(messages))
	copy(sent, messages)
	c.calls = append(c.calls, sent)

	if len(c.replies) == 0 {
		return models.Assistant(""), nil
	}
	idx := c.next
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	} else {
		c.next++
	}
	r := c.replies[idx]
	if r.Err != nil {
		return models.Message{}, r.Err
	}
	return models.Assistant(r.Content), nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) Close() error { return nil }

// Calls returns a copy of every request the client received.
func (c *Client) Calls() [][]models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]models.Message, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns how many requests the client received.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
