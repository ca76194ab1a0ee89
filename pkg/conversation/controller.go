package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AagmanBhatia/Oora/pkg/llm"
	"github.com/AagmanBhatia/Oora/pkg/models"
)

// Controller drives one session's conversation. Operations are serialised:
// a second call waits until the first, including its completion request,
// has returned.
type Controller struct {
	mu     sync.Mutex
	conv   *Conversation
	client llm.Client
	logger *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for completion events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a controller whose conversation starts with the
// given system prompt.
func NewController(client llm.Client, systemPrompt string, opts ...Option) *Controller {
	c := &Controller{
		conv:   New(systemPrompt),
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Turns returns a snapshot of the conversation.
func (c *Controller) Turns() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Turns()
}

// Submit appends the query as a user turn, asks the provider for a reply
// using the full history and appends the reply. A failed call leaves the
// user turn in place and returns a *CompletionError.
func (c *Controller) Submit(ctx context.Context, query string) ([]models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return c.conv.Turns(), ErrEmptyQuery
	}

	c.conv.append(models.User(query))

	reply, err := c.complete(ctx, "submit")
	if err != nil {
		return c.conv.Turns(), err
	}

	c.conv.append(models.Assistant(reply))
	return c.conv.Turns(), nil
}

// Regenerate resends the conversation as stored, previous assistant reply
// included, and puts the new reply in place of the last assistant turn (or
// appends it when the last turn is not an assistant turn). On failure the
// conversation is unchanged.
func (c *Controller) Regenerate(ctx context.Context) ([]models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.conv.HasUserTurn() {
		return c.conv.Turns(), ErrNothingToRegenerate
	}

	reply, err := c.complete(ctx, "regenerate")
	if err != nil {
		return c.conv.Turns(), err
	}

	c.conv.putAssistant(reply)
	return c.conv.Turns(), nil
}

// Reset drops every turn except the system turn.
func (c *Controller) Reset() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conv.reset()
	return c.conv.Turns()
}

// complete must be called with c.mu held.
func (c *Controller) complete(ctx context.Context, op string) (string, error) {
	start := time.Now()
	reply, err := c.client.Chat(ctx, c.conv.Turns())
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("model", c.client.Model()),
		zap.Int("turns", c.conv.Len()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.logger.Warn("Completion failed", append(fields, zap.Error(err))...)
		return "", &CompletionError{Err: err}
	}
	c.logger.Debug("Completion succeeded", append(fields, zap.Int("reply_len", len(reply.Content)))...)
	return reply.Content, nil
}
