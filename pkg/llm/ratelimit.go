package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/AagmanBhatia/Oora/pkg/models"
)

// RateLimitedClient delays calls so the wrapped client never exceeds the
// configured request rate. One limiter is shared by every caller.
type RateLimitedClient struct {
	next    Client
	limiter *rate.Limiter
}

// WithRateLimit wraps next with a limiter allowing perSecond requests with
// the given burst. A burst below one is treated as one.
func WithRateLimit(next Client, perSecond float64, burst int) *RateLimitedClient {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedClient{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Chat waits for a token, then forwards to the wrapped client.
func (c *RateLimitedClient) Chat(ctx context.Context, messages []models.Message) (models.Message, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.Message{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return c.next.Chat(ctx, messages)
}

func (c *RateLimitedClient) Model() string {
	return c.next.Model()
}

func (c *RateLimitedClient) Close() error {
	return c.next.Close()
}
