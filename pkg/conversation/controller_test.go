package conversation

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AagmanBhatia/Oora/pkg/llm/llmtest"
	"github.com/AagmanBhatia/Oora/pkg/models"
)

const systemPrompt = "You are a helpful assistant and only respond to global real estate queries."

var system = models.System(systemPrompt)

func TestNewControllerHoldsOnlySystemTurn(t *testing.T) {
	c := NewController(llmtest.Returning(), systemPrompt)
	assert.Equal(t, []models.Message{system}, c.Turns())
}

func TestSubmitAppendsUserAndAssistant(t *testing.T) {
	fake := llmtest.Returning("X")
	c := NewController(fake, systemPrompt)

	turns, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)

	want := []models.Message{system, models.User("hello"), models.Assistant("X")}
	assert.Equal(t, want, turns)
	assert.Equal(t, want, c.Turns())

	require.Equal(t, 1, fake.CallCount())
	assert.Equal(t, []models.Message{system, models.User("hello")}, fake.Calls()[0])
}

func TestSubmitSendsFullHistory(t *testing.T) {
	fake := llmtest.Returning("A1", "A2")
	c := NewController(fake, systemPrompt)

	_, err := c.Submit(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), "second")
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []models.Message{
		system,
		models.User("first"),
		models.Assistant("A1"),
		models.User("second"),
	}, calls[1])
}

func TestSubmitRejectsBlankQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		fake := llmtest.Returning("X")
		c := NewController(fake, systemPrompt)

		turns, err := c.Submit(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Equal(t, []models.Message{system}, turns)
		assert.Equal(t, []models.Message{system}, c.Turns())
		assert.Zero(t, fake.CallCount(), "blank query %q must not reach the provider", q)
	}
}

func TestSubmitFailureKeepsUserTurn(t *testing.T) {
	providerErr := errors.New("connection refused")
	c := NewController(llmtest.Failing(providerErr), systemPrompt)

	turns, err := c.Submit(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, IsCompletionFailure(err))
	assert.ErrorIs(t, err, providerErr)
	assert.Equal(t, "completion failed: connection refused", err.Error())

	want := []models.Message{system, models.User("hello")}
	assert.Equal(t, want, turns)
	assert.Equal(t, want, c.Turns())
}

func TestRegenerateOverwritesLastAssistant(t *testing.T) {
	fake := llmtest.Returning("X", "Y")
	c := NewController(fake, systemPrompt)

	_, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)

	turns, err := c.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Message{system, models.User("hello"), models.Assistant("Y")}, turns)

	// The old answer stays in context for the resend.
	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []models.Message{system, models.User("hello"), models.Assistant("X")}, calls[1])
}

func TestRegenerateAppendsAfterFailedSubmit(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Err: errors.New("timeout")},
		llmtest.Reply{Content: "Z"},
	)
	c := NewController(fake, systemPrompt)

	_, err := c.Submit(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, []models.Message{system, models.User("hello")}, c.Turns())

	turns, err := c.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Message{system, models.User("hello"), models.Assistant("Z")}, turns)
}

func TestRegenerateWithoutUserTurnIsNoop(t *testing.T) {
	fake := llmtest.Returning("X")
	c := NewController(fake, systemPrompt)

	turns, err := c.Regenerate(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRegenerate)
	assert.False(t, IsCompletionFailure(err))
	assert.Equal(t, []models.Message{system}, turns)
	assert.Zero(t, fake.CallCount())
}

func TestRegenerateFailureLeavesConversationUnchanged(t *testing.T) {
	fake := llmtest.New(
		llmtest.Reply{Content: "X"},
		llmtest.Reply{Err: errors.New("503 service unavailable")},
	)
	c := NewController(fake, systemPrompt)

	_, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)
	before := c.Turns()

	turns, err := c.Regenerate(context.Background())
	require.Error(t, err)
	assert.True(t, IsCompletionFailure(err))
	assert.Equal(t, before, turns)
	assert.Equal(t, before, c.Turns())
}

func TestResetKeepsOnlySystemTurn(t *testing.T) {
	c := NewController(llmtest.Returning("a", "b", "c"), systemPrompt)
	for _, q := range []string{"one", "two", "three"} {
		_, err := c.Submit(context.Background(), q)
		require.NoError(t, err)
	}
	require.Len(t, c.Turns(), 7)

	assert.Equal(t, []models.Message{system}, c.Reset())
	assert.Equal(t, []models.Message{system}, c.Reset())
}

func TestTurnsReturnsCopy(t *testing.T) {
	c := NewController(llmtest.Returning("X"), systemPrompt)
	_, err := c.Submit(context.Background(), "hello")
	require.NoError(t, err)

	turns := c.Turns()
	turns[0].Content = "tampered"
	turns[2].Content = "tampered"

	assert.Equal(t, system, c.Turns()[0])
	assert.Equal(t, "X", c.Turns()[2].Content)
}

// Random operation sequences never disturb the system turn.
func TestSystemTurnInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fake := llmtest.New()
	c := NewController(fake, systemPrompt)

	for i := 0; i < 500; i++ {
		var turns []models.Message
		switch rng.Intn(4) {
		case 0:
			fake.Push(llmtest.Reply{Content: "ok"})
			turns, _ = c.Submit(context.Background(), "q")
		case 1:
			fake.Push(llmtest.Reply{Err: errors.New("boom")})
			turns, _ = c.Submit(context.Background(), "q")
		case 2:
			turns, _ = c.Regenerate(context.Background())
		case 3:
			turns = c.Reset()
			require.Len(t, turns, 1)
		}

		require.NotEmpty(t, turns)
		require.Equal(t, system, turns[0])
		systems := 0
		for _, turn := range turns {
			if turn.Role == models.RoleSystem {
				systems++
			}
		}
		require.Equal(t, 1, systems)
	}
}

func TestConcurrentSubmitsAreSerialised(t *testing.T) {
	fake := llmtest.Returning("r")
	c := NewController(fake, systemPrompt)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Submit(context.Background(), "q")
		}()
	}
	wg.Wait()

	turns := c.Turns()
	require.Len(t, turns, 41)
	for i := 1; i < len(turns); i += 2 {
		assert.Equal(t, models.RoleUser, turns[i].Role)
		assert.Equal(t, models.RoleAssistant, turns[i+1].Role)
	}
	// Every request saw a history ending in its own user turn.
	for i, call := range fake.Calls() {
		assert.Len(t, call, 2*i+2)
	}
}
