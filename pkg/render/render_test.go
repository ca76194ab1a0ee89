package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AagmanBhatia/Oora/pkg/models"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{Title: "Super Chat", Tagline: "Ask anything about global real estate"})
	require.NoError(t, err)
	return r
}

func TestBlocksSkipSystemTurn(t *testing.T) {
	r := newRenderer(t)
	blocks := r.Blocks([]models.Message{
		models.System("secret system prompt"),
		models.User("hello"),
		models.Assistant("hi there"),
	})

	require.Len(t, blocks, 2)
	assert.Equal(t, models.RoleUser, blocks[0].Role)
	assert.Equal(t, ClassUser, blocks[0].Class)
	assert.Equal(t, "hello", string(blocks[0].HTML))
	assert.Equal(t, models.RoleAssistant, blocks[1].Role)
	assert.Equal(t, ClassAssistant, blocks[1].Class)
	assert.Equal(t, "<p>hi there</p>", strings.TrimSpace(string(blocks[1].HTML)))
}

func TestUserContentIsEscaped(t *testing.T) {
	r := newRenderer(t)
	blocks := r.Blocks([]models.Message{models.User(`<script>alert("x")</script>`)})

	require.Len(t, blocks, 1)
	assert.NotContains(t, string(blocks[0].HTML), "<script>")
	assert.Contains(t, string(blocks[0].HTML), "&lt;script&gt;")
}

func TestAssistantMarkdownIsSanitised(t *testing.T) {
	r := newRenderer(t)

	html := string(r.Markdown("**Lisbon** prices:\n\n| city | change |\n|---|---|\n| Lisbon | +4% |\n\n<img src=x onerror=alert(1)>"))
	assert.Contains(t, html, "<strong>Lisbon</strong>")
	assert.Contains(t, html, "<table>")
	assert.NotContains(t, html, "onerror")

	link := string(r.Markdown("[click](javascript:alert(1))"))
	assert.NotContains(t, link, "javascript:")
}

func TestRenderPage(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	err := r.Render(&buf, []models.Message{
		models.System("secret system prompt"),
		models.User("hello"),
		models.Assistant("X"),
	}, "")
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "<title>Super Chat</title>")
	assert.Contains(t, page, "Ask anything about global real estate")
	assert.Contains(t, page, `class="chat-history"`)
	assert.Contains(t, page, `<div class="user-message">hello</div>`)
	assert.Contains(t, page, `class="bot-message"`)
	assert.NotContains(t, page, "secret system prompt")
	assert.NotContains(t, page, "An error occurred")
	assert.Contains(t, page, `action="/chat"`)
	assert.Contains(t, page, `action="/clear"`)
	assert.Contains(t, page, `action="/regenerate"`)
}

func TestRenderPageWithoutHistory(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, []models.Message{models.System("sys")}, ""))

	assert.NotContains(t, buf.String(), `class="chat-history"`)
}

func TestRenderPageWithError(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	err := r.Render(&buf, []models.Message{models.System("sys"), models.User("hello")},
		"completion failed: <b>timeout</b>")
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "An error occurred: completion failed: &lt;b&gt;timeout&lt;/b&gt;")
	assert.Contains(t, page, `<div class="user-message">hello</div>`)
}
