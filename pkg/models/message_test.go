package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"system", "user", "assistant"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(r))
		assert.True(t, r.Valid())
	}

	_, err := ParseRole("tool")
	assert.Error(t, err)
	assert.False(t, Role("").Valid())
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, Message{Role: RoleSystem, Content: "s"}, System("s"))
	assert.Equal(t, Message{Role: RoleUser, Content: "u"}, User("u"))
	assert.Equal(t, Message{Role: RoleAssistant, Content: "a"}, Assistant("a"))
}
