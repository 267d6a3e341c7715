package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosley/fridgechef/internal/domain"
)

func TestHistoryAppendOrder(t *testing.T) {
	h := NewHistory(10)
	h.Append(domain.RoleUser, "hello")
	h.Append(domain.RoleAssistant, "hi there")

	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	assert.False(t, turns[0].Timestamp.IsZero())
}

func TestHistoryTruncatesOldestFirst(t *testing.T) {
	const window = 6
	h := NewHistory(window)

	for i := 0; i < window+5; i++ {
		h.Append(domain.RoleUser, fmt.Sprintf("turn %d", i))
	}

	turns := h.Turns()
	require.Len(t, turns, window)
	// Survivors are the most recent turns, oldest-first order preserved.
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("turn %d", i+5), turn.Text)
	}
}

func TestHistoryWindow(t *testing.T) {
	h := NewHistory(20)
	for i := 0; i < 10; i++ {
		h.Append(domain.RoleUser, fmt.Sprintf("turn %d", i))
	}

	window := h.Window(3)
	require.Len(t, window, 3)
	assert.Equal(t, "turn 7", window[0].Text)
	assert.Equal(t, "turn 9", window[2].Text)

	assert.Len(t, h.Window(100), 10)
	assert.Len(t, h.Window(0), 10)
}

func TestHistoryLastAndClear(t *testing.T) {
	h := NewHistory(5)
	assert.Nil(t, h.Last())

	h.Append(domain.RoleUser, "anything here?")
	require.NotNil(t, h.Last())
	assert.Equal(t, "anything here?", h.Last().Text)

	h.Clear()
	assert.Zero(t, h.Len())
	assert.Nil(t, h.Last())
}

func TestBuildPromptIncludesInventory(t *testing.T) {
	prompt := BuildPrompt([]string{"egg", "milk"}, nil, PromptOptions{})
	assert.Contains(t, prompt, "egg")
	assert.Contains(t, prompt, "milk")
	assert.Contains(t, prompt, "Ingredients on hand: egg, milk.")
}

func TestBuildPromptEmptyInventoryIsExplicit(t *testing.T) {
	prompt := BuildPrompt(nil, nil, PromptOptions{})
	assert.Contains(t, prompt, "no ingredients on hand")
	assert.NotContains(t, prompt, "Ingredients on hand:")
}

func TestBuildPromptRendersHistoryInRoleOrder(t *testing.T) {
	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "what can I cook?"},
		{Role: domain.RoleAssistant, Text: "How about an omelette?"},
		{Role: domain.RoleUser, Text: "something without cheese"},
	}
	prompt := BuildPrompt([]string{"egg"}, history, PromptOptions{})

	first := "USER: what can I cook?"
	second := "ASSISTANT: How about an omelette?"
	third := "USER: something without cheese"
	assert.Contains(t, prompt, first)
	assert.Contains(t, prompt, second)
	assert.Contains(t, prompt, third)
	assert.Less(t, indexOf(t, prompt, first), indexOf(t, prompt, second))
	assert.Less(t, indexOf(t, prompt, second), indexOf(t, prompt, third))
}

func TestBuildPromptDeterministic(t *testing.T) {
	history := []domain.ConversationTurn{{Role: domain.RoleUser, Text: "dinner ideas"}}
	a := BuildPrompt([]string{"egg", "milk"}, history, PromptOptions{CuisineType: "italian"})
	b := BuildPrompt([]string{"egg", "milk"}, history, PromptOptions{CuisineType: "italian"})
	assert.Equal(t, a, b)
}

func TestBuildPromptPreferences(t *testing.T) {
	prompt := BuildPrompt([]string{"tofu"}, nil, PromptOptions{
		DietaryRestrictions: []string{"vegetarian", "gluten-free"},
		CuisineType:         "thai",
	})
	assert.Contains(t, prompt, "Dietary restrictions: vegetarian, gluten-free.")
	assert.Contains(t, prompt, "Preferred cuisine: thai.")
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	idx := strings.Index(s, sub)
	if idx < 0 {
		t.Fatalf("%q not found in prompt", sub)
	}
	return idx
}
