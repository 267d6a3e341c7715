package chat

import (
	"strings"

	"github.com/amosley/fridgechef/internal/domain"
)

// systemFraming anchors every chat prompt. The model must only propose
// recipes the current inventory can support.
const systemFraming = `You are an inventory-aware home cooking assistant.
Suggest recipes and cooking advice using only the ingredients the user has on
hand, plus common pantry staples (salt, black pepper, neutral oil, sugar,
flour, water). When an ingredient is missing, say so instead of assuming it.
Keep answers practical for a normal home cook.`

// emptyInventoryClause renders an empty inventory explicitly; the prompt
// never contains an ambiguous blank list.
const emptyInventoryClause = "The user has no ingredients on hand yet."

// PromptOptions carries optional user preferences appended to the prompt.
type PromptOptions struct {
	DietaryRestrictions []string
	CuisineType         string
}

// BuildPrompt deterministically assembles the generation prompt from the
// fixed system framing, the inventory snapshot, and the trailing history
// turns in role order.
func BuildPrompt(inventory []string, history []domain.ConversationTurn, opts PromptOptions) string {
	var b strings.Builder
	b.WriteString(systemFraming)
	b.WriteString("\n\n")

	if len(inventory) == 0 {
		b.WriteString(emptyInventoryClause)
	} else {
		b.WriteString("Ingredients on hand: ")
		b.WriteString(strings.Join(inventory, ", "))
		b.WriteString(".")
	}

	if len(opts.DietaryRestrictions) > 0 {
		b.WriteString("\nDietary restrictions: ")
		b.WriteString(strings.Join(opts.DietaryRestrictions, ", "))
		b.WriteString(".")
	}
	if opts.CuisineType != "" {
		b.WriteString("\nPreferred cuisine: ")
		b.WriteString(opts.CuisineType)
		b.WriteString(".")
	}

	b.WriteString("\n\nConversation so far:\n")
	for _, turn := range history {
		b.WriteString(strings.ToUpper(string(turn.Role)))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	b.WriteString("ASSISTANT:")

	return b.String()
}
