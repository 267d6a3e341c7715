// Package shoppinglist turns the current inventory plus a requested dish into
// a strict-JSON shopping list. The model contract is JSON-only output; Parse
// tolerates the common failure modes (code fences, leading prose) with a
// conservative first-object extraction.
package shoppinglist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amosley/fridgechef/internal/domain"
)

// Priority of a shopping item.
const (
	PriorityMust       = "must"
	PriorityNiceToHave = "nice_to_have"
)

// Item is one entry on the shopping list. Quantity is nil when the model is
// unsure; Unit may still be set.
type Item struct {
	Name          string   `json:"name"`
	Quantity      *float64 `json:"quantity"`
	Unit          *string  `json:"unit"`
	Category      string   `json:"category"`
	Priority      string   `json:"priority"`
	Substitutions []string `json:"substitutions"`
}

// List is the structured result for one dish request.
type List struct {
	Dish          string   `json:"dish"`
	MissingItems  []Item   `json:"missing_items"`
	OptionalItems []Item   `json:"optional_items"`
	AlreadyHave   []string `json:"already_have"`
	Notes         []string `json:"notes"`
}

const promptTemplate = `You are an inventory-aware home cooking assistant.

You are given the user's current inventory and their request for a dish.
Return a STRICT JSON object describing what the user should buy.

Hard rules:
- Output MUST be valid JSON and NOTHING ELSE (no markdown, no commentary).
- Use double quotes for all keys and strings; no trailing commas; no code fences.
- If unsure about a quantity, set "quantity" to null and still include "unit" if known.
- Assume common pantry staples are available unless the dish strongly depends
  on them: salt, black pepper, neutral oil, sugar, flour, water.
- Items already in the inventory MUST go to "already_have", not "missing_items".

Inventory:
%s

User request:
%s

Return JSON with EXACTLY this schema:
{
  "dish": string,
  "missing_items": [{"name": string, "quantity": number|null, "unit": string|null, "category": string, "priority": "must"|"nice_to_have", "substitutions": [string]}],
  "optional_items": [{"name": string, "quantity": number|null, "unit": string|null, "category": string, "priority": "must"|"nice_to_have", "substitutions": [string]}],
  "already_have": [string],
  "notes": [string]
}

Now output the JSON only.`

// BuildPrompt renders the shopping-list prompt. Recent history turns give the
// model conversational context for a vague request like "that soup instead".
func BuildPrompt(inventory []string, request string, history []domain.ConversationTurn) string {
	inv := "(empty)"
	if len(inventory) > 0 {
		lines := make([]string, len(inventory))
		for i, name := range inventory {
			lines[i] = "- " + name
		}
		inv = strings.Join(lines, "\n")
	}

	req := strings.TrimSpace(request)
	if len(history) > 0 {
		var ctxLines []string
		for _, turn := range history {
			ctxLines = append(ctxLines, strings.ToUpper(string(turn.Role))+": "+turn.Text)
		}
		req = req + "\n\nConversation context:\n" + strings.Join(ctxLines, "\n")
	}

	return fmt.Sprintf(promptTemplate, inv, req)
}

// BuildCorrectionPrompt asks the model to fix a previously invalid output.
func BuildCorrectionPrompt(inventory []string, request, badOutput, problem string) string {
	return BuildPrompt(inventory, request, nil) +
		"\n\nYour previous output was invalid (" + problem + "):\n" + badOutput +
		"\n\nOutput the corrected JSON only."
}

// Parse decodes the model output into a List. It tries the raw text first,
// then strips code fences, then extracts the first balanced JSON object.
func Parse(raw string) (*List, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty model output; expected JSON")
	}

	candidates := []string{raw, stripFences(raw)}
	if obj := firstObject(raw); obj != "" {
		candidates = append(candidates, obj)
	}

	var lastErr error
	for _, c := range candidates {
		var list List
		if err := json.Unmarshal([]byte(c), &list); err != nil {
			lastErr = err
			continue
		}
		return &list, nil
	}
	return nil, fmt.Errorf("invalid shopping list JSON: %w", lastErr)
}

// Validate checks the parsed list against the inventory: anything the user
// already has must not appear under missing items.
func Validate(list *List, inventory []string) error {
	if list.Dish == "" {
		return fmt.Errorf("missing dish name")
	}
	have := make(map[string]bool, len(inventory))
	for _, name := range inventory {
		have[strings.ToLower(strings.TrimSpace(name))] = true
	}
	for _, item := range list.MissingItems {
		if item.Name == "" {
			return fmt.Errorf("missing item with empty name")
		}
		if have[strings.ToLower(strings.TrimSpace(item.Name))] {
			return fmt.Errorf("%q is already in the inventory but listed as missing", item.Name)
		}
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstObject returns the first balanced {...} in s, ignoring braces inside
// JSON strings.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
