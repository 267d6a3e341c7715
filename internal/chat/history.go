// Package chat holds the per-session conversation history and the
// deterministic prompt assembly for the generation service.
package chat

import (
	"time"

	"github.com/amosley/fridgechef/internal/domain"
)

// History is an append-only sequence of conversation turns. Once it exceeds
// maxTurns, the oldest turns are dropped to bound prompt size; survivors keep
// their order and are never deduplicated. History is not synchronized — the
// owning session serializes access.
type History struct {
	turns    []domain.ConversationTurn
	maxTurns int
}

func NewHistory(maxTurns int) *History {
	return &History{maxTurns: maxTurns}
}

// Append adds a turn and truncates oldest-first to maxTurns.
func (h *History) Append(role domain.Role, text string) {
	h.turns = append(h.turns, domain.ConversationTurn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if h.maxTurns > 0 && len(h.turns) > h.maxTurns {
		h.turns = h.turns[len(h.turns)-h.maxTurns:]
	}
}

// Turns returns a copy of the full history, oldest first.
func (h *History) Turns() []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Window returns a copy of the trailing n turns, oldest first.
func (h *History) Window(n int) []domain.ConversationTurn {
	if n <= 0 || n >= len(h.turns) {
		return h.Turns()
	}
	out := make([]domain.ConversationTurn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

// Last returns the most recent turn, or nil when the history is empty.
func (h *History) Last() *domain.ConversationTurn {
	if len(h.turns) == 0 {
		return nil
	}
	t := h.turns[len(h.turns)-1]
	return &t
}

func (h *History) Len() int { return len(h.turns) }

// Clear drops all turns.
func (h *History) Clear() { h.turns = h.turns[:0] }
