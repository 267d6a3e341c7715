package domain

import "time"

// Category buckets an ingredient for display and shopping-list grouping.
type Category string

const (
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryProtein Category = "protein"
	CategoryPantry  Category = "pantry"
	CategoryOther   Category = "other"
)

// Source records how an ingredient entered the inventory.
type Source string

const (
	SourceDetected Source = "detected"
	SourceManual   Source = "manual"
)

// Ingredient is a single inventory entry. Name is canonical (lowercase,
// singular, trimmed) and unique within an inventory. Confidence is set only
// for detected items; zero means unknown.
type Ingredient struct {
	Name       string   `json:"name"`
	Category   Category `json:"category,omitempty"`
	Source     Source   `json:"source,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one utterance in a session's chat history.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Recipe is a saved recipe generated during a chat session.
type Recipe struct {
	ID        int64
	Title     string
	Body      string
	CreatedAt time.Time
}
