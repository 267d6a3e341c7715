// Package chef orchestrates the fridge-to-recipe conversation: it drives the
// detection and generation clients, keeps the inventory and per-session
// history consistent, and converts every client failure into a degraded,
// user-facing result. No raw service error leaves this package through the
// HandleImage/HandleMessage entry points.
package chef

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/amosley/fridgechef/internal/chat"
	"github.com/amosley/fridgechef/internal/detect"
	"github.com/amosley/fridgechef/internal/domain"
	"github.com/amosley/fridgechef/internal/generate"
	"github.com/amosley/fridgechef/internal/inventory"
	"github.com/amosley/fridgechef/internal/shoppinglist"
)

// Degraded-mode messages returned when a collaborator is down. The state that
// the failed step would have written is left untouched.
const (
	detectionDownReply  = "Ingredient detection is unavailable right now. Your inventory was not changed; please try the scan again in a moment."
	generationDownReply = "The cooking assistant is unavailable right now. Your message was kept; send it again in a moment."
)

// ErrSessionNotFound is returned for operations on an unknown session id.
var ErrSessionNotFound = fmt.Errorf("session not found")

// recipeRepository is the subset of store.RecipeStore the orchestrator needs.
type recipeRepository interface {
	Create(ctx context.Context, title, body string) (*domain.Recipe, error)
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	List(ctx context.Context) ([]*domain.Recipe, error)
	Search(ctx context.Context, query string) ([]*domain.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

// Session pairs a conversation history with the lock that serializes all
// state transitions for it: a concurrent scan and chat on the same session
// can never interleave a partial inventory read with a write.
type Session struct {
	ID      string
	mu      sync.Mutex
	history *chat.History
}

type Orchestrator struct {
	detector  detect.Detector
	generator generate.Generator
	inv       *inventory.Store
	recipes   recipeRepository
	window    int
	maxTurns  int
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(
	detector detect.Detector,
	generator generate.Generator,
	inv *inventory.Store,
	recipes recipeRepository,
	window, maxTurns int,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		detector:  detector,
		generator: generator,
		inv:       inv,
		recipes:   recipes,
		window:    window,
		maxTurns:  maxTurns,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// NewSession registers a fresh session and returns its id.
func (o *Orchestrator) NewSession() string {
	id := uuid.NewString()
	o.mu.Lock()
	o.sessions[id] = &Session{ID: id, history: chat.NewHistory(o.maxTurns)}
	o.mu.Unlock()
	return id
}

func (o *Orchestrator) session(id string) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ScanResult is the outcome of an image scan.
type ScanResult struct {
	Added    []string `json:"added"`
	Reply    string   `json:"reply"`
	Degraded bool     `json:"degraded"`
}

// HandleImage detects ingredients in the image, merges them into the
// inventory, and appends a synthetic assistant turn summarizing the change.
// A detection failure mutates neither inventory nor history. A persistence
// write failure is returned as an error so the caller knows the update was
// not saved.
func (o *Orchestrator) HandleImage(ctx context.Context, sessionID string, image []byte) (*ScanResult, error) {
	session, err := o.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	o.logger.Info("scan started", "session_id", sessionID, "bytes", len(image))

	result, err := o.detector.Detect(ctx, image)
	if err != nil {
		o.logger.Warn("detection failed", "session_id", sessionID, "error", err)
		return &ScanResult{Reply: detectionDownReply, Degraded: true}, nil
	}

	added, err := o.inv.MergeDetected(ctx, result.Labels, result.Confidences)
	if err != nil {
		return nil, err
	}

	reply := summarizeScan(added)
	session.history.Append(domain.RoleAssistant, reply)

	o.logger.Info("scan complete", "session_id", sessionID,
		"labels_detected", len(result.Labels), "added", len(added))
	return &ScanResult{Added: added, Reply: reply}, nil
}

func summarizeScan(added []string) string {
	if len(added) == 0 {
		return "No new ingredients found."
	}
	return "Added to your inventory: " + strings.Join(added, ", ") + "."
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}

// HandleMessage appends the user turn, builds the grounded prompt, and asks
// the generation service for the next utterance. On failure no assistant turn
// is appended, and re-sending the identical message while it is still the
// unanswered tail does not grow the history.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, userText string, opts chat.PromptOptions) (*ChatResult, error) {
	session, err := o.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if last := session.history.Last(); last == nil || last.Role != domain.RoleUser || last.Text != userText {
		session.history.Append(domain.RoleUser, userText)
	}

	prompt := chat.BuildPrompt(o.inv.Names(), session.history.Window(o.window), opts)

	reply, err := o.generator.Generate(ctx, prompt, nil)
	if err != nil {
		o.logger.Warn("generation failed", "session_id", sessionID, "error", err)
		return &ChatResult{Reply: generationDownReply, Degraded: true}, nil
	}

	session.history.Append(domain.RoleAssistant, reply)
	return &ChatResult{Reply: reply}, nil
}

// ShoppingResult is the outcome of a shopping-list request.
type ShoppingResult struct {
	List     *shoppinglist.List `json:"list,omitempty"`
	Reply    string             `json:"reply,omitempty"`
	Degraded bool               `json:"degraded"`
}

// PlanShoppingList asks the generation service for a strict-JSON shopping
// list for the requested dish. Invalid model output gets one correction
// round before giving up.
func (o *Orchestrator) PlanShoppingList(ctx context.Context, sessionID, request string) (*ShoppingResult, error) {
	session, err := o.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	names := o.inv.Names()
	prompt := shoppinglist.BuildPrompt(names, request, session.history.Window(4))

	raw, err := o.generator.Generate(ctx, prompt, nil)
	if err != nil {
		o.logger.Warn("shopping list generation failed", "session_id", sessionID, "error", err)
		return &ShoppingResult{Reply: generationDownReply, Degraded: true}, nil
	}

	list, parseErr := parseAndValidate(raw, names)
	if parseErr != nil {
		o.logger.Warn("shopping list output invalid, retrying with correction",
			"session_id", sessionID, "error", parseErr)

		correction := shoppinglist.BuildCorrectionPrompt(names, request, raw, parseErr.Error())
		raw, err = o.generator.Generate(ctx, correction, nil)
		if err != nil {
			return &ShoppingResult{Reply: generationDownReply, Degraded: true}, nil
		}
		list, parseErr = parseAndValidate(raw, names)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid shopping list after retry: %w", parseErr)
		}
	}

	return &ShoppingResult{List: list}, nil
}

func parseAndValidate(raw string, inventory []string) (*shoppinglist.List, error) {
	list, err := shoppinglist.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := shoppinglist.Validate(list, inventory); err != nil {
		return nil, err
	}
	return list, nil
}

// History returns a copy of the session's conversation so far.
func (o *Orchestrator) History(sessionID string) ([]domain.ConversationTurn, error) {
	session, err := o.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.history.Turns(), nil
}

// ClearHistory drops the session's conversation. The inventory is untouched.
func (o *Orchestrator) ClearHistory(sessionID string) error {
	session, err := o.session(sessionID)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	session.history.Clear()
	return nil
}

// Inventory exposes the orchestrator's inventory store to the web layer.
func (o *Orchestrator) Inventory() *inventory.Store { return o.inv }

// SaveRecipe stores a generated recipe for later. Title falls back to the
// first line of the body.
func (o *Orchestrator) SaveRecipe(ctx context.Context, title, body string) (*domain.Recipe, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("recipe body is empty")
	}
	if title == "" {
		title = strings.TrimSpace(strings.SplitN(body, "\n", 2)[0])
	}
	return o.recipes.Create(ctx, title, body)
}

func (o *Orchestrator) ListRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	return o.recipes.List(ctx)
}

func (o *Orchestrator) SearchRecipes(ctx context.Context, query string) ([]*domain.Recipe, error) {
	return o.recipes.Search(ctx, query)
}

func (o *Orchestrator) DeleteRecipe(ctx context.Context, id int64) error {
	return o.recipes.Delete(ctx, id)
}

// ServiceHealth reports the liveness of both collaborators.
type ServiceHealth struct {
	Detection  bool `json:"detection"`
	Generation bool `json:"generation"`
}

func (o *Orchestrator) Health(ctx context.Context) ServiceHealth {
	return ServiceHealth{
		Detection:  o.detector.Health(ctx),
		Generation: o.generator.Health(ctx),
	}
}
