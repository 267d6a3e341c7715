// Package inventory holds the set of ingredients the user currently has on
// hand. Entries are keyed by canonical name (see ontology.Normalize), kept in
// insertion order, and written through a Persister on every mutation.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amosley/fridgechef/internal/domain"
	"github.com/amosley/fridgechef/internal/ontology"
)

// Persister writes and reads the full inventory as one replace-style
// operation; no partial updates.
type Persister interface {
	Save(ctx context.Context, items []domain.Ingredient) error
	Load(ctx context.Context) ([]domain.Ingredient, error)
}

// Store is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	byName    map[string]*domain.Ingredient
	order     []string
	persister Persister
	logger    *slog.Logger
}

func NewStore(p Persister, logger *slog.Logger) *Store {
	return &Store{
		byName:    make(map[string]*domain.Ingredient),
		persister: p,
		logger:    logger,
	}
}

// Load replaces the in-memory state with the persisted inventory. A missing
// or corrupt record degrades to an empty inventory with a logged warning
// rather than failing.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load persisted inventory, starting empty", "error", err)
		items = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName = make(map[string]*domain.Ingredient, len(items))
	s.order = s.order[:0]
	for i := range items {
		item := items[i]
		item.Name = ontology.Normalize(item.Name)
		if item.Name == "" {
			continue
		}
		if _, exists := s.byName[item.Name]; exists {
			continue
		}
		s.byName[item.Name] = &item
		s.order = append(s.order, item.Name)
	}
	return nil
}

// MergeDetected normalizes each label and inserts the canonical names not
// already present with source=detected. Existing entries are never removed;
// a re-detection raises confidence but never lowers it, and never flips a
// manual entry back to detected. Returns the canonical names actually added,
// in detection order.
func (s *Store) MergeDetected(ctx context.Context, labels []string, confidences []float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]string, 0, len(labels))
	changed := false
	for i, raw := range labels {
		name := ontology.Normalize(raw)
		if name == "" {
			continue
		}
		var conf float64
		if i < len(confidences) {
			conf = confidences[i]
		}

		if existing, ok := s.byName[name]; ok {
			if existing.Source != domain.SourceManual && conf > existing.Confidence {
				existing.Confidence = conf
				changed = true
			}
			continue
		}

		s.byName[name] = &domain.Ingredient{
			Name:       name,
			Category:   ontology.CategoryOf(name),
			Source:     domain.SourceDetected,
			Confidence: conf,
		}
		s.order = append(s.order, name)
		added = append(added, name)
		changed = true
	}

	if changed {
		if err := s.persistLocked(ctx); err != nil {
			return added, err
		}
	}
	return added, nil
}

// AddManual inserts (or re-marks) an ingredient the user typed in.
// Returns the canonical name stored.
func (s *Store) AddManual(ctx context.Context, rawName string) (string, error) {
	name := ontology.Normalize(rawName)
	if name == "" {
		return "", fmt.Errorf("ingredient name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byName[name]; ok {
		existing.Source = domain.SourceManual
		existing.Confidence = 0
	} else {
		s.byName[name] = &domain.Ingredient{
			Name:     name,
			Category: ontology.CategoryOf(name),
			Source:   domain.SourceManual,
		}
		s.order = append(s.order, name)
	}
	return name, s.persistLocked(ctx)
}

// Remove deletes an ingredient by (raw or canonical) name. Removing an
// absent name is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, rawName string) error {
	name := ontology.Normalize(rawName)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return nil
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.persistLocked(ctx)
}

// Reset clears the inventory. Only this explicit operation empties it.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName = make(map[string]*domain.Ingredient)
	s.order = s.order[:0]
	return s.persistLocked(ctx)
}

// Snapshot returns a read-only copy of the inventory in insertion order.
func (s *Store) Snapshot() []domain.Ingredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Names returns the canonical names in insertion order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

func (s *Store) snapshotLocked() []domain.Ingredient {
	items := make([]domain.Ingredient, 0, len(s.order))
	for _, name := range s.order {
		items = append(items, *s.byName[name])
	}
	return items
}

// persistLocked writes the full inventory through the persister. Write
// failures surface to the caller so the user knows the update was not saved.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		return fmt.Errorf("failed to persist inventory: %w", err)
	}
	return nil
}
