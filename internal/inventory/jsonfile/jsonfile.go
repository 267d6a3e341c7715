// Package jsonfile persists the inventory as a single JSON document,
// overwritten atomically on every mutation (write to a temp file in the same
// directory, then rename).
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/amosley/fridgechef/internal/domain"
)

type Persister struct {
	path string
}

func New(path string) (*Persister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create inventory directory: %w", err)
	}
	return &Persister{path: path}, nil
}

// record is the on-disk shape: canonical name → attributes.
type record struct {
	Category   domain.Category `json:"category,omitempty"`
	Source     domain.Source   `json:"source,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
}

type document struct {
	Ingredients map[string]record `json:"ingredients"`
	Order       []string          `json:"order"`
}

func (p *Persister) Save(_ context.Context, items []domain.Ingredient) error {
	doc := document{
		Ingredients: make(map[string]record, len(items)),
		Order:       make([]string, 0, len(items)),
	}
	for _, item := range items {
		doc.Ingredients[item.Name] = record{
			Category:   item.Category,
			Source:     item.Source,
			Confidence: item.Confidence,
		}
		doc.Order = append(doc.Order, item.Name)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close inventory file: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace inventory file: %w", err)
	}
	return nil
}

func (p *Persister) Load(_ context.Context) ([]domain.Ingredient, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read inventory file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt inventory file: %w", err)
	}

	order := doc.Order
	if len(order) == 0 {
		// Documents written by hand may omit the order array; fall back to a
		// stable alphabetical order rather than map iteration order.
		for name := range doc.Ingredients {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	items := make([]domain.Ingredient, 0, len(order))
	for _, name := range order {
		rec, ok := doc.Ingredients[name]
		if !ok {
			continue
		}
		items = append(items, domain.Ingredient{
			Name:       name,
			Category:   rec.Category,
			Source:     rec.Source,
			Confidence: rec.Confidence,
		})
	}
	return items, nil
}
