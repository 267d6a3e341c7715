package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/amosley/fridgechef/internal/domain"
)

// InventoryStore persists the inventory snapshot in sqlite. Save replaces the
// whole table inside one transaction, matching the document-overwrite
// contract of the file persister.
type InventoryStore struct {
	db *sql.DB
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) Save(ctx context.Context, items []domain.Ingredient) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back inventory save", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredients`); err != nil {
		return fmt.Errorf("failed to clear ingredients: %w", err)
	}

	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ingredients (position, name, category, source, confidence)
			VALUES (?, ?, ?, ?, ?)
		`, i, item.Name, string(item.Category), string(item.Source), item.Confidence)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory: %w", err)
	}
	return nil
}

func (s *InventoryStore) Load(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, category, source, confidence FROM ingredients ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []domain.Ingredient
	for rows.Next() {
		var item domain.Ingredient
		var category, source string
		if err := rows.Scan(&item.Name, &category, &source, &item.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		item.Category = domain.Category(category)
		item.Source = domain.Source(source)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingredients: %w", err)
	}
	return items, nil
}
