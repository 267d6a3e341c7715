package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amosley/fridgechef/internal/domain"
)

// RecipeStore keeps recipes the user chose to save out of a chat session.
type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func (s *RecipeStore) Create(ctx context.Context, title, body string) (*domain.Recipe, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO recipes (title, body) VALUES (?, ?)
	`, title, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RecipeStore) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe := &domain.Recipe{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, body, created_at FROM recipes WHERE id = ?
	`, id).Scan(&recipe.ID, &recipe.Title, &recipe.Body, &recipe.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return recipe, nil
}

func (s *RecipeStore) List(ctx context.Context) ([]*domain.Recipe, error) {
	return s.query(ctx, `
		SELECT id, title, body, created_at FROM recipes ORDER BY created_at DESC, id DESC
	`)
}

func (s *RecipeStore) Search(ctx context.Context, query string) ([]*domain.Recipe, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.query(ctx, `
		SELECT id, title, body, created_at FROM recipes
		WHERE LOWER(title) LIKE ? OR LOWER(body) LIKE ?
		ORDER BY created_at DESC, id DESC
	`, pattern, pattern)
}

func (s *RecipeStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("recipe not found")
	}
	return nil
}

func (s *RecipeStore) query(ctx context.Context, q string, args ...any) ([]*domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var recipes []*domain.Recipe
	for rows.Next() {
		recipe := &domain.Recipe{}
		if err := rows.Scan(&recipe.ID, &recipe.Title, &recipe.Body, &recipe.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}
	return recipes, nil
}
