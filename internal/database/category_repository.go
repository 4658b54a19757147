package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const categoryColumns = "id, user_id, name, current_level, words_per_level, created_at"

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new repository instance
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetAllByUserID returns all categories for a given user
func (r *CategoryRepository) GetAllByUserID(ctx context.Context, userID int64) ([]models.Category, error) {
	categories := []models.Category{}
	query := r.db.Rebind("SELECT " + categoryColumns + " FROM categories WHERE user_id = ? ORDER BY created_at ASC, id ASC")
	if err := r.db.SelectContext(ctx, &categories, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category by ID, or nil if it does not exist
func (r *CategoryRepository) GetCategory(ctx context.Context, categoryID int64) (*models.Category, error) {
	var category models.Category
	query := r.db.Rebind("SELECT " + categoryColumns + " FROM categories WHERE id = ?")
	err := r.db.GetContext(ctx, &category, query, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetByName returns the user's category with the given name, or nil
func (r *CategoryRepository) GetByName(ctx context.Context, userID int64, name string) (*models.Category, error) {
	var category models.Category
	query := r.db.Rebind("SELECT " + categoryColumns + " FROM categories WHERE user_id = ? AND name = ?")
	err := r.db.GetContext(ctx, &category, query, userID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return &category, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.CurrentLevel == 0 {
		category.CurrentLevel = 1
	}
	category.CreatedAt = time.Now().UTC()

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO categories (user_id, name, current_level, words_per_level, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		category.UserID,
		category.Name,
		category.CurrentLevel,
		category.WordsPerLevel,
		category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	category.ID = id
	return nil
}

// SetWordsPerLevel stores the level size of a category
func (r *CategoryRepository) SetWordsPerLevel(ctx context.Context, categoryID int64, wordsPerLevel int) error {
	query := r.db.Rebind("UPDATE categories SET words_per_level = ? WHERE id = ?")
	result, err := r.db.ExecContext(ctx, query, wordsPerLevel, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category %d not found", categoryID)
	}
	return nil
}
