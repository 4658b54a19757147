package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/vocabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const wordColumns = `id, user_id, category_id, word, translation, level, mastery_level,
	last_practiced_at, correct_count, incorrect_count, created_at`

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new word. A zero CreatedAt is set to the current time.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.CreatedAt.IsZero() {
		word.CreatedAt = time.Now()
	}
	word.CreatedAt = word.CreatedAt.UTC()
	if word.LastPracticedAt != nil {
		practiced := word.LastPracticedAt.UTC()
		word.LastPracticedAt = &practiced
	}

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO words (user_id, category_id, word, translation, level, mastery_level,
			last_practiced_at, correct_count, incorrect_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		word.UserID,
		word.CategoryID,
		word.Word,
		word.Translation,
		word.Level,
		word.MasteryLevel,
		word.LastPracticedAt,
		word.CorrectCount,
		word.IncorrectCount,
		word.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	word.ID = id
	return nil
}

// GetByID returns a word by ID, or nil if it does not exist
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT " + wordColumns + " FROM words WHERE id = ?")
	err := r.db.GetContext(ctx, &word, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", err)
	}
	return &word, nil
}

// FindByText looks up a word in a category by its source text (case-insensitive)
func (r *WordRepository) FindByText(ctx context.Context, categoryID int64, text string) (*models.Word, error) {
	var word models.Word
	query := r.db.Rebind("SELECT " + wordColumns + " FROM words WHERE category_id = ? AND LOWER(word) = LOWER(?)")
	err := r.db.GetContext(ctx, &word, query, categoryID, text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find word: %w", err)
	}
	return &word, nil
}

// QueryWords returns the words matching q ordered by creation time
func (r *WordRepository) QueryWords(ctx context.Context, q models.WordQuery) ([]models.Word, error) {
	query, args, err := buildWordQuery(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build word query: %w", err)
	}

	words := []models.Word{}
	if err := r.db.SelectContext(ctx, &words, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	return words, nil
}

// buildWordQuery renders q into SQL with '?' placeholders, expanding id lists
func buildWordQuery(q models.WordQuery) (string, []interface{}, error) {
	var (
		where []string
		args  []interface{}
	)

	if q.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, q.CategoryID)
	}
	if len(q.IDs) > 0 {
		where = append(where, "id IN (?)")
		args = append(args, q.IDs)
	}
	if q.Level > 0 {
		where = append(where, "level = ?")
		args = append(args, q.Level)
	}
	switch q.Mastery {
	case models.MasteryUnpracticed:
		where = append(where, "mastery_level = 0")
	case models.MasteryPracticed:
		where = append(where, "mastery_level > 0")
	}
	if !q.PracticedBefore.IsZero() {
		where = append(where, "(last_practiced_at IS NULL OR last_practiced_at < ?)")
		args = append(args, q.PracticedBefore.UTC())
	}
	if len(q.ExcludeIDs) > 0 {
		where = append(where, "id NOT IN (?)")
		args = append(args, q.ExcludeIDs)
	}

	var b strings.Builder
	b.WriteString("SELECT " + wordColumns + " FROM words")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at ASC, id ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return sqlx.In(b.String(), args...)
}

// UpdateWordProgress stores mastery, practice time and answer counters
func (r *WordRepository) UpdateWordProgress(ctx context.Context, id int64, p models.WordProgress) error {
	arg := map[string]interface{}{
		"id":                id,
		"mastery_level":     p.MasteryLevel,
		"last_practiced_at": p.LastPracticedAt.UTC(),
		"correct_count":     p.CorrectCount,
		"incorrect_count":   p.IncorrectCount,
	}
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE words SET
			mastery_level = :mastery_level,
			last_practiced_at = :last_practiced_at,
			correct_count = :correct_count,
			incorrect_count = :incorrect_count
		WHERE id = :id`, arg)
	if err != nil {
		return fmt.Errorf("failed to update word progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("word %d not found", id)
	}
	return nil
}

// BulkReassignLevels updates the level of every listed word in one transaction
func (r *WordRepository) BulkReassignLevels(ctx context.Context, categoryID int64, assignments []models.LevelAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	query := tx.Rebind("UPDATE words SET level = ? WHERE id = ? AND category_id = ?")
	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, query, a.Level, a.ID, categoryID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reassign level of word %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
