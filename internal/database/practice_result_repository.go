package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/vocabot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// PracticeResultRepository handles database operations for practice results
type PracticeResultRepository struct {
	db *sqlx.DB
}

// NewPracticeResultRepository creates a new repository instance
func NewPracticeResultRepository(db *sqlx.DB) *PracticeResultRepository {
	return &PracticeResultRepository{db: db}
}

// Create inserts a new practice result
func (r *PracticeResultRepository) Create(ctx context.Context, result *models.PracticeResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}

	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO practice_results (
			user_id, category_id, mode, total_words, correct_words,
			wrong_words, skipped_words, percentage, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.UserID,
		result.CategoryID,
		result.Mode,
		result.TotalWords,
		result.CorrectWords,
		result.WrongWords,
		result.SkippedWords,
		result.Percentage,
		result.StartedAt.UTC(),
		result.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create practice result: %w", err)
	}
	result.ID = id
	return nil
}

// GetByUserID returns all practice results for a user, newest first
func (r *PracticeResultRepository) GetByUserID(ctx context.Context, userID int64) ([]models.PracticeResult, error) {
	results := []models.PracticeResult{}
	query := r.db.Rebind(`
		SELECT id, user_id, category_id, mode, total_words, correct_words, wrong_words,
			skipped_words, percentage, started_at, completed_at
		FROM practice_results
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC`)
	if err := r.db.SelectContext(ctx, &results, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get practice results: %w", err)
	}
	return results, nil
}

// GetUserStats aggregates the stored practice results of a user
func (r *PracticeResultRepository) GetUserStats(ctx context.Context, userID int64) (*models.PracticeStats, error) {
	var stats models.PracticeStats
	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS sessions,
			COALESCE(SUM(total_words), 0) AS words_practiced,
			COALESCE(SUM(correct_words), 0) AS correct_words,
			COALESCE(AVG(percentage), 0) AS avg_percentage
		FROM practice_results
		WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get practice stats: %w", err)
	}
	return &stats, nil
}
