package practice

import (
	"context"

	"github.com/example/vocabot/pkg/models"
)

// WordStore is the persistence the engine reads words from and writes
// progress to. Implemented by database.WordRepository.
type WordStore interface {
	QueryWords(ctx context.Context, q models.WordQuery) ([]models.Word, error)
	UpdateWordProgress(ctx context.Context, id int64, p models.WordProgress) error
	BulkReassignLevels(ctx context.Context, categoryID int64, assignments []models.LevelAssignment) error
}

// CategoryStore provides category lookups and level size updates.
// Implemented by database.CategoryRepository.
type CategoryStore interface {
	GetCategory(ctx context.Context, categoryID int64) (*models.Category, error)
	SetWordsPerLevel(ctx context.Context, categoryID int64, wordsPerLevel int) error
}

// ResultRecorder keeps completed session summaries.
// Implemented by database.PracticeResultRepository.
type ResultRecorder interface {
	Create(ctx context.Context, result *models.PracticeResult) error
}
