package practice

import (
	"context"
	"fmt"

	"github.com/example/vocabot/pkg/models"
)

// LevelRange is the span of levels a learner can pick from
type LevelRange struct {
	Current int
	Max     int
}

// LevelManager splits a category's words into fixed-size levels
type LevelManager struct {
	words      WordStore
	categories CategoryStore
}

// NewLevelManager creates a level manager
func NewLevelManager(words WordStore, categories CategoryStore) *LevelManager {
	return &LevelManager{words: words, categories: categories}
}

// LevelForNewWord returns the level a new word joins: the highest level while
// it has room, otherwise the next one. Nil wordsPerLevel disables leveling.
func LevelForNewWord(existing []models.Word, wordsPerLevel *int) *int {
	if wordsPerLevel == nil || *wordsPerLevel < 1 {
		return nil
	}

	maxLevel, inMax := 0, 0
	for _, w := range existing {
		lvl := w.LevelValue()
		switch {
		case lvl > maxLevel:
			maxLevel, inMax = lvl, 1
		case lvl == maxLevel && lvl > 0:
			inMax++
		}
	}

	level := maxLevel
	if maxLevel == 0 || inMax >= *wordsPerLevel {
		level = maxLevel + 1
	}
	return &level
}

// AssignNewWord sets word.Level for a word about to be added to its category
func (m *LevelManager) AssignNewWord(ctx context.Context, word *models.Word) error {
	category, err := m.categories.GetCategory(ctx, word.CategoryID)
	if err != nil {
		return storeErr("get category", err)
	}
	if category == nil {
		return fmt.Errorf("category %d: %w", word.CategoryID, ErrNoWords)
	}
	if !category.LevelingEnabled() {
		word.Level = nil
		return nil
	}

	existing, err := m.words.QueryWords(ctx, models.WordQuery{CategoryID: word.CategoryID})
	if err != nil {
		return storeErr("query category words", err)
	}
	word.Level = LevelForNewWord(existing, category.WordsPerLevel)
	return nil
}

// ReorganizeIntoLevels reassigns every word of a category to chunks of
// wordsPerLevel words in creation order and stores the size on the category.
func (m *LevelManager) ReorganizeIntoLevels(ctx context.Context, categoryID int64, wordsPerLevel int) error {
	if wordsPerLevel < 1 {
		return validationErr("words per level must be positive, got %d", wordsPerLevel)
	}

	words, err := m.words.QueryWords(ctx, models.WordQuery{CategoryID: categoryID})
	if err != nil {
		return storeErr("query category words", err)
	}

	assignments := make([]models.LevelAssignment, len(words))
	for i, w := range words {
		assignments[i] = models.LevelAssignment{ID: w.ID, Level: i/wordsPerLevel + 1}
	}

	if err := m.words.BulkReassignLevels(ctx, categoryID, assignments); err != nil {
		return storeErr("reassign levels", err)
	}
	if err := m.categories.SetWordsPerLevel(ctx, categoryID, wordsPerLevel); err != nil {
		return storeErr("set words per level", err)
	}
	return nil
}

// CurrentAndMaxLevel returns (1,1) when no word of the category has a level,
// otherwise (1, highest level).
func (m *LevelManager) CurrentAndMaxLevel(ctx context.Context, userID, categoryID int64) (LevelRange, error) {
	words, err := m.words.QueryWords(ctx, models.WordQuery{UserID: userID, CategoryID: categoryID})
	if err != nil {
		return LevelRange{}, storeErr("query category words", err)
	}

	r := LevelRange{Current: 1, Max: 1}
	for _, w := range words {
		if lvl := w.LevelValue(); lvl > r.Max {
			r.Max = lvl
		}
	}
	return r, nil
}

// Leveled reports whether there is more than one level to choose from
func (r LevelRange) Leveled() bool {
	return r.Max > 1
}
