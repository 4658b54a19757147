package models

import "time"

// Category groups a user's words. Words inside a category may be split into
// fixed-size levels.
type Category struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	CurrentLevel  int       `json:"current_level" db:"current_level"`
	WordsPerLevel *int      `json:"words_per_level,omitempty" db:"words_per_level"` // nil disables leveling
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// LevelingEnabled reports whether the category splits words into levels
func (c Category) LevelingEnabled() bool {
	return c.WordsPerLevel != nil && *c.WordsPerLevel > 0
}
