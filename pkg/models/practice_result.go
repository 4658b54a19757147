package models

import "time"

// PracticeResult stores the outcome of a completed practice session
type PracticeResult struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	CategoryID   int64     `json:"category_id" db:"category_id"`
	Mode         string    `json:"mode" db:"mode"` // "learn" or "review"
	TotalWords   int       `json:"total_words" db:"total_words"`
	CorrectWords int       `json:"correct_words" db:"correct_words"`
	WrongWords   int       `json:"wrong_words" db:"wrong_words"`
	SkippedWords int       `json:"skipped_words" db:"skipped_words"`
	Percentage   int       `json:"percentage" db:"percentage"`
	StartedAt    time.Time `json:"started_at" db:"started_at"`
	CompletedAt  time.Time `json:"completed_at" db:"completed_at"`
}

// PracticeStats aggregates a user's stored practice results
type PracticeStats struct {
	Sessions       int     `db:"sessions"`
	WordsPracticed int     `db:"words_practiced"`
	CorrectWords   int     `db:"correct_words"`
	AvgPercentage  float64 `db:"avg_percentage"`
}
