package models

import "time"

// Mastery bounds for Word.MasteryLevel
const (
	MinMastery = 0
	MaxMastery = 100
)

// Word represents a word/translation pair owned by a user
type Word struct {
	ID              int64      `json:"id" db:"id"`
	UserID          int64      `json:"user_id" db:"user_id"`
	CategoryID      int64      `json:"category_id" db:"category_id"`
	Word            string     `json:"word" db:"word"`
	Translation     string     `json:"translation" db:"translation"`
	Level           *int       `json:"level,omitempty" db:"level"`               // nil when leveling is disabled
	MasteryLevel    int        `json:"mastery_level" db:"mastery_level"`         // 0-100 proficiency
	LastPracticedAt *time.Time `json:"last_practiced_at" db:"last_practiced_at"` // nil until first answer
	CorrectCount    int        `json:"correct_count" db:"correct_count"`
	IncorrectCount  int        `json:"incorrect_count" db:"incorrect_count"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// HasLevel reports whether the word belongs to a level
func (w Word) HasLevel() bool {
	return w.Level != nil
}

// LevelValue returns the word's level or 0 when unset
func (w Word) LevelValue() int {
	if w.Level == nil {
		return 0
	}
	return *w.Level
}

// WordProgress is the set of fields changed after an answer
type WordProgress struct {
	MasteryLevel    int       `db:"mastery_level"`
	LastPracticedAt time.Time `db:"last_practiced_at"`
	CorrectCount    int       `db:"correct_count"`
	IncorrectCount  int       `db:"incorrect_count"`
}

// LevelAssignment moves one word into a level
type LevelAssignment struct {
	ID    int64 `db:"id"`
	Level int   `db:"level"`
}

// MasteryFilter restricts a query by mastery level
type MasteryFilter int

const (
	// MasteryAny does not filter by mastery
	MasteryAny MasteryFilter = iota
	// MasteryUnpracticed matches mastery_level = 0
	MasteryUnpracticed
	// MasteryPracticed matches mastery_level > 0
	MasteryPracticed
)

// WordQuery describes a word lookup. Results are always ordered by
// created_at, id ascending.
type WordQuery struct {
	UserID          int64   // 0 matches any user
	CategoryID      int64   // 0 matches any category
	IDs             []int64 // restrict to these ids when non-empty
	Level           int     // 0 matches any level
	Mastery         MasteryFilter
	PracticedBefore time.Time // when set: last_practiced_at unset or before this instant
	ExcludeIDs      []int64
	Limit           int // 0 = unlimited
}
