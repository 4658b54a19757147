package practice

import (
	"context"
	"time"

	"github.com/example/vocabot/pkg/models"
)

// DistractorPoolSize is how many other category words are loaded for options
const DistractorPoolSize = 10

// Mode decides which words a session draws from
type Mode string

const (
	// ModeLearn draws never practiced words of the chosen level
	ModeLearn Mode = "learn"
	// ModeReview draws practiced words not yet practiced today
	ModeReview Mode = "review"
)

// ParseMode parses "learn" or "review"
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeLearn, ModeReview:
		return m, nil
	}
	return "", validationErr("unknown mode %q", s)
}

// Candidate is the next word to ask together with words usable as distractors
type Candidate struct {
	Word        models.Word
	Distractors []models.Word
}

// WordSelector picks the next word of a session
type WordSelector struct {
	words WordStore
	now   func() time.Time
}

// NewWordSelector creates a selector. now decides where "today" starts.
func NewWordSelector(words WordStore, now func() time.Time) *WordSelector {
	if now == nil {
		now = time.Now
	}
	return &WordSelector{words: words, now: now}
}

// SelectNext returns the oldest eligible word not in excludeIDs, or nil when
// there is none. Learn mode with level 0 matches words of any level.
func (s *WordSelector) SelectNext(ctx context.Context, userID, categoryID int64, level int, mode Mode, excludeIDs []int64) (*Candidate, error) {
	q := models.WordQuery{
		UserID:     userID,
		CategoryID: categoryID,
		ExcludeIDs: excludeIDs,
		Limit:      1,
	}

	switch mode {
	case ModeLearn:
		q.Mastery = models.MasteryUnpracticed
		q.Level = level
	case ModeReview:
		q.Mastery = models.MasteryPracticed
		q.PracticedBefore = startOfDay(s.now())
	default:
		return nil, validationErr("unknown mode %q", mode)
	}

	found, err := s.words.QueryWords(ctx, q)
	if err != nil {
		return nil, storeErr("select next word", err)
	}
	if len(found) == 0 {
		return nil, nil
	}

	word := found[0]
	distractors, err := s.words.QueryWords(ctx, models.WordQuery{
		UserID:     userID,
		CategoryID: categoryID,
		ExcludeIDs: []int64{word.ID},
		Limit:      DistractorPoolSize,
	})
	if err != nil {
		return nil, storeErr("load distractors", err)
	}

	return &Candidate{Word: word, Distractors: distractors}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
