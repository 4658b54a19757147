package practice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/vocabot/pkg/models"
	"github.com/samber/lo"
)

var errBoom = errors.New("boom")

type fakeWordStore struct {
	words    map[int64]*models.Word
	nextID   int64
	queryErr error
	queries  int
	failAt   int // fail the n-th query (1-based) when set
	updates  []models.WordProgress
}

func newFakeWordStore() *fakeWordStore {
	return &fakeWordStore{words: make(map[int64]*models.Word)}
}

// add stores a word created one minute after the previous one
func (s *fakeWordStore) add(categoryID int64, word, translation string, level *int, mastery int) *models.Word {
	s.nextID++
	w := &models.Word{
		ID:           s.nextID,
		UserID:       1,
		CategoryID:   categoryID,
		Word:         word,
		Translation:  translation,
		Level:        level,
		MasteryLevel: mastery,
		CreatedAt:    time.Date(2024, 1, 1, 0, int(s.nextID), 0, 0, time.UTC),
	}
	s.words[w.ID] = w
	return w
}

func (s *fakeWordStore) QueryWords(_ context.Context, q models.WordQuery) ([]models.Word, error) {
	s.queries++
	if s.queryErr != nil && (s.failAt == 0 || s.failAt == s.queries) {
		return nil, s.queryErr
	}

	var out []models.Word
	for _, w := range s.words {
		if q.UserID != 0 && w.UserID != q.UserID {
			continue
		}
		if q.CategoryID != 0 && w.CategoryID != q.CategoryID {
			continue
		}
		if len(q.IDs) > 0 && !lo.Contains(q.IDs, w.ID) {
			continue
		}
		if q.Level > 0 && w.LevelValue() != q.Level {
			continue
		}
		if q.Mastery == models.MasteryUnpracticed && w.MasteryLevel != 0 {
			continue
		}
		if q.Mastery == models.MasteryPracticed && w.MasteryLevel == 0 {
			continue
		}
		if !q.PracticedBefore.IsZero() && w.LastPracticedAt != nil && !w.LastPracticedAt.Before(q.PracticedBefore) {
			continue
		}
		if lo.Contains(q.ExcludeIDs, w.ID) {
			continue
		}
		out = append(out, *w)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *fakeWordStore) UpdateWordProgress(_ context.Context, id int64, p models.WordProgress) error {
	w, ok := s.words[id]
	if !ok {
		return fmt.Errorf("word %d not found", id)
	}
	w.MasteryLevel = p.MasteryLevel
	practiced := p.LastPracticedAt
	w.LastPracticedAt = &practiced
	w.CorrectCount = p.CorrectCount
	w.IncorrectCount = p.IncorrectCount
	s.updates = append(s.updates, p)
	return nil
}

func (s *fakeWordStore) BulkReassignLevels(_ context.Context, categoryID int64, assignments []models.LevelAssignment) error {
	for _, a := range assignments {
		w, ok := s.words[a.ID]
		if !ok || w.CategoryID != categoryID {
			continue
		}
		level := a.Level
		w.Level = &level
	}
	return nil
}

type fakeCategoryStore struct {
	categories map[int64]*models.Category
	err        error
}

func newFakeCategoryStore(categories ...models.Category) *fakeCategoryStore {
	s := &fakeCategoryStore{categories: make(map[int64]*models.Category)}
	for i := range categories {
		c := categories[i]
		s.categories[c.ID] = &c
	}
	return s
}

func (s *fakeCategoryStore) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *fakeCategoryStore) SetWordsPerLevel(_ context.Context, id int64, n int) error {
	c, ok := s.categories[id]
	if !ok {
		return fmt.Errorf("category %d not found", id)
	}
	c.WordsPerLevel = &n
	return nil
}

type fakeRecorder struct {
	results []models.PracticeResult
	err     error
}

func (r *fakeRecorder) Create(_ context.Context, result *models.PracticeResult) error {
	if r.err != nil {
		return r.err
	}
	r.results = append(r.results, *result)
	return nil
}

func intPtr(n int) *int {
	return &n
}
