package practice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func TestSelectNextLearn(t *testing.T) {
	ctx := context.Background()
	words := newFakeWordStore()
	words.add(1, "practiced", "x", intPtr(1), 40)
	other := words.add(1, "other level", "y", intPtr(2), 0)
	first := words.add(1, "first", "первый", intPtr(1), 0)
	second := words.add(1, "second", "второй", intPtr(1), 0)
	s := NewWordSelector(words, fixedClock)

	c, err := s.SelectNext(ctx, 1, 1, 1, ModeLearn, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, first.ID, c.Word.ID)
	assert.Len(t, c.Distractors, 3)
	for _, d := range c.Distractors {
		assert.NotEqual(t, first.ID, d.ID)
	}

	c, err = s.SelectNext(ctx, 1, 1, 1, ModeLearn, []int64{first.ID})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, second.ID, c.Word.ID)

	c, err = s.SelectNext(ctx, 1, 1, 2, ModeLearn, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, other.ID, c.Word.ID)

	c, err = s.SelectNext(ctx, 1, 1, 1, ModeLearn, []int64{first.ID, second.ID})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSelectNextLearnUnleveledCategory(t *testing.T) {
	words := newFakeWordStore()
	w := words.add(1, "cat", "кот", nil, 0)
	s := NewWordSelector(words, fixedClock)

	c, err := s.SelectNext(context.Background(), 1, 1, 0, ModeLearn, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, w.ID, c.Word.ID)
	assert.Empty(t, c.Distractors)
}

func TestSelectNextLearnLevelSkipsUnleveledWords(t *testing.T) {
	words := newFakeWordStore()
	words.add(1, "loose", "свободный", nil, 0)
	s := NewWordSelector(words, fixedClock)

	c, err := s.SelectNext(context.Background(), 1, 1, 1, ModeLearn, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSelectNextReview(t *testing.T) {
	ctx := context.Background()
	words := newFakeWordStore()
	words.add(1, "new", "новый", nil, 0)
	today := words.add(1, "today", "сегодня", nil, 50)
	practicedToday := testNow.Add(-time.Hour)
	today.LastPracticedAt = &practicedToday
	yesterday := words.add(1, "yesterday", "вчера", nil, 20)
	practicedYesterday := testNow.Add(-11 * time.Hour)
	yesterday.LastPracticedAt = &practicedYesterday
	never := words.add(1, "never", "никогда", nil, 10)

	s := NewWordSelector(words, fixedClock)

	c, err := s.SelectNext(ctx, 1, 1, 0, ModeReview, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, yesterday.ID, c.Word.ID)

	c, err = s.SelectNext(ctx, 1, 1, 0, ModeReview, []int64{yesterday.ID})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, never.ID, c.Word.ID)

	c, err = s.SelectNext(ctx, 1, 1, 0, ModeReview, []int64{yesterday.ID, never.ID})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSelectNextStoreFailure(t *testing.T) {
	words := newFakeWordStore()
	words.queryErr = errBoom
	s := NewWordSelector(words, fixedClock)

	c, err := s.SelectNext(context.Background(), 1, 1, 1, ModeLearn, nil)
	assert.Nil(t, c)
	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
}

func TestSelectNextUnknownMode(t *testing.T) {
	s := NewWordSelector(newFakeWordStore(), fixedClock)
	_, err := s.SelectNext(context.Background(), 1, 1, 1, Mode("cram"), nil)
	assert.True(t, errors.Is(err, ErrValidation))
}
