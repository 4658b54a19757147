package practice

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/example/vocabot/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const conv int64 = 100

type engineFixture struct {
	engine     *Engine
	words      *fakeWordStore
	categories *fakeCategoryStore
	recorder   *fakeRecorder
	sessions   *SessionStore
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &engineFixture{
		words:      newFakeWordStore(),
		categories: newFakeCategoryStore(models.Category{ID: 1, UserID: 1}),
		recorder:   &fakeRecorder{},
		sessions:   NewSessionStore(0, fixedClock),
	}
	f.engine = NewEngine(f.words, f.categories, f.sessions,
		WithRand(rand.New(rand.NewSource(1))),
		WithClock(fixedClock),
		WithLogger(logger),
		WithResultRecorder(f.recorder),
	)
	return f
}

func (f *engineFixture) addWords(n int) []*models.Word {
	names := []string{"dog", "cat", "cow", "fox", "owl", "bee", "ant", "elk"}
	words := make([]*models.Word, n)
	for i := 0; i < n; i++ {
		words[i] = f.words.add(1, names[i], names[i]+"-ru", nil, 0)
	}
	return words
}

func (f *engineFixture) start(t *testing.T, mode Mode, pref Preference) *Question {
	t.Helper()
	q, err := f.engine.Start(context.Background(), StartRequest{
		ConversationID: conv,
		UserID:         1,
		CategoryID:     1,
		Level:          1,
		Mode:           mode,
		Preference:     pref,
	})
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func (f *engineFixture) answerCorrectly(t *testing.T) *Step {
	t.Helper()
	state, ok := f.engine.State(conv)
	require.True(t, ok)
	step, err := f.engine.Answer(context.Background(), conv, "  "+state.CorrectAnswer+" ")
	require.NoError(t, err)
	return step
}

func TestStartWithoutWords(t *testing.T) {
	f := newEngineFixture(t)
	f.words.add(1, "known", "известный", nil, 40)

	_, err := f.engine.Start(context.Background(), StartRequest{
		ConversationID: conv, UserID: 1, CategoryID: 1, Level: 1, Mode: ModeLearn,
	})

	assert.True(t, errors.Is(err, ErrNoWords))
	_, ok := f.engine.State(conv)
	assert.False(t, ok)
}

func TestStartRejectsBadInput(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(2)

	_, err := f.engine.Start(context.Background(), StartRequest{ConversationID: conv, UserID: 1, CategoryID: 1, Mode: "cram"})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = f.engine.Start(context.Background(), StartRequest{ConversationID: conv, UserID: 1, CategoryID: 1, Mode: ModeLearn, Preference: "sideways"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFullSessionAllCorrect(t *testing.T) {
	f := newEngineFixture(t)
	words := f.addWords(7)

	q := f.start(t, ModeLearn, PreferAdaptive)
	assert.Equal(t, 1, q.Progress)
	assert.Equal(t, MultipleChoice, q.Type)
	assert.Len(t, q.Options, MaxDistractors+1)

	var last *Step
	for i := 0; i < WordsPerSession; i++ {
		last = f.answerCorrectly(t)
		assert.Equal(t, OutcomeCorrect, last.Outcome)
		if i < WordsPerSession-1 {
			require.NotNil(t, last.Next)
			assert.Equal(t, i+2, last.Next.Progress)
			assert.Nil(t, last.Summary)
		}
	}

	require.Nil(t, last.Next)
	require.NotNil(t, last.Summary)
	assert.Equal(t, 5, last.Summary.Total)
	assert.Equal(t, 100, last.Summary.Percentage)
	assert.Equal(t, LabelExcellent, last.Summary.Label)

	for _, w := range words[:5] {
		assert.Equal(t, 10, w.MasteryLevel, w.Word)
		assert.Equal(t, 1, w.CorrectCount)
		require.NotNil(t, w.LastPracticedAt)
		assert.Equal(t, testNow, *w.LastPracticedAt)
	}
	for _, w := range words[5:] {
		assert.Equal(t, 0, w.MasteryLevel, w.Word)
	}

	_, ok := f.engine.State(conv)
	assert.False(t, ok)

	require.Len(t, f.recorder.results, 1)
	assert.Equal(t, 5, f.recorder.results[0].CorrectWords)
	assert.Equal(t, "learn", f.recorder.results[0].Mode)
}

func TestSessionEndsWhenWordsRunOut(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(3)

	f.start(t, ModeLearn, PreferAdaptive)
	f.answerCorrectly(t)
	f.answerCorrectly(t)
	step, err := f.engine.Answer(context.Background(), conv, "definitely wrong")
	require.NoError(t, err)

	assert.Equal(t, OutcomeWrong, step.Outcome)
	assert.Nil(t, step.Next)
	require.NotNil(t, step.Summary)
	assert.Equal(t, 3, step.Summary.Total)
	assert.Equal(t, 2, step.Summary.Correct)
	assert.Equal(t, 1, step.Summary.Wrong)
}

func TestPracticedWordsAreUnique(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(6)

	f.start(t, ModeLearn, PreferRandom)

	seen := map[int64]bool{}
	for {
		state, ok := f.engine.State(conv)
		if !ok {
			break
		}
		assert.False(t, seen[state.CurrentWordID], "word %d asked twice", state.CurrentWordID)
		seen[state.CurrentWordID] = true
		assert.Equal(t, len(state.PracticedWordIDs), state.ProgressCount)

		_, err := f.engine.Skip(context.Background(), conv)
		require.NoError(t, err)
	}
	assert.Len(t, seen, WordsPerSession)
}

func TestSkipLeavesWordUntouched(t *testing.T) {
	f := newEngineFixture(t)
	words := f.addWords(2)

	f.start(t, ModeLearn, PreferAdaptive)
	step, err := f.engine.Skip(context.Background(), conv)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSkipped, step.Outcome)
	assert.Equal(t, "dog-ru", step.CorrectAnswer)
	assert.Equal(t, 0, words[0].MasteryLevel)
	assert.Nil(t, words[0].LastPracticedAt)
	assert.Equal(t, 0, words[0].CorrectCount)
	assert.Equal(t, 0, words[0].IncorrectCount)
	assert.Empty(t, f.words.updates)
}

func TestEmptyAnswerKeepsSession(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(2)
	f.start(t, ModeLearn, PreferAdaptive)

	_, err := f.engine.Answer(context.Background(), conv, "   ")
	assert.True(t, errors.Is(err, ErrValidation))

	state, ok := f.engine.State(conv)
	require.True(t, ok)
	assert.Equal(t, PhaseAwaitingAnswer, state.Phase)
	assert.Equal(t, 1, state.ProgressCount)
}

func TestAnswerOption(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(5)
	q := f.start(t, ModeLearn, PreferenceFor(MultipleChoice))

	correct := -1
	for i, o := range q.Options {
		if o == "dog-ru" {
			correct = i
		}
	}
	require.NotEqual(t, -1, correct)

	_, err := f.engine.AnswerOption(context.Background(), conv, q.WordID, len(q.Options))
	assert.True(t, errors.Is(err, ErrValidation))

	step, err := f.engine.AnswerOption(context.Background(), conv, q.WordID, correct)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, step.Outcome)

	_, err = f.engine.AnswerOption(context.Background(), conv, q.WordID, correct)
	assert.True(t, errors.Is(err, ErrValidation), "options of an answered question are stale")
	assert.Len(t, f.words.updates, 1)

	next := step.Next
	state, _ := f.engine.State(conv)
	wrong := 0
	if next.Options[wrong] == state.CorrectAnswer {
		wrong = 1
	}
	step, err = f.engine.AnswerOption(context.Background(), conv, next.WordID, wrong)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrong, step.Outcome)
}

func TestReverseTypeForMasteredWords(t *testing.T) {
	f := newEngineFixture(t)
	w := f.words.add(1, "run (verb)", "бежать", nil, 85)

	q := f.start(t, ModeReview, PreferAdaptive)

	assert.Equal(t, ReverseTranslate, q.Type)
	state, _ := f.engine.State(conv)
	assert.True(t, state.IsReverse())
	assert.Equal(t, "run", state.CorrectAnswer)

	step, err := f.engine.Answer(context.Background(), conv, "to run")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, step.Outcome)
	assert.Equal(t, 95, w.MasteryLevel)
}

func TestAnnotationOnlyTranslation(t *testing.T) {
	f := newEngineFixture(t)
	f.words.add(1, "hi", "(informal greeting)", nil, 40)

	f.start(t, ModeReview, PreferAdaptive)
	state, ok := f.engine.State(conv)
	require.True(t, ok)
	assert.Equal(t, Translate, state.PracticeType)
	assert.Equal(t, "(informal greeting)", state.CorrectAnswer)

	step := f.answerCorrectly(t)
	assert.Equal(t, OutcomeCorrect, step.Outcome)
}

func TestStoreFailureClearsSession(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(3)
	f.start(t, ModeLearn, PreferAdaptive)

	f.words.queryErr = errBoom
	f.words.failAt = f.words.queries + 1

	_, err := f.engine.Answer(context.Background(), conv, "anything")
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.True(t, errors.Is(err, errBoom))

	_, ok := f.engine.State(conv)
	assert.False(t, ok)
}

func TestRecorderFailureDoesNotFailSession(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(1)
	f.recorder.err = errBoom
	f.start(t, ModeLearn, PreferAdaptive)

	step := f.answerCorrectly(t)
	require.NotNil(t, step.Summary)
	assert.Equal(t, 1, step.Summary.Total)
}

func TestCancel(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(3)
	f.start(t, ModeLearn, PreferAdaptive)

	assert.True(t, f.engine.Cancel(conv))
	assert.False(t, f.engine.Cancel(conv))

	_, err := f.engine.Answer(context.Background(), conv, "dog-ru")
	assert.True(t, errors.Is(err, ErrNoSession))
	assert.Empty(t, f.recorder.results)
}

func TestSetupFlow(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.categories.categories[1].WordsPerLevel = intPtr(2)
	f.words.add(1, "a", "a-ru", intPtr(1), 0)
	f.words.add(1, "b", "b-ru", intPtr(1), 0)
	third := f.words.add(1, "c", "c-ru", intPtr(2), 0)

	r, err := f.engine.ChooseCategory(ctx, conv, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, LevelRange{Current: 1, Max: 2}, r)
	state, _ := f.engine.State(conv)
	assert.Equal(t, PhaseSelectingLevel, state.Phase)

	_, err = f.engine.StartFromSetup(ctx, conv, ModeLearn, PreferAdaptive)
	assert.True(t, errors.Is(err, ErrValidation))

	assert.True(t, errors.Is(f.engine.ChooseLevel(conv, 3), ErrValidation))
	state, ok := f.engine.State(conv)
	require.True(t, ok)
	assert.Equal(t, PhaseSelectingLevel, state.Phase)

	require.NoError(t, f.engine.ChooseLevel(conv, 2))
	_, err = f.engine.StartFromSetup(ctx, conv, ModeLearn, PreferAdaptive)
	require.NoError(t, err)

	state, _ = f.engine.State(conv)
	assert.Equal(t, third.ID, state.CurrentWordID)
	assert.Equal(t, 2, state.Level)
	assert.NotEmpty(t, state.SessionID)
}

func TestSetupUnleveledCategorySkipsLevel(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(1)

	r, err := f.engine.ChooseCategory(context.Background(), conv, 1, 1)
	require.NoError(t, err)
	assert.False(t, r.Leveled())

	state, _ := f.engine.State(conv)
	assert.Equal(t, PhaseSelectingMode, state.Phase)
}

func TestLearnInLeveledCategoryIgnoresUnleveledWords(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.categories.categories[1].WordsPerLevel = intPtr(2)
	f.words.add(1, "loose", "свободный", nil, 0)
	f.words.add(1, "known", "известный", intPtr(1), 40)

	_, err := f.engine.Start(ctx, StartRequest{ConversationID: conv, UserID: 1, CategoryID: 1, Level: 1, Mode: ModeLearn})
	assert.True(t, errors.Is(err, ErrNoWords))
	_, ok := f.engine.State(conv)
	assert.False(t, ok)

	f.categories.categories[1].WordsPerLevel = nil
	q, err := f.engine.Start(ctx, StartRequest{ConversationID: conv, UserID: 1, CategoryID: 1, Level: 1, Mode: ModeLearn})
	require.NoError(t, err)
	state, _ := f.engine.State(conv)
	assert.Equal(t, "loose", state.CurrentWordText)
	assert.NotEmpty(t, q.PromptText)
}

func TestStartForeignCategory(t *testing.T) {
	f := newEngineFixture(t)
	f.addWords(1)

	_, err := f.engine.Start(context.Background(), StartRequest{ConversationID: conv, UserID: 2, CategoryID: 1, Mode: ModeLearn})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = f.engine.Start(context.Background(), StartRequest{ConversationID: conv, UserID: 1, CategoryID: 9, Mode: ModeLearn})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestChooseForeignCategory(t *testing.T) {
	f := newEngineFixture(t)
	_, err := f.engine.ChooseCategory(context.Background(), conv, 2, 1)
	assert.True(t, errors.Is(err, ErrValidation))
}
