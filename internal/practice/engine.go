package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/example/vocabot/pkg/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// WordsPerSession is the number of questions in a full session
const WordsPerSession = 5

// Step is the engine's reply to an answer, option press or skip
type Step struct {
	Outcome       Outcome
	CorrectAnswer string
	Next          *Question // nil when the session is over
	Summary       *Summary  // set when the session completed
}

// StartRequest starts a session without going through category and level setup
type StartRequest struct {
	ConversationID int64
	UserID         int64
	CategoryID     int64
	Level          int
	Mode           Mode
	Preference     Preference
}

// Option configures an Engine
type Option func(*Engine)

// WithRand sets the source used for random practice types and option order
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) {
		if rnd != nil {
			e.rnd = rnd
		}
	}
}

// WithClock sets the engine clock
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithResultRecorder stores a PracticeResult for every completed session
func WithResultRecorder(r ResultRecorder) Option {
	return func(e *Engine) {
		e.results = r
	}
}

// Engine runs practice sessions, one per conversation
type Engine struct {
	words      WordStore
	categories CategoryStore
	results    ResultRecorder
	sessions   *SessionStore

	rnd *rand.Rand
	now func() time.Time
	log logrus.FieldLogger

	levels    *LevelManager
	selector  *WordSelector
	types     *TypeSelector
	mastery   *MasteryUpdater
	questions *questionBuilder
	summaries SummaryBuilder
}

// NewEngine creates an engine keeping its sessions in sessions
func NewEngine(words WordStore, categories CategoryStore, sessions *SessionStore, opts ...Option) *Engine {
	e := &Engine{
		words:      words,
		categories: categories,
		sessions:   sessions,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.levels = NewLevelManager(words, categories)
	e.selector = NewWordSelector(words, e.now)
	e.types = NewTypeSelector(e.rnd)
	e.mastery = NewMasteryUpdater(e.now)
	e.questions = &questionBuilder{rnd: e.rnd}
	return e
}

// Levels returns the level manager working on the engine's stores
func (e *Engine) Levels() *LevelManager {
	return e.levels
}

// State returns the session state of a conversation
func (e *Engine) State(conversationID int64) (*SessionState, bool) {
	return e.sessions.Get(conversationID)
}

// ChooseCategory begins setup for a conversation. The state moves straight
// to mode selection at level 1 when the category is not leveled.
func (e *Engine) ChooseCategory(ctx context.Context, conversationID, userID, categoryID int64) (LevelRange, error) {
	category, err := e.categories.GetCategory(ctx, categoryID)
	if err != nil {
		return LevelRange{}, e.fail(conversationID, storeErr("get category", err))
	}
	if category == nil || category.UserID != userID {
		return LevelRange{}, validationErr("category %d not found", categoryID)
	}

	r, err := e.levels.CurrentAndMaxLevel(ctx, userID, categoryID)
	if err != nil {
		return LevelRange{}, e.fail(conversationID, err)
	}

	state := &SessionState{
		ConversationID: conversationID,
		UserID:         userID,
		Phase:          PhaseSelectingLevel,
		CategoryID:     categoryID,
		Level:          r.Current,
		MaxLevel:       r.Max,
	}
	if !r.Leveled() {
		state.Phase = PhaseSelectingMode
	}
	e.sessions.Put(state)
	return r, nil
}

// ChooseLevel records the level picked during setup
func (e *Engine) ChooseLevel(conversationID int64, level int) error {
	state, ok := e.sessions.Get(conversationID)
	if !ok {
		return ErrNoSession
	}
	if state.Phase != PhaseSelectingLevel && state.Phase != PhaseSelectingMode {
		return validationErr("level can only be chosen before the session starts")
	}
	if level < 1 || level > state.MaxLevel {
		return validationErr("level must be between 1 and %d, got %d", state.MaxLevel, level)
	}

	state.Level = level
	state.Phase = PhaseSelectingMode
	e.sessions.Put(state)
	return nil
}

// StartFromSetup starts a session with the category and level chosen during setup
func (e *Engine) StartFromSetup(ctx context.Context, conversationID int64, mode Mode, preference Preference) (*Question, error) {
	state, ok := e.sessions.Get(conversationID)
	if !ok {
		return nil, ErrNoSession
	}
	if state.Phase != PhaseSelectingMode {
		return nil, validationErr("choose a level first")
	}

	return e.Start(ctx, StartRequest{
		ConversationID: conversationID,
		UserID:         state.UserID,
		CategoryID:     state.CategoryID,
		Level:          state.Level,
		Mode:           mode,
		Preference:     preference,
	})
}

// Start begins a session and returns its first question. Without an
// eligible word it returns ErrNoWords and the conversation keeps no state.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*Question, error) {
	if _, err := ParseMode(string(req.Mode)); err != nil {
		return nil, err
	}
	if req.Preference == "" {
		req.Preference = PreferAdaptive
	}
	if err := req.Preference.Validate(); err != nil {
		return nil, err
	}
	if req.Level < 1 {
		req.Level = 1
	}

	category, err := e.categories.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, e.fail(req.ConversationID, storeErr("get category", err))
	}
	if category == nil || category.UserID != req.UserID {
		return nil, validationErr("category %d not found", req.CategoryID)
	}

	leveled := category.LevelingEnabled()
	candidate, err := e.selector.SelectNext(ctx, req.UserID, req.CategoryID, selectionLevel(leveled, req.Level), req.Mode, nil)
	if err != nil {
		return nil, e.fail(req.ConversationID, err)
	}
	if candidate == nil {
		return nil, e.fail(req.ConversationID, ErrNoWords)
	}

	now := e.now()
	state := &SessionState{
		ConversationID:   req.ConversationID,
		SessionID:        uuid.NewString(),
		UserID:           req.UserID,
		Phase:            PhaseAwaitingAnswer,
		CategoryID:       req.CategoryID,
		Level:            req.Level,
		Leveled:          leveled,
		Mode:             req.Mode,
		Preference:       req.Preference,
		ProgressCount:    1,
		PracticedWordIDs: []int64{candidate.Word.ID},
		Results:          make(map[int64]Outcome),
		StartedAt:        now,
	}
	if prev, ok := e.sessions.Get(req.ConversationID); ok {
		state.MaxLevel = prev.MaxLevel
	}

	q, err := e.ask(state, candidate)
	if err != nil {
		return nil, e.fail(req.ConversationID, err)
	}
	e.sessions.Put(state)

	e.sessionLog(state).WithFields(logrus.Fields{
		"mode":       state.Mode,
		"preference": state.Preference,
	}).Info("Practice session started")
	return q, nil
}

// Answer evaluates a typed answer to the current question
func (e *Engine) Answer(ctx context.Context, conversationID int64, raw string) (*Step, error) {
	state, err := e.awaiting(conversationID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, validationErr("answer is empty")
	}

	outcome := OutcomeWrong
	if AnswersMatch(raw, state.CorrectAnswer) {
		outcome = OutcomeCorrect
	}
	return e.advance(ctx, state, outcome)
}

// AnswerOption evaluates the option at index of the multiple choice question
// asked for wordID. Options of an earlier question are rejected.
func (e *Engine) AnswerOption(ctx context.Context, conversationID, wordID int64, index int) (*Step, error) {
	state, err := e.awaiting(conversationID)
	if err != nil {
		return nil, err
	}
	if wordID != state.CurrentWordID {
		return nil, validationErr("option belongs to word %d, current word is %d", wordID, state.CurrentWordID)
	}
	if len(state.Options) == 0 {
		return nil, validationErr("current question has no options")
	}
	if index < 0 || index >= len(state.Options) {
		return nil, validationErr("option %d out of range", index)
	}

	outcome := OutcomeWrong
	if AnswersMatch(state.Options[index], state.CorrectAnswer) {
		outcome = OutcomeCorrect
	}
	return e.advance(ctx, state, outcome)
}

// Skip reveals the answer and moves on without touching the word's progress
func (e *Engine) Skip(ctx context.Context, conversationID int64) (*Step, error) {
	state, err := e.awaiting(conversationID)
	if err != nil {
		return nil, err
	}
	return e.advance(ctx, state, OutcomeSkipped)
}

// Cancel drops the conversation's session without a summary. It reports
// whether there was anything to cancel.
func (e *Engine) Cancel(conversationID int64) bool {
	state, ok := e.sessions.Get(conversationID)
	if !ok {
		return false
	}
	state.Phase = PhaseCancelled
	e.sessions.Delete(conversationID)
	e.sessionLog(state).Info("Practice session cancelled")
	return true
}

func (e *Engine) awaiting(conversationID int64) (*SessionState, error) {
	state, ok := e.sessions.Get(conversationID)
	if !ok || state.Phase != PhaseAwaitingAnswer {
		return nil, ErrNoSession
	}
	return state, nil
}

func (e *Engine) advance(ctx context.Context, state *SessionState, outcome Outcome) (*Step, error) {
	state.Phase = PhaseEvaluating
	wordID := state.CurrentWordID

	if outcome != OutcomeSkipped {
		if err := e.applyMastery(ctx, wordID, outcome == OutcomeCorrect); err != nil {
			return nil, e.fail(state.ConversationID, err)
		}
	}
	state.Results[wordID] = outcome

	e.sessionLog(state).WithFields(logrus.Fields{
		"word_id": wordID,
		"outcome": outcome,
	}).Debug("Answer evaluated")

	step := &Step{Outcome: outcome, CorrectAnswer: state.CorrectAnswer}

	if state.ProgressCount >= WordsPerSession {
		summary, err := e.complete(ctx, state)
		if err != nil {
			return nil, e.fail(state.ConversationID, err)
		}
		step.Summary = summary
		return step, nil
	}

	candidate, err := e.selector.SelectNext(ctx, state.UserID, state.CategoryID, selectionLevel(state.Leveled, state.Level), state.Mode, state.PracticedWordIDs)
	if err != nil {
		return nil, e.fail(state.ConversationID, err)
	}
	if candidate == nil || state.practiced(candidate.Word.ID) {
		summary, err := e.complete(ctx, state)
		if err != nil {
			return nil, e.fail(state.ConversationID, err)
		}
		step.Summary = summary
		return step, nil
	}

	state.ProgressCount++
	state.PracticedWordIDs = append(state.PracticedWordIDs, candidate.Word.ID)
	q, err := e.ask(state, candidate)
	if err != nil {
		return nil, e.fail(state.ConversationID, err)
	}
	state.Phase = PhaseAwaitingAnswer
	e.sessions.Put(state)

	step.Next = q
	return step, nil
}

// selectionLevel is the level words are picked from: any level when the
// category is not split into levels
func selectionLevel(leveled bool, level int) int {
	if !leveled {
		return 0
	}
	return level
}

// ask makes candidate the current word of state and builds its question
func (e *Engine) ask(state *SessionState, candidate *Candidate) (*Question, error) {
	t, err := e.types.Resolve(state.Preference, candidate.Word.MasteryLevel)
	if err != nil {
		return nil, err
	}

	q := e.questions.build(candidate.Word, candidate.Distractors, t, state.ProgressCount)
	state.CurrentWordID = candidate.Word.ID
	state.CurrentWordText = candidate.Word.Word
	state.PracticeType = q.Type
	state.CorrectAnswer = CorrectAnswer(candidate.Word, q.Type)
	state.Options = q.Options
	return q, nil
}

func (e *Engine) applyMastery(ctx context.Context, wordID int64, isCorrect bool) error {
	found, err := e.words.QueryWords(ctx, models.WordQuery{IDs: []int64{wordID}})
	if err != nil {
		return storeErr("load word", err)
	}
	if len(found) == 0 {
		return storeErr("load word", fmt.Errorf("word %d not found", wordID))
	}

	word := found[0]
	progress := e.mastery.ApplyResult(&word, isCorrect)
	if err := e.words.UpdateWordProgress(ctx, wordID, progress); err != nil {
		return storeErr("update word progress", err)
	}
	return nil
}

// complete builds the summary, records the result and drops the session
func (e *Engine) complete(ctx context.Context, state *SessionState) (*Summary, error) {
	found, err := e.words.QueryWords(ctx, models.WordQuery{IDs: state.PracticedWordIDs})
	if err != nil {
		return nil, storeErr("load practiced words", err)
	}

	byID := lo.KeyBy(found, func(w models.Word) int64 { return w.ID })
	ordered := lo.FilterMap(state.PracticedWordIDs, func(id int64, _ int) (models.Word, bool) {
		w, ok := byID[id]
		return w, ok
	})

	summary := e.summaries.Build(ordered, state.Results)
	state.Phase = PhaseComplete
	e.sessions.Delete(state.ConversationID)

	e.record(ctx, state, summary)
	e.sessionLog(state).WithFields(logrus.Fields{
		"total":      summary.Total,
		"percentage": summary.Percentage,
	}).Info("Practice session completed")
	return summary, nil
}

// record stores the session result; failures are only logged
func (e *Engine) record(ctx context.Context, state *SessionState, summary *Summary) {
	if e.results == nil {
		return
	}

	result := &models.PracticeResult{
		UserID:       state.UserID,
		CategoryID:   state.CategoryID,
		Mode:         string(state.Mode),
		TotalWords:   summary.Total,
		CorrectWords: summary.Correct,
		WrongWords:   summary.Wrong,
		SkippedWords: summary.Skipped,
		Percentage:   summary.Percentage,
		StartedAt:    state.StartedAt,
		CompletedAt:  e.now(),
	}
	if err := e.results.Create(ctx, result); err != nil {
		e.sessionLog(state).WithError(err).Warn("Failed to record practice result")
	}
}

// fail clears the conversation's state unless err is a validation error
func (e *Engine) fail(conversationID int64, err error) error {
	if errors.Is(err, ErrValidation) {
		return err
	}
	e.sessions.Delete(conversationID)

	entry := e.log.WithField("conversation_id", conversationID)
	if errors.Is(err, ErrNoWords) {
		entry.Debug("No words available")
	} else {
		entry.WithError(err).Error("Practice step failed")
	}
	return err
}

func (e *Engine) sessionLog(state *SessionState) logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{
		"conversation_id": state.ConversationID,
		"session_id":      state.SessionID,
		"category_id":     state.CategoryID,
	})
}
