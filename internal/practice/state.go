package practice

import (
	"sync"
	"time"
)

// Phase is the position of a conversation in the practice flow
type Phase string

const (
	PhaseSelectingLevel Phase = "selecting_level"
	PhaseSelectingMode  Phase = "selecting_mode"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseEvaluating     Phase = "evaluating"
	PhaseComplete       Phase = "complete"
	PhaseCancelled      Phase = "cancelled"
)

// SessionState is the practice state of one conversation
type SessionState struct {
	ConversationID int64
	SessionID      string
	UserID         int64
	Phase          Phase

	CategoryID int64
	Level      int
	MaxLevel   int
	Leveled    bool // category splits words into levels
	Mode       Mode
	Preference Preference

	CurrentWordID   int64
	CurrentWordText string
	CorrectAnswer   string
	PracticeType    PracticeType
	Options         []string

	ProgressCount    int
	PracticedWordIDs []int64
	Results          map[int64]Outcome

	StartedAt    time.Time
	LastActivity time.Time
}

// IsReverse reports whether the current question asks for the source word
func (s *SessionState) IsReverse() bool {
	return s.PracticeType.IsReverse()
}

func (s *SessionState) practiced(id int64) bool {
	for _, p := range s.PracticedWordIDs {
		if p == id {
			return true
		}
	}
	return false
}

type sessionEntry struct {
	state        *SessionState
	lastActivity time.Time
}

// SessionStore keeps session states by conversation id. It holds at most
// maxActive sessions and drops the least recently active one when full.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[int64]*sessionEntry
	maxActive int
	now       func() time.Time
}

// NewSessionStore creates a store. maxActive <= 0 means no limit.
func NewSessionStore(maxActive int, now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions:  make(map[int64]*sessionEntry),
		maxActive: maxActive,
		now:       now,
	}
}

// Get returns the state of a conversation
func (s *SessionStore) Get(conversationID int64) (*SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[conversationID]
	if !ok {
		return nil, false
	}
	return e.state, true
}

// Put stores state under its conversation id and marks it active.
// A later Put for the same conversation replaces the earlier one.
func (s *SessionStore) Put(state *SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	state.LastActivity = now

	if _, exists := s.sessions[state.ConversationID]; !exists && s.maxActive > 0 {
		for len(s.sessions) >= s.maxActive {
			s.evictOldestLocked()
		}
	}
	s.sessions[state.ConversationID] = &sessionEntry{state: state, lastActivity: now}
}

// Delete drops the state of a conversation
func (s *SessionStore) Delete(conversationID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops sessions inactive for longer than idle and returns how
// many were removed
func (s *SessionStore) EvictIdle(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	evicted := 0
	for id, e := range s.sessions {
		if e.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (s *SessionStore) evictOldestLocked() {
	var (
		oldestID int64
		oldest   time.Time
		found    bool
	)
	for id, e := range s.sessions {
		if !found || e.lastActivity.Before(oldest) {
			oldestID, oldest, found = id, e.lastActivity, true
		}
	}
	if found {
		delete(s.sessions, oldestID)
	}
}
