package bot

import (
	"sync"
	"time"

	"github.com/example/vocabot/internal/practice"
)

// Pending input a chat is expected to send next
const (
	awaitingNothing  = ""
	awaitingWordList = "waiting_for_word_list"
)

// UserState represents what the bot remembers about a chat between updates
// outside of a practice session
type UserState struct {
	CategoryID  int64
	Awaiting    string
	PendingMode practice.Mode
	Timestamp   time.Time
}

// userStates keeps UserState by chat id
type userStates struct {
	mu     sync.Mutex
	states map[int64]UserState
	now    func() time.Time
}

func newUserStates(now func() time.Time) *userStates {
	if now == nil {
		now = time.Now
	}
	return &userStates{states: make(map[int64]UserState), now: now}
}

func (s *userStates) get(chatID int64) UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[chatID]
}

func (s *userStates) update(chatID int64, fn func(*UserState)) UserState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[chatID]
	fn(&st)
	st.Timestamp = s.now()
	s.states[chatID] = st
	return st
}

// EvictIdle forgets pending input of chats that have been quiet for longer
// than idle. The selected category survives; chats without one are dropped.
func (s *userStates) EvictIdle(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	evicted := 0
	for id, st := range s.states {
		if !st.Timestamp.Before(cutoff) {
			continue
		}
		if st.CategoryID == 0 {
			delete(s.states, id)
			evicted++
			continue
		}
		if st.Awaiting != awaitingNothing || st.PendingMode != "" {
			st.Awaiting = awaitingNothing
			st.PendingMode = ""
			s.states[id] = st
			evicted++
		}
	}
	return evicted
}
