package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWordList(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantPairs    []WordPair
		wantProblems []string
	}{
		{
			name: "separators",
			text: "hello - привет\nworld — мир\nsun – солнце\nmoon\tлуна\nice-cream-мороженое",
			wantPairs: []WordPair{
				{"hello", "привет"},
				{"world", "мир"},
				{"sun", "солнце"},
				{"moon", "луна"},
				{"ice", "cream-мороженое"},
			},
		},
		{
			name:      "phrases keep inner spaces",
			text:      "  look up - искать  \n\n",
			wantPairs: []WordPair{{"look up", "искать"}},
		},
		{
			name:         "bad lines",
			text:         "lonely\n - пусто\nok - хорошо",
			wantPairs:    []WordPair{{"ok", "хорошо"}},
			wantProblems: []string{"Неверный формат: lonely", "Неверный формат: - пусто"},
		},
		{
			name: "empty",
			text: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, problems := ParseWordList(tt.text)
			assert.Equal(t, tt.wantPairs, pairs)
			assert.Equal(t, tt.wantProblems, problems)
		})
	}
}

func TestUserStatesEvictIdle(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	states := newUserStates(func() time.Time { return now })

	states.update(1, func(s *UserState) {
		s.CategoryID = 5
		s.Awaiting = awaitingWordList
	})
	states.update(2, func(s *UserState) { s.PendingMode = "learn" })
	states.update(3, func(s *UserState) { s.CategoryID = 6 })
	now = now.Add(20 * time.Minute)
	states.update(4, func(s *UserState) { s.Awaiting = awaitingWordList })

	assert.Equal(t, 2, states.EvictIdle(10*time.Minute))

	assert.Equal(t, int64(5), states.get(1).CategoryID)
	assert.Equal(t, awaitingNothing, states.get(1).Awaiting)
	assert.Equal(t, UserState{}, states.get(2))
	assert.Equal(t, int64(6), states.get(3).CategoryID)
	assert.Equal(t, awaitingWordList, states.get(4).Awaiting)

	assert.Zero(t, states.EvictIdle(10*time.Minute), "kept selections are not counted again")
}
