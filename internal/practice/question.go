package practice

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/example/vocabot/pkg/models"
	"github.com/samber/lo"
)

// MaxDistractors is the number of wrong options shown next to the right one
const MaxDistractors = 3

// Question is what the learner sees for one word
type Question struct {
	WordID     int64
	PromptText string
	Options    []string // nil for free-text questions
	Type       PracticeType
	Progress   int
	Total      int
}

// CorrectAnswer returns the display form of the expected answer: the
// translation, or the source word for reverse types, without annotations.
func CorrectAnswer(word models.Word, t PracticeType) string {
	raw := word.Translation
	if t.IsReverse() {
		raw = word.Word
	}
	if stripped := StripAnnotations(raw); stripped != "" {
		return stripped
	}
	return strings.TrimSpace(raw)
}

// prompted returns the side of the pair shown to the learner
func prompted(word models.Word, t PracticeType) string {
	if t.IsReverse() {
		return word.Translation
	}
	return word.Word
}

// questionBuilder renders questions, shuffling options with rnd
type questionBuilder struct {
	rnd *rand.Rand
}

// distractorOptions returns up to MaxDistractors answers of other words that
// differ from correct once normalized
func (b *questionBuilder) distractorOptions(pool []models.Word, t PracticeType, correct string) []string {
	candidates := lo.Map(pool, func(w models.Word, _ int) string {
		return CorrectAnswer(w, t)
	})
	want := NormalizeAnswer(correct)
	candidates = lo.Filter(candidates, func(s string, _ int) bool {
		return s != "" && NormalizeAnswer(s) != want
	})
	candidates = lo.UniqBy(candidates, NormalizeAnswer)

	b.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > MaxDistractors {
		candidates = candidates[:MaxDistractors]
	}
	return candidates
}

// build creates the question for word. A choice type without any usable
// distractor falls back to the text modality; the type actually used is
// returned in Question.Type.
func (b *questionBuilder) build(word models.Word, pool []models.Word, t PracticeType, progress int) *Question {
	correct := CorrectAnswer(word, t)

	var options []string
	if t.IsChoice() {
		distractors := b.distractorOptions(pool, t, correct)
		if len(distractors) == 0 {
			t = t.WithModality(ModalityText)
		} else {
			options = append(distractors, correct)
			b.rnd.Shuffle(len(options), func(i, j int) {
				options[i], options[j] = options[j], options[i]
			})
		}
	}

	return &Question{
		WordID:     word.ID,
		PromptText: promptText(word, t, progress),
		Options:    options,
		Type:       t,
		Progress:   progress,
		Total:      WordsPerSession,
	}
}

func promptText(word models.Word, t PracticeType, progress int) string {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("📝 Слово %d из %d\n\n", progress, WordsPerSession))

	shown := prompted(word, t)
	switch t {
	case MultipleChoice:
		text.WriteString(fmt.Sprintf("Выберите перевод слова:\n«%s»", shown))
	case Translate:
		text.WriteString(fmt.Sprintf("Напишите перевод слова:\n«%s»", shown))
	case ReverseChoice:
		text.WriteString(fmt.Sprintf("Выберите слово по переводу:\n«%s»", shown))
	case ReverseTranslate:
		text.WriteString(fmt.Sprintf("Напишите слово по переводу:\n«%s»", shown))
	}
	return text.String()
}
