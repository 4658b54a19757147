package practice

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/vocabot/pkg/models"
	"github.com/samber/lo"
)

// Outcome is the result of one question
type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
	OutcomeSkipped Outcome = "skipped"
)

func (o Outcome) marker() string {
	switch o {
	case OutcomeCorrect:
		return "✅"
	case OutcomeWrong:
		return "❌"
	default:
		return "⏭"
	}
}

// Label is the qualitative grade of a session
type Label string

const (
	LabelExcellent     Label = "excellent"
	LabelGood          Label = "good"
	LabelFair          Label = "fair"
	LabelNeedsPractice Label = "needs_practice"
)

// LabelFor grades a success percentage
func LabelFor(percentage int) Label {
	switch {
	case percentage >= 90:
		return LabelExcellent
	case percentage >= 70:
		return LabelGood
	case percentage >= 50:
		return LabelFair
	default:
		return LabelNeedsPractice
	}
}

func (l Label) text() string {
	switch l {
	case LabelExcellent:
		return "🏆 Отлично!"
	case LabelGood:
		return "👍 Хорошо!"
	case LabelFair:
		return "🙂 Неплохо"
	default:
		return "📚 Нужно больше практики"
	}
}

// TierMarker shows how well a word is known
func TierMarker(mastery int) string {
	switch {
	case mastery >= reverseTranslateThreshold:
		return "🌳"
	case mastery >= reverseChoiceThreshold:
		return "🌿"
	case mastery >= translateThreshold:
		return "🌱"
	default:
		return "🫘"
	}
}

// SummaryLine is one practiced word in a summary
type SummaryLine struct {
	WordID       int64
	Word         string
	Translation  string
	Outcome      Outcome
	MasteryLevel int
}

// Summary aggregates a completed session
type Summary struct {
	Total      int
	Correct    int
	Wrong      int
	Skipped    int
	Percentage int
	Label      Label
	Lines      []SummaryLine
}

// SummaryBuilder turns session results into a Summary
type SummaryBuilder struct{}

// Build aggregates results. words holds the current state of the practiced
// words in practice order; words without a result are ignored.
func (SummaryBuilder) Build(words []models.Word, results map[int64]Outcome) *Summary {
	s := &Summary{}
	for _, w := range words {
		outcome, ok := results[w.ID]
		if !ok {
			continue
		}
		s.Lines = append(s.Lines, SummaryLine{
			WordID:       w.ID,
			Word:         w.Word,
			Translation:  w.Translation,
			Outcome:      outcome,
			MasteryLevel: w.MasteryLevel,
		})
	}

	s.Total = len(s.Lines)
	s.Correct = countOutcome(s.Lines, OutcomeCorrect)
	s.Wrong = countOutcome(s.Lines, OutcomeWrong)
	s.Skipped = countOutcome(s.Lines, OutcomeSkipped)
	if s.Total > 0 {
		s.Percentage = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	}
	s.Label = LabelFor(s.Percentage)
	return s
}

func countOutcome(lines []SummaryLine, o Outcome) int {
	return lo.CountBy(lines, func(l SummaryLine) bool { return l.Outcome == o })
}

// Report renders the summary as a plain text message
func (s *Summary) Report() string {
	var text strings.Builder
	text.WriteString("🎯 Тренировка завершена!\n\n")
	text.WriteString(fmt.Sprintf("✅ Правильно: %d\n", s.Correct))
	text.WriteString(fmt.Sprintf("❌ Ошибки: %d\n", s.Wrong))
	text.WriteString(fmt.Sprintf("⏭ Пропущено: %d\n\n", s.Skipped))
	text.WriteString(fmt.Sprintf("📊 Успешность: %d%% %s\n\n", s.Percentage, s.Label.text()))

	for _, l := range s.Lines {
		text.WriteString(fmt.Sprintf("%s %s %s - %s\n", l.Outcome.marker(), TierMarker(l.MasteryLevel), l.Word, l.Translation))
	}

	text.WriteString("\nИспользуйте /practice, чтобы продолжить.")
	return text.String()
}
