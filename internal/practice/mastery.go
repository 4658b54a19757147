package practice

import (
	"time"

	"github.com/example/vocabot/pkg/models"
)

// Mastery change per answer
const (
	CorrectDelta   = 10
	IncorrectDelta = -5
)

// MasteryUpdater computes a word's progress after an answered question.
// Skipped questions never reach it.
type MasteryUpdater struct {
	now func() time.Time
}

// NewMasteryUpdater creates an updater stamping practice times with now
func NewMasteryUpdater(now func() time.Time) *MasteryUpdater {
	if now == nil {
		now = time.Now
	}
	return &MasteryUpdater{now: now}
}

// ApplyResult returns the word's new progress and copies it onto word
func (u *MasteryUpdater) ApplyResult(word *models.Word, isCorrect bool) models.WordProgress {
	delta := IncorrectDelta
	if isCorrect {
		delta = CorrectDelta
	}

	p := models.WordProgress{
		MasteryLevel:    clampMastery(word.MasteryLevel + delta),
		LastPracticedAt: u.now(),
		CorrectCount:    word.CorrectCount,
		IncorrectCount:  word.IncorrectCount,
	}
	if isCorrect {
		p.CorrectCount++
	} else {
		p.IncorrectCount++
	}

	word.MasteryLevel = p.MasteryLevel
	word.LastPracticedAt = &p.LastPracticedAt
	word.CorrectCount = p.CorrectCount
	word.IncorrectCount = p.IncorrectCount
	return p
}

func clampMastery(m int) int {
	if m < models.MinMastery {
		return models.MinMastery
	}
	if m > models.MaxMastery {
		return models.MaxMastery
	}
	return m
}
