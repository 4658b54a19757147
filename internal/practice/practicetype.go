package practice

import (
	"fmt"
	"math/rand"
)

// Modality is the quiz format of a question
type Modality int

const (
	// ModalityChoice asks the learner to pick one of several options
	ModalityChoice Modality = iota
	// ModalityText asks the learner to type the answer
	ModalityText
)

// Direction says which side of the pair is shown
type Direction int

const (
	// Forward shows the word and expects the translation
	Forward Direction = iota
	// Reverse shows the translation and expects the word
	Reverse
)

// PracticeType is a quiz modality paired with a direction
type PracticeType struct {
	Modality  Modality
	Direction Direction
}

// The four practice types, ordered by difficulty
var (
	MultipleChoice   = PracticeType{Modality: ModalityChoice, Direction: Forward}
	Translate        = PracticeType{Modality: ModalityText, Direction: Forward}
	ReverseChoice    = PracticeType{Modality: ModalityChoice, Direction: Reverse}
	ReverseTranslate = PracticeType{Modality: ModalityText, Direction: Reverse}
)

// AllPracticeTypes lists every practice type from easiest to hardest
var AllPracticeTypes = []PracticeType{MultipleChoice, Translate, ReverseChoice, ReverseTranslate}

// IsReverse reports whether the learner has to produce the source word
func (t PracticeType) IsReverse() bool {
	return t.Direction == Reverse
}

// IsChoice reports whether the question offers options
func (t PracticeType) IsChoice() bool {
	return t.Modality == ModalityChoice
}

// WithModality returns the type with the same direction and modality m
func (t PracticeType) WithModality(m Modality) PracticeType {
	return PracticeType{Modality: m, Direction: t.Direction}
}

func (t PracticeType) String() string {
	switch t {
	case MultipleChoice:
		return "multiple_choice"
	case Translate:
		return "translate"
	case ReverseChoice:
		return "reverse_choice"
	case ReverseTranslate:
		return "reverse_translate"
	}
	return fmt.Sprintf("practice_type(%d,%d)", t.Modality, t.Direction)
}

// ParsePracticeType parses the String form of a practice type
func ParsePracticeType(s string) (PracticeType, error) {
	for _, t := range AllPracticeTypes {
		if t.String() == s {
			return t, nil
		}
	}
	return PracticeType{}, validationErr("unknown practice type %q", s)
}

// Mastery thresholds where the practice type changes
const (
	translateThreshold        = 30
	reverseChoiceThreshold    = 60
	reverseTranslateThreshold = 80
)

// Preference is the learner's choice of practice type: adaptive, random or
// the name of a fixed practice type.
type Preference string

const (
	// PreferAdaptive picks the type from the word's mastery
	PreferAdaptive Preference = "adaptive"
	// PreferRandom picks a type at random for every question
	PreferRandom Preference = "random"
)

// PreferenceFor returns the preference that always uses t
func PreferenceFor(t PracticeType) Preference {
	return Preference(t.String())
}

// Validate checks that p is adaptive, random or a known practice type
func (p Preference) Validate() error {
	switch p {
	case PreferAdaptive, PreferRandom:
		return nil
	}
	_, err := ParsePracticeType(string(p))
	return err
}

// TypeSelector maps mastery to practice types
type TypeSelector struct {
	rnd *rand.Rand
}

// NewTypeSelector creates a selector drawing random types from rnd
func NewTypeSelector(rnd *rand.Rand) *TypeSelector {
	return &TypeSelector{rnd: rnd}
}

// ForMastery returns the practice type for a mastery level. Values outside
// [0,100] fall into the nearest tier.
func (s *TypeSelector) ForMastery(mastery int) PracticeType {
	switch {
	case mastery >= reverseTranslateThreshold:
		return ReverseTranslate
	case mastery >= reverseChoiceThreshold:
		return ReverseChoice
	case mastery >= translateThreshold:
		return Translate
	default:
		return MultipleChoice
	}
}

// Random returns one of the four practice types with equal probability
func (s *TypeSelector) Random() PracticeType {
	return AllPracticeTypes[s.rnd.Intn(len(AllPracticeTypes))]
}

// Resolve picks the practice type for a word with the given mastery
func (s *TypeSelector) Resolve(p Preference, mastery int) (PracticeType, error) {
	switch p {
	case PreferAdaptive, "":
		return s.ForMastery(mastery), nil
	case PreferRandom:
		return s.Random(), nil
	}
	return ParsePracticeType(string(p))
}
