package practice

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForMasteryTiers(t *testing.T) {
	s := NewTypeSelector(rand.New(rand.NewSource(1)))

	for m := 0; m <= 100; m++ {
		got := s.ForMastery(m)
		switch {
		case m < 30:
			assert.Equal(t, MultipleChoice, got, "mastery %d", m)
		case m < 60:
			assert.Equal(t, Translate, got, "mastery %d", m)
		case m < 80:
			assert.Equal(t, ReverseChoice, got, "mastery %d", m)
		default:
			assert.Equal(t, ReverseTranslate, got, "mastery %d", m)
		}
	}

	assert.Equal(t, MultipleChoice, s.ForMastery(-10))
	assert.Equal(t, ReverseTranslate, s.ForMastery(150))
}

func TestIsReverse(t *testing.T) {
	assert.False(t, MultipleChoice.IsReverse())
	assert.False(t, Translate.IsReverse())
	assert.True(t, ReverseChoice.IsReverse())
	assert.True(t, ReverseTranslate.IsReverse())
}

func TestRandomCoversAllTypes(t *testing.T) {
	s := NewTypeSelector(rand.New(rand.NewSource(42)))

	seen := map[PracticeType]int{}
	for i := 0; i < 400; i++ {
		seen[s.Random()]++
	}
	assert.Len(t, seen, len(AllPracticeTypes))
}

func TestResolve(t *testing.T) {
	s := NewTypeSelector(rand.New(rand.NewSource(7)))

	got, err := s.Resolve(PreferAdaptive, 65)
	require.NoError(t, err)
	assert.Equal(t, ReverseChoice, got)

	got, err = s.Resolve("", 10)
	require.NoError(t, err)
	assert.Equal(t, MultipleChoice, got)

	got, err = s.Resolve(PreferenceFor(Translate), 95)
	require.NoError(t, err)
	assert.Equal(t, Translate, got)

	_, err = s.Resolve("sideways", 0)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParsePracticeTypeRoundTrip(t *testing.T) {
	for _, pt := range AllPracticeTypes {
		got, err := ParsePracticeType(pt.String())
		require.NoError(t, err)
		assert.Equal(t, pt, got)
	}
}
