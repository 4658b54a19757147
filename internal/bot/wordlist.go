package bot

import (
	"fmt"
	"strings"
)

// WordPair is one "word - translation" line of a word list
type WordPair struct {
	Word        string
	Translation string
}

var pairSeparators = []string{" - ", " — ", " – ", "\t", "-"}

// ParseWordList splits text into word pairs. Lines that cannot be parsed are
// returned as error messages; empty lines are ignored.
func ParseWordList(text string) ([]WordPair, []string) {
	var (
		pairs    []WordPair
		problems []string
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		pair, ok := parsePair(line)
		if !ok {
			problems = append(problems, fmt.Sprintf("Неверный формат: %s", line))
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, problems
}

func parsePair(line string) (WordPair, bool) {
	for _, sep := range pairSeparators {
		word, translation, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		word, translation = strings.TrimSpace(word), strings.TrimSpace(translation)
		if word == "" || translation == "" {
			return WordPair{}, false
		}
		return WordPair{Word: word, Translation: translation}, true
	}
	return WordPair{}, false
}
