package practice

import (
	"regexp"
	"strings"
)

var annotationRe = regexp.MustCompile(`\([^)]*\)`)

var articles = []string{"a ", "an "}

// StripAnnotations removes parenthetical notes such as "(verb)" or "(informal)"
func StripAnnotations(s string) string {
	return strings.Join(strings.Fields(annotationRe.ReplaceAllString(s, " ")), " ")
}

// NormalizeAnswer prepares text for comparison: trims, lowercases and drops a
// leading "to " and a leading article.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	s = strings.TrimPrefix(s, "to ")
	for _, a := range articles {
		if strings.HasPrefix(s, a) {
			s = strings.TrimPrefix(s, a)
			break
		}
	}
	return strings.TrimSpace(s)
}

// AnswersMatch reports whether a learner's answer equals the expected one.
// An expected value made only of annotations is compared as written.
func AnswersMatch(given, expected string) bool {
	if stripped := StripAnnotations(expected); stripped != "" {
		expected = stripped
	}
	return NormalizeAnswer(given) == NormalizeAnswer(expected)
}
