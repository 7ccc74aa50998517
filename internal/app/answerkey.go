package app

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"notables-quiz-service/internal/domain"
)

var (
	stripMarks    = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	nonWord       = regexp.MustCompile(`[^a-z0-9_\s]`)
	multiSpace    = regexp.MustCompile(`\s+`)
	entityIDShape = regexp.MustCompile(`^Q\d+$`)
)

// NormalizeAnswer reduces free text to the canonical answer-key form:
// lowercased, diacritics stripped, punctuation removed, whitespace
// collapsed. It must agree with how the data pipeline builds answerKey.
func NormalizeAnswer(text string) string {
	lowered := strings.ToLower(text)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}
	stripped = nonWord.ReplaceAllString(stripped, "")
	stripped = multiSpace.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}

// MatchTypedAnswer checks a free-text guess against the correct answer's
// key, for the legacy typed-answer mode.
func MatchTypedAnswer(correct domain.PersonRecord, guess string) bool {
	normalized := NormalizeAnswer(guess)
	if normalized == "" {
		return false
	}
	key := correct.AnswerKey
	if key == "" {
		key = NormalizeAnswer(correct.Name)
	}
	return normalized == key
}

// IsPlaceholderName reports whether a display name is a raw entity
// identifier left behind by the upstream pipeline. Such records stay
// playable; the defect is cosmetic and scoring never depends on names.
func IsPlaceholderName(name string) bool {
	return entityIDShape.MatchString(name)
}

// Hint builds the post-answer hint line: occupation plus life years,
// whichever are known.
func Hint(p domain.PersonRecord) string {
	var parts []string
	if p.Occupation != nil && *p.Occupation != "" {
		parts = append(parts, *p.Occupation)
	}
	if p.BirthYear != nil {
		if p.DeathYear != nil {
			parts = append(parts, strconv.Itoa(*p.BirthYear)+"–"+strconv.Itoa(*p.DeathYear))
		} else {
			parts = append(parts, "Born "+strconv.Itoa(*p.BirthYear))
		}
	}
	if len(parts) == 0 {
		return "No hint available"
	}
	return strings.Join(parts, " • ")
}
