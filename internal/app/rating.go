package app

import (
	"math"

	"notables-quiz-service/internal/domain"
)

// kFactor is the classic Elo adjustment ceiling per answer.
const kFactor = 32

// BaselineMode selects what a question is "rated" when updating skill.
type BaselineMode string

const (
	// BaselineFixed rates every question at the initial 1500.
	BaselineFixed BaselineMode = "fixed"
	// BaselineDifficulty derives the question rating from the correct
	// answer's sitelink count: obscure people are rated harder.
	BaselineDifficulty BaselineMode = "difficulty"
)

// UpdateRating applies one Elo-style adjustment. A correct answer never
// lowers the rating and an incorrect one never raises it.
func UpdateRating(rating, baseline int, correct bool) int {
	expected := 1 / (1 + math.Pow(10, float64(baseline-rating)/400))
	actual := 0.0
	if correct {
		actual = 1.0
	}
	return rating + int(math.Round(kFactor*(actual-expected)))
}

// Baseline resolves the question rating for the given mode.
func Baseline(mode BaselineMode, correct domain.PersonRecord) int {
	if mode == BaselineDifficulty {
		return difficultyBaseline(correct.Sitelinks)
	}
	return domain.InitialRating
}

// difficultyBaseline maps sitelink counts onto the rating scale. A
// person with 300+ language editions is easy (rated 1200); one with
// none is hard (rated 2100).
func difficultyBaseline(sitelinks int) int {
	if sitelinks < 0 {
		sitelinks = 0
	}
	if sitelinks > 300 {
		sitelinks = 300
	}
	return 2100 - sitelinks*3
}

// Rank maps a rating to the ladder label shown next to it.
func Rank(rating int) string {
	switch {
	case rating >= 2400:
		return "Legendary"
	case rating >= 2200:
		return "Master"
	case rating >= 2000:
		return "Expert"
	case rating >= 1800:
		return "Advanced"
	case rating >= 1600:
		return "Intermediate"
	case rating >= 1400:
		return "Beginner"
	default:
		return "Novice"
	}
}
