package app

import (
	"testing"

	"notables-quiz-service/internal/domain"
)

func TestUpdateRatingAtBaseline(t *testing.T) {
	// Evenly matched: expected score 0.5, so +/-16.
	if got := UpdateRating(1500, 1500, true); got != 1516 {
		t.Fatalf("correct at baseline: expected 1516, got %d", got)
	}
	if got := UpdateRating(1500, 1500, false); got != 1484 {
		t.Fatalf("incorrect at baseline: expected 1484, got %d", got)
	}
}

func TestUpdateRatingMonotonic(t *testing.T) {
	for rating := 800; rating <= 2400; rating += 50 {
		for baseline := 800; baseline <= 2400; baseline += 50 {
			up := UpdateRating(rating, baseline, true)
			if up < rating {
				t.Fatalf("correct answer lowered rating: %d -> %d (baseline %d)", rating, up, baseline)
			}
			down := UpdateRating(rating, baseline, false)
			if down > rating {
				t.Fatalf("incorrect answer raised rating: %d -> %d (baseline %d)", rating, down, baseline)
			}
		}
	}
}

func TestBaselineModes(t *testing.T) {
	famous := domain.PersonRecord{Sitelinks: 250}
	obscure := domain.PersonRecord{Sitelinks: 5}

	if got := Baseline(BaselineFixed, famous); got != 1500 {
		t.Fatalf("fixed baseline: expected 1500, got %d", got)
	}
	f := Baseline(BaselineDifficulty, famous)
	o := Baseline(BaselineDifficulty, obscure)
	if f >= o {
		t.Fatalf("famous person should rate easier than obscure: %d vs %d", f, o)
	}

	// Clamped at both ends of the sitelink range.
	if got := Baseline(BaselineDifficulty, domain.PersonRecord{Sitelinks: 1000}); got != 1200 {
		t.Fatalf("expected floor 1200, got %d", got)
	}
	if got := Baseline(BaselineDifficulty, domain.PersonRecord{Sitelinks: 0}); got != 2100 {
		t.Fatalf("expected ceiling 2100, got %d", got)
	}
}

func TestRankLadder(t *testing.T) {
	cases := []struct {
		rating int
		want   string
	}{
		{1300, "Novice"},
		{1400, "Beginner"},
		{1500, "Beginner"},
		{1600, "Intermediate"},
		{1800, "Advanced"},
		{2000, "Expert"},
		{2200, "Master"},
		{2500, "Legendary"},
	}
	for _, tc := range cases {
		if got := Rank(tc.rating); got != tc.want {
			t.Fatalf("rank(%d): expected %s, got %s", tc.rating, tc.want, got)
		}
	}
}
