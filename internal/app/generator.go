package app

import (
	"math/rand"
	"sync"
	"time"

	"notables-quiz-service/internal/domain"
)

// maxDistractorAttempts bounds the rejection-sampling loop. Beyond it
// the generator falls back to a deterministic scan so pathological
// pools (many repeated identities) still terminate.
const maxDistractorAttempts = 100

// Generator draws questions from a pool: one correct answer and three
// distractors with pairwise-distinct Wikidata identities, in uniformly
// shuffled option order.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewGeneratorWithSource is used by tests that need deterministic draws.
func NewGeneratorWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Generate returns a question set, or ok=false when the pool has fewer
// than four people. The false return is a normal state (a filtered pool
// can be arbitrarily small), not a failure.
func (g *Generator) Generate(pool *Pool) (domain.QuestionSet, bool) {
	if pool.Len() < 4 {
		return domain.QuestionSet{}, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	correct := pool.At(g.rnd.Intn(pool.Len()))

	seen := map[string]bool{correct.WikidataURL: true}
	distractors := make([]domain.PersonRecord, 0, 3)
	for attempts := 0; len(distractors) < 3 && attempts < maxDistractorAttempts; attempts++ {
		candidate := pool.At(g.rnd.Intn(pool.Len()))
		if seen[candidate.WikidataURL] {
			continue
		}
		seen[candidate.WikidataURL] = true
		distractors = append(distractors, candidate)
	}

	// Rejection sampling exhausted its budget; scan for whatever
	// distinct identities remain.
	if len(distractors) < 3 {
		for i := 0; i < pool.Len() && len(distractors) < 3; i++ {
			candidate := pool.At(i)
			if seen[candidate.WikidataURL] {
				continue
			}
			seen[candidate.WikidataURL] = true
			distractors = append(distractors, candidate)
		}
		if len(distractors) < 3 {
			return domain.QuestionSet{}, false
		}
	}

	qs := domain.QuestionSet{Correct: correct}
	qs.Options[0] = correct
	copy(qs.Options[1:], distractors)

	// Fisher-Yates; a comparator-based shuffle would bias option order.
	for i := len(qs.Options) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		qs.Options[i], qs.Options[j] = qs.Options[j], qs.Options[i]
	}
	return qs, true
}
