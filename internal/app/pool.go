package app

import (
	"sort"

	"notables-quiz-service/internal/domain"
)

// AllCountries is the filter sentinel that selects the whole pool.
const AllCountries = "all"

// Pool is the flattened, immutable sequence of quiz-eligible people.
// Once built it is never mutated, so it is safe to share across
// concurrent generator calls.
type Pool struct {
	people []domain.PersonRecord
	flags  map[string]string
}

// NewPool flattens every country file into one ordered sequence,
// stamping each record with its owning country name. Files with empty
// rosters contribute nothing.
func NewPool(files []domain.CountryFile) *Pool {
	p := &Pool{flags: make(map[string]string, len(files))}
	for _, f := range files {
		if len(f.People) == 0 {
			continue
		}
		if f.Flag != "" {
			p.flags[f.Country] = f.Flag
		}
		for _, person := range f.People {
			person.Country = f.Country
			p.people = append(p.people, person)
		}
	}
	return p
}

// Filter returns the subsequence whose country equals the selector, or
// the pool itself for the "all" sentinel. An empty result is valid and
// means "cannot generate questions", not a failure.
func (p *Pool) Filter(country string) *Pool {
	if country == AllCountries || country == "" {
		return p
	}
	sub := &Pool{flags: p.flags}
	for _, person := range p.people {
		if person.Country == country {
			sub.people = append(sub.people, person)
		}
	}
	return sub
}

// Len reports the number of records in the pool.
func (p *Pool) Len() int {
	return len(p.people)
}

// At returns the record at index i.
func (p *Pool) At(i int) domain.PersonRecord {
	return p.people[i]
}

// Flag returns the flag image URI for a country, if the dataset had one.
func (p *Pool) Flag(country string) (string, bool) {
	flag, ok := p.flags[country]
	return flag, ok
}

// CountryCount pairs a country name with its roster size.
type CountryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Countries returns the distinct country names in the pool, sorted,
// with per-country record counts. Feeds the country selector surface.
func (p *Pool) Countries() []CountryCount {
	counts := make(map[string]int)
	for _, person := range p.people {
		counts[person.Country]++
	}
	out := make([]CountryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CountryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
