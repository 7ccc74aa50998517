package app

import (
	"testing"

	"notables-quiz-service/internal/domain"
)

func TestPoolFlattensAndStampsCountry(t *testing.T) {
	files := []domain.CountryFile{
		{
			Country: "Chile",
			Flag:    "https://img.example/cl.svg",
			People: []domain.PersonRecord{
				{ID: 0, Name: "Gabriela Mistral", WikidataURL: "https://www.wikidata.org/wiki/Q80871"},
				{ID: 1, Name: "Pablo Neruda", WikidataURL: "https://www.wikidata.org/wiki/Q5753"},
			},
		},
		{Country: "Atlantis"}, // empty roster, skipped
		{
			Country: "Norway",
			People: []domain.PersonRecord{
				{ID: 0, Name: "Edvard Munch", WikidataURL: "https://www.wikidata.org/wiki/Q41406"},
			},
		},
	}

	pool := NewPool(files)
	if pool.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", pool.Len())
	}
	if pool.At(0).Country != "Chile" || pool.At(2).Country != "Norway" {
		t.Fatalf("country not stamped: %q / %q", pool.At(0).Country, pool.At(2).Country)
	}
	if flag, ok := pool.Flag("Chile"); !ok || flag != "https://img.example/cl.svg" {
		t.Fatalf("flag lookup failed: %q %v", flag, ok)
	}

	countries := pool.Countries()
	if len(countries) != 2 || countries[0].Name != "Chile" || countries[1].Name != "Norway" {
		t.Fatalf("unexpected country list: %+v", countries)
	}
	if countries[0].Count != 2 {
		t.Fatalf("expected 2 Chileans, got %d", countries[0].Count)
	}
}

func TestPoolFilter(t *testing.T) {
	pool := testPool(6)

	if got := pool.Filter(AllCountries); got.Len() != 6 {
		t.Fatalf("sentinel filter should keep everything, got %d", got.Len())
	}
	if got := pool.Filter("Testland"); got.Len() != 6 {
		t.Fatalf("exact match filter lost records: %d", got.Len())
	}
	// Unknown country yields a valid empty pool, not an error.
	if got := pool.Filter("Nowhere"); got.Len() != 0 {
		t.Fatalf("expected empty pool for unknown country, got %d", got.Len())
	}
}
