package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"notables-quiz-service/internal/domain"
)

const sampleIndex = `{
  "countries": [
    {"name": "Chile", "code": "Q298", "file": "chile.json"},
    {"name": "Ghost", "code": "Q0", "file": "missing.json"},
    {"name": "Broken", "code": "Q1", "file": "broken.json"},
    {"name": "Empty", "code": "Q2", "file": "empty.json"}
  ]
}`

const sampleChile = `{
  "country": "Chile",
  "countryCode": "Q298",
  "generated": "2024-11-20T10:00:00Z",
  "rankingMetric": "sitelinks",
  "flag": "https://img.example/cl.svg",
  "people": [
    {
      "id": 0,
      "name": "Pablo Neruda",
      "image": "https://img.example/neruda.jpg",
      "sitelinks": 150,
      "birthYear": 1904,
      "deathYear": 1973,
      "occupation": "poet",
      "wikidataUrl": "https://www.wikidata.org/wiki/Q5753",
      "answerKey": "pablo neruda",
      "wikipediaUrl": "https://en.wikipedia.org/wiki/Pablo_Neruda"
    },
    {
      "id": 1,
      "name": "Q123456",
      "image": "",
      "sitelinks": 3,
      "birthYear": null,
      "deathYear": null,
      "occupation": null,
      "wikidataUrl": "https://www.wikidata.org/wiki/Q123456",
      "answerKey": "q123456"
    }
  ]
}`

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.json": sampleIndex,
		"chile.json": sampleChile,
		"broken.json": `{"country": "Broken", "people": [`,
		"empty.json":  `{"country": "Empty", "people": []}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadCountriesToleratesDefects(t *testing.T) {
	loader := NewDatasetLoader(writeDataset(t))

	files, err := loader.LoadCountries(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Missing, malformed, and empty rosters are skipped; Chile survives.
	if len(files) != 1 || files[0].Country != "Chile" {
		t.Fatalf("expected only Chile, got %+v", files)
	}

	people := files[0].People
	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %d", len(people))
	}
	if people[0].Occupation == nil || *people[0].Occupation != "poet" {
		t.Fatalf("occupation lost in decode: %+v", people[0])
	}
	// Known upstream defects arrive intact: null years, absent
	// wikipediaUrl, placeholder identifier names.
	if people[1].BirthYear != nil || people[1].WikipediaURL != nil {
		t.Fatalf("expected null optionals, got %+v", people[1])
	}
	if people[1].Name != "Q123456" {
		t.Fatalf("placeholder name must be preserved as-is, got %q", people[1].Name)
	}
}

func TestLoadCountriesMissingIndex(t *testing.T) {
	loader := NewDatasetLoader(t.TempDir())
	if _, err := loader.LoadCountries(context.Background()); err == nil {
		t.Fatalf("expected error for missing index")
	}
}

func TestLoadCountriesAllFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	index := `{"countries": [{"name": "Ghost", "code": "Q0", "file": "missing.json"}]}`
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte(index), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	loader := NewDatasetLoader(dir)
	if _, err := loader.LoadCountries(context.Background()); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}
