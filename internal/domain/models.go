package domain

import "time"

// PersonRecord is one notable individual from a country roster.
// WikidataURL is the global-uniqueness key; ID only disambiguates within
// a single country file and collides across countries.
type PersonRecord struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Sitelinks   int     `json:"sitelinks"`
	BirthYear   *int    `json:"birthYear"`
	DeathYear   *int    `json:"deathYear"`
	Occupation  *string `json:"occupation"`
	WikidataURL string  `json:"wikidataUrl"`
	AnswerKey   string  `json:"answerKey"`
	// WikipediaURL is absent for people without an English article.
	WikipediaURL *string `json:"wikipediaUrl,omitempty"`
	// Country is stamped at load time from the owning file; it is not
	// present in the stored per-country JSON.
	Country string `json:"country,omitempty"`
}

// CountryFile is one country's roster plus metadata, produced offline by
// the data pipeline and loaded read-only at quiz start.
type CountryFile struct {
	Country       string         `json:"country"`
	CountryCode   string         `json:"countryCode"`
	Generated     time.Time      `json:"generated"`
	RankingMetric string         `json:"rankingMetric"`
	Flag          string         `json:"flag,omitempty"`
	People        []PersonRecord `json:"people"`
}

// CountryIndex lists the per-country data files.
type CountryIndex struct {
	Countries []CountryIndexEntry `json:"countries"`
}

type CountryIndexEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
	File string `json:"file"`
}

// QuestionSet is an ephemeral value consumed once by the client: the
// correct person plus three distractors, in shuffled display order.
// All four options have pairwise-distinct WikidataURL values.
type QuestionSet struct {
	Correct PersonRecord
	Options [4]PersonRecord
}

// GameMode selects which side of the question is the prompt.
type GameMode string

const (
	ModeImageToName GameMode = "image-to-name"
	ModeNameToImage GameMode = "name-to-image"
)

// InitialRating is where every session starts.
const InitialRating = 1500

// SkillState is the session-scoped skill estimate, mutated only by the
// answer evaluator, once per answered question.
type SkillState struct {
	Rating        int `json:"rating"`
	Streak        int `json:"streak"`
	TotalAnswered int `json:"totalAnswered"`
	CorrectCount  int `json:"correctCount"`
}

// NewSkillState returns the initial state for a fresh session.
func NewSkillState() SkillState {
	return SkillState{Rating: InitialRating}
}

// Accuracy returns the correct-answer percentage, rounded, or 0 before
// the first answer.
func (s SkillState) Accuracy() int {
	if s.TotalAnswered == 0 {
		return 0
	}
	return int(float64(s.CorrectCount)/float64(s.TotalAnswered)*100 + 0.5)
}

// SessionStats is the persisted summary record: the live counters plus
// monotone best-ever watermarks kept across sessions for display only.
type SessionStats struct {
	TotalAnswered int `json:"totalAnswered"`
	CorrectCount  int `json:"correctCount"`
	Streak        int `json:"streak"`
	BestStreak    int `json:"bestStreak"`
	Rating        int `json:"rating"`
	BestRating    int `json:"bestRating"`
}

// AnswerResult summarizes the outcome of a submission.
type AnswerResult struct {
	Correct     bool         `json:"correct"`
	Chosen      PersonRecord `json:"chosen"`
	Answer      PersonRecord `json:"answer"`
	RatingDelta int          `json:"ratingDelta"`
	Skill       SkillState   `json:"skill"`
}
