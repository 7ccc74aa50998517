package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"notables-quiz-service/internal/domain"
)

// DatasetLoader supplies the country rosters (from static data, disk,
// or Postgres).
type DatasetLoader interface {
	LoadCountries(ctx context.Context) ([]domain.CountryFile, error)
}

// StatsStore persists the summary stats record per player (in-memory or
// Redis). Persistence is a side effect; session logic never depends on it.
type StatsStore interface {
	Load(ctx context.Context, playerID string) (domain.SessionStats, error)
	Save(ctx context.Context, playerID string, stats domain.SessionStats) error
}

// State is the session lifecycle position.
type State string

const (
	// StateIdle: queue empty, no question shown.
	StateIdle State = "idle"
	// StateReady: head of queue displayed, awaiting input.
	StateReady State = "ready"
	// StateAnswered: submission scored, feedback displayed.
	StateAnswered State = "answered"
)

// Config carries the tunables of a quiz session.
type Config struct {
	QueueDepth   int
	AdvanceDelay time.Duration
	AutoAdvance  bool
	Baseline     BaselineMode
}

// DefaultConfig matches the shipped client defaults: five prefetched
// questions, two-second auto-advance, fixed question baseline.
func DefaultConfig() Config {
	return Config{
		QueueDepth:   5,
		AdvanceDelay: 2 * time.Second,
		AutoAdvance:  true,
		Baseline:     BaselineFixed,
	}
}

func (c Config) normalized() Config {
	if c.QueueDepth < 2 {
		c.QueueDepth = 2
	}
	if c.QueueDepth > 5 {
		c.QueueDepth = 5
	}
	if c.AdvanceDelay <= 0 {
		c.AdvanceDelay = 2 * time.Second
	}
	if c.Baseline == "" {
		c.Baseline = BaselineFixed
	}
	return c
}

// Session is one player's endless quiz: it owns the question queue and
// the skill state, and walks Idle -> Ready -> Answered -> Ready. All
// mutation goes through its methods; the presentation layer only reads.
type Session struct {
	cfg      Config
	playerID string
	store    StatsStore

	pool  *Pool
	queue *Queue

	mu         sync.Mutex
	filtered   *Pool
	country    string
	mode       domain.GameMode
	state      State
	skill      domain.SkillState
	bestRating int
	bestStreak int
	lastResult domain.AnswerResult
	// timerGen invalidates auto-advance timers scheduled before a reset,
	// so a stale timer cannot fire into a fresh state.
	timerGen  int
	advanceFn func()
}

// NewSession builds a session over an immutable pool. store may be nil
// when stats persistence is not wanted (e.g. unit tests).
func NewSession(pool *Pool, cfg Config, store StatsStore, playerID string) *Session {
	cfg = cfg.normalized()
	prefetch := NewPrefetcher(NewHTTPImageFetcher(10 * time.Second))
	return newSession(pool, cfg, store, playerID, NewGenerator(), prefetch)
}

// NewSessionWithParts injects the generator and prefetcher, for tests
// that need deterministic draws or fake fetchers.
func NewSessionWithParts(pool *Pool, cfg Config, store StatsStore, playerID string, gen *Generator, prefetch *Prefetcher) *Session {
	return newSession(pool, cfg.normalized(), store, playerID, gen, prefetch)
}

func newSession(pool *Pool, cfg Config, store StatsStore, playerID string, gen *Generator, prefetch *Prefetcher) *Session {
	return &Session{
		cfg:        cfg,
		playerID:   playerID,
		store:      store,
		pool:       pool,
		filtered:   pool,
		country:    AllCountries,
		mode:       domain.ModeImageToName,
		state:      StateIdle,
		skill:      domain.NewSkillState(),
		bestRating: domain.InitialRating,
		queue:      NewQueue(cfg.QueueDepth, gen, prefetch),
	}
}

// Start restores persisted watermarks and fills the queue. A pool too
// small for questions leaves the session idle; that is not an error.
func (s *Session) Start(ctx context.Context) error {
	if s.store != nil && s.playerID != "" {
		if stats, err := s.store.Load(ctx, s.playerID); err == nil {
			s.mu.Lock()
			if stats.BestRating > s.bestRating {
				s.bestRating = stats.BestRating
			}
			if stats.BestStreak > s.bestStreak {
				s.bestStreak = stats.BestStreak
			}
			s.mu.Unlock()
		} else if !errors.Is(err, domain.ErrStatsNotFound) {
			log.Printf("load stats for %s: %v", s.playerID, err)
		}
	}
	return s.refill(ctx)
}

// refill attempts to reach target queue depth and moves Idle -> Ready
// when at least the head is available.
func (s *Session) refill(ctx context.Context) error {
	s.mu.Lock()
	pool := s.filtered
	s.mu.Unlock()

	err := s.queue.EnsureFilled(ctx, pool)
	if err != nil && !errors.Is(err, domain.ErrPoolTooSmall) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		if _, ok := s.queue.Head(); ok {
			s.state = StateReady
		}
	}
	return nil
}

// State reports the lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the displayed question: the queue head, while Ready
// or Answered.
func (s *Session) Current() (domain.QuestionSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		return domain.QuestionSet{}, false
	}
	return s.queue.Head()
}

// Submit scores a choice against the current question and applies the
// rating update. Resubmission against an already-answered question is a
// no-op that returns the original result. Correctness is decided by
// Wikidata identity alone; display defects cannot corrupt scoring.
func (s *Session) Submit(ctx context.Context, optionURL string) (domain.AnswerResult, error) {
	s.mu.Lock()

	if s.state == StateAnswered {
		result := s.lastResult
		s.mu.Unlock()
		return result, nil
	}
	if s.state != StateReady {
		s.mu.Unlock()
		return domain.AnswerResult{}, domain.ErrNoQuestion
	}

	qs, ok := s.queue.Head()
	if !ok {
		s.state = StateIdle
		s.mu.Unlock()
		return domain.AnswerResult{}, domain.ErrNoQuestion
	}

	var chosen domain.PersonRecord
	found := false
	for _, option := range qs.Options {
		if option.WikidataURL == optionURL {
			chosen = option
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return domain.AnswerResult{}, domain.ErrUnknownOption
	}

	correct := chosen.WikidataURL == qs.Correct.WikidataURL
	baseline := Baseline(s.cfg.Baseline, qs.Correct)
	newRating := UpdateRating(s.skill.Rating, baseline, correct)
	delta := newRating - s.skill.Rating

	s.skill.Rating = newRating
	s.skill.TotalAnswered++
	if correct {
		s.skill.CorrectCount++
		s.skill.Streak++
	} else {
		s.skill.Streak = 0
	}
	if s.skill.Rating > s.bestRating {
		s.bestRating = s.skill.Rating
	}
	if s.skill.Streak > s.bestStreak {
		s.bestStreak = s.skill.Streak
	}

	s.state = StateAnswered
	s.lastResult = domain.AnswerResult{
		Correct:     correct,
		Chosen:      chosen,
		Answer:      qs.Correct,
		RatingDelta: delta,
		Skill:       s.skill,
	}
	result := s.lastResult
	stats := s.statsLocked()

	if s.cfg.AutoAdvance {
		gen := s.timerGen
		time.AfterFunc(s.cfg.AdvanceDelay, func() {
			s.autoAdvance(gen)
		})
	}
	s.mu.Unlock()

	s.persist(ctx, stats)
	return result, nil
}

// Next advances explicitly, without waiting for the auto-advance timer.
// Only meaningful in the Answered state.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateAnswered {
		s.mu.Unlock()
		return nil
	}
	s.timerGen++ // the pending timer, if any, must not fire twice
	s.advanceLocked(ctx)
	s.mu.Unlock()
	return nil
}

// autoAdvance is the timer path; a generation mismatch means the state
// was reset or manually advanced since scheduling and the firing is stale.
func (s *Session) autoAdvance(gen int) {
	s.mu.Lock()
	if gen != s.timerGen || s.state != StateAnswered {
		s.mu.Unlock()
		return
	}
	s.advanceLocked(context.Background())
	fn := s.advanceFn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// SetAdvanceListener registers a callback fired after the auto-advance
// timer moves the session forward, so a transport can push the next
// question without polling. Called outside the session lock.
func (s *Session) SetAdvanceListener(fn func()) {
	s.mu.Lock()
	s.advanceFn = fn
	s.mu.Unlock()
}

func (s *Session) advanceLocked(ctx context.Context) {
	s.queue.Advance(ctx, s.filtered)
	if _, ok := s.queue.Head(); ok {
		s.state = StateReady
	} else {
		s.state = StateIdle
	}
}

// SetCountry switches the active filter. The queue and skill state are
// rebuilt from scratch: questions from the old pool are invalid and the
// rating is only meaningful against one pool's difficulty profile.
func (s *Session) SetCountry(ctx context.Context, country string) error {
	s.mu.Lock()
	s.country = country
	s.filtered = s.pool.Filter(country)
	s.resetLocked()
	s.mu.Unlock()
	return s.refill(ctx)
}

// SetMode toggles between image->name and name->image. The prefetch
// strategy changes with the mode, so the queue is rebuilt as well.
func (s *Session) SetMode(ctx context.Context, mode domain.GameMode) error {
	if mode != domain.ModeImageToName && mode != domain.ModeNameToImage {
		mode = domain.ModeImageToName
	}
	s.mu.Lock()
	s.mode = mode
	s.resetLocked()
	s.mu.Unlock()
	return s.refill(ctx)
}

// resetLocked forces Idle and wipes per-pool state. Callers hold s.mu.
func (s *Session) resetLocked() {
	s.timerGen++
	s.queue.Reset()
	s.skill = domain.NewSkillState()
	s.lastResult = domain.AnswerResult{}
	s.state = StateIdle
}

// SetAdvanceDelay tunes the auto-advance timer within the 1-5s range
// the client offers.
func (s *Session) SetAdvanceDelay(d time.Duration) {
	if d < time.Second {
		d = time.Second
	}
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	s.mu.Lock()
	s.cfg.AdvanceDelay = d
	s.mu.Unlock()
}

// Skill returns a read-only copy of the live skill state.
func (s *Session) Skill() domain.SkillState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skill
}

// Stats returns the persisted-shape summary including watermarks.
func (s *Session) Stats() domain.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Session) statsLocked() domain.SessionStats {
	return domain.SessionStats{
		TotalAnswered: s.skill.TotalAnswered,
		CorrectCount:  s.skill.CorrectCount,
		Streak:        s.skill.Streak,
		BestStreak:    s.bestStreak,
		Rating:        s.skill.Rating,
		BestRating:    s.bestRating,
	}
}

// Mode returns the active game mode.
func (s *Session) Mode() domain.GameMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Country returns the active filter selector.
func (s *Session) Country() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.country
}

// Pool exposes the full (unfiltered) pool for the selector surface.
func (s *Session) Pool() *Pool {
	return s.pool
}

// QueueLen reports how many prefetched questions are ready.
func (s *Session) QueueLen() int {
	return s.queue.Len()
}

func (s *Session) persist(ctx context.Context, stats domain.SessionStats) {
	if s.store == nil || s.playerID == "" {
		return
	}
	if err := s.store.Save(ctx, s.playerID, stats); err != nil {
		log.Printf("save stats for %s: %v", s.playerID, err)
	}
}
