package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"notables-quiz-service/internal/app"
	"notables-quiz-service/internal/domain"
)

// WSHandler serves one quiz session per websocket connection.
type WSHandler struct {
	pool     *app.Pool
	cfg      app.Config
	stats    app.StatsStore
	fetcher  app.ImageFetcher
	upgrader websocket.Upgrader
}

func NewWSHandler(pool *app.Pool, cfg app.Config, stats app.StatsStore, fetcher app.ImageFetcher) *WSHandler {
	return &WSHandler{
		pool:    pool,
		cfg:     cfg,
		stats:   stats,
		fetcher: fetcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option string `json:"option"` // wikidataUrl of the chosen option
}

type typedAnswerPayload struct {
	Text string `json:"text"`
}

type countryPayload struct {
	Country string `json:"country"`
}

type modePayload struct {
	Mode string `json:"mode"`
}

type delayPayload struct {
	Seconds int `json:"seconds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type skillPayload struct {
	Rating   int    `json:"rating"`
	Rank     string `json:"rank"`
	Streak   int    `json:"streak"`
	Accuracy int    `json:"accuracy"`
	Answered int    `json:"answered"`
}

// questionOption never carries both name and image: in image->name mode
// an option portrait would reveal the answer, and vice versa.
type questionOption struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

type questionPayload struct {
	Mode        string           `json:"mode"`
	PromptImage string           `json:"promptImage,omitempty"`
	PromptName  string           `json:"promptName,omitempty"`
	Options     []questionOption `json:"options"`
	Skill       skillPayload     `json:"skill"`
}

type answerResultPayload struct {
	Correct      bool         `json:"correct"`
	ChosenID     string       `json:"chosenId"`
	AnswerID     string       `json:"answerId"`
	AnswerName   string       `json:"answerName"`
	AnswerImage  string       `json:"answerImage,omitempty"`
	Hint         string       `json:"hint"`
	Country      string       `json:"country"`
	Flag         string       `json:"flag,omitempty"`
	WikipediaURL string       `json:"wikipediaUrl,omitempty"`
	RatingDelta  int          `json:"ratingDelta"`
	Skill        skillPayload `json:"skill"`
}

type sessionInfoPayload struct {
	Countries []app.CountryCount  `json:"countries"`
	Mode      string              `json:"mode"`
	Country   string              `json:"country"`
	Stats     domain.SessionStats `json:"stats"`
}

// wsWriter queues outbound messages for one connection's writer
// goroutine. Once closeQueue is called, push drops messages instead of
// blocking, so an auto-advance timer racing the disconnect is a no-op.
type wsWriter struct {
	send    chan any
	closing chan struct{}
}

func newWSWriter() *wsWriter {
	return &wsWriter{send: make(chan any, 16), closing: make(chan struct{})}
}

func (w *wsWriter) push(msg any) {
	select {
	case w.send <- msg:
	case <-w.closing:
	}
}

func (w *wsWriter) closeQueue() {
	close(w.closing)
}

// ServeWS upgrades the request and runs one endless-quiz session until
// the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = randomPlayerID()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := app.NewSessionWithParts(h.pool, h.cfg, h.stats, playerID, app.NewGenerator(), app.NewPrefetcher(h.fetcher))
	if err := session.Start(r.Context()); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	out := newWSWriter()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-out.send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-out.closing:
				return
			}
		}
	}()

	// When the auto-advance timer fires server-side, push the next
	// question so the client does not have to poll.
	session.SetAdvanceListener(func() {
		out.push(h.questionMessage(session))
	})

	out.push(outboundMessage[sessionInfoPayload]{Type: "session", Payload: sessionInfoPayload{
		Countries: h.pool.Countries(),
		Mode:      string(session.Mode()),
		Country:   session.Country(),
		Stats:     session.Stats(),
	}})
	out.push(h.questionMessage(session))

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.handleMessage(r.Context(), session, out, inbound)
	}

	session.SetAdvanceListener(nil)
	out.closeQueue()
	<-writerDone
}

func (h *WSHandler) handleMessage(ctx context.Context, session *app.Session, out *wsWriter, inbound inboundMessage) {
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(errorMessage("invalid answer payload"))
			return
		}
		h.submit(ctx, session, out, payload.Option)

	case "typed_answer":
		// Legacy free-text mode: the normalized guess is checked against
		// the answer key, then scored through the same submission path.
		var payload typedAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(errorMessage("invalid typed answer payload"))
			return
		}
		qs, ok := session.Current()
		if !ok {
			out.push(errorMessage("no question to answer"))
			return
		}
		choice := ""
		if app.MatchTypedAnswer(qs.Correct, payload.Text) {
			choice = qs.Correct.WikidataURL
		} else {
			for _, option := range qs.Options {
				if option.WikidataURL != qs.Correct.WikidataURL {
					choice = option.WikidataURL
					break
				}
			}
		}
		h.submit(ctx, session, out, choice)

	case "next":
		if err := session.Next(ctx); err != nil {
			out.push(errorMessage(err.Error()))
			return
		}
		out.push(h.questionMessage(session))

	case "country":
		var payload countryPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(errorMessage("invalid country payload"))
			return
		}
		if err := session.SetCountry(ctx, payload.Country); err != nil {
			out.push(errorMessage(err.Error()))
			return
		}
		out.push(h.questionMessage(session))

	case "mode":
		var payload modePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(errorMessage("invalid mode payload"))
			return
		}
		if err := session.SetMode(ctx, domain.GameMode(payload.Mode)); err != nil {
			out.push(errorMessage(err.Error()))
			return
		}
		out.push(h.questionMessage(session))

	case "delay":
		var payload delayPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			out.push(errorMessage("invalid delay payload"))
			return
		}
		session.SetAdvanceDelay(secondsToDuration(payload.Seconds))

	case "stats":
		out.push(outboundMessage[domain.SessionStats]{Type: "stats", Payload: session.Stats()})

	default:
		out.push(errorMessage("unsupported message type"))
	}
}

func (h *WSHandler) submit(ctx context.Context, session *app.Session, out *wsWriter, choice string) {
	result, err := session.Submit(ctx, choice)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuestion) {
			out.push(h.questionMessage(session))
			return
		}
		out.push(errorMessage(err.Error()))
		return
	}

	flag, _ := h.pool.Flag(result.Answer.Country)
	payload := answerResultPayload{
		Correct:     result.Correct,
		ChosenID:    result.Chosen.WikidataURL,
		AnswerID:    result.Answer.WikidataURL,
		AnswerName:  result.Answer.Name,
		AnswerImage: result.Answer.Image,
		Hint:        app.Hint(result.Answer),
		Country:     result.Answer.Country,
		Flag:        flag,
		RatingDelta: result.RatingDelta,
		Skill:       skillOf(result.Skill),
	}
	if result.Answer.WikipediaURL != nil {
		payload.WikipediaURL = *result.Answer.WikipediaURL
	}
	out.push(outboundMessage[answerResultPayload]{Type: "answerResult", Payload: payload})
	out.push(outboundMessage[domain.SessionStats]{Type: "stats", Payload: session.Stats()})
}

// questionMessage renders the current state: the sanitized head question
// while one is displayed, or an idle notice for a too-small pool.
func (h *WSHandler) questionMessage(session *app.Session) any {
	qs, ok := session.Current()
	if !ok {
		return outboundMessage[errorPayload]{Type: "idle", Payload: errorPayload{
			Message: "not enough people in the selected pool",
		}}
	}

	mode := session.Mode()
	payload := questionPayload{
		Mode:    string(mode),
		Options: make([]questionOption, 0, len(qs.Options)),
		Skill:   skillOf(session.Skill()),
	}
	for _, option := range qs.Options {
		qo := questionOption{ID: option.WikidataURL}
		if mode == domain.ModeNameToImage {
			qo.Image = option.Image
		} else {
			qo.Name = option.Name
		}
		payload.Options = append(payload.Options, qo)
	}
	if mode == domain.ModeNameToImage {
		payload.PromptName = qs.Correct.Name
	} else {
		payload.PromptImage = qs.Correct.Image
	}
	return outboundMessage[questionPayload]{Type: "question", Payload: payload}
}

func skillOf(skill domain.SkillState) skillPayload {
	return skillPayload{
		Rating:   skill.Rating,
		Rank:     app.Rank(skill.Rating),
		Streak:   skill.Streak,
		Accuracy: skill.Accuracy(),
		Answered: skill.TotalAnswered,
	}
}

func errorMessage(msg string) any {
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: msg}}
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func randomPlayerID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "anonymous"
	}
	return hex.EncodeToString(buf)
}
