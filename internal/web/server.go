package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sched"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/sync"
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	col    *sched.Collection
	db     *storage.DB
	syncer *sync.Syncer
	logger *slog.Logger
	router *http.ServeMux
}

// NewServer creates and configures a new server.
func NewServer(col *sched.Collection, db *storage.DB, syncer *sync.Syncer, logger *slog.Logger) *Server {
	s := &Server{
		col:    col,
		db:     db,
		syncer: syncer,
		logger: logger,
		router: http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /decks", s.handleGetDecks())
	s.router.HandleFunc("GET /decks/{id}/queue", s.handleGetQueue())
	s.router.HandleFunc("GET /cards/{id}", s.handleGetCard())
	s.router.HandleFunc("POST /cards/{id}/answer", s.handlePostAnswer())
	s.router.HandleFunc("POST /sync", s.handlePostSync())
}

type deckView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

type stateView struct {
	Bucket        string   `json:"bucket"`
	Position      *int64   `json:"position,omitempty"`
	ScheduledDays *int64   `json:"scheduled_days,omitempty"`
	Stability     *float64 `json:"stability,omitempty"`
	Difficulty    *float64 `json:"difficulty,omitempty"`
}

func newStateView(st sched.CardState) stateView {
	switch s := st.(type) {
	case sched.NewState:
		return stateView{Bucket: s.Bucket().String(), Position: &s.Position}
	case sched.LearningState:
		return stateView{Bucket: s.Bucket().String(), Stability: &s.Memory.Stability, Difficulty: &s.Memory.Difficulty}
	case sched.ReviewState:
		return stateView{
			Bucket:        s.Bucket().String(),
			ScheduledDays: &s.ScheduledDays,
			Stability:     &s.Memory.Stability,
			Difficulty:    &s.Memory.Difficulty,
		}
	}
	return stateView{Bucket: "Unknown"}
}

type entryView struct {
	CardID int64                `json:"card_id"`
	Bucket string               `json:"bucket"`
	States map[string]stateView `json:"states"`
}

type queueView struct {
	DaysElapsed int64       `json:"days_elapsed"`
	Stats       sched.Stats `json:"stats"`
	Entries     []entryView `json:"entries"`
}

type cardView struct {
	ID         int64    `json:"id"`
	DeckID     int64    `json:"deck_id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Context    string   `json:"context,omitempty"`
	Bucket     string   `json:"bucket"`
	Due        int64    `json:"due"`
	Interval   int64    `json:"interval"`
	Stability  *float64 `json:"stability,omitempty"`
	Difficulty *float64 `json:"difficulty,omitempty"`
}

func newCardView(c *domain.Card) cardView {
	v := cardView{
		ID:       c.ID,
		DeckID:   c.DeckID,
		Question: c.Question,
		Answer:   c.Answer,
		Context:  c.Context,
		Bucket:   c.Bucket.String(),
		Due:      c.Due,
		Interval: c.Interval,
	}
	if c.MemoryState != nil {
		v.Stability = &c.MemoryState.Stability
		v.Difficulty = &c.MemoryState.Difficulty
	}
	return v
}

// handleGetDecks lists every deck with its card count.
func (s *Server) handleGetDecks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decks, err := s.db.ListDecks()
		if err != nil {
			s.serverError(w, "Error listing decks", err)
			return
		}
		views := make([]deckView, 0, len(decks))
		for _, d := range decks {
			views = append(views, deckView{ID: d.ID, Name: d.Name, Cards: d.Cards})
		}
		s.writeJSON(w, http.StatusOK, views)
	}
}

// handleGetQueue builds the deck's study queue.
func (s *Server) handleGetQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deckID, ok := pathID(w, r)
		if !ok {
			return
		}

		q := s.col.BuildQueue(deckID)
		view := queueView{
			DaysElapsed: s.col.Timing().DaysElapsed,
			Stats:       q.Stats,
			Entries:     make([]entryView, 0, q.Len()),
		}
		for _, e := range q.Entries() {
			states := make(map[string]stateView, len(domain.Grades))
			for _, g := range domain.Grades {
				next, _ := e.States.ForGrade(g)
				states[g.String()] = newStateView(next)
			}
			view.Entries = append(view.Entries, entryView{CardID: e.CardID, Bucket: e.Bucket.String(), States: states})
		}
		s.writeJSON(w, http.StatusOK, view)
	}
}

// handleGetCard renders a card with its content.
func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardID, ok := pathID(w, r)
		if !ok {
			return
		}
		card, err := s.col.Card(cardID)
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.serverError(w, "Error loading card", err)
			return
		}
		s.writeJSON(w, http.StatusOK, newCardView(card))
	}
}

// handlePostAnswer applies a grade to a card and returns the updated card.
func (s *Server) handlePostAnswer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cardID, ok := pathID(w, r)
		if !ok {
			return
		}

		var body struct {
			Grade domain.Grade `json:"grade"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		}

		card, err := s.col.AnswerCard(cardID, body.Grade)
		switch {
		case errors.Is(err, sched.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, sched.ErrInvalidGrade):
			http.Error(w, "Invalid grade", http.StatusBadRequest)
			return
		case err != nil:
			s.serverError(w, "Error answering card", err)
			return
		}
		s.writeJSON(w, http.StatusOK, newCardView(card))
	}
}

// handlePostSync triggers a manual sync and reports what changed.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Run in the foreground to make the caller wait.
		report, err := s.syncer.RunSync()
		if err != nil {
			s.serverError(w, "Error running sync", err)
			return
		}
		s.writeJSON(w, http.StatusOK, report)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error writing response", "error", err)
	}
}
