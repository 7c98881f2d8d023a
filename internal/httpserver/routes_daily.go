// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily grid.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's grid (creates or reuses session)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// The daily session is an ordinary game session with Session.Daily set, so it
// is played through the /game/{id}/* endpoints and its result is written to
// daily_results when it completes (see recordProgress).
// Each player can finish the daily grid once per day (enforced by the DB).
// Deterministic word selection and layout are based on date + salt.

package httpserver

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/daily"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/game"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/words"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/wordsearch"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	salt     string
	now      func() time.Time
	sessions map[string]string // active session IDs keyed by owner|date
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		now:      time.Now,
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// dailyGrid builds the shared grid for day t. The same seed drives the word
// sample and the layout, so every player sees the same puzzle.
func (d *dailyServer) dailyGrid(t time.Time) *wordsearch.Grid {
	rng := rand.New(rand.NewSource(daily.Seed(t, d.salt)))
	sample := words.Default().SampleSeeded(rng, wordsearch.MaxWords)
	return wordsearch.NewGenerator(rng).Generate(sample, wordsearch.DefaultGridSize)
}

// -----------------------------------------------------------------------------
// /daily/new

// newRes is returned by /daily/new.
type newRes struct {
	GameID string      `json:"gameId"`
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	State  *game.State `json:"state,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
// - If the player already has a result for today → return Played=true.
// - Otherwise reuse the live in-memory session or start a new one.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	o := d.srv.ownerOf(w, r)
	now := d.now()
	date := daily.DateKey(now)

	if played, err := d.srv.daily.AlreadyPlayed(r.Context(), o.id(), date); err != nil {
		log.Warn().Err(err).Msg("daily already played")
	} else if played {
		_ = json.NewEncoder(w).Encode(newRes{Date: date, Played: true})
		return
	}

	key := o.id() + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.sessions[key]; ok {
		if sess, err := d.srv.store.Get(r.Context(), id); err == nil {
			st := sess.Snapshot()
			_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, State: &st})
			return
		}
		delete(d.sessions, key)
	}

	sess := game.New(d.dailyGrid(now))
	sess.Daily = date
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	d.sessions[key] = sess.ID
	d.srv.insertGameRow(r.Context(), o, sess)

	st := sess.Snapshot()
	_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, State: &st})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
