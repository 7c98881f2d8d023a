// internal/httpserver/server.go
//
// HTTP server wiring for the Mots Mawon backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): new game, state, gestures, ticks, live websocket.
//   - Daily grid endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints: /auth/*, /stats/me, /games/mine (see auth.go).
//   - Mirroring session progress into the games table and user stats.
//
// Notes:
//   - Sessions live in the in-memory store; the database only keeps a
//     per-game summary row (score, words found, elapsed seconds, status).
//   - The websocket route is mounted outside the request timeout.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/daily"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/game"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/store"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/words"
)

// Server bundles router, session store, word source and DB handle.
type Server struct {
	r     *chi.Mux
	store store.Store
	db    *sql.DB
	words words.Source
	daily *daily.Store
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, src words.Source) *Server {
	s := &Server{r: chi.NewRouter(), store: st, db: db, words: src, daily: daily.NewStore(db)}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(corsFromEnv)     // credentials-friendly CORS

	// Live play holds the connection open, so it skips the request timeout.
	s.r.With(s.withOptionalAuth()).Get("/game/{id}/ws", s.handleLive)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"motsmawon-go","endpoints":["/health","POST /game/new","POST /game/{id}/begin|extend|end|tick","GET /game/{id}/ws","/daily/*","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"dictionary": words.Stats()})
		})

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth())
			r.Post("/game/new", s.handleNewGame)
			r.Route("/game/{id}", func(r chi.Router) {
				r.Get("/", s.handleState)
				r.Post("/begin", s.handleBegin)
				r.Post("/extend", s.handleExtend)
				r.Post("/end", s.handleEnd)
				r.Post("/tick", s.handleTick)
			})

			// Daily grid: OPTIONAL AUTH (guests can play; result persisted on completion)
			s.mountDaily(r)
		})

		// Auth + profile/stats
		s.mountAuthRoutes(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the optional body of POST /game/new.
type newGameReq struct {
	PreviousGameID string `json:"previousGameId"` // session to discard
}

// gameRes is returned by every game endpoint that reports state.
type gameRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

// endRes is returned by POST /game/{id}/end.
type endRes struct {
	Result game.Result `json:"result"`
	State  game.State  `json:"state"`
}

// cellReq carries a gesture coordinate.
type cellReq struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// handleNewGame discards the caller's previous session (if named), samples a
// fresh word set, generates a grid and persists an owner row for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	o := s.ownerOf(w, r)

	if req.PreviousGameID != "" {
		s.abandon(r.Context(), o, req.PreviousGameID)
	}

	sess, err := game.NewGame(r.Context(), s.words, nil)
	if err != nil {
		log.Error().Err(err).Msg("sample words")
		http.Error(w, `{"error":"word_source_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	if len(sess.Grid.Dropped) > 0 {
		log.Info().Str("gameId", sess.ID).Strs("dropped", sess.Grid.Dropped).Msg("words did not fit the grid")
	}
	s.insertGameRow(r.Context(), o, sess)

	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: sess.Snapshot()})
}

// session loads the {id} session or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func decodeCell(w http.ResponseWriter, r *http.Request) (cellReq, bool) {
	var req cellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: sess.Snapshot()})
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	c, ok := decodeCell(w, r)
	if !ok {
		return
	}
	sess.Begin(c.Row, c.Col)
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: sess.Snapshot()})
}

func (s *Server) handleExtend(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	c, ok := decodeCell(w, r)
	if !ok {
		return
	}
	sess.Extend(c.Row, c.Col)
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: sess.Snapshot()})
}

// handleEnd closes the gesture and, on a match, persists progress.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res := sess.End()
	st := sess.Snapshot()
	if res.Matched {
		s.recordProgress(r.Context(), s.ownerOf(w, r), st)
	}
	_ = json.NewEncoder(w).Encode(endRes{Result: res, State: st})
}

// handleTick advances the session clock for clients without a websocket.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Tick()
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, State: sess.Snapshot()})
}

// ---------------------------- persistence ----------------------------------

// owner identifies who a games row belongs to: a user or an anonymous cookie.
type owner struct {
	userID string
	anonID string
}

// id returns the stable identifier used for daily results.
func (o owner) id() string {
	if o.userID != "" {
		return o.userID
	}
	return o.anonID
}

// clause returns the WHERE fragment and argument matching o's rows.
func (o owner) clause() (string, any) {
	if o.userID != "" {
		return `user_id=?`, o.userID
	}
	return `anonymous_id=?`, o.anonID
}

// ownerOf resolves the request owner, minting an anonymous cookie if needed.
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) owner {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return owner{userID: me.ID}
	}
	return owner{anonID: s.ensureAnonID(w, r)}
}

// peekOwner resolves the owner without writing cookies (websocket upgrades).
func peekOwner(r *http.Request) owner {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return owner{userID: me.ID}
	}
	if c, err := r.Cookie(anonCookieName); err == nil {
		return owner{anonID: c.Value}
	}
	return owner{}
}

// insertGameRow records a new session for history/stats (best effort).
func (s *Server) insertGameRow(ctx context.Context, o owner, sess *game.Session) {
	now := time.Now().UTC().Format(time.RFC3339)
	var daily any
	if sess.Daily != "" {
		daily = sess.Daily
	}
	var userID, anonID any
	if o.userID != "" {
		userID = o.userID
	} else {
		anonID = o.anonID
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (id, user_id, anonymous_id, daily_date, started_at, status, words_total)
	                                 VALUES (?,?,?,?,?,?,?)`, sess.ID, userID, anonID, daily, now, "playing", len(sess.Grid.Words))
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert game row")
		return
	}
	if o.userID != "" {
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET games_played = games_played + 1 WHERE id=?`, o.userID); err != nil {
			log.Warn().Err(err).Str("user", o.userID).Msg("bump games played")
		}
	}
}

// abandon discards a previous session and marks its row abandoned.
func (s *Server) abandon(ctx context.Context, o owner, id string) {
	_ = s.store.Delete(ctx, id)
	clause, arg := o.clause()
	if _, err := s.db.ExecContext(ctx, `UPDATE games SET status='abandoned', finished_at=?
	                                    WHERE id=? AND status='playing' AND `+clause,
		time.Now().UTC().Format(time.RFC3339), id, arg); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("abandon game")
	}
}

// recordProgress mirrors a session snapshot into its games row. The first
// time a session is seen complete it also updates user stats and, for daily
// grids, the leaderboard. Failures are logged and never reach the player.
func (s *Server) recordProgress(ctx context.Context, o owner, st game.State) {
	status := "playing"
	if st.Complete {
		status = "complete"
	}
	clause, arg := o.clause()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin progress tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE games SET score=?, words_found=?, elapsed_s=?, status=?
	                                 WHERE id=? AND status='playing' AND `+clause,
		st.Score, st.FoundCount, st.Elapsed, status, st.ID, arg)
	if err != nil {
		log.Warn().Err(err).Str("gameId", st.ID).Msg("update progress")
		return
	}
	n, _ := res.RowsAffected()
	finished := st.Complete && n > 0

	if finished {
		if _, err := tx.ExecContext(ctx, `UPDATE games SET finished_at=? WHERE id=?`,
			time.Now().UTC().Format(time.RFC3339), st.ID); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		if o.userID != "" {
			if err := bumpStats(tx, o.userID, st.Score); err != nil {
				log.Warn().Err(err).Str("user", o.userID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit progress")
		return
	}

	if finished && st.Daily != "" && o.id() != "" {
		err := s.daily.InsertResult(ctx, daily.Result{
			UserID: o.id(), Date: st.Daily, Score: st.Score, WordsFound: st.FoundCount, ElapsedS: st.Elapsed,
		})
		if err != nil {
			log.Warn().Err(err).Str("date", st.Daily).Msg("insert daily result")
		}
	}
	log.Debug().Str("gameId", st.ID).Int("score", st.Score).Bool("complete", st.Complete).Msg("progress recorded")
}

// bumpStats records a completed game: one more win and the best score (within tx).
func bumpStats(tx *sql.Tx, userID string, score int) error {
	_, err := tx.Exec(`UPDATE users SET wins = wins + 1, best_score = MAX(best_score, ?) WHERE id=?`, score, userID)
	return err
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
