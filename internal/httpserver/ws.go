// internal/httpserver/ws.go
//
// Live play channel: GET /game/{id}/ws.
//
// Client frames: {"type":"begin"|"extend"|"end","row":r,"col":c}.
// Server frames: {"type":"state","state":...} after every gesture and every
// one-second tick while the game runs, plus {"type":"result",...} after end.
// The ticker is stopped when the connection closes.

package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/game"
)

// upgrader accepts the configured client origin and non-browser clients.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	},
}

// liveMsg is a client frame.
type liveMsg struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// liveOut is a server frame.
type liveOut struct {
	Type   string       `json:"type"`
	Result *game.Result `json:"result,omitempty"`
	State  game.State   `json:"state"`
}

const writeWait = 5 * time.Second

// handleLive upgrades the request and drives the session from client frames
// and the tick clock until either side closes.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	o := peekOwner(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	// All writes happen on this goroutine; the reader only forwards frames.
	in := make(chan liveMsg)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m liveMsg
			if err := conn.ReadJSON(&m); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug().Err(err).Str("gameId", sess.ID).Msg("websocket read")
				}
				return
			}
			select {
			case in <- m:
			case <-r.Context().Done():
				return
			}
		}
	}()

	send := func(out liveOut) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(out) == nil
	}

	ticker := time.NewTicker(game.TickInterval)
	defer ticker.Stop()

	if !send(liveOut{Type: "state", State: sess.Snapshot()}) {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if sess.Complete() {
				continue
			}
			sess.Tick()
			if !send(liveOut{Type: "state", State: sess.Snapshot()}) {
				return
			}
		case m := <-in:
			var out liveOut
			switch m.Type {
			case "begin":
				sess.Begin(m.Row, m.Col)
				out.Type = "state"
			case "extend":
				sess.Extend(m.Row, m.Col)
				out.Type = "state"
			case "end":
				res := sess.End()
				out.Type, out.Result = "result", &res
				if res.Matched {
					out.State = sess.Snapshot()
					s.recordProgress(r.Context(), o, out.State)
				}
			default:
				continue
			}
			if out.State.ID == "" {
				out.State = sess.Snapshot()
			}
			if !send(out) {
				return
			}
		}
	}
}
