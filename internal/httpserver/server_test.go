package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/db"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/game"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/store"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/words"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/wordsearch"
)

type fixture struct {
	srv    *httptest.Server
	client *http.Client
	store  store.Store
	db     *sql.DB
}

func newFixture(t *testing.T, src words.Source) *fixture {
	t.Helper()
	conn, err := db.OpenMigrated(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	st := store.NewMemoryStore()
	ts := httptest.NewServer(New(st, conn, src).Router())
	t.Cleanup(func() {
		ts.Close()
		conn.Close()
	})
	jar, _ := cookiejar.New(nil)
	return &fixture{srv: ts, client: &http.Client{Jar: jar}, store: st, db: conn}
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (f *fixture) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, f.srv.URL+path, rd)
	req.Header.Set("Content-Type", "application/json")
	res, err := f.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode < 300 {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return res.StatusCode
}

// solve plays every placed word of game id over HTTP and returns the last result.
func (f *fixture) solve(t *testing.T, id string) endRes {
	t.Helper()
	sess, err := f.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	var last endRes
	for _, w := range sess.Grid.Words {
		f.do(t, http.MethodPost, "/game/"+id+"/begin", cellReq{Row: w.Cells[0].Row, Col: w.Cells[0].Col}, nil)
		for _, c := range w.Cells[1:] {
			f.do(t, http.MethodPost, "/game/"+id+"/extend", cellReq{Row: c.Row, Col: c.Col}, nil)
		}
		if code := f.do(t, http.MethodPost, "/game/"+id+"/end", nil, &last); code != http.StatusOK {
			t.Fatalf("end: status %d", code)
		}
		if !last.Result.Matched || last.Result.Word != w.Word {
			t.Fatalf("expected %s to match, got %+v", w.Word, last.Result)
		}
	}
	return last
}

func TestHealthAndNotFound(t *testing.T) {
	f := newFixture(t, words.NewMemorySource(nil))

	if code := f.do(t, http.MethodGet, "/health", nil, nil); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
	if code := f.do(t, http.MethodGet, "/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unknown path: %d", code)
	}
	if code := f.do(t, http.MethodGet, "/game/missing", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unknown game: %d", code)
	}
	if code := f.do(t, http.MethodPost, "/game/missing/begin", cellReq{}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown game begin: %d", code)
	}
}

func TestGameFlow(t *testing.T) {
	f := newFixture(t, words.NewMemorySource([]string{"kay", "pen", "siwo"}))

	var g gameRes
	if code := f.do(t, http.MethodPost, "/game/new", nil, &g); code != http.StatusOK {
		t.Fatalf("new: %d", code)
	}
	if g.GameID == "" || g.State.Size != wordsearch.DefaultGridSize || g.State.Complete {
		t.Fatalf("unexpected new game %+v", g)
	}
	for _, w := range g.State.Words {
		if len(w.Cells) != 0 {
			t.Fatalf("unfound word %s leaks its cells", w.Word)
		}
	}

	// A stray end and a bad body change nothing.
	var miss endRes
	f.do(t, http.MethodPost, "/game/"+g.GameID+"/end", nil, &miss)
	if miss.Result.Matched || miss.State.Score != 0 {
		t.Fatalf("stray end scored: %+v", miss)
	}
	req, _ := http.NewRequest(http.MethodPost, f.srv.URL+"/game/"+g.GameID+"/begin", strings.NewReader("{"))
	res, err := f.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json: %d", res.StatusCode)
	}

	var tick gameRes
	f.do(t, http.MethodPost, "/game/"+g.GameID+"/tick", nil, &tick)
	if tick.State.Elapsed != 1 {
		t.Fatalf("tick: elapsed %d", tick.State.Elapsed)
	}

	last := f.solve(t, g.GameID)
	if !last.Result.Complete || !last.State.Complete || last.State.Phase != game.PhaseComplete {
		t.Fatalf("expected completion, got %+v", last)
	}
	if want := (3 + 3 + 4) * game.PointsPerLetter; last.State.Score != want {
		t.Fatalf("score %d, want %d", last.State.Score, want)
	}

	f.do(t, http.MethodPost, "/game/"+g.GameID+"/tick", nil, &tick)
	if tick.State.Elapsed != 1 {
		t.Fatalf("tick after completion moved the clock: %d", tick.State.Elapsed)
	}

	var status string
	var score, found, total int
	err = f.db.QueryRow(`SELECT status, score, words_found, words_total FROM games WHERE id=?`, g.GameID).
		Scan(&status, &score, &found, &total)
	if err != nil {
		t.Fatalf("games row: %v", err)
	}
	if status != "complete" || score != last.State.Score || found != 3 || total != 3 {
		t.Fatalf("games row = %s %d %d/%d", status, score, found, total)
	}
}

func TestNewGameDiscardsPrevious(t *testing.T) {
	f := newFixture(t, words.NewMemorySource([]string{"kay", "pen"}))

	var first, second gameRes
	f.do(t, http.MethodPost, "/game/new", nil, &first)
	f.do(t, http.MethodPost, "/game/new", newGameReq{PreviousGameID: first.GameID}, &second)

	if first.GameID == second.GameID {
		t.Fatal("expected a fresh game id")
	}
	if _, err := f.store.Get(context.Background(), first.GameID); err != store.ErrNotFound {
		t.Fatalf("previous session still stored: %v", err)
	}
	var status string
	_ = f.db.QueryRow(`SELECT status FROM games WHERE id=?`, first.GameID).Scan(&status)
	if status != "abandoned" {
		t.Fatalf("previous row status %q", status)
	}
}

func TestAuthAndStats(t *testing.T) {
	f := newFixture(t, words.NewMemorySource([]string{"kay", "pen"}))

	// A guest game played before signup is claimed by the new account.
	var guest gameRes
	f.do(t, http.MethodPost, "/game/new", nil, &guest)

	if code := f.do(t, http.MethodPost, "/auth/signup", signupReq{Username: "ti_moun", Password: "sekrè1234"}, nil); code != http.StatusOK {
		t.Fatalf("signup: %d", code)
	}
	if code := f.do(t, http.MethodPost, "/auth/signup", signupReq{Username: "TI_MOUN", Password: "sekrè1234"}, nil); code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", code)
	}

	var me authUser
	if code := f.do(t, http.MethodGet, "/auth/me", nil, &me); code != http.StatusOK || me.Username != "ti_moun" {
		t.Fatalf("me: %d %+v", code, me)
	}

	var g gameRes
	f.do(t, http.MethodPost, "/game/new", nil, &g)
	last := f.solve(t, g.GameID)

	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
		BestScore   int `json:"bestScore"`
	}
	f.do(t, http.MethodGet, "/stats/me", nil, &stats)
	if stats.GamesPlayed != 1 || stats.Wins != 1 || stats.BestScore != last.State.Score {
		t.Fatalf("stats = %+v", stats)
	}

	var mine []gameRow
	f.do(t, http.MethodGet, "/games/mine", nil, &mine)
	if len(mine) != 2 {
		t.Fatalf("expected guest + account game, got %+v", mine)
	}

	f.do(t, http.MethodPost, "/auth/logout", nil, nil)
	if code := f.do(t, http.MethodGet, "/stats/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("stats after logout: %d", code)
	}
	if code := f.do(t, http.MethodPost, "/auth/login", loginReq{Username: "ti_moun", Password: "wrong-pass"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}
	if code := f.do(t, http.MethodPost, "/auth/login", loginReq{Username: "ti_moun", Password: "sekrè1234"}, nil); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
}

func TestDailyGrid(t *testing.T) {
	if err := words.Init(); err != nil {
		t.Fatalf("init words: %v", err)
	}
	f := newFixture(t, words.Default())

	var a, b newRes
	f.do(t, http.MethodPost, "/daily/new", nil, &a)
	f.do(t, http.MethodPost, "/daily/new", nil, &b)
	if a.GameID == "" || a.GameID != b.GameID || a.Played {
		t.Fatalf("daily session not reused: %+v %+v", a, b)
	}
	if a.State == nil || a.State.Daily != a.Date {
		t.Fatalf("daily state missing date: %+v", a.State)
	}

	// Another player gets the same puzzle.
	jar, _ := cookiejar.New(nil)
	other := &fixture{srv: f.srv, client: &http.Client{Jar: jar}, store: f.store, db: f.db}
	var c newRes
	other.do(t, http.MethodPost, "/daily/new", nil, &c)
	if c.GameID == a.GameID {
		t.Fatal("players share a session")
	}
	for r := range a.State.Cells {
		for col := range a.State.Cells[r] {
			if a.State.Cells[r][col].Letter != c.State.Cells[r][col].Letter {
				t.Fatalf("daily grids differ at %d,%d", r, col)
			}
		}
	}

	f.solve(t, a.GameID)

	var again newRes
	f.do(t, http.MethodPost, "/daily/new", nil, &again)
	if !again.Played || again.GameID != "" {
		t.Fatalf("expected played, got %+v", again)
	}

	var lb lbRes
	f.do(t, http.MethodGet, "/daily/leaderboard", nil, &lb)
	if lb.Date != a.Date || len(lb.Top) != 1 || lb.Top[0].WordsFound != len(a.State.Words) {
		t.Fatalf("leaderboard = %+v", lb)
	}
}

func TestLiveChannel(t *testing.T) {
	f := newFixture(t, words.NewMemorySource([]string{"kay"}))

	var g gameRes
	f.do(t, http.MethodPost, "/game/new", nil, &g)
	sess, _ := f.store.Get(context.Background(), g.GameID)
	word := sess.Grid.Words[0]

	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/game/" + g.GameID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func(typ string) liveOut {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var out liveOut
			if err := conn.ReadJSON(&out); err != nil {
				t.Fatalf("read: %v", err)
			}
			if out.Type == typ {
				return out
			}
		}
	}

	if first := read("state"); first.State.ID != g.GameID {
		t.Fatalf("initial state for %q", first.State.ID)
	}

	_ = conn.WriteJSON(liveMsg{Type: "begin", Row: word.Cells[0].Row, Col: word.Cells[0].Col})
	for _, c := range word.Cells[1:] {
		_ = conn.WriteJSON(liveMsg{Type: "extend", Row: c.Row, Col: c.Col})
	}
	_ = conn.WriteJSON(liveMsg{Type: "end"})

	res := read("result")
	if res.Result == nil || !res.Result.Matched || !res.State.Complete {
		t.Fatalf("expected completing match, got %+v", res)
	}

	// The clock runs while the socket is open and stops at completion.
	frozen := sess.Snapshot().Elapsed
	time.Sleep(game.TickInterval + 200*time.Millisecond)
	if got := sess.Snapshot().Elapsed; got != frozen {
		t.Fatalf("clock moved after completion: %d -> %d", frozen, got)
	}
}
