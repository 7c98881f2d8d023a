// internal/game/engine.go
//
// Session controller for a single word-search game.
// Responsibilities:
//   - Create sessions over a generated grid (or sample words and generate one).
//   - Track the live selection through begin/extend/end gestures.
//   - Match a finished selection against unfound placed words, score it,
//     and detect completion.
//   - Advance the elapsed-seconds counter on ticks until completion.
//
// Notes:
//   - Invalid input (off-grid cells, stray gestures, wrong selections) is a
//     silent no-op; the controller never returns errors.
//   - A session is owned by one player. The mutex only serializes the
//     transport's goroutines (HTTP handlers, websocket ticker) over it.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/zyedidia/generic/mapset"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/words"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/wordsearch"
)

// Session holds the state of one play session.
type Session struct {
	ID        string           // Unique session identifier (random hex string).
	Grid      *wordsearch.Grid // Generated puzzle; never mutated by the session.
	Daily     string           // Date key when the grid is the daily puzzle.
	StartedAt time.Time

	mu        sync.Mutex
	selecting bool
	selected  mapset.Set[wordsearch.Coord]
	found     mapset.Set[string]
	score     int
	elapsed   int
	complete  bool
}

// New starts a fresh session over grid.
func New(grid *wordsearch.Grid) *Session {
	return &Session{
		ID:        randomID(),
		Grid:      grid,
		StartedAt: time.Now().UTC(),
		selected:  mapset.New[wordsearch.Coord](),
		found:     mapset.New[string](),
	}
}

// NewGame samples wordsearch.MaxWords words from src, generates a default
// sized grid with rng (nil for a time-seeded one) and starts a session on it.
// A source error is returned as-is; an empty sample still yields a session.
func NewGame(ctx context.Context, src words.Source, rng *mrand.Rand) (*Session, error) {
	sample, err := src.Sample(ctx, wordsearch.MaxWords)
	if err != nil {
		return nil, err
	}
	grid := wordsearch.NewGenerator(rng).Generate(sample, wordsearch.DefaultGridSize)
	return New(grid), nil
}

// Begin starts a gesture on (row, col), resetting the selection to that cell.
func (s *Session) Begin(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := wordsearch.Coord{Row: row, Col: col}
	if s.complete || s.Grid == nil || !s.Grid.InBounds(c) {
		return
	}
	s.selecting = true
	s.selected = mapset.New[wordsearch.Coord]()
	s.selected.Put(c)
}

// Extend adds (row, col) to the active gesture's selection.
func (s *Session) Extend(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := wordsearch.Coord{Row: row, Col: col}
	if !s.selecting || !s.Grid.InBounds(c) {
		return
	}
	s.selected.Put(c)
}

// End finishes the active gesture.
//
// The selected cells are read in row-major order and the resulting string is
// compared with every placed word not yet found. On a match the word is
// recorded, the score grows by PointsPerLetter per letter and the session
// completes once every placed word is found. A successful selection stays
// highlighted; a failed one is cleared.
func (s *Session) End() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selecting {
		return Result{}
	}
	s.selecting = false

	res := Result{Candidate: s.candidate()}
	for _, w := range s.Grid.Words {
		if w.Word != res.Candidate || s.found.Has(w.Word) {
			continue
		}
		s.found.Put(w.Word)
		pts := utf8.RuneCountInString(w.Word) * PointsPerLetter
		s.score += pts
		if s.found.Size() == len(s.Grid.Words) {
			s.complete = true
		}
		res.Matched, res.Word, res.Points, res.Complete = true, w.Word, pts, s.complete
		return res
	}

	s.selected = mapset.New[wordsearch.Coord]()
	return res
}

// candidate concatenates the selected letters in row-major order.
func (s *Session) candidate() string {
	cells := make([]wordsearch.Coord, 0, s.selected.Size())
	s.selected.Each(func(c wordsearch.Coord) {
		cells = append(cells, c)
	})
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })

	var b strings.Builder
	for _, c := range cells {
		b.WriteRune(s.Grid.At(c))
	}
	return b.String()
}

// Tick advances the elapsed counter by one second unless the session is complete.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete || s.Grid == nil {
		return
	}
	s.elapsed++
}

// Complete reports whether every placed word was found.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Snapshot returns a copy of the session state for rendering.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:         s.ID,
		Daily:      s.Daily,
		Score:      s.score,
		Elapsed:    s.elapsed,
		Complete:   s.complete,
		Phase:      s.phase(),
		FoundCount: s.found.Size(),
		Words:      []WordState{},
		Cells:      [][]CellState{},
	}
	if s.Grid == nil {
		return st
	}
	st.Size = s.Grid.Size

	foundCells := mapset.New[wordsearch.Coord]()
	for _, w := range s.Grid.Words {
		ws := WordState{Word: w.Word, Found: s.found.Has(w.Word)}
		if ws.Found {
			ws.Cells = append([]wordsearch.Coord(nil), w.Cells...)
			for _, c := range w.Cells {
				foundCells.Put(c)
			}
		}
		st.Words = append(st.Words, ws)
	}

	st.Cells = make([][]CellState, len(s.Grid.Cells))
	for r, row := range s.Grid.Cells {
		st.Cells[r] = make([]CellState, len(row))
		for c, l := range row {
			at := wordsearch.Coord{Row: r, Col: c}
			st.Cells[r][c] = CellState{
				Letter:   string(l),
				Selected: s.selected.Has(at),
				Found:    foundCells.Has(at),
			}
		}
	}
	return st
}

// phase reports the coarse state; callers hold s.mu.
func (s *Session) phase() Phase {
	switch {
	case s.complete:
		return PhaseComplete
	case s.selecting:
		return PhaseSelecting
	default:
		return PhaseIdle
	}
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
