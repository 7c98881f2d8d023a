// internal/wordsearch/generator.go
//
// Word-search grid generator.
// Responsibilities:
//   - Normalize and filter candidate words (uppercase, Creole letter set, length 3..size).
//   - Place up to MaxWords words along the four fixed directions with
//     collision checking and a bounded number of random attempts per word.
//   - Fill remaining cells with random filler letters.
//
// Placement is best effort: a word that does not fit after PlacementAttempts
// tries is dropped. Generation never fails.

package wordsearch

import (
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	DefaultGridSize   = 12
	MaxWords          = 10
	PlacementAttempts = 100
	MinWordLength     = 3
)

// FillerAlphabet supplies letters for cells no word claims.
const FillerAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZÉÈÊÀÔÙ"

// accented lists the non-ASCII letters a normalized word may keep.
const accented = "ÀÁÂÃÄÅÈÉÊËÌÍÎÏÒÓÔÕÖÙÚÛÜÇÑ"

var fillerRunes = []rune(FillerAlphabet)

// Generator places words using its own random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator wires a generator to rng. A nil rng is seeded from the clock.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate builds a grid with a time-seeded generator.
func Generate(words []string, gridSize int) *Grid {
	return NewGenerator(nil).Generate(words, gridSize)
}

// Generate places words on a gridSize×gridSize grid and fills the rest.
func (g *Generator) Generate(words []string, gridSize int) *Grid {
	if gridSize < 0 {
		gridSize = 0
	}
	grid := &Grid{Size: gridSize, Cells: make([][]rune, gridSize), Words: []PlacedWord{}}
	for r := range grid.Cells {
		grid.Cells[r] = make([]rune, gridSize)
	}

	for _, w := range Candidates(words, gridSize) {
		if pw, ok := g.place(grid, w); ok {
			grid.Words = append(grid.Words, pw)
			continue
		}
		grid.Dropped = append(grid.Dropped, w)
		log.Debug().Str("word", w).Int("gridSize", gridSize).Msg("word dropped after placement attempts")
	}

	for r := range grid.Cells {
		for c := range grid.Cells[r] {
			if grid.Cells[r][c] == 0 {
				grid.Cells[r][c] = fillerRunes[g.rng.Intn(len(fillerRunes))]
			}
		}
	}
	return grid
}

// place tries PlacementAttempts random (direction, start) pairs and writes
// the word on the first fit.
func (g *Generator) place(grid *Grid, word string) (PlacedWord, bool) {
	letters := []rune(word)
	for attempt := 0; attempt < PlacementAttempts; attempt++ {
		dir := Directions[g.rng.Intn(len(Directions))]
		start := Coord{Row: g.rng.Intn(grid.Size), Col: g.rng.Intn(grid.Size)}
		if !canPlace(grid, letters, start, dir) {
			continue
		}
		cells := make([]Coord, len(letters))
		for i, l := range letters {
			c := start.Step(dir, i)
			grid.Cells[c.Row][c.Col] = l
			cells[i] = c
		}
		return PlacedWord{Word: word, Cells: cells, Direction: dir}, true
	}
	return PlacedWord{}, false
}

// canPlace checks bounds and that every cell is empty or already holds the
// same letter.
func canPlace(grid *Grid, letters []rune, start Coord, dir Direction) bool {
	for i, l := range letters {
		c := start.Step(dir, i)
		if !grid.InBounds(c) {
			return false
		}
		if cur := grid.Cells[c.Row][c.Col]; cur != 0 && cur != l {
			return false
		}
	}
	return true
}

// Candidates normalizes words, keeps those with 3..gridSize letters and
// returns at most MaxWords of them in input order. Repeats of an already kept
// word are skipped so each placed word is unique.
func Candidates(words []string, gridSize int) []string {
	out := make([]string, 0, MaxWords)
	seen := make(map[string]struct{}, MaxWords)
	for _, w := range words {
		if len(out) == MaxWords {
			break
		}
		n := Normalize(w)
		if l := utf8.RuneCountInString(n); l < MinWordLength || l > gridSize {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Normalize uppercases w and strips everything outside A–Z and the accented
// letters of the Creole orthography.
func Normalize(w string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || strings.ContainsRune(accented, r) {
			return r
		}
		return -1
	}, strings.ToUpper(w))
}
