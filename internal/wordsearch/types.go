// internal/wordsearch/types.go
//
// Core type definitions for the word-search grid generator.
// Defines:
//   - Coord:      a (row, col) cell position.
//   - Direction:  one of the four fixed placement vectors.
//   - PlacedWord: a word written into the grid with its ordered cell path.
//   - Grid:       the square letter grid plus placement metadata.

package wordsearch

// Coord identifies a cell on the grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction is a unit step applied once per letter.
type Direction struct {
	DRow int `json:"dRow"`
	DCol int `json:"dCol"`
}

var (
	Right     = Direction{DRow: 0, DCol: 1}
	Down      = Direction{DRow: 1, DCol: 0}
	DownRight = Direction{DRow: 1, DCol: 1}
	DownLeft  = Direction{DRow: 1, DCol: -1}
)

// Directions is the fixed placement policy. Words never run leftward or upward.
var Directions = [...]Direction{Right, Down, DownRight, DownLeft}

// Step returns c moved n steps along d.
func (c Coord) Step(d Direction, n int) Coord {
	return Coord{Row: c.Row + n*d.DRow, Col: c.Col + n*d.DCol}
}

// Less orders coordinates row-major.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// PlacedWord is a word successfully written into the grid.
type PlacedWord struct {
	Word      string    `json:"word"`
	Cells     []Coord   `json:"cells"` // in letter order
	Direction Direction `json:"direction"`
}

// Grid holds a generated puzzle.
type Grid struct {
	Size    int          `json:"gridSize"`
	Cells   [][]rune     `json:"-"`
	Words   []PlacedWord `json:"words"`
	Dropped []string     `json:"-"` // passed the filter but never fit
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Size && c.Col >= 0 && c.Col < g.Size
}

// At returns the letter at c, or 0 when c is off the grid.
func (g *Grid) At(c Coord) rune {
	if !g.InBounds(c) {
		return 0
	}
	return g.Cells[c.Row][c.Col]
}

// Rows renders each grid row as a string.
func (g *Grid) Rows() []string {
	out := make([]string, len(g.Cells))
	for i, row := range g.Cells {
		out[i] = string(row)
	}
	return out
}

// Trace concatenates the letters along the word's recorded path.
func (w PlacedWord) Trace(g *Grid) string {
	rs := make([]rune, 0, len(w.Cells))
	for _, c := range w.Cells {
		rs = append(rs, g.At(c))
	}
	return string(rs)
}
