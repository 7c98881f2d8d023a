// internal/game/types.go
//
// Core type definitions for a word-search play session.
// Defines:
//   - Phase:  coarse state of the selection state machine.
//   - Result: outcome of one completed selection gesture.
//   - State:  read-only snapshot consumed by renderers and transports.

package game

import (
	"time"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/wordsearch"
)

// Phase reports where a session sits in its state machine.
//   - "idle":      no gesture in progress.
//   - "selecting": a gesture is active and cells are accumulating.
//   - "complete":  every placed word was found; terminal.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSelecting Phase = "selecting"
	PhaseComplete  Phase = "complete"
)

const (
	// PointsPerLetter is the score awarded per letter of a found word.
	PointsPerLetter = 10

	// TickInterval is the wall-clock period between Tick calls.
	TickInterval = time.Second
)

// Result describes what a gesture end did.
type Result struct {
	Candidate string `json:"candidate"` // letters of the selection in row-major order
	Matched   bool   `json:"matched"`
	Word      string `json:"word,omitempty"`
	Points    int    `json:"points"`
	Complete  bool   `json:"complete"`
}

// CellState is one rendered grid cell.
type CellState struct {
	Letter   string `json:"letter"`
	Selected bool   `json:"selected,omitempty"`
	Found    bool   `json:"found,omitempty"`
}

// WordState is one entry of the word list shown to the player.
// Cells are only revealed once the word is found.
type WordState struct {
	Word  string             `json:"word"`
	Found bool               `json:"found"`
	Cells []wordsearch.Coord `json:"cells,omitempty"`
}

// State is a snapshot of a session.
type State struct {
	ID         string        `json:"gameId"`
	Daily      string        `json:"daily,omitempty"` // date key for daily grids
	Size       int           `json:"gridSize"`
	Cells      [][]CellState `json:"cells"`
	Words      []WordState   `json:"words"`
	FoundCount int           `json:"foundCount"`
	Score      int           `json:"score"`
	Elapsed    int           `json:"elapsedSeconds"`
	Complete   bool          `json:"complete"`
	Phase      Phase         `json:"phase"`
}
