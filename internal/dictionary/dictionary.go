// internal/dictionary/dictionary.go
//
// Creole dictionary file format.
// A dictionary file is a JSON array of entries:
//
//	[{"mot": "kay", "definitions": [{"traduction": "maison", "sens_num": 1, ...}]}]
//
// Entries feed both the in-memory word source and the SQLite importer.

package dictionary

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Example is a usage example in both languages.
type Example struct {
	Creole   string `json:"creole"`
	Francais string `json:"francais"`
}

// Definition is one sense of an entry.
type Definition struct {
	Traduction       string    `json:"traduction"`
	Nature           string    `json:"nature,omitempty"`
	Exemples         []Example `json:"exemples,omitempty"`
	Synonymes        []string  `json:"synonymes,omitempty"`
	Variantes        []string  `json:"variantes,omitempty"`
	SensNum          int       `json:"sens_num,omitempty"`
	ExplicationUsage string    `json:"explication_usage,omitempty"`
}

// Entry is a headword with its senses.
type Entry struct {
	Mot         string       `json:"mot"`
	Definitions []Definition `json:"definitions"`
}

// Sense returns the sense number, defaulting to 1.
func (d Definition) Sense() int {
	if d.SensNum <= 0 {
		return 1
	}
	return d.SensNum
}

// FirstExample returns the first example, if any.
func (d Definition) FirstExample() (Example, bool) {
	if len(d.Exemples) == 0 {
		return Example{}, false
	}
	return d.Exemples[0], true
}

// Parse decodes a dictionary file.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	return entries, nil
}

// LoadFile reads and parses the dictionary at path.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Words returns the trimmed, non-empty headwords of entries.
func Words(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if w := strings.TrimSpace(e.Mot); w != "" {
			out = append(out, w)
		}
	}
	return out
}
