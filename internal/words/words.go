// internal/words/words.go
//
// Word sources for new games.
//
// Responsibilities:
//   - Load the Creole dictionary from an environment-provided file or fall back
//     to the embedded default.
//   - Sample random candidate words for the grid generator.
//   - Offer a SQLite-backed source over the imported dictionary_words table.
//
// Initialization behavior (Init):
//   1. If WORDS_DICT_FILE is set, load that dictionary JSON file.
//   2. Otherwise use the embedded assets/dictionnaire.json.
//
// Environment variables:
//   WORDS_DICT_FILE=/path/to/dictionnaire_A.json
//
// Constraints:
//   • Headwords are trimmed; empty ones are skipped. Normalization to the
//     grid alphabet is left to the generator.
//   • Initialization is run once (sync.Once).

package words

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"math/big"
	mrand "math/rand"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/madras-lab/motsmawon/apps/go-server/assets"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/dictionary"
)

// Source supplies raw candidate words.
type Source interface {
	// Sample returns up to n words in random order.
	Sample(ctx context.Context, n int) ([]string, error)
}

var (
	initOnce   sync.Once
	defaultSrc *MemorySource
	initialErr error
)

// Init loads the dictionary exactly once.
// Returns an error if the file cannot be read or holds no words.
func Init() error {
	initOnce.Do(func() {
		var entries []dictionary.Entry
		var err error
		if path := os.Getenv("WORDS_DICT_FILE"); path != "" {
			entries, err = dictionary.LoadFile(path)
		} else {
			entries, err = assets.DefaultDictionary()
		}
		if err != nil {
			initialErr = err
			return
		}
		defaultSrc = NewMemorySource(dictionary.Words(entries))
		if defaultSrc.Len() == 0 {
			initialErr = errors.New("words: dictionary is empty")
		}
	})
	return initialErr
}

// Default returns the dictionary loaded by Init, or an empty source before Init.
func Default() *MemorySource {
	if defaultSrc == nil {
		return NewMemorySource(nil)
	}
	return defaultSrc
}

// Stats returns the number of loaded dictionary words.
func Stats() int {
	return Default().Len()
}

// MemorySource samples from a fixed list.
type MemorySource struct {
	words []string
}

// NewMemorySource copies list into a new source.
func NewMemorySource(list []string) *MemorySource {
	return &MemorySource{words: append([]string(nil), list...)}
}

// Len returns the number of words in the source.
func (m *MemorySource) Len() int { return len(m.words) }

// Sample shuffles a copy of the list and returns its first n words.
func (m *MemorySource) Sample(_ context.Context, n int) ([]string, error) {
	out := append([]string(nil), m.words...)
	shuffle(out)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}

// SampleSeeded is Sample driven by rng, so equal seeds give equal samples.
func (m *MemorySource) SampleSeeded(rng *mrand.Rand, n int) []string {
	out := append([]string(nil), m.words...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// shuffle is a crypto/rand Fisher–Yates shuffle.
func shuffle(s []string) {
	for i := len(s) - 1; i > 0; i-- {
		jBig, _ := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		j := int(jBig.Int64())
		s[i], s[j] = s[j], s[i]
	}
}

// SQLSource samples Creole headwords from dictionary_words.
type SQLSource struct {
	db *sql.DB
}

// NewSQLSource wires a source to a migrated database.
func NewSQLSource(db *sql.DB) *SQLSource { return &SQLSource{db: db} }

// Sample returns up to n distinct Creole words in random order.
func (s *SQLSource) Sample(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT word FROM dictionary_words
        WHERE language = ?
        GROUP BY word
        ORDER BY RANDOM()
        LIMIT ?`, dictionary.LangCreole, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, n)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// fallback tries primary first and uses secondary when primary fails or is empty.
type fallback struct {
	primary, secondary Source
}

// WithFallback chains two sources.
func WithFallback(primary, secondary Source) Source {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) Sample(ctx context.Context, n int) ([]string, error) {
	out, err := f.primary.Sample(ctx, n)
	if err == nil && len(out) > 0 {
		return out, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("primary word source failed, using fallback")
	}
	return f.secondary.Sample(ctx, n)
}
