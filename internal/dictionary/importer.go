// internal/dictionary/importer.go
//
// Bulk import of dictionary files into the dictionary_words table.
// Every definition produces two rows:
//   - a creole row (word=mot, translation=traduction)
//   - a reverse francais row (word=traduction, translation=mot)
//
// Rows are keyed UNIQUE(word, language, sens_num). A row that already exists
// is counted as skipped; any other failure is counted as an error and the
// import carries on with the next row.

package dictionary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	LangCreole   = "creole"
	LangFrancais = "francais"
)

// Summary counts import outcomes.
type Summary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Add accumulates o into s.
func (s *Summary) Add(o Summary) {
	s.Imported += o.Imported
	s.Skipped += o.Skipped
	s.Errors += o.Errors
}

// Importer writes entries into SQLite.
type Importer struct {
	db *sql.DB
}

// NewImporter wires an importer to a migrated database.
func NewImporter(db *sql.DB) *Importer { return &Importer{db: db} }

type row struct {
	word, language, translation string
	nature                      sql.NullString
	exCreole, exFrancais        sql.NullString
	synonymes, variantes        []string
	sens                        int
	usage                       sql.NullString
}

var errEmptyWord = errors.New("empty word")

// ImportFile imports the dictionary at path. A missing file is skipped.
func (im *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("file", filepath.Base(path)).Msg("dictionary file not found, skipped")
		return Summary{}, nil
	}
	entries, err := LoadFile(path)
	if err != nil {
		return Summary{}, err
	}
	log.Info().Str("file", filepath.Base(path)).Int("entries", len(entries)).Msg("importing dictionary")
	return im.ImportEntries(ctx, entries), nil
}

// ImportEntries imports every definition of entries.
func (im *Importer) ImportEntries(ctx context.Context, entries []Entry) Summary {
	var sum Summary
	for _, e := range entries {
		mot := strings.TrimSpace(e.Mot)
		if mot == "" {
			log.Warn().Int("definitions", len(e.Definitions)).Msg("entry without headword")
			sum.Errors += len(e.Definitions)
			continue
		}
		for _, d := range e.Definitions {
			ex, hasEx := d.FirstExample()
			fwd := row{
				word:        mot,
				language:    LangCreole,
				translation: strings.TrimSpace(d.Traduction),
				nature:      nullString(d.Nature),
				synonymes:   d.Synonymes,
				variantes:   d.Variantes,
				sens:        d.Sense(),
				usage:       nullString(d.ExplicationUsage),
			}
			rev := row{
				word:        fwd.translation,
				language:    LangFrancais,
				translation: mot,
				nature:      fwd.nature,
				sens:        fwd.sens,
			}
			if hasEx {
				fwd.exCreole, fwd.exFrancais = nullString(ex.Creole), nullString(ex.Francais)
				rev.exCreole, rev.exFrancais = nullString(ex.Francais), nullString(ex.Creole)
			}

			im.record(ctx, &sum, fwd)
			if rev.word == "" {
				sum.Skipped++
				continue
			}
			im.record(ctx, &sum, rev)
		}
	}
	return sum
}

func (im *Importer) record(ctx context.Context, sum *Summary, r row) {
	inserted, err := im.insert(ctx, r)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("word", r.word).Str("language", r.language).Int("sens", r.sens).Msg("import row failed")
		sum.Errors++
	case inserted:
		sum.Imported++
	default:
		sum.Skipped++
	}
}

// insert writes r unless (word, language, sens_num) already exists.
func (im *Importer) insert(ctx context.Context, r row) (bool, error) {
	if r.word == "" {
		return false, errEmptyWord
	}
	syn, err := json.Marshal(nonNil(r.synonymes))
	if err != nil {
		return false, err
	}
	vars, err := json.Marshal(nonNil(r.variantes))
	if err != nil {
		return false, err
	}
	res, err := im.db.ExecContext(ctx, `
        INSERT INTO dictionary_words
            (word, language, translation, nature, example_creole, example_francais,
             synonymes, variantes, sens_num, explication_usage, is_official)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
        ON CONFLICT(word, language, sens_num) DO NOTHING`,
		r.word, r.language, r.translation, r.nature, r.exCreole, r.exFrancais,
		string(syn), string(vars), r.sens, r.usage,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
