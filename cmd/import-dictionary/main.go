// Command import-dictionary loads Creole dictionary JSON files into the
// dictionary_words table, one forward (creole) and one reverse (francais)
// row per definition. Re-running it is safe: existing rows are skipped.
//
// Usage:
//
//	import-dictionary [-db ./data/motsmawon.db] [file.json ...]
//
// Without file arguments it imports data/dictionnaires/dictionnaire_A.json.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/db"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/dictionary"
)

var defaultFiles = []string{
	"data/dictionnaires/dictionnaire_A.json",
}

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/motsmawon.db"
	}
	flag.StringVar(&dbPath, "db", dbPath, "path to the SQLite database")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		files = defaultFiles
	}

	conn, err := db.OpenMigrated(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", dbPath).Msg("open database")
	}
	defer conn.Close()

	im := dictionary.NewImporter(conn)
	ctx := context.Background()

	var total dictionary.Summary
	for _, f := range files {
		sum, err := im.ImportFile(ctx, f)
		if err != nil {
			log.Error().Err(err).Str("file", f).Msg("import failed")
			total.Errors++
			continue
		}
		log.Info().Str("file", f).Int("imported", sum.Imported).Int("skipped", sum.Skipped).Int("errors", sum.Errors).Msg("file done")
		total.Add(sum)
	}

	log.Info().Int("imported", total.Imported).Int("skipped", total.Skipped).Int("errors", total.Errors).Msg("import complete")
	if total.Errors > 0 {
		conn.Close()
		os.Exit(1)
	}
}
