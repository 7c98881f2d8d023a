// Command go-server runs the Mots Mawon word-search backend.
//
// Environment (a .env file is loaded when present):
//
//	PORT=5175
//	DB_PATH=./data/motsmawon.db
//	LOG_LEVEL=info
//	WORDS_DICT_FILE=            (optional dictionary JSON; embedded default otherwise)
//	JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME, CLIENT_ORIGIN, DAILY_SALT, NODE_ENV
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/db"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/httpserver"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/store"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	conn, err := db.OpenMigrated(getEnv("DB_PATH", "./data/motsmawon.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer conn.Close()

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	// Imported dictionary first; the loaded file covers an empty table.
	src := words.WithFallback(words.NewSQLSource(conn), words.Default())

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, conn, src)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("words", words.Stats()).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
